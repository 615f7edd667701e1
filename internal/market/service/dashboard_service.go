package service

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// DashboardService role dashboards backed by raw SQL rollups
type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// SupplierDashboard a seller's trailing-30-day view
type SupplierDashboard struct {
	ActiveOfferings  int     `json:"active_offerings"`
	OpenOrders       int     `json:"open_orders"`
	DeliveredOrders  int     `json:"delivered_orders"`
	RevenueWindow    float64 `json:"revenue_window"`
	CommissionWindow float64 `json:"commission_window"`
	ActiveContracts  int     `json:"active_contracts"`
}

// GetSupplierDashboard rolls up one supplier's last 30 days.
func (s *DashboardService) GetSupplierDashboard(ctx context.Context, supplierID string) (*SupplierDashboard, error) {
	dash := &SupplierDashboard{}
	since := time.Now().AddDate(0, 0, -30)

	row := s.db.WithContext(ctx).Raw(`
		SELECT
			(SELECT COUNT(*) FROM coffee_offerings WHERE supplier_id = ? AND status = 'listed') as active_offerings,
			(SELECT COUNT(*) FROM orders WHERE supplier_id = ? AND status IN ('pending','confirmed','paid','shipped')) as open_orders,
			(SELECT COUNT(*) FROM orders WHERE supplier_id = ? AND status = 'delivered' AND delivered_at >= ?) as delivered_orders,
			(SELECT COALESCE(SUM(total_price), 0) FROM orders WHERE supplier_id = ? AND status = 'delivered' AND delivered_at >= ?) as revenue,
			(SELECT COALESCE(SUM(amount), 0) FROM commissions WHERE supplier_id = ? AND created_at >= ?) as commission,
			(SELECT COUNT(*) FROM direct_supply_contracts WHERE seller_id = ? AND status NOT IN ('completed','cancelled','disputed')) as active_contracts
	`, supplierID, supplierID, supplierID, since, supplierID, since, supplierID, since, supplierID).Row()

	if err := row.Scan(
		&dash.ActiveOfferings,
		&dash.OpenOrders,
		&dash.DeliveredOrders,
		&dash.RevenueWindow,
		&dash.CommissionWindow,
		&dash.ActiveContracts,
	); err != nil {
		return nil, err
	}

	return dash, nil
}

// BuyerDashboard a roaster/cafe purchasing view
type BuyerDashboard struct {
	OpenOrders      int     `json:"open_orders"`
	InTransitOrders int     `json:"in_transit_orders"`
	SpendWindow     float64 `json:"spend_window"`
	ActiveContracts int     `json:"active_contracts"`
	LowStockItems   int     `json:"low_stock_items"`
}

// GetBuyerDashboard rolls up one buyer's last 30 days.
func (s *DashboardService) GetBuyerDashboard(ctx context.Context, buyerID string) (*BuyerDashboard, error) {
	dash := &BuyerDashboard{}
	since := time.Now().AddDate(0, 0, -30)

	row := s.db.WithContext(ctx).Raw(`
		SELECT
			(SELECT COUNT(*) FROM orders WHERE buyer_id = ? AND status IN ('pending','confirmed','paid')) as open_orders,
			(SELECT COUNT(*) FROM orders WHERE buyer_id = ? AND status = 'shipped') as in_transit,
			(SELECT COALESCE(SUM(total_price), 0) FROM orders WHERE buyer_id = ? AND created_at >= ? AND status != 'cancelled') as spend,
			(SELECT COUNT(*) FROM direct_supply_contracts WHERE buyer_id = ? AND status NOT IN ('completed','cancelled','disputed')) as active_contracts,
			(SELECT COUNT(*) FROM inventory_items WHERE owner_id = ? AND low_stock_level > 0 AND quantity <= low_stock_level) as low_stock
	`, buyerID, buyerID, buyerID, since, buyerID, buyerID).Row()

	if err := row.Scan(
		&dash.OpenOrders,
		&dash.InTransitOrders,
		&dash.SpendWindow,
		&dash.ActiveContracts,
		&dash.LowStockItems,
	); err != nil {
		return nil, err
	}

	return dash, nil
}

// AdminDashboard platform-wide view
type AdminDashboard struct {
	TotalUsers       int     `json:"total_users"`
	PendingRoles     int     `json:"pending_roles"`
	OrdersWindow     int     `json:"orders_window"`
	GMVWindow        float64 `json:"gmv_window"`
	CommissionWindow float64 `json:"commission_window"`
	OpenDisputes     int     `json:"open_disputes"`
}

// GetAdminDashboard rolls up the whole platform's last 30 days.
func (s *DashboardService) GetAdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	dash := &AdminDashboard{}
	since := time.Now().AddDate(0, 0, -30)

	row := s.db.WithContext(ctx).Raw(`
		SELECT
			(SELECT COUNT(*) FROM users WHERE status = 'active') as total_users,
			(SELECT COUNT(*) FROM user_roles WHERE status = 'pending') as pending_roles,
			(SELECT COUNT(*) FROM orders WHERE created_at >= ?) as orders_window,
			(SELECT COALESCE(SUM(total_price), 0) FROM orders WHERE created_at >= ? AND status != 'cancelled') as gmv,
			(SELECT COALESCE(SUM(amount), 0) FROM commissions WHERE created_at >= ?) as commission,
			(SELECT COUNT(*) FROM direct_supply_contracts WHERE status = 'disputed') as disputes
	`, since, since, since).Row()

	if err := row.Scan(
		&dash.TotalUsers,
		&dash.PendingRoles,
		&dash.OrdersWindow,
		&dash.GMVWindow,
		&dash.CommissionWindow,
		&dash.OpenDisputes,
	); err != nil {
		return nil, err
	}

	return dash, nil
}

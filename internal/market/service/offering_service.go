package service

import (
	"context"
	"fmt"

	"github.com/beanlink/beanlink/internal/market/entity"
	"github.com/beanlink/beanlink/internal/market/repository"
	"github.com/beanlink/beanlink/internal/market/sse"
	"github.com/google/uuid"
)

// OfferingService coffee listing management
type OfferingService struct {
	offeringRepo *repository.OfferingRepository
}

func NewOfferingService(offeringRepo *repository.OfferingRepository) *OfferingService {
	return &OfferingService{offeringRepo: offeringRepo}
}

// ListOfferings pages listings
func (s *OfferingService) ListOfferings(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.CoffeeOffering, int64, error) {
	return s.offeringRepo.FindAll(ctx, page, pageSize, filters)
}

// GetOffering loads one listing
func (s *OfferingService) GetOffering(ctx context.Context, id string) (*entity.CoffeeOffering, error) {
	return s.offeringRepo.FindByID(ctx, id)
}

// CreateOfferingRequest new listing payload
type CreateOfferingRequest struct {
	Name         string   `json:"name" binding:"required"`
	Origin       string   `json:"origin" binding:"required"`
	Variety      string   `json:"variety"`
	Process      string   `json:"process"`
	RoastLevel   string   `json:"roast_level"`
	Altitude     string   `json:"altitude"`
	CuppingScore *float64 `json:"cupping_score"`
	PricePerKg   float64  `json:"price_per_kg" binding:"required,gt=0"`
	Currency     string   `json:"currency"`
	QuantityKg   float64  `json:"quantity_kg" binding:"required,gt=0"`
	MinOrderKg   float64  `json:"min_order_kg"`
	Description  string   `json:"description"`
}

// CreateOffering creates a draft listing for the supplier.
func (s *OfferingService) CreateOffering(ctx context.Context, supplierID string, req *CreateOfferingRequest) (*entity.CoffeeOffering, error) {
	currency := req.Currency
	if currency == "" {
		currency = "SAR"
	}

	offering := &entity.CoffeeOffering{
		ID:           uuid.New().String()[:32],
		SupplierID:   supplierID,
		Name:         req.Name,
		Origin:       req.Origin,
		Variety:      req.Variety,
		Process:      req.Process,
		RoastLevel:   req.RoastLevel,
		Altitude:     req.Altitude,
		CuppingScore: req.CuppingScore,
		PricePerKg:   req.PricePerKg,
		Currency:     currency,
		QuantityKg:   req.QuantityKg,
		MinOrderKg:   req.MinOrderKg,
		Description:  req.Description,
		Status:       entity.OfferingStatusDraft,
	}

	if err := s.offeringRepo.Create(ctx, offering); err != nil {
		return nil, err
	}

	sse.PublishOfferingUpdate(offering.ID, "created")
	return offering, nil
}

// UpdateOfferingRequest listing update payload
type UpdateOfferingRequest struct {
	Name         *string  `json:"name"`
	Origin       *string  `json:"origin"`
	Variety      *string  `json:"variety"`
	Process      *string  `json:"process"`
	RoastLevel   *string  `json:"roast_level"`
	CuppingScore *float64 `json:"cupping_score"`
	PricePerKg   *float64 `json:"price_per_kg"`
	QuantityKg   *float64 `json:"quantity_kg"`
	MinOrderKg   *float64 `json:"min_order_kg"`
	Description  *string  `json:"description"`
	Status       *string  `json:"status"`
}

// UpdateOffering patches a listing; only its supplier or an admin may call.
func (s *OfferingService) UpdateOffering(ctx context.Context, id string, req *UpdateOfferingRequest) (*entity.CoffeeOffering, error) {
	offering, err := s.offeringRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		offering.Name = *req.Name
	}
	if req.Origin != nil {
		offering.Origin = *req.Origin
	}
	if req.Variety != nil {
		offering.Variety = *req.Variety
	}
	if req.Process != nil {
		offering.Process = *req.Process
	}
	if req.RoastLevel != nil {
		offering.RoastLevel = *req.RoastLevel
	}
	if req.CuppingScore != nil {
		offering.CuppingScore = req.CuppingScore
	}
	if req.PricePerKg != nil {
		if *req.PricePerKg <= 0 {
			return nil, fmt.Errorf("price_per_kg must be positive")
		}
		offering.PricePerKg = *req.PricePerKg
	}
	if req.QuantityKg != nil {
		if *req.QuantityKg < 0 {
			return nil, fmt.Errorf("quantity_kg must not be negative")
		}
		offering.QuantityKg = *req.QuantityKg
	}
	if req.MinOrderKg != nil {
		offering.MinOrderKg = *req.MinOrderKg
	}
	if req.Description != nil {
		offering.Description = *req.Description
	}
	if req.Status != nil {
		switch *req.Status {
		case entity.OfferingStatusDraft, entity.OfferingStatusListed,
			entity.OfferingStatusPaused, entity.OfferingStatusSoldOut:
			offering.Status = *req.Status
		default:
			return nil, fmt.Errorf("unknown offering status: %s", *req.Status)
		}
	}

	if err := s.offeringRepo.Update(ctx, offering); err != nil {
		return nil, err
	}

	sse.PublishOfferingUpdate(offering.ID, "updated")
	return offering, nil
}

// DeleteOffering removes a listing.
func (s *OfferingService) DeleteOffering(ctx context.Context, id string) error {
	if _, err := s.offeringRepo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.offeringRepo.Delete(ctx, id); err != nil {
		return err
	}
	sse.PublishOfferingUpdate(id, "deleted")
	return nil
}

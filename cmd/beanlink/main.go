package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/beanlink/beanlink/internal/config"
	"github.com/beanlink/beanlink/internal/market/entity"
	"github.com/beanlink/beanlink/internal/market/handler"
	"github.com/beanlink/beanlink/internal/market/repository"
	"github.com/beanlink/beanlink/internal/market/service"
	"github.com/beanlink/beanlink/internal/middleware"
	"github.com/beanlink/beanlink/internal/reports"
	"github.com/beanlink/beanlink/internal/shared/advisor"
	"github.com/beanlink/beanlink/internal/shared/mailer"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting beanlink service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := migrate(db); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	if err := seedAdmin(db, zapLogger); err != nil {
		zapLogger.Warn("Admin seed skipped", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)

	repos := repository.NewRepositories(db)

	authSvc := service.NewAuthService(repos.User, rdb, cfg)
	offeringSvc := service.NewOfferingService(repos.Offering)
	orderSvc := service.NewOrderService(repos.Order, repos.Offering, repos.Commission, repos.ActivityLog)
	contractSvc := service.NewContractService(repos.Contract, repos.Commission, repos.ActivityLog)
	loyaltySvc := service.NewLoyaltyService(repos.Loyalty)
	certSvc := service.NewCertificationService(repos.Cert)
	inventorySvc := service.NewInventoryService(repos.Inventory)
	commissionSvc := service.NewCommissionService(repos.Commission)
	prefSvc := service.NewPreferenceService(repos.Preference)
	dashboardSvc := service.NewDashboardService(db)
	advisorClient := advisor.NewClient(cfg.Advisor.BaseURL, cfg.Advisor.APIKey, cfg.Advisor.Model, cfg.Advisor.Timeout)
	advisorSvc := service.NewAdvisorService(advisorClient, rdb)

	handlers := handler.NewHandlers(
		authSvc,
		offeringSvc,
		orderSvc,
		contractSvc,
		loyaltySvc,
		certSvc,
		inventorySvc,
		commissionSvc,
		prefSvc,
		dashboardSvc,
		advisorSvc,
	)

	from := cfg.Mailer.FromAddress
	if cfg.Mailer.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.Mailer.FromName, cfg.Mailer.FromAddress)
	}
	mailClient := mailer.NewClient(cfg.Mailer.BaseURL, cfg.Mailer.APIKey, from)

	composer := reports.NewComposer(
		repos.Preference,
		repos.SentReport,
		repos.User,
		repos.Commission,
		repos.Inventory,
		mailClient,
		zapLogger,
		cfg.Reports.CommissionDays,
	)
	reportHandler := reports.NewHandler(composer, repos.SentReport)

	var sweeper *reports.Sweeper
	if cfg.Reports.SweepEnabled {
		sweeper = reports.NewSweeper(composer, zapLogger)
		sweeper.Start()
		zapLogger.Info("Report sweeper started")
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, reportHandler, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // Disable for SSE long-lived connections
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	if sweeper != nil {
		sweeper.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entity.User{},
		&entity.UserRole{},
		&entity.CoffeeOffering{},
		&entity.Order{},
		&entity.DirectSupplyContract{},
		&entity.LoyaltyCard{},
		&entity.Certification{},
		&entity.InventoryItem{},
		&entity.Commission{},
		&entity.NotificationPreference{},
		&entity.SentReport{},
		&entity.ActivityLog{},
	); err != nil {
		return err
	}

	// Status vocabularies enforced at the database too, so rows written
	// outside the API cannot drift.
	db.Exec("ALTER TABLE orders DROP CONSTRAINT IF EXISTS chk_orders_status")
	db.Exec("ALTER TABLE orders ADD CONSTRAINT chk_orders_status CHECK (status IN ('pending','confirmed','paid','shipped','delivered','cancelled'))")
	db.Exec("ALTER TABLE orders DROP CONSTRAINT IF EXISTS chk_orders_payment_status")
	db.Exec("ALTER TABLE orders ADD CONSTRAINT chk_orders_payment_status CHECK (payment_status IN ('unpaid','paid','released'))")
	db.Exec("ALTER TABLE direct_supply_contracts DROP CONSTRAINT IF EXISTS chk_contracts_status")
	db.Exec("ALTER TABLE direct_supply_contracts ADD CONSTRAINT chk_contracts_status CHECK (status IN ('pending_commission','commission_paid','awaiting_seller_sign','awaiting_buyer_sign','awaiting_platform_sign','fully_signed','awaiting_seller_payment','completed','cancelled','disputed'))")
	db.Exec("ALTER TABLE sent_reports DROP CONSTRAINT IF EXISTS chk_sent_reports_status")
	db.Exec("ALTER TABLE sent_reports ADD CONSTRAINT chk_sent_reports_status CHECK (status IN ('sent','failed'))")

	db.Exec("CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_sent_reports_sent_at ON sent_reports(sent_at)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_activity_logs_entity ON activity_logs(entity_type, entity_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_commissions_booked ON commissions(created_at, supplier_id)")

	return nil
}

// seedAdmin bootstraps one admin account from ADMIN_EMAIL/ADMIN_PASSWORD.
// Both vars unset means no seeding; an existing account is left alone.
func seedAdmin(db *gorm.DB, zapLogger *zap.Logger) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	var count int64
	if err := db.Model(&entity.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &entity.User{
		ID:           strings.ReplaceAll(uuid.New().String(), "-", "")[:32],
		Email:        email,
		PasswordHash: string(hash),
		Name:         "Administrator",
		Status:       "active",
		Language:     "en",
		Roles: []entity.UserRole{
			{
				ID:     strings.ReplaceAll(uuid.New().String(), "-", "")[:32],
				Role:   entity.RoleAdmin,
				Status: entity.RoleStatusApproved,
			},
		},
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}

	zapLogger.Info("Seeded admin account", zap.String("email", email))
	return nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, reportH *reports.Handler, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// SSE stream, token also accepted as query param
		sseGroup := v1.Group("/sse")
		sseGroup.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			sseGroup.GET("/events", h.SSE.Stream)
		}

		// scheduled reports: cron secret or admin bearer
		reportGroup := v1.Group("/reports")
		reportGroup.Use(middleware.CronOrRole(cfg.Reports.CronSecret, "admin", cfg.JWT.Secret))
		{
			reportGroup.POST("/commission", reportH.RunCommission)
			reportGroup.POST("/weekly-inventory", reportH.RunWeeklyInventory)
			reportGroup.POST("/smart-check", reportH.RunSmartCheck)
			reportGroup.GET("/history", reportH.History)
			reportGroup.GET("/statistics", reportH.Statistics)
			reportGroup.POST("/:id/resend", reportH.Resend)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/me", h.Auth.UpdateMe)
			authorized.POST("/auth/roles", h.Auth.RequestRole)

			offerings := authorized.Group("/offerings")
			{
				offerings.GET("", h.Offering.ListOfferings)
				offerings.GET("/:id", h.Offering.GetOffering)
				offerings.POST("", middleware.RequireAnyRole("supplier", "admin"), h.Offering.CreateOffering)
				offerings.PUT("/:id", h.Offering.UpdateOffering)
				offerings.DELETE("/:id", h.Offering.DeleteOffering)
			}

			orders := authorized.Group("/orders")
			{
				orders.GET("", h.Order.ListOrders)
				orders.GET("/:id", h.Order.GetOrder)
				orders.GET("/:id/activity", h.Order.OrderActivity)
				orders.POST("", middleware.RequireAnyRole("cafe", "roaster", "admin"), h.Order.CreateOrder)
				orders.PUT("/:id/status", h.Order.UpdateStatus)
				orders.POST("/:id/pay", h.Order.PayOrder)
			}

			contracts := authorized.Group("/contracts")
			{
				contracts.GET("", h.Contract.ListContracts)
				contracts.GET("/:id", h.Contract.GetContract)
				contracts.GET("/:id/activity", h.Contract.ContractActivity)
				contracts.POST("", h.Contract.CreateContract)
				contracts.POST("/:id/pay-commission", h.Contract.PayCommission)
				contracts.POST("/:id/sign", h.Contract.SignContract)
				contracts.POST("/:id/start-payment", h.Contract.StartSellerPayment)
				contracts.POST("/:id/complete", h.Contract.CompleteContract)
				contracts.POST("/:id/dispute", h.Contract.DisputeContract)
				contracts.POST("/:id/cancel", h.Contract.CancelContract)
			}

			loyalty := authorized.Group("/loyalty-cards")
			loyalty.Use(middleware.RequireAnyRole("cafe", "admin"))
			{
				loyalty.GET("", h.Loyalty.ListCards)
				loyalty.GET("/:id", h.Loyalty.GetCard)
				loyalty.POST("", h.Loyalty.CreateCard)
				loyalty.POST("/:id/stamp", h.Loyalty.Stamp)
				loyalty.POST("/:id/redeem", h.Loyalty.Redeem)
			}

			certs := authorized.Group("/certifications")
			{
				certs.GET("", h.Certification.ListCertifications)
				certs.GET("/:id", h.Certification.GetCertification)
				certs.POST("", h.Certification.SubmitCertification)
			}

			inventory := authorized.Group("/inventory")
			{
				inventory.GET("", h.Inventory.ListItems)
				inventory.GET("/low-stock", h.Inventory.LowStock)
				inventory.GET("/:id", h.Inventory.GetItem)
				inventory.POST("", h.Inventory.CreateItem)
				inventory.PUT("/:id", h.Inventory.UpdateItem)
				inventory.DELETE("/:id", h.Inventory.DeleteItem)
				inventory.POST("/:id/adjust", h.Inventory.AdjustItem)
			}

			commissions := authorized.Group("/commissions")
			{
				commissions.GET("", h.Commission.ListCommissions)
				commissions.GET("/summary", middleware.RequireRole("admin"), h.Commission.Summary)
				commissions.GET("/:id", h.Commission.GetCommission)
			}

			prefs := authorized.Group("/preferences")
			{
				prefs.GET("", h.Preference.GetPreferences)
				prefs.PUT("", h.Preference.UpsertPreference)
			}

			dashboard := authorized.Group("/dashboard")
			{
				dashboard.GET("/supplier", middleware.RequireAnyRole("supplier", "admin"), h.Dashboard.SupplierDashboard)
				dashboard.GET("/buyer", h.Dashboard.BuyerDashboard)
				dashboard.GET("/admin", middleware.RequireRole("admin"), h.Dashboard.AdminDashboard)
			}

			authorized.POST("/advisor", h.Advisor.Advise)

			admin := authorized.Group("/admin")
			admin.Use(middleware.RequireRole("admin"))
			{
				admin.GET("/users", h.Auth.ListUsers)
				admin.GET("/roles/pending", h.Auth.ListPendingRoles)
				admin.POST("/roles/review", h.Auth.ReviewRole)
				admin.POST("/certifications/:id/review", h.Certification.ReviewCertification)
				admin.POST("/certifications/expire-overdue", h.Certification.ExpireOverdue)
			}
		}
	}
}

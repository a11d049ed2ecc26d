package main

import (
	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/notification"
	"app/internal/payment"
	"app/internal/server"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

func main() {
	//ローカル開発用。.envが無くても環境変数があれば動く
	_ = godotenv.Load()

	logger := log.New("api")
	logger.SetLevel(log.INFO)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	gormDB, err := db.Connect()
	if err != nil {
		logger.Fatalf("db connect: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Category{},
		&model.Product{},
		&model.ProductVariant{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Coupon{},
		&model.LoyaltyConfig{},
		&model.Address{},
		&model.Review{},
		&model.WishlistItem{},
		&model.Warranty{},
		&model.AuditLog{},
		&model.InventoryAdjustment{},
	); err != nil {
		logger.Fatalf("migrate: %v", err)
	}

	//Repository（GORM実装）生成
	txManager := infraRepo.NewTxManagerGorm(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	variantRepo := infraRepo.NewVariantGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	couponRepo := infraRepo.NewCouponGormRepository(gormDB)
	loyaltyRepo := infraRepo.NewLoyaltyConfigGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	reviewRepo := infraRepo.NewReviewGormRepository(gormDB)
	wishlistRepo := infraRepo.NewWishlistGormRepository(gormDB)
	warrantyRepo := infraRepo.NewWarrantyGormRepository(gormDB)

	//決済プロバイダ。鍵が無いものはnilのまま（usecase側で503を返す）
	var intent payment.IntentProvider
	if cfg.StripeSecretKey != "" {
		intent = payment.NewStripeClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	}
	var link payment.LinkProvider
	if cfg.PayOSClientID != "" {
		link = payment.NewPayOSClient(cfg.PayOSClientID, cfg.PayOSAPIKey, cfg.PayOSChecksumKey, cfg.PayOSReturnURL, cfg.PayOSCancelURL)
	}

	sender := notification.NewLogSender(logger)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo, rtRepo, auditRepo, validator.NewAuthValidator(userRepo))
	productUC := usecase.NewProductUsecase(productRepo, categoryRepo, variantRepo, inventoryRepo, auditRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, productRepo, variantRepo)
	couponUC := usecase.NewCouponUsecase(couponRepo)
	loyaltyUC := usecase.NewLoyaltyUsecase(loyaltyRepo, userRepo)
	orderUC := usecase.NewOrderUsecase(txManager, addressRepo, loyaltyRepo, sender)
	paymentUC := usecase.NewPaymentUsecase(txManager, orderRepo, auditRepo, loyaltyRepo, intent, link, cfg.Currency)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, auditRepo, sender)
	statsUC := usecase.NewAdminStatsUsecase(orderRepo)
	addressUC := usecase.NewAddressUsecase(addressRepo)
	reviewUC := usecase.NewReviewUsecase(reviewRepo, productRepo)
	wishlistUC := usecase.NewWishlistUsecase(wishlistRepo, productRepo)
	warrantyUC := usecase.NewWarrantyUsecase(warrantyRepo)

	//Server起動
	e := server.New(cfg, userRepo,
		handler.NewAuthHandler(authUC, cfg),
		handler.NewProductHandler(productUC),
		handler.NewCartHandler(cartUC),
		handler.NewOrderHandler(orderUC, paymentUC),
		handler.NewCouponHandler(couponUC),
		handler.NewPaymentHandler(paymentUC),
		handler.NewLoyaltyHandler(loyaltyUC),
		handler.NewAddressHandler(addressUC),
		handler.NewReviewHandler(reviewUC),
		handler.NewWishlistHandler(wishlistUC),
		handler.NewWarrantyHandler(warrantyUC),
		handler.NewAdminProductHandler(productUC),
		handler.NewAdminOrderHandler(adminOrderUC, paymentUC, statsUC),
		handler.NewAdminUserHandler(authUC),
		handler.NewAdminCouponHandler(couponUC),
		handler.NewAdminLoyaltyHandler(loyaltyUC),
	)

	if err := server.Start(e, cfg); err != nil {
		logger.Fatalf("server: %v", err)
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cmticaret/config"
	"cmticaret/controllers"
	"cmticaret/database"
	"cmticaret/mailer"
	"cmticaret/middleware"
	"cmticaret/payment"
	"cmticaret/pkg/logger"
	"cmticaret/repository"
	"cmticaret/routes"
	"cmticaret/services"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	logger.Initialize(cfg.Env)
	defer zap.L().Sync()

	db, err := database.Connect(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		zap.L().Fatal("mongo connection failed", zap.Error(err))
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		zap.L().Fatal("index creation failed", zap.Error(err))
	}
	cancel()

	rdb, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		zap.L().Fatal("redis connection failed", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	productRepo := repository.NewMongoProductRepository(db)
	categoryRepo := repository.NewMongoCategoryRepository(db)
	orderRepo := repository.NewMongoOrderRepository(db)
	paymentRepo := repository.NewMongoPaymentRepository(db)
	userRepo := repository.NewMongoUserRepository(db)
	couponRepo := repository.NewMongoCouponRepository(db)
	reviewRepo := repository.NewMongoReviewRepository(db)
	newsletterRepo := repository.NewMongoNewsletterRepository(db)
	cartRepo := repository.NewRedisCartRepository(rdb, cfg.CartTTL)
	idemStore := repository.NewRedisIdempotencyStore(cartRepo)
	draftStore := repository.NewRedisDraftStore(rdb)

	// Mail
	var sender mailer.Sender
	if smtpSender, err := mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SenderName); err != nil {
		zap.L().Warn("mail transport disabled", zap.Error(err))
		sender = mailer.DisabledSender{}
	} else {
		sender = smtpSender
	}
	notifier, err := mailer.NewNotifier(sender, cfg.AdminAlertEmail, cfg.SiteURL, zap.L())
	if err != nil {
		zap.L().Fatal("mail templates failed to load", zap.Error(err))
	}

	provider := payment.FromConfig(cfg)
	zap.L().Info("payment provider selected", zap.String("provider", provider.Name()))

	// Services
	tokens := services.NewTokenService(cfg.JWTSecret, 24*time.Hour)
	authService := services.NewAuthService(userRepo, tokens, notifier, zap.L())
	catalogService := services.NewCatalogService(productRepo, categoryRepo)
	cartService := services.NewCartService(cartRepo, zap.L())
	couponService := services.NewCouponService(couponRepo)
	orderService := services.NewOrderService(orderRepo, userRepo, notifier, zap.L())
	checkoutService := services.NewCheckoutService(
		cartRepo, productRepo, orderRepo, paymentRepo, userRepo,
		provider, draftStore, idemStore, notifier,
		services.CheckoutConfig{
			ShippingFee:           cfg.ShippingFee,
			FreeShippingThreshold: cfg.FreeShippingThreshold,
			Currency:              cfg.Currency,
			SiteURL:               cfg.SiteURL,
			IdempotencyTTL:        cfg.IdempotencyTTL,
		},
		zap.L(),
	)
	mediaService := services.NewMediaService(newS3Client(cfg), cfg.S3Bucket, cfg.S3Prefix, s3PublicURL(cfg))

	if err := authService.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
		zap.L().Warn("admin seed failed", zap.Error(err))
	}

	// HTTP
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.SiteURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.Register(r, tokens, routes.Controllers{
		Users:      controllers.NewUserController(authService),
		Products:   controllers.NewProductController(catalogService, mediaService),
		Categories: controllers.NewCategoryController(catalogService),
		Cart:       controllers.NewCartController(cartService, catalogService),
		Orders:     controllers.NewOrderController(checkoutService, orderService),
		Coupons:    controllers.NewCouponController(couponService),
		Extras:     controllers.NewExtrasController(newsletterRepo, reviewRepo, authService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.L().Info("server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("shutdown failed", zap.Error(err))
	}
}

func newS3Client(cfg *config.Config) *s3.Client {
	opts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.S3Region),
	}
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if accessKey != "" || secret != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secret, ""),
		))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		zap.L().Fatal("aws config failed", zap.Error(err))
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
}

func s3PublicURL(cfg *config.Config) string {
	if cfg.S3PublicURL != "" {
		return cfg.S3PublicURL
	}
	if cfg.S3Endpoint != "" {
		return fmt.Sprintf("%s/%s", cfg.S3Endpoint, cfg.S3Bucket)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
}

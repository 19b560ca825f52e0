package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"catalog/config"
	"catalog/controllers"
	"catalog/jobs"
	"catalog/middleware"
	"catalog/queue"
	"catalog/repositories"
	"catalog/routes"
	"catalog/services"
	"catalog/services/logger"
	"catalog/services/notification"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/robfig/cron/v3"
)

func main() {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	appLogger := logger.NewDefaultLogger(logger.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect db: %v", err)
	}

	rdb, err := config.ConnectRedis(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	cache := services.NewCache(rdb, appLogger)

	es, err := config.ConnectElastic(cfg)
	if err != nil {
		log.Fatalf("Failed to connect elasticsearch: %v", err)
	}
	search := services.NewSearchIndex(es, cfg.ElasticIndex, appLogger)

	cld, err := config.ConnectCloudinary(cfg)
	if err != nil {
		log.Fatalf("Failed to init cloudinary: %v", err)
	}
	var uploader services.ImageUploader
	if cld != nil {
		uploader = services.NewCloudinaryUploader(cld, cfg.CloudinaryFolder)
	}

	// Repositories
	categoryRepo := repositories.NewCategoryRepository(db)
	productRepo := repositories.NewProductRepository(db)
	discountRepo := repositories.NewDiscountRepository(db)
	usageRepo := repositories.NewDiscountUsageRepository(db)
	feedbackRepo := repositories.NewFeedbackRepository(db)
	logRepo := repositories.NewProductLogRepository(db)
	variantRepo := repositories.NewVariantRepository(db)
	analyticRepo := repositories.NewAnalyticRepository(db)

	// Broker: RabbitMQ cho RPC, Kafka cho sự kiện
	var (
		amqpConn  *amqp.Connection
		rpcClient *queue.RPCClient
		notifier  notification.Service = notification.NopService{}
		events    notification.Publisher
		users     services.UserLookup
		producers []*queue.Producer
	)
	if cfg.RabbitMQURL != "" {
		amqpConn, err = amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			log.Fatalf("Failed to connect rabbitmq: %v", err)
		}
		defer amqpConn.Close()
		rpcClient = queue.NewRPCClient(amqpConn, cfg.RPCTimeout, appLogger)
		users = rpcClient
	} else {
		appLogger.Info("RABBITMQ_URL not set, RPC disabled")
	}
	if len(cfg.KafkaBrokers) > 0 {
		productProducer := queue.NewProducer(cfg.KafkaBrokers, cfg.ProductTopic)
		events = productProducer
		producers = append(producers, productProducer)
		if rpcClient != nil {
			notifProducer := queue.NewProducer(cfg.KafkaBrokers, cfg.NotificationTopic)
			notifier = notification.NewBrokerService(rpcClient, notifProducer)
			producers = append(producers, notifProducer)
		}
	} else {
		appLogger.Info("KAFKA_BROKERS not set, events disabled")
	}

	// Services
	categoryService := services.NewCategoryService(services.CategoryServiceOptions{
		Store:  categoryRepo,
		Cache:  cache,
		Logger: appLogger,
	})
	productService := services.NewProductService(services.ProductServiceOptions{
		Products:   productRepo,
		Discounts:  discountRepo,
		Usages:     usageRepo,
		Feedbacks:  feedbackRepo,
		Logs:       logRepo,
		Categories: categoryService,
		Cache:      cache,
		Search:     search,
		Events:     events,
		Notifier:   notifier,
		Logger:     appLogger,
	})
	discountService := services.NewDiscountService(services.DiscountServiceOptions{
		Discounts: discountRepo,
		Products:  productRepo,
		Logs:      logRepo,
		Cache:     cache,
		Notifier:  notifier,
		Logger:    appLogger,
	})
	usageService := services.NewDiscountUsageService(services.DiscountUsageServiceOptions{
		Usages:    usageRepo,
		Discounts: discountRepo,
		Logger:    appLogger,
	})
	variantService := services.NewVariantService(services.VariantServiceOptions{
		Store:  variantRepo,
		Logger: appLogger,
	})
	feedbackService := services.NewFeedbackService(services.FeedbackServiceOptions{
		Feedbacks: feedbackRepo,
		Products:  productRepo,
		Users:     users,
		Notifier:  notifier,
		Logger:    appLogger,
	})
	uploadService := services.NewUploadService(uploader, appLogger)

	// RPC server phục vụ các service khác
	var rpcServer *queue.RPCServer
	if amqpConn != nil {
		rpcServer = queue.NewRPCServer(amqpConn, queue.NewHandlers(productService, variantService), appLogger)
		if err := rpcServer.Start(ctx); err != nil {
			log.Fatalf("Failed to start rpc server: %v", err)
		}
	}

	var consumer *queue.ProductCreatedConsumer
	if len(cfg.KafkaBrokers) > 0 {
		consumer = queue.NewProductCreatedConsumer(cfg.KafkaBrokers, cfg.ProductTopic, cfg.KafkaGroupID, analyticRepo, appLogger)
		go consumer.Run(ctx)
	}

	c := cron.New()
	specs := jobs.Specs{
		StatusRefresh: cfg.StatusRefreshSpec,
		Reindex:       cfg.ReindexSpec,
		SearchEnabled: search.Enabled(),
	}
	if err := jobs.InitCronJobs(c, specs, discountService, productService, appLogger); err != nil {
		log.Fatalf("Failed to initialize cron jobs: %v", err)
	}

	router := config.InitRouter(cfg)
	router.Use(middleware.RequestID(), middleware.RequestLogger(appLogger), middleware.Recovery(appLogger))
	routes.SetupRoutes(router, routes.Controllers{
		Category: controllers.NewCategoryController(categoryService),
		Discount: controllers.NewDiscountController(discountService, usageService),
		Product:  controllers.NewProductController(productService),
		Variant:  controllers.NewVariantController(variantService),
		Feedback: controllers.NewFeedbackController(feedbackService),
		Upload:   controllers.NewUploadController(uploadService),
	}, services.NewTokenParser(cfg.JWTSecret))

	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Println("Server starting on port " + cfg.Port + "...")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("http shutdown: %v", err)
	}
	<-c.Stop().Done()
	if rpcServer != nil {
		rpcServer.Wait()
	}
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			appLogger.Error("close consumer: %v", err)
		}
	}
	for _, p := range producers {
		if err := p.Close(); err != nil {
			appLogger.Error("close producer: %v", err)
		}
	}
}

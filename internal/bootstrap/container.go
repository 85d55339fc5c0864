package bootstrap

import (
	"log"

	"ai-annotation-be/internal/config"
	"ai-annotation-be/internal/controller"
	"ai-annotation-be/internal/pkg/logger"
	"ai-annotation-be/internal/pkg/mailer"
	"ai-annotation-be/internal/repository/memory"
	"ai-annotation-be/internal/repository/unitofwork"
	"ai-annotation-be/internal/service"
	pktNats "ai-annotation-be/pkg/nats"
	"ai-annotation-be/pkg/provider/factory"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SupplementController controller.ISupplementController
	FeatureController    controller.IFeatureController

	// Background services (exposed for main.go to run)
	ConsumerService     service.IConsumerService
	NotificationService *service.NotificationService
	PollerService       service.IPollerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderEmail,
	)

	// 2. Job queue
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	// 3. Event bus
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// 4. Redis (usage metering)
	redisOpts, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Invalid REDIS_URL, falling back to localhost: %v", err)
		redisOpts = &redis.Options{Addr: "localhost:6379"}
	}
	redisClient := redis.NewClient(redisOpts)

	// 5. Annotation provider
	annotationProvider, err := factory.NewAnnotationProvider(
		cfg.Provider.Type,
		cfg.Provider.BaseURL,
		cfg.Provider.APIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize annotation provider: %v", err)
	}
	log.Printf("[INFO] Using annotation provider: %s", cfg.Provider.Type)

	// 6. Sessions
	sessionRepo := memory.NewReviewSessionRepository()

	// 7. Services
	supplementService := service.NewSupplementService(uowFactory)
	reconcileService := service.NewReconcileService(uowFactory, sysLogger)
	usageService := service.NewUsageService(redisClient, cfg.Usage.MonthlyGenerationLimit, sysLogger)
	pollerService := service.NewPollerService(supplementService, sysLogger)
	publisherService := service.NewPublisherService(pubSub, cfg.App.GenerationTopic)

	workflowService := service.NewWorkflowService(
		supplementService,
		reconcileService,
		usageService,
		pollerService,
		publisherService,
		sessionRepo,
		natsPub,
		sysLogger,
	)
	queryService := service.NewQueryService(supplementService)
	featureService := service.NewFeatureService(uowFactory)

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.GenerationTopic,
		uowFactory,
		annotationProvider,
		natsPub,
		supplementService,
		sysLogger,
	)

	var notificationService *service.NotificationService
	if natsSub != nil {
		// Notifications get an isolated logger so mail noise stays out of the
		// request log.
		notifLogger := logger.NewIsolatedLogger("notifications.log")
		notificationService = service.NewNotificationService(natsSub, emailService, cfg.SMTP.DefaultRecipient, notifLogger)
	}

	// 8. Controllers
	supplementController := controller.NewSupplementController(queryService, workflowService)
	featureController := controller.NewFeatureController(featureService)

	return &Container{
		SupplementController: supplementController,
		FeatureController:    featureController,
		ConsumerService:      consumerService,
		NotificationService:  notificationService,
		PollerService:        pollerService,
		Logger:               sysLogger,
	}
}

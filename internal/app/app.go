package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fedpay/server/internal/module/gateway"
	"github.com/fedpay/server/internal/module/membership"
	"github.com/fedpay/server/internal/module/notification"
	"github.com/fedpay/server/internal/module/payment"
	"github.com/fedpay/server/internal/module/protocol"
	"github.com/fedpay/server/internal/module/registration"
	"github.com/fedpay/server/internal/module/transaction"
	sharedcache "github.com/fedpay/server/internal/shared/cache"
	"github.com/fedpay/server/internal/shared/config"
	"github.com/fedpay/server/internal/shared/database"
	"github.com/fedpay/server/internal/shared/events"
	"github.com/fedpay/server/internal/shared/logger"
	"github.com/fedpay/server/internal/shared/metrics"
	"github.com/fedpay/server/internal/shared/middleware"
)

// App wires the payment server together: database, cache, event bus,
// module services and the HTTP router.
type App struct {
	config    *config.Config
	db        *gorm.DB
	redis     redis.UniversalClient
	router    *gin.Engine
	logger    *logger.Logger
	zapLogger *zap.Logger
	registry  *prometheus.Registry
	metrics   *metrics.Metrics

	// Event infrastructure
	eventBus *events.Bus

	// Handlers
	gatewayHandler      *gateway.Handler
	protocolHandler     *protocol.Handler
	transactionHandler  *transaction.Handler
	paymentHandler      *payment.Handler
	webhookHandler      *payment.WebhookHandler
	registrationHandler *registration.Handler
	membershipHandler   *membership.Handler

	// Services kept for cross-module wiring
	gatewayService      *gateway.Service
	protocolService     *protocol.Service
	transactionService  *transaction.Service
	paymentService      *payment.Service
	registrationService *registration.Service
	membershipService   *membership.Service
	notificationService *notification.Service

	// Background notification delivery
	worker       *notification.Worker
	workerCancel context.CancelFunc
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	zapLog, err := logger.NewZapLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("init zap logger: %w", err)
	}

	app := &App{
		config:    cfg,
		logger:    log,
		zapLogger: zapLog,
	}

	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(app.registry)

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	app.db = db

	if err := app.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	// Redis is optional; without it gateway and installment lookups
	// simply hit the database and providers every time.
	if cfg.Redis.Address != "" {
		redisClient, err := sharedcache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn("redis connection failed, running without cache", "error", err)
		} else {
			app.redis = redisClient
		}
	}

	app.router = app.setupRouter()

	if err := app.initModules(); err != nil {
		return nil, fmt.Errorf("init modules: %w", err)
	}

	app.registerEventHandlers()
	app.registerRoutes()
	app.startWorker()

	return app, nil
}

// migrate creates or updates the database schema.
func (a *App) migrate() error {
	return a.db.AutoMigrate(
		&gateway.GatewayConfig{},
		&protocol.Protocol{},
		&protocol.Sequence{},
		&transaction.Transaction{},
		&transaction.TransactionEvent{},
		&payment.Payment{},
		&payment.WebhookEvent{},
		&registration.Registration{},
		&membership.Membership{},
		&notification.Notification{},
		&notification.Attempt{},
	)
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter() *gin.Engine {
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.Metrics(a.metrics))
	r.Use(middleware.CORS(a.config.Server.CORSAllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	return r
}

// initModules builds repositories, services and handlers for every
// module, bottom-up so cross-module dependencies are ready when needed.
func (a *App) initModules() error {
	a.eventBus = events.NewBus(a.zapLogger)

	// Gateway configurations and provider clients
	a.gatewayService = gateway.NewService(
		gateway.NewRepository(a.db),
		a.redis,
		a.config.Payments.GatewayCacheTTL,
		a.zapLogger,
	)
	if a.config.Payments.Sandbox {
		a.gatewayService.ForceSandbox()
	}
	a.gatewayHandler = gateway.NewHandler(a.gatewayService)

	// Protocol numbering
	a.protocolService = protocol.NewService(protocol.NewRepository(a.db), a.zapLogger)
	a.protocolHandler = protocol.NewHandler(a.protocolService)

	// Transaction ledger
	a.transactionService = transaction.NewService(transaction.NewRepository(a.db), a.zapLogger)
	a.transactionHandler = transaction.NewHandler(a.transactionService)

	// Payments, on top of the three above
	a.paymentService = payment.NewService(
		payment.NewRepository(a.db),
		a.gatewayService,
		a.protocolService,
		a.transactionService,
		a.eventBus,
		a.redis,
		a.metrics,
		&a.config.Payments,
		a.zapLogger,
	)
	a.paymentHandler = payment.NewHandler(a.paymentService)
	a.webhookHandler = payment.NewWebhookHandler(a.paymentService, a.metrics, a.zapLogger)

	// Payable entities
	a.registrationService = registration.NewService(registration.NewRepository(a.db), a.zapLogger)
	a.registrationHandler = registration.NewHandler(a.registrationService)

	a.membershipService = membership.NewService(membership.NewRepository(a.db), a.zapLogger)
	a.membershipHandler = membership.NewHandler(a.membershipService)

	// Notification queue
	a.notificationService = notification.NewService(notification.NewRepository(a.db), a.zapLogger)

	return nil
}

// registerEventHandlers subscribes the modules that react to payment
// outcomes.
func (a *App) registerEventHandlers() {
	a.eventBus.Register(registration.NewPaymentEventHandler(a.registrationService, a.zapLogger))
	a.eventBus.Register(membership.NewPaymentEventHandler(a.membershipService, a.zapLogger))
	a.eventBus.Register(notification.NewPaymentEventHandler(a.notificationService, a.zapLogger))
}

// registerRoutes registers routes for all modules.
func (a *App) registerRoutes() {
	api := a.router.Group("/api")

	// Public routes; webhooks authenticate by signature, not session.
	a.paymentHandler.RegisterRoutes(api)
	a.webhookHandler.RegisterRoutes(api)
	a.registrationHandler.RegisterRoutes(api)
	a.membershipHandler.RegisterRoutes(api)
	a.protocolHandler.RegisterRoutes(api)

	// Admin routes
	admin := api.Group("/admin")
	admin.Use(middleware.AdminAuth(a.config.Auth.JWTSecret))
	a.gatewayHandler.RegisterRoutes(admin)
	a.transactionHandler.RegisterRoutes(admin)
}

// startWorker launches the notification delivery loop.
func (a *App) startWorker() {
	senders := []notification.Sender{
		notification.NewEmailSender(&a.config.Notifications, a.zapLogger),
	}
	if a.config.Notifications.WhatsAppGatewayURL != "" {
		senders = append(senders, notification.NewWhatsAppSender(&a.config.Notifications, a.zapLogger))
	}

	a.worker = notification.NewWorker(
		notification.NewRepository(a.db),
		senders,
		a.config.Notifications.PollInterval,
		a.config.Notifications.MaxAttempts,
		a.metrics,
		a.zapLogger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	a.workerCancel = cancel
	go a.worker.Run(ctx)
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop stops the application and releases resources.
func (a *App) Stop() {
	if a.workerCancel != nil {
		a.workerCancel()
	}

	if a.zapLogger != nil {
		_ = a.zapLogger.Sync()
	}

	if a.redis != nil {
		_ = a.redis.Close()
	}

	if a.db != nil {
		_ = database.Close(a.db)
	}
}

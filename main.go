package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/application"
	appauth "github.com/Zhima-Mochi/minishop-marketplace/app/internal/application/auth"
	appdelivery "github.com/Zhima-Mochi/minishop-marketplace/app/internal/application/delivery"
	applisting "github.com/Zhima-Mochi/minishop-marketplace/app/internal/application/listing"
	apporder "github.com/Zhima-Mochi/minishop-marketplace/app/internal/application/order"
	appuser "github.com/Zhima-Mochi/minishop-marketplace/app/internal/application/user"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/config"
	domdelivery "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/delivery"
	domorder "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/payment"
	domproduct "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/product"
	domuser "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/infrastructure/id"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/infrastructure/mongostore"
	infraobs "github.com/Zhima-Mochi/minishop-marketplace/app/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/infrastructure/security"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/infrastructure/stripe"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/observability"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/pkg/logging"
	httppresentation "github.com/Zhima-Mochi/minishop-marketplace/app/internal/presentation/http"
	workerpresentation "github.com/Zhima-Mochi/minishop-marketplace/app/internal/presentation/worker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	baseLogger := logging.MustNewLogger(logging.Options{
		Service: cfg.ServiceName,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
	})
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	systemLogger := logging.WithTrace(baseLogger, logging.SystemTraceID, logging.SystemSpanID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, baseLogger, systemLogger); err != nil {
		systemLogger.Error("service_failed", zap.Error(err))
		_ = baseLogger.Sync()
		os.Exit(1)
	}
}

// repositories is the store selected by configuration.
type repositories struct {
	users      domuser.Repository
	products   domproduct.Repository
	orders     domorder.Repository
	deliveries domdelivery.Repository
	tx         apporder.Transactor
	ids        application.IDGenerator
	health     func(ctx context.Context) error
	close      func(ctx context.Context) error
}

func run(ctx context.Context, cfg *config.Config, baseLogger, systemLogger *zap.Logger) error {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	registry := prometrics.New("", "")
	tel := infraobs.New(
		oteltrace.New(cfg.ServiceName),
		zaplogger.New(baseLogger),
		registry.Metrics(observability.Instruments),
	)

	repos, err := openStore(ctx, cfg, tel, systemLogger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := repos.close(closeCtx); err != nil {
			systemLogger.Warn("store_close_failed", zap.Error(err))
		}
	}()

	var provider payment.Provider
	if cfg.StripeSecretKey != "" {
		provider = stripe.New(cfg.StripeSecretKey, cfg.PaymentCurrency, cfg.ProviderTimeout, tel)
	} else {
		systemLogger.Warn("payment_provider_offline", zap.String("reason", "STRIPE_SECRET_KEY is empty"))
		provider = stripe.NewOfflineCatalogue(tel)
	}

	tokens, err := security.NewJWTMaker(cfg.JWTSecret, cfg.JWTExpiresIn)
	if err != nil {
		return err
	}

	// In-process event bus; the activity worker is its only consumer.
	bus := outbox.NewBus(tel, outbox.Options{})
	workerpresentation.NewActivityWorker(bus, tel).Start()
	bus.Start(ctx)
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		bus.Stop(stopCtx)
	}()

	services := httppresentation.Services{
		Auth: appauth.NewService(repos.users, security.NewBcryptHasher(0), tokens, repos.ids,
			appauth.RoleSeeds{InventoryManagers: cfg.InventoryManagers, DeliveryPersons: cfg.DeliveryPersons}, tel),
		Listings:   applisting.NewService(repos.products, provider, bus, repos.ids, tel),
		Orders:     apporder.NewService(repos.orders, repos.products, repos.tx, bus, repos.ids, tel),
		Deliveries: appdelivery.NewService(repos.deliveries, repos.orders, repos.users, bus, repos.ids, tel),
		Users:      appuser.NewService(repos.users, tel),
	}
	api := httppresentation.NewServer(services, httppresentation.Options{
		Development:    cfg.IsDevelopment(),
		SecureCookies:  cfg.IsProduction(),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Metrics:        registry.Handler(),
		Health:         repos.health,
	}, tel)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		systemLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
			zap.String("store", cfg.Store),
			zap.String("env", cfg.Env),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error", zap.Error(err))
		return err
	}
	systemLogger.Info("http_server_stopped")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, tel observability.Observability, systemLogger *zap.Logger) (*repositories, error) {
	if cfg.Store == config.StoreMemory {
		systemLogger.Warn("store_in_memory", zap.String("reason", "STORE=memory; data is lost on exit"))
		s := memory.NewStore()
		return &repositories{
			users:      s.Users,
			products:   s.Products,
			orders:     s.Orders,
			deliveries: s.Deliveries,
			tx:         memory.Transactor{},
			ids:        id.NewUUIDGenerator(),
			health:     func(context.Context) error { return nil },
			close:      func(context.Context) error { return nil },
		}, nil
	}

	db, err := mongostore.Connect(ctx, mongostore.Options{
		URL:          cfg.MongoURL,
		Database:     cfg.MongoDatabase,
		Timeout:      cfg.StoreTimeout,
		Transactions: cfg.MongoTransactions,
	}, tel)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureIndexes(ctx); err != nil {
		_ = db.Close(context.WithoutCancel(ctx))
		return nil, err
	}
	systemLogger.Info("store_connected",
		zap.String("database", cfg.MongoDatabase),
		zap.Bool("transactions", cfg.MongoTransactions),
	)
	return &repositories{
		users:      mongostore.NewUserRepository(db),
		products:   mongostore.NewProductRepository(db),
		orders:     mongostore.NewOrderRepository(db),
		deliveries: mongostore.NewDeliveryRepository(db),
		tx:         db,
		ids:        id.NewObjectIDGenerator(),
		health:     db.Ping,
		close:      db.Close,
	}, nil
}

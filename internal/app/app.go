package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/craftora/marketplace/internal/dal/postgres"
	"github.com/craftora/marketplace/internal/dal/rabbitmq"
	"github.com/craftora/marketplace/internal/dal/repositories/orderevents"
	outboxrepo "github.com/craftora/marketplace/internal/dal/repositories/outbox/postgres"
	"github.com/craftora/marketplace/internal/otel"
	"github.com/craftora/marketplace/internal/service/services/checkoutsvc"
	"github.com/craftora/marketplace/internal/service/services/couponsvc"
	"github.com/craftora/marketplace/internal/service/services/ordersvc"
	httptransport "github.com/craftora/marketplace/internal/transport/http"
	outboxworker "github.com/craftora/marketplace/internal/worker/outbox"
)

// App represents the application.
type App struct {
	checkoutSvc    *checkoutsvc.CheckoutService
	orderSvc       *ordersvc.OrderService
	couponSvc      *couponsvc.CouponService
	transport      *httptransport.HTTPTransport
	outboxWorker   *outboxworker.Worker
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()

	postgresClient := postgres.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()

	eventsRepo := orderevents.NewRabbitMQRepository(rabbitClient)

	checkoutSvc := checkoutsvc.MustNewCheckoutService(
		checkoutsvc.WithPostgresClient(postgresClient),
		checkoutsvc.WithEventsPublisher(eventsRepo),
	)
	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
	)
	couponSvc := couponsvc.MustNewCouponService(
		couponsvc.WithPostgresClient(postgresClient),
	)

	transport := httptransport.NewHTTPTransport(checkoutSvc, orderSvc, couponSvc)
	transport.RegisterRoutes()

	worker := outboxworker.NewWorker(
		outboxrepo.NewPostgresOutboxRepository(postgresClient.Pool()),
		rabbitClient,
	)

	return &App{
		checkoutSvc:    checkoutSvc,
		orderSvc:       orderSvc,
		couponSvc:      couponSvc,
		transport:      transport,
		outboxWorker:   worker,
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go a.outboxWorker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	cancelWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Trace provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}

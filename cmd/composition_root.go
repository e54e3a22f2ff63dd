package cmd

import (
	"context"
	"fmt"
	"time"

	httpin "orderflow/internal/adapters/in/http"
	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/postgres/catalogrepo"
	"orderflow/internal/adapters/out/postgres/directoryrepo"
	"orderflow/internal/adapters/out/provider"
	redisadapter "orderflow/internal/adapters/out/redis"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/ports"
	"orderflow/internal/jobs"
	"orderflow/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg    Config
	gormDB *gorm.DB
	redis  *goredis.Client
	logger *zap.Logger

	registry      *prometheus.Registry
	engineMetrics *metrics.EngineMetrics
	jobMetrics    *metrics.JobMetrics

	uowFactory *postgres.GormUnitOfWorkFactory
	provider   ports.DeliveryProvider
	statuses   commands.ProviderStatusMap
	pipeline   *commands.MutationPipeline
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, redisClient *goredis.Client, log *zap.Logger) (*CompositionRoot, error) {
	if log == nil {
		log = zap.NewNop()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	statuses, err := cfg.Provider.StatusMap()
	if err != nil {
		return nil, err
	}

	c := &CompositionRoot{
		cfg:           cfg,
		gormDB:        gormDB,
		redis:         redisClient,
		logger:        log,
		registry:      registry,
		engineMetrics: metrics.NewEngineMetrics(registry),
		jobMetrics:    metrics.NewJobMetrics(registry),
		uowFactory:    postgres.NewGormUnitOfWorkFactory(gormDB, cfg.DB.RotationLockTimeout),
		statuses:      statuses,
	}

	c.provider, err = c.createProvider()
	if err != nil {
		return nil, err
	}
	c.pipeline = commands.NewMutationPipeline(
		catalogrepo.NewGormCatalog(gormDB),
		directoryrepo.NewGormDirectory(gormDB),
		c.provider,
		c.engineMetrics,
		log,
		time.Now,
	)
	return c, nil
}

func (c *CompositionRoot) createProvider() (ports.DeliveryProvider, error) {
	if c.cfg.Provider.Mode == ProviderModeFake {
		c.logger.Warn("Using in-memory delivery provider", zap.Int64("provider_id", c.cfg.Provider.ID))
		return provider.NewFake(c.cfg.Provider.ID), nil
	}

	client, err := provider.NewClient(provider.Config{
		ID:             c.cfg.Provider.ID,
		BaseURL:        c.cfg.Provider.BaseURL,
		APIKey:         c.cfg.Provider.APIKey,
		RegisterPath:   c.cfg.Provider.RegisterPath,
		DeregisterPath: c.cfg.Provider.DeregisterPath,
		Timeout:        c.cfg.Provider.Timeout,
		Rate:           c.cfg.Provider.Rate,
		Burst:          c.cfg.Provider.Burst,
	},
		provider.WithMetrics(metrics.NewProviderMetrics(c.registry)),
		provider.WithLogger(c.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("delivery provider client: %w", err)
	}
	return client, nil
}

func (c *CompositionRoot) Gatherer() prometheus.Gatherer {
	return c.registry
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.uow(), c.pipeline)
}

func (c *CompositionRoot) CreateUpdateOrderCommandHandler() commands.UpdateOrderCommandHandler {
	return commands.NewUpdateOrderCommandHandler(c.uow(), c.pipeline)
}

func (c *CompositionRoot) CreateClaimNextOrderCommandHandler() commands.ClaimNextOrderCommandHandler {
	return commands.NewClaimNextOrderCommandHandler(c.uow(), c.pipeline, c.engineMetrics)
}

func (c *CompositionRoot) CreateLogContactAttemptCommandHandler() commands.LogContactAttemptCommandHandler {
	return commands.NewLogContactAttemptCommandHandler(c.uow(), c.pipeline)
}

func (c *CompositionRoot) CreateApplyDeliveryStatusCommandHandler() commands.ApplyDeliveryStatusCommandHandler {
	return commands.NewApplyDeliveryStatusCommandHandler(c.uow(), c.pipeline, c.statuses)
}

func (c *CompositionRoot) CreateResetFollowupRotationCommandHandler() commands.ResetFollowupRotationCommandHandler {
	var f commands.RotationUoWFactory = FuncRotationUoWFactory(func() commands.RotationUoW {
		return c.uowFactory.Create()
	})
	return commands.NewResetFollowupRotationCommandHandler(f)
}

func (c *CompositionRoot) CreateReconcileProviderRegistrationsCommandHandler() commands.ReconcileProviderRegistrationsCommandHandler {
	return commands.NewReconcileProviderRegistrationsCommandHandler(c.uow(), c.pipeline, c.logger)
}

func (c *CompositionRoot) CreateRelayOutboxEventsCommandHandler() (commands.RelayOutboxEventsCommandHandler, error) {
	publisher, err := redisadapter.NewStreamPublisher(c.redis, c.cfg.Outbox.Stream, c.cfg.Outbox.MaxLen)
	if err != nil {
		return commands.RelayOutboxEventsCommandHandler{}, err
	}

	var f commands.OutboxUoWFactory = FuncOutboxUoWFactory(func() commands.OutboxUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRelayOutboxEventsCommandHandler(f, publisher, time.Now), nil
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrderHistoryQueryHandler() queries.GetOrderHistoryQueryHandler {
	return queries.NewGetOrderHistoryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateSearchHistoryQueryHandler() queries.SearchHistoryQueryHandler {
	return queries.NewSearchHistoryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateServer() *httpin.Server {
	createOrder := c.CreateCreateOrderCommandHandler()
	updateOrder := c.CreateUpdateOrderCommandHandler()
	claimNext := c.CreateClaimNextOrderCommandHandler()
	logContact := c.CreateLogContactAttemptCommandHandler()
	applyDelivery := c.CreateApplyDeliveryStatusCommandHandler()
	resetRotation := c.CreateResetFollowupRotationCommandHandler()

	return httpin.NewServer(httpin.Handlers{
		CreateOrder:           &createOrder,
		UpdateOrder:           &updateOrder,
		ClaimNextOrder:        &claimNext,
		LogContactAttempt:     &logContact,
		ApplyDeliveryStatus:   &applyDelivery,
		ResetFollowupRotation: &resetRotation,
		GetOrder:              c.CreateGetOrderQueryHandler(),
		GetOrderHistory:       c.CreateGetOrderHistoryQueryHandler(),
		SearchHistory:         c.CreateSearchHistoryQueryHandler(),
	})
}

func (c *CompositionRoot) CreateRouter(ctx context.Context) (*echo.Echo, error) {
	return httpin.NewRouter(ctx, c.CreateServer(), httpin.RouterConfig{
		Token: httpin.TokenConfig{
			Secret: c.cfg.Auth.JWTSecret,
			Issuer: c.cfg.Auth.JWTIssuer,
		},
		WebhookToken: c.cfg.Webhook.Token,
		WebhookRate:  c.cfg.HTTP.WebhookRate,
		WebhookBurst: c.cfg.HTTP.WebhookBurst,
		Gatherer:     c.registry,
		Health:       c.healthCheck,
		Swagger:      c.cfg.HTTP.Swagger,
		Logger:       c.logger,
	})
}

func (c *CompositionRoot) healthCheck(ctx context.Context) error {
	sqlDB, err := c.gormDB.DB()
	if err != nil {
		return err
	}
	if err = sqlDB.PingContext(ctx); err != nil {
		return err
	}
	return c.redis.Ping(ctx).Err()
}

func (c *CompositionRoot) CreateJobManager() (*jobs.JobManager, error) {
	lock, err := redisadapter.NewJobLock(c.redis)
	if err != nil {
		return nil, err
	}

	reconcile := c.CreateReconcileProviderRegistrationsCommandHandler()
	reconciliationJob := jobs.NewProviderReconciliationJob(
		&reconcile,
		lock,
		c.jobMetrics,
		jobs.Schedule{
			Spec:      c.cfg.Jobs.ReconcileSchedule,
			BatchSize: c.cfg.Jobs.ReconcileBatchSize,
			LockTTL:   c.cfg.Jobs.ReconcileLockTTL,
		},
		c.logger,
	)

	relay, err := c.CreateRelayOutboxEventsCommandHandler()
	if err != nil {
		return nil, err
	}
	relayJob := jobs.NewOutboxRelayJob(
		&relay,
		c.jobMetrics,
		jobs.Schedule{
			Spec:      c.cfg.Jobs.RelaySchedule,
			BatchSize: c.cfg.Jobs.RelayBatchSize,
		},
		c.logger,
	)

	return jobs.NewJobManager(reconciliationJob, relayJob)
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncRotationUoWFactory func() commands.RotationUoW

func (f FuncRotationUoWFactory) Create() commands.RotationUoW {
	return f()
}

type FuncOutboxUoWFactory func() commands.OutboxUoW

func (f FuncOutboxUoWFactory) Create() commands.OutboxUoW {
	return f()
}

package http

import (
	"context"
	"errors"
	"net/http"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

const (
	defaultWebhookRate  = 10
	defaultWebhookBurst = 20
	bodyLimit           = "1M"
)

// RouterConfig carries everything the router needs besides the use cases.
type RouterConfig struct {
	Token        TokenConfig
	WebhookToken string
	WebhookRate  float64
	WebhookBurst int
	Gatherer     prometheus.Gatherer
	Health       func(ctx context.Context) error
	Swagger      bool
	Logger       *zap.Logger
}

// NewRouter builds the echo instance serving the order API, the provider
// webhook and the operational endpoints.
func NewRouter(ctx context.Context, s *Server, cfg RouterConfig) (*echo.Echo, error) {
	if s == nil {
		return nil, errors.New("server is nil")
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.WebhookRate <= 0 {
		cfg.WebhookRate = defaultWebhookRate
	}
	if cfg.WebhookBurst <= 0 {
		cfg.WebhookBurst = defaultWebhookBurst
	}

	doc, err := LoadOpenAPI(ctx)
	if err != nil {
		return nil, err
	}
	validate, err := OpenAPIValidator(doc)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler(log)
	e.Validator = newRequestValidator()

	e.Use(middleware.Recover())
	e.Use(requestContext(log))
	e.Use(requestLogger(log))
	e.Use(middleware.BodyLimit(bodyLimit))

	e.GET("/health", healthHandler(cfg.Health))
	if cfg.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	if cfg.Swagger {
		registerSwagger()
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	bearer := BearerAuth(cfg.Token)

	e.POST("/orders", s.CreateOrder, bearer, RequireCapability(commands.CapabilityCreateOrders), validate)
	e.POST("/orders/claim-next", s.ClaimNextOrder, bearer, validate)
	e.GET("/orders/:id", s.GetOrder, bearer, validate)
	e.PATCH("/orders/:id", s.UpdateOrder, bearer, RequireCapability(commands.CapabilityUpdateOrders), validate)
	e.POST("/orders/:id/contacts", s.LogContactAttempt, bearer, RequireCapability(commands.CapabilityUpdateOrders), validate)
	e.GET("/orders/:id/history", s.GetOrderHistory, bearer, validate)
	e.GET("/history", s.SearchHistory, bearer, RequireRole(order.RoleStaff), validate)
	e.DELETE("/admin/followup-rotation", s.ResetFollowupRotation, bearer, RequireRole(order.RoleStaff), validate)

	e.POST("/external/delivery/status", s.ApplyDeliveryStatus,
		webhookRateLimit(cfg.WebhookRate, cfg.WebhookBurst),
		WebhookToken(cfg.WebhookToken),
		validate,
	)

	return e, nil
}

func healthHandler(check func(ctx context.Context) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		if check != nil {
			if err := check(c.Request().Context()); err != nil {
				return c.String(http.StatusServiceUnavailable, "Unhealthy")
			}
		}
		return c.String(http.StatusOK, "Healthy")
	}
}

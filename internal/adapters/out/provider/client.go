package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/metrics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout        = 10 * time.Second
	defaultRegisterPath   = "/orders"
	defaultDeregisterPath = "/orders/cancel"
	errorBodyReadLimit    = 4096

	errorCodeOrderNotFound = "ORDER_NOT_FOUND"

	opRegister   = "register"
	opDeregister = "deregister"

	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

var (
	errProviderIDRequired = errors.New("provider id must be positive")
	errBaseURLRequired    = errors.New("provider base url is required")
	errAPIKeyRequired     = errors.New("provider api key is required")
)

// Config describes how to reach the integrated provider.
type Config struct {
	ID             int64
	BaseURL        string
	APIKey         string
	RegisterPath   string
	DeregisterPath string
	Timeout        time.Duration
	// Rate is the number of calls per second; zero disables limiting.
	Rate  float64
	Burst int
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithMetrics(m *metrics.ProviderMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client is the HTTP adapter of the integrated delivery provider.
type Client struct {
	id             int64
	baseURL        string
	apiKey         string
	registerPath   string
	deregisterPath string
	timeout        time.Duration

	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *metrics.ProviderMetrics
	logger     *zap.Logger
}

var _ ports.DeliveryProvider = (*Client)(nil)

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.ID <= 0 {
		return nil, errProviderIDRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	c := &Client{
		id:             cfg.ID,
		baseURL:        baseURL,
		apiKey:         apiKey,
		registerPath:   pathOrDefault(cfg.RegisterPath, defaultRegisterPath),
		deregisterPath: pathOrDefault(cfg.DeregisterPath, defaultDeregisterPath),
		timeout:        cfg.Timeout,
		httpClient:     &http.Client{},
		limiter:        rate.NewLimiter(rate.Inf, 0),
		logger:         zap.NewNop(),
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if cfg.Rate > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), burst)
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.logger = c.logger.With(zap.String("component", "delivery_provider"), zap.Int64("provider_id", c.id))
	return c, nil
}

func (c *Client) ID() int64 {
	return c.id
}

type customerPayload struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
	City    string `json:"city"`
	Area    string `json:"area"`
}

type itemPayload struct {
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type registerRequest struct {
	Reference string          `json:"reference"`
	Customer  customerPayload `json:"customer"`
	Notes     string          `json:"notes,omitempty"`
	Items     []itemPayload   `json:"items"`
	Total     string          `json:"total"`
}

type deregisterRequest struct {
	OrderCode string `json:"order_code"`
}

type response struct {
	Success   bool   `json:"success"`
	OrderCode string `json:"order_code"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// Register creates the shipment of o at the provider.
func (c *Client) Register(ctx context.Context, o *order.Order) (ports.RegisterResult, error) {
	started := time.Now()
	result, outcome, err := c.register(ctx, o)
	c.metrics.Observe(opRegister, outcome, time.Since(started))
	return result, err
}

func (c *Client) register(ctx context.Context, o *order.Order) (ports.RegisterResult, string, error) {
	status, body, err := c.call(ctx, c.registerPath, registerPayload(o))
	if err != nil {
		return ports.RegisterResult{}, outcomeError, err
	}

	if status >= 200 && status < 300 && body.Success {
		return ports.RegisterResult{Success: true, OrderCode: strings.TrimSpace(body.OrderCode)}, outcomeSuccess, nil
	}

	c.logger.Warn("registration refused",
		zap.Int64("order_id", o.ID()),
		zap.Int("status", status),
		zap.String("error_code", body.ErrorCode),
		zap.String("message", body.Message),
	)
	return ports.RegisterResult{ErrorMessage: refusalMessage(status, body)}, outcomeRejected, nil
}

// Deregister cancels the shipment known by orderCode.
func (c *Client) Deregister(ctx context.Context, orderCode string) (ports.DeregisterResult, error) {
	started := time.Now()
	result, outcome, err := c.deregister(ctx, orderCode)
	c.metrics.Observe(opDeregister, outcome, time.Since(started))
	return result, err
}

func (c *Client) deregister(ctx context.Context, orderCode string) (ports.DeregisterResult, string, error) {
	status, body, err := c.call(ctx, c.deregisterPath, deregisterRequest{OrderCode: orderCode})
	if err != nil {
		return ports.DeregisterResult{}, outcomeError, err
	}

	switch {
	case status == http.StatusNotFound || body.ErrorCode == errorCodeOrderNotFound:
		return ports.DeregisterResult{NotFound: true, ErrorMessage: body.Message}, outcomeNotFound, nil
	case status >= 200 && status < 300 && body.Success:
		return ports.DeregisterResult{Success: true}, outcomeSuccess, nil
	}

	c.logger.Warn("deregistration refused",
		zap.String("order_code", orderCode),
		zap.Int("status", status),
		zap.String("error_code", body.ErrorCode),
		zap.String("message", body.Message),
	)
	return ports.DeregisterResult{ErrorMessage: refusalMessage(status, body)}, outcomeRejected, nil
}

// call posts payload and decodes the answer. 5xx answers and bodies that are
// not the provider's JSON envelope are errors; a 404 may carry no body.
func (c *Client) call(ctx context.Context, path string, payload any) (int, response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return 0, response{}, fmt.Errorf("wait for rate limiter: %w", err)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, response{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return 0, response{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, response{}, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusInternalServerError {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return resp.StatusCode, response{}, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var body response
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if resp.StatusCode == http.StatusNotFound {
			return resp.StatusCode, response{}, nil
		}
		return resp.StatusCode, response{}, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	return resp.StatusCode, body, nil
}

func registerPayload(o *order.Order) registerRequest {
	customer := o.Customer()
	req := registerRequest{
		Reference: strconv.FormatInt(o.ID(), 10),
		Customer: customerPayload{
			Name:    customer.Name,
			Phone:   customer.Phone,
			Address: customer.Address,
			City:    customer.City,
			Area:    customer.Area,
		},
		Notes: o.Notes(),
		Items: make([]itemPayload, 0, len(o.Items())),
	}

	total := decimal.Zero
	for _, it := range o.Items() {
		total = total.Add(it.Total())
		req.Items = append(req.Items, itemPayload{
			ProductID: it.ProductID(),
			VariantID: it.VariantID(),
			Quantity:  it.Quantity(),
			UnitPrice: it.UnitPrice().StringFixed(2),
		})
	}
	req.Total = total.StringFixed(2)
	return req
}

func refusalMessage(status int, body response) string {
	if msg := strings.TrimSpace(body.Message); msg != "" {
		return msg
	}
	if body.ErrorCode != "" {
		return body.ErrorCode
	}
	return fmt.Sprintf("provider answered %d without a message", status)
}

func pathOrDefault(path, fallback string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return fallback
	}
	return "/" + strings.TrimLeft(path, "/")
}

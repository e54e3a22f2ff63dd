package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testWebhookToken = "provider-secret"

var testTokenConfig = TokenConfig{Secret: "test-secret", Issuer: "orderflow-test"}

type RouterTestSuite struct {
	suite.Suite

	createOrder   *MockCreateOrderHandler
	updateOrder   *MockUpdateOrderHandler
	claimNext     *MockClaimNextOrderHandler
	logContact    *MockLogContactAttemptHandler
	applyDelivery *MockApplyDeliveryStatusHandler
	resetRotation *MockResetFollowupRotationHandler
	getOrder      *MockGetOrderHandler
	getHistory    *MockGetOrderHistoryHandler
	searchHistory *MockSearchHistoryHandler

	healthErr error
	e         *echo.Echo
	userID    kernel.UUID
}

func (s *RouterTestSuite) SetupTest() {
	s.createOrder = &MockCreateOrderHandler{}
	s.updateOrder = &MockUpdateOrderHandler{}
	s.claimNext = &MockClaimNextOrderHandler{}
	s.logContact = &MockLogContactAttemptHandler{}
	s.applyDelivery = &MockApplyDeliveryStatusHandler{}
	s.resetRotation = &MockResetFollowupRotationHandler{}
	s.getOrder = &MockGetOrderHandler{}
	s.getHistory = &MockGetOrderHistoryHandler{}
	s.searchHistory = &MockSearchHistoryHandler{}
	s.healthErr = nil
	s.userID = kernel.NewUUID()

	server := NewServer(Handlers{
		CreateOrder:           s.createOrder,
		UpdateOrder:           s.updateOrder,
		ClaimNextOrder:        s.claimNext,
		LogContactAttempt:     s.logContact,
		ApplyDeliveryStatus:   s.applyDelivery,
		ResetFollowupRotation: s.resetRotation,
		GetOrder:              s.getOrder,
		GetOrderHistory:       s.getHistory,
		SearchHistory:         s.searchHistory,
	})

	e, err := NewRouter(context.Background(), server, RouterConfig{
		Token:        testTokenConfig,
		WebhookToken: testWebhookToken,
		WebhookRate:  100,
		WebhookBurst: 100,
		Gatherer:     prometheus.NewRegistry(),
		Health:       func(context.Context) error { return s.healthErr },
		Swagger:      true,
	})
	s.Require().NoError(err)
	s.e = e
}

func (s *RouterTestSuite) TearDownTest() {
	s.createOrder.AssertExpectations(s.T())
	s.updateOrder.AssertExpectations(s.T())
	s.claimNext.AssertExpectations(s.T())
	s.logContact.AssertExpectations(s.T())
	s.applyDelivery.AssertExpectations(s.T())
	s.resetRotation.AssertExpectations(s.T())
	s.getOrder.AssertExpectations(s.T())
	s.getHistory.AssertExpectations(s.T())
	s.searchHistory.AssertExpectations(s.T())
}

func (s *RouterTestSuite) token(role order.Role, capabilities ...string) string {
	raw, err := MintAccessToken(testTokenConfig, Principal{
		UserID:       s.userID,
		Role:         role,
		Capabilities: capabilities,
	}, time.Now().Add(time.Hour))
	s.Require().NoError(err)
	return raw
}

func (s *RouterTestSuite) do(method, target, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *RouterTestSuite) decodeError(rec *httptest.ResponseRecorder) errorResponse {
	var body errorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (s *RouterTestSuite) sampleOrder() *order.Order {
	o, err := order.NewOrder(order.Draft{
		Customer: order.Customer{Name: "Amina", Phone: "0550123456", City: "Oran", Area: "Bir El Djir"},
		Items: []order.ItemDraft{
			{ProductID: 4, Quantity: 2, UnitPrice: decimal.NewFromInt(1500)},
		},
	}, time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	return o
}

func (s *RouterTestSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/health", "", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("Healthy", rec.Body.String())

	s.healthErr = errors.New("db down")
	rec = s.do(http.MethodGet, "/health", "", "")
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (s *RouterTestSuite) TestMetrics() {
	rec := s.do(http.MethodGet, "/metrics", "", "")
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterTestSuite) TestCreateOrder() {
	body := `{"customer_name":"Amina","customer_phone":"0550123456","city":"Oran","area":"Bir El Djir",
		"items":[{"product_id":4,"quantity":2}]}`

	s.Run("should create order", func() {
		s.createOrder.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CreateOrderCommand) bool {
			d := cmd.Draft()
			return d.Customer.Name == "Amina" &&
				cmd.Actor() != nil && cmd.Actor().IsEqual(s.userID) &&
				len(d.Items) == 1 && d.Items[0].ProductID == 4 && d.Items[0].Quantity == 2
		})).Return(commands.MutationResult{Order: s.sampleOrder(), FollowupSkipped: true}, nil).Once()

		rec := s.do(http.MethodPost, "/orders", s.token(order.RoleAgent, commands.CapabilityCreateOrders), body)

		s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
		var resp orderResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal("Amina", resp.CustomerName)
		s.Equal("new", resp.AgentStatus)
		s.Equal("3000.00", resp.Total)
		s.True(resp.FollowupSkipped)
		s.Require().Len(resp.Items, 1)
		s.Equal("1500.00", resp.Items[0].UnitPrice)
	})

	s.Run("should require bearer token", func() {
		rec := s.do(http.MethodPost, "/orders", "", body)

		s.Equal(http.StatusUnauthorized, rec.Code)
		s.Equal("unauthorized", s.decodeError(rec).Code)
	})

	s.Run("should require create capability", func() {
		rec := s.do(http.MethodPost, "/orders", s.token(order.RoleAgent, commands.CapabilityUpdateOrders), body)

		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("should reject order without items", func() {
		rec := s.do(http.MethodPost, "/orders", s.token(order.RoleAgent, commands.CapabilityCreateOrders),
			`{"customer_name":"Amina","customer_phone":"0550123456"}`)

		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("should map provider refusal", func() {
		s.createOrder.On("Handle", mock.Anything, mock.Anything).
			Return(commands.MutationResult{}, errs.NewProviderRejectedError("register", "phone is blacklisted")).Once()

		rec := s.do(http.MethodPost, "/orders", s.token(order.RoleAgent, commands.CapabilityCreateOrders), body)

		s.Equal(http.StatusUnprocessableEntity, rec.Code)
		resp := s.decodeError(rec)
		s.Equal("provider_rejected", resp.Code)
		s.Equal("phone is blacklisted", resp.Message)
	})
}

func (s *RouterTestSuite) TestGetOrder() {
	s.Run("should return order view", func() {
		s.getOrder.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetOrderQuery) bool {
			return q.OrderID() == 42
		})).Return(queries.OrderView{
			ID:             42,
			CustomerName:   "Amina",
			AgentStatus:    "confirmed",
			FollowupStatus: "new",
			DeliveryStatus: "new",
			Items: []queries.OrderItemView{
				{ID: 1, ProductID: 4, UnitPrice: decimal.NewFromInt(1500), Quantity: 1, Total: decimal.NewFromInt(1500)},
			},
			Total: decimal.NewFromInt(1500),
		}, nil).Once()

		rec := s.do(http.MethodGet, "/orders/42", s.token(order.RoleFollowup), "")

		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		var resp orderResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal(int64(42), resp.ID)
		s.Equal("1500.00", resp.Total)
		s.False(resp.FollowupSkipped)
	})

	s.Run("should reject non numeric id", func() {
		rec := s.do(http.MethodGet, "/orders/abc", s.token(order.RoleFollowup), "")

		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("id", s.decodeError(rec).Field)
	})

	s.Run("should map unknown order", func() {
		s.getOrder.On("Handle", mock.Anything, mock.Anything).
			Return(queries.OrderView{}, errs.NewObjectNotFoundError("order", int64(9))).Once()

		rec := s.do(http.MethodGet, "/orders/9", s.token(order.RoleStaff), "")

		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *RouterTestSuite) TestUpdateOrder() {
	token := s.token(order.RoleAgent, commands.CapabilityUpdateOrders)

	s.Run("should declare only present keys", func() {
		s.updateOrder.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.UpdateOrderCommand) bool {
			p := cmd.Patch()
			return cmd.OrderID() == 7 &&
				cmd.Role() == order.RoleAgent &&
				len(p.Fields) == 2 &&
				p.Declares(order.FieldAgentStatus) &&
				p.Declares(order.FieldDeliveryProviderID) &&
				p.AgentStatus == order.AgentConfirmed &&
				p.DeliveryProviderID == nil
		})).Return(commands.MutationResult{Order: s.sampleOrder()}, nil).Once()

		rec := s.do(http.MethodPatch, "/orders/7", token, `{"agent_status":"confirmed","delivery_provider_id":null}`)

		s.Equal(http.StatusOK, rec.Code, rec.Body.String())
	})

	s.Run("should let staff release the agent", func() {
		staff := s.token(order.RoleStaff, commands.CapabilityUpdateOrders)
		s.updateOrder.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.UpdateOrderCommand) bool {
			p := cmd.Patch()
			return cmd.Role() == order.RoleStaff && p.Declares(order.FieldAgentID) && p.AgentID == nil
		})).Return(commands.MutationResult{Order: s.sampleOrder()}, nil).Once()

		rec := s.do(http.MethodPatch, "/orders/7", staff, `{"agent_id":null}`)

		s.Equal(http.StatusOK, rec.Code, rec.Body.String())
	})

	s.Run("should reject field outside the agent role", func() {
		rec := s.do(http.MethodPatch, "/orders/7", token, `{"agent_id":null}`)

		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("agent_id", s.decodeError(rec).Field)
	})

	s.Run("should reject unknown key", func() {
		rec := s.do(http.MethodPatch, "/orders/7", token, `{"provider_order_code":"X"}`)

		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("should reject unknown status code", func() {
		rec := s.do(http.MethodPatch, "/orders/7", token, `{"agent_status":"shipped"}`)

		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("agent_status", s.decodeError(rec).Field)
	})

	s.Run("should map concurrent modification", func() {
		s.updateOrder.On("Handle", mock.Anything, mock.Anything).
			Return(commands.MutationResult{}, errs.NewConcurrencyConflictError("order", nil)).Once()

		rec := s.do(http.MethodPatch, "/orders/7", token, `{"notes":"call after 6pm"}`)

		s.Equal(http.StatusConflict, rec.Code)
	})
}

func (s *RouterTestSuite) TestClaimNextOrder() {
	s.Run("should report none available", func() {
		s.claimNext.On("Handle", mock.Anything, mock.Anything).
			Return(commands.ClaimResult{Outcome: commands.ClaimNoneAvailable}, nil).Once()

		rec := s.do(http.MethodPost, "/orders/claim-next", s.token(order.RoleAgent, commands.CapabilityUpdateOrders), "")

		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		s.JSONEq(`{"outcome":"none_available"}`, rec.Body.String())
	})

	s.Run("should return claimed order", func() {
		s.claimNext.On("Handle", mock.Anything, mock.Anything).
			Return(commands.ClaimResult{Outcome: commands.ClaimClaimed, Order: s.sampleOrder()}, nil).Once()

		rec := s.do(http.MethodPost, "/orders/claim-next", s.token(order.RoleAgent, commands.CapabilityUpdateOrders), "")

		var resp claimResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal("claimed", resp.Outcome)
		s.Require().NotNil(resp.Order)
		s.Equal("Amina", resp.Order.CustomerName)
	})

	s.Run("should refuse non agents", func() {
		rec := s.do(http.MethodPost, "/orders/claim-next", s.token(order.RoleFollowup, commands.CapabilityUpdateOrders), "")

		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}

func (s *RouterTestSuite) TestLogContactAttempt() {
	s.logContact.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.LogContactAttemptCommand) bool {
		return cmd.OrderID() == 3 && cmd.Role() == order.RoleFollowup && cmd.Actor().IsEqual(s.userID)
	})).Return(commands.MutationResult{Order: s.sampleOrder()}, nil).Once()

	rec := s.do(http.MethodPost, "/orders/3/contacts", s.token(order.RoleFollowup, commands.CapabilityUpdateOrders), "")

	s.Equal(http.StatusOK, rec.Code, rec.Body.String())
}

func (s *RouterTestSuite) TestOrderHistory() {
	s.Run("should pass paging", func() {
		s.getHistory.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetOrderHistoryQuery) bool {
			return q.OrderID() == 5 && q.Page() == 2 && q.Limit() == 5
		})).Return(queries.HistoryPage{Page: 2, Limit: 5, Total: 6}, nil).Once()

		rec := s.do(http.MethodGet, "/orders/5/history?page=2&limit=5", s.token(order.RoleAgent), "")

		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		s.JSONEq(`{"entries":[],"page":2,"limit":5,"total":6}`, rec.Body.String())
	})

	s.Run("should default paging", func() {
		s.getHistory.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetOrderHistoryQuery) bool {
			return q.Page() == 1 && q.Limit() == queries.DefaultPageLimit
		})).Return(queries.HistoryPage{Page: 1, Limit: queries.DefaultPageLimit}, nil).Once()

		rec := s.do(http.MethodGet, "/orders/5/history", s.token(order.RoleAgent), "")

		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("should reject limit above maximum", func() {
		rec := s.do(http.MethodGet, "/orders/5/history?limit=500", s.token(order.RoleAgent), "")

		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *RouterTestSuite) TestSearchHistory() {
	s.Run("should be reserved to staff", func() {
		rec := s.do(http.MethodGet, "/history?target_type=order&field=delivery_status", s.token(order.RoleAgent), "")

		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("should require target type", func() {
		rec := s.do(http.MethodGet, "/history?field=delivery_status", s.token(order.RoleStaff), "")

		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("should pass filter", func() {
		s.searchHistory.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.SearchHistoryQuery) bool {
			f := q.Filter()
			return f.TargetType == "order" &&
				f.Field == "delivery_status" &&
				f.NewValue != nil && *f.NewValue == "delivered" &&
				f.From != nil && f.From.Equal(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)) &&
				f.To == nil
		})).Return(queries.HistoryPage{Page: 1, Limit: 20}, nil).Once()

		rec := s.do(http.MethodGet,
			"/history?target_type=order&field=delivery_status&new_value=delivered&from=2026-05-01T00:00:00Z",
			s.token(order.RoleStaff), "")

		s.Equal(http.StatusOK, rec.Code, rec.Body.String())
	})
}

func (s *RouterTestSuite) TestResetFollowupRotation() {
	s.Run("should reset for staff", func() {
		s.resetRotation.On("Handle", mock.Anything, mock.Anything).Return(nil).Once()

		rec := s.do(http.MethodDelete, "/admin/followup-rotation", s.token(order.RoleStaff), "")

		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("should refuse other roles", func() {
		rec := s.do(http.MethodDelete, "/admin/followup-rotation", s.token(order.RoleFollowup), "")

		s.Equal(http.StatusForbidden, rec.Code)
	})
}

func (s *RouterTestSuite) TestApplyDeliveryStatus() {
	webhook := func(token, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/external/delivery/status", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		if token != "" {
			req.Header.Set(HeaderWebhookKey, token)
		}
		rec := httptest.NewRecorder()
		s.e.ServeHTTP(rec, req)
		return rec
	}

	s.Run("should apply status", func() {
		s.applyDelivery.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ApplyDeliveryStatusCommand) bool {
			return cmd.OrderCode() == "FK-000001" && cmd.StatusCode() == 4 && cmd.ReturnReason() == nil
		})).Return(commands.ApplyDeliveryStatusResult{
			OrderID:   11,
			OldStatus: order.DeliveryDispatched,
			NewStatus: order.DeliveryInTransit,
		}, nil).Once()

		rec := webhook(testWebhookToken, `{"order_code":"FK-000001","to_status_code":4}`)

		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		s.JSONEq(`{"order_id":11,"old_status":"dispatched","new_status":"in_transit"}`, rec.Body.String())
	})

	s.Run("should reject wrong token", func() {
		rec := webhook("guess", `{"order_code":"FK-000001","to_status_code":4}`)

		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("should map unknown status code", func() {
		s.applyDelivery.On("Handle", mock.Anything, mock.Anything).
			Return(commands.ApplyDeliveryStatusResult{}, errs.NewInvalidStatusCodeError(99)).Once()

		rec := webhook(testWebhookToken, `{"order_code":"FK-000001","to_status_code":99}`)

		s.Equal(http.StatusUnprocessableEntity, rec.Code)
		s.Equal("to_status_code", s.decodeError(rec).Field)
	})

	s.Run("should require order code", func() {
		rec := webhook(testWebhookToken, `{"to_status_code":4}`)

		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func TestWebhookRateLimit(t *testing.T) {
	e := echo.New()
	e.POST("/hook", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, webhookRateLimit(1, 1))

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/hook", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusNoContent, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

func TestLoadOpenAPI(t *testing.T) {
	doc, err := LoadOpenAPI(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/orders/{id}"))
	assert.Contains(t, doc.Components.SecuritySchemes, "webhookToken")
}

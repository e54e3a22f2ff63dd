package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

type CreateOrderHandler interface {
	Handle(ctx context.Context, cmd commands.CreateOrderCommand) (commands.MutationResult, error)
}

type UpdateOrderHandler interface {
	Handle(ctx context.Context, cmd commands.UpdateOrderCommand) (commands.MutationResult, error)
}

type ClaimNextOrderHandler interface {
	Handle(ctx context.Context, cmd commands.ClaimNextOrderCommand) (commands.ClaimResult, error)
}

type LogContactAttemptHandler interface {
	Handle(ctx context.Context, cmd commands.LogContactAttemptCommand) (commands.MutationResult, error)
}

type ApplyDeliveryStatusHandler interface {
	Handle(ctx context.Context, cmd commands.ApplyDeliveryStatusCommand) (commands.ApplyDeliveryStatusResult, error)
}

type ResetFollowupRotationHandler interface {
	Handle(ctx context.Context, cmd commands.ResetFollowupRotationCommand) error
}

type GetOrderHandler interface {
	Handle(ctx context.Context, query queries.GetOrderQuery) (queries.OrderView, error)
}

type GetOrderHistoryHandler interface {
	Handle(ctx context.Context, query queries.GetOrderHistoryQuery) (queries.HistoryPage, error)
}

type SearchHistoryHandler interface {
	Handle(ctx context.Context, query queries.SearchHistoryQuery) (queries.HistoryPage, error)
}

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	CreateOrder           CreateOrderHandler
	UpdateOrder           UpdateOrderHandler
	ClaimNextOrder        ClaimNextOrderHandler
	LogContactAttempt     LogContactAttemptHandler
	ApplyDeliveryStatus   ApplyDeliveryStatusHandler
	ResetFollowupRotation ResetFollowupRotationHandler
	GetOrder              GetOrderHandler
	GetOrderHistory       GetOrderHistoryHandler
	SearchHistory         SearchHistoryHandler
}

// Server maps HTTP requests onto commands and queries. Errors are returned
// to echo and rendered by ErrorHandler.
type Server struct {
	handlers Handlers
}

func NewServer(handlers Handlers) *Server {
	return &Server{handlers: handlers}
}

// CreateOrder handles POST /orders.
func (s *Server) CreateOrder(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err = c.Bind(&req); err != nil {
		return err
	}
	if err = c.Validate(&req); err != nil {
		return err
	}

	draft, err := req.toDraft(p.UserID)
	if err != nil {
		return err
	}
	cmd, err := commands.NewCreateOrderCommand(&p.UserID, draft)
	if err != nil {
		return err
	}

	res, err := s.handlers.CreateOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newMutationResponse(res))
}

// GetOrder handles GET /orders/{id}.
func (s *Server) GetOrder(c echo.Context) error {
	id, err := orderIDParam(c)
	if err != nil {
		return err
	}

	query, err := queries.NewGetOrderQuery(id)
	if err != nil {
		return err
	}
	view, err := s.handlers.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newOrderViewResponse(view))
}

// UpdateOrder handles PATCH /orders/{id}. Only the keys present in the body
// are declared in the patch.
func (s *Server) UpdateOrder(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return err
	}
	id, err := orderIDParam(c)
	if err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err = c.Echo().JSONSerializer.Deserialize(c, &raw); err != nil {
		return err
	}
	patch, err := decodePatch(raw)
	if err != nil {
		return err
	}

	cmd, err := commands.NewUpdateOrderCommand(id, p.UserID, p.Role, patch)
	if err != nil {
		return err
	}
	res, err := s.handlers.UpdateOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newMutationResponse(res))
}

// ClaimNextOrder handles POST /orders/claim-next.
func (s *Server) ClaimNextOrder(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return err
	}

	cmd, err := commands.NewClaimNextOrderCommand(p.UserID, p.Role, p.Capabilities)
	if err != nil {
		return err
	}
	res, err := s.handlers.ClaimNextOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newClaimResponse(res))
}

// LogContactAttempt handles POST /orders/{id}/contacts.
func (s *Server) LogContactAttempt(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return err
	}
	id, err := orderIDParam(c)
	if err != nil {
		return err
	}

	cmd, err := commands.NewLogContactAttemptCommand(id, p.UserID, p.Role)
	if err != nil {
		return err
	}
	res, err := s.handlers.LogContactAttempt.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newMutationResponse(res))
}

// GetOrderHistory handles GET /orders/{id}/history.
func (s *Server) GetOrderHistory(c echo.Context) error {
	id, err := orderIDParam(c)
	if err != nil {
		return err
	}
	page, limit, err := pageParams(c)
	if err != nil {
		return err
	}

	query, err := queries.NewGetOrderHistoryQuery(id, page, limit)
	if err != nil {
		return err
	}
	res, err := s.handlers.GetOrderHistory.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newHistoryPageResponse(res))
}

// SearchHistory handles GET /history.
func (s *Server) SearchHistory(c echo.Context) error {
	var filter queries.HistoryFilter
	params := c.QueryParams()

	if err := runtime.BindQueryParameter("form", true, true, "target_type", params, &filter.TargetType); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("target_type", err)
	}
	if err := runtime.BindQueryParameter("form", true, true, "field", params, &filter.Field); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("field", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "new_value", params, &filter.NewValue); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("new_value", err)
	}
	if err := bindTimeParam(params, "from", &filter.From); err != nil {
		return err
	}
	if err := bindTimeParam(params, "to", &filter.To); err != nil {
		return err
	}
	page, limit, err := pageParams(c)
	if err != nil {
		return err
	}

	query, err := queries.NewSearchHistoryQuery(filter, page, limit)
	if err != nil {
		return err
	}
	res, err := s.handlers.SearchHistory.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newHistoryPageResponse(res))
}

// ResetFollowupRotation handles DELETE /admin/followup-rotation.
func (s *Server) ResetFollowupRotation(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return err
	}

	cmd, err := commands.NewResetFollowupRotationCommand(p.Role)
	if err != nil {
		return err
	}
	if err = s.handlers.ResetFollowupRotation.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ApplyDeliveryStatus handles POST /external/delivery/status, the webhook of
// the integrated delivery provider.
func (s *Server) ApplyDeliveryStatus(c echo.Context) error {
	var req deliveryStatusRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	cmd, err := commands.NewApplyDeliveryStatusCommand(req.OrderCode, *req.ToStatusCode, req.ReturnReason)
	if err != nil {
		return err
	}
	res, err := s.handlers.ApplyDeliveryStatus.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deliveryStatusResponse{
		OrderID:   res.OrderID,
		OldStatus: res.OldStatus.String(),
		NewStatus: res.NewStatus.String(),
	})
}

func orderIDParam(c echo.Context) (int64, error) {
	var id int64
	err := runtime.BindStyledParameterWithLocation("simple", false, "id", runtime.ParamLocationPath, c.Param("id"), &id)
	if err != nil {
		return 0, errs.NewValueIsInvalidErrorWithCause("order id", err)
	}
	return id, nil
}

func pageParams(c echo.Context) (int, int, error) {
	var page, limit *int
	params := c.QueryParams()

	if err := runtime.BindQueryParameter("form", true, false, "page", params, &page); err != nil {
		return 0, 0, errs.NewValueIsInvalidErrorWithCause("page", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", params, &limit); err != nil {
		return 0, 0, errs.NewValueIsInvalidErrorWithCause("limit", err)
	}

	p, l := 1, queries.DefaultPageLimit
	if page != nil {
		p = *page
	}
	if limit != nil {
		l = *limit
	}
	return p, l, nil
}

func bindTimeParam(params map[string][]string, name string, dest **time.Time) error {
	if err := runtime.BindQueryParameter("form", true, false, name, params, dest); err != nil {
		return errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return nil
}

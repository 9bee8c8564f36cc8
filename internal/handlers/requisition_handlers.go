package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"stockdesk/internal/apperrors"
	"stockdesk/internal/common"
	"stockdesk/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type RequisitionHandlers struct {
	requisitions services.RequisitionService
}

func NewRequisitionHandlers(requisitions services.RequisitionService) *RequisitionHandlers {
	return &RequisitionHandlers{requisitions: requisitions}
}

type createRequisitionRequest struct {
	SectorID  string `json:"sector_id"`
	ProductID string `json:"product_id"` // empty for custom items
	ItemName  string `json:"item_name"`
	Quantity  int    `json:"quantity"`
}

type deliverRequest struct {
	Quantity int `json:"quantity"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type substituteRequest struct {
	SubstituteProductID string `json:"substitute_product_id"`
	Quantity            int    `json:"quantity"`
	Reason              string `json:"reason"`
}

type directDeliverRequest struct {
	ProductID string `json:"product_id"`
	SectorID  string `json:"sector_id"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}

// partialFailureResponse wraps a delivered requisition whose settlement left a
// step behind. Distinct from the success shape so clients can show the
// reconciliation warning banner.
type partialFailureResponse struct {
	Requisition any    `json:"requisition"`
	Warning     string `json:"warning"`
	FailedStep  string `json:"failed_step"`
}

func (h *RequisitionHandlers) Create(c echo.Context) error {
	hotelID, ok := common.GetHotelIDFromContext(c.Request().Context())
	if !ok {
		return common.SendServerError(c, "missing hotel scope")
	}

	var body createRequisitionRequest
	if err := c.Bind(&body); err != nil {
		return common.SendClientError(c, "INVALID_BODY", "invalid request body")
	}

	sectorID, err := common.ValidateUUID(body.SectorID, "sector_id")
	if err != nil {
		return common.SendClientError(c, "INVALID_ARGUMENT", err.Error())
	}

	var productID *uuid.UUID
	if body.ProductID != "" {
		id, err := common.ValidateUUID(body.ProductID, "product_id")
		if err != nil {
			return common.SendClientError(c, "INVALID_ARGUMENT", err.Error())
		}
		productID = &id
	}

	req, err := h.requisitions.Create(c.Request().Context(), services.CreateRequisitionInput{
		HotelID:      hotelID,
		SectorID:     sectorID,
		ProductID:    productID,
		ItemName:     body.ItemName,
		RequestedQty: body.Quantity,
	})
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusCreated, req)
}

func (h *RequisitionHandlers) Deliver(c echo.Context) error {
	hotelID, ok := common.GetHotelIDFromContext(c.Request().Context())
	if !ok {
		return common.SendServerError(c, "missing hotel scope")
	}
	requisitionID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, "INVALID_ARGUMENT", err.Error())
	}

	var body deliverRequest
	if err := c.Bind(&body); err != nil {
		return common.SendClientError(c, "INVALID_BODY", "invalid request body")
	}

	actor := actorFromContext(c)
	req, err := h.requisitions.Deliver(c.Request().Context(), hotelID, requisitionID, body.Quantity, actor)
	if err != nil {
		if pf, ok := apperrors.AsPartialFailure(err); ok {
			return c.JSON(http.StatusOK, partialFailureResponse{
				Requisition: req,
				Warning:     pf.Error(),
				FailedStep:  pf.Step,
			})
		}
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, req)
}

func (h *RequisitionHandlers) Reject(c echo.Context) error {
	hotelID, ok := common.GetHotelIDFromContext(c.Request().Context())
	if !ok {
		return common.SendServerError(c, "missing hotel scope")
	}
	requisitionID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, "INVALID_ARGUMENT", err.Error())
	}

	var body rejectRequest
	if err := c.Bind(&body); err != nil {
		return common.SendClientError(c, "INVALID_BODY", "invalid request body")
	}

	actor := actorFromContext(c)
	req, err := h.requisitions.Reject(c.Request().Context(), hotelID, requisitionID, body.Reason, actor)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, req)
}

func (h *RequisitionHandlers) Substitute(c echo.Context) error {
	hotelID, ok := common.GetHotelIDFromContext(c.Request().Context())
	if !ok {
		return common.SendServerError(c, "missing hotel scope")
	}
	requisitionID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, "INVALID_ARGUMENT", err.Error())
	}

	var body substituteRequest
	if err := c.Bind(&body); err != nil {
		return common.SendClientError(c, "INVALID_BODY", "invalid request body")
	}
	substituteID, err := common.ValidateUUID(body.SubstituteProductID, "substitute_product_id")
	if err != nil {
		return common.SendClientError(c, "INVALID_ARGUMENT", err.Error())
	}

	actor := actorFromContext(c)
	req, err := h.requisitions.Substitute(c.Request().Context(), hotelID, requisitionID, substituteID, body.Quantity, body.Reason, actor)
	if err != nil {
		if pf, ok := apperrors.AsPartialFailure(err); ok {
			return c.JSON(http.StatusOK, partialFailureResponse{
				Requisition: req,
				Warning:     pf.Error(),
				FailedStep:  pf.Step,
			})
		}
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, req)
}

func (h *RequisitionHandlers) DirectDeliver(c echo.Context) error {
	hotelID, ok := common.GetHotelIDFromContext(c.Request().Context())
	if !ok {
		return common.SendServerError(c, "missing hotel scope")
	}

	var body directDeliverRequest
	if err := c.Bind(&body); err != nil {
		return common.SendClientError(c, "INVALID_BODY", "invalid request body")
	}
	productID, err := common.ValidateUUID(body.ProductID, "product_id")
	if err != nil {
		return common.SendClientError(c, "INVALID_ARGUMENT", err.Error())
	}
	sectorID, err := common.ValidateUUID(body.SectorID, "sector_id")
	if err != nil {
		return common.SendClientError(c, "INVALID_ARGUMENT", err.Error())
	}

	actor := actorFromContext(c)
	req, err := h.requisitions.DirectDeliver(c.Request().Context(), hotelID, productID, sectorID, body.Quantity, body.Reason, actor)
	if err != nil {
		if pf, ok := apperrors.AsPartialFailure(err); ok {
			return c.JSON(http.StatusCreated, partialFailureResponse{
				Requisition: req,
				Warning:     pf.Error(),
				FailedStep:  pf.Step,
			})
		}
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusCreated, req)
}

func (h *RequisitionHandlers) ListPending(c echo.Context) error {
	return h.list(c, true)
}

func (h *RequisitionHandlers) ListHistory(c echo.Context) error {
	return h.list(c, false)
}

func (h *RequisitionHandlers) list(c echo.Context, pending bool) error {
	hotelID, ok := common.GetHotelIDFromContext(c.Request().Context())
	if !ok {
		return common.SendServerError(c, "missing hotel scope")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	var (
		reqs any
		err  error
	)
	if pending {
		reqs, err = h.requisitions.ListPending(c.Request().Context(), hotelID, limit, offset)
	} else {
		reqs, err = h.requisitions.ListHistory(c.Request().Context(), hotelID, limit, offset)
	}
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, reqs)
}

func (h *RequisitionHandlers) GetByID(c echo.Context) error {
	hotelID, ok := common.GetHotelIDFromContext(c.Request().Context())
	if !ok {
		return common.SendServerError(c, "missing hotel scope")
	}
	requisitionID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, "INVALID_ARGUMENT", err.Error())
	}

	req, err := h.requisitions.GetByID(c.Request().Context(), hotelID, requisitionID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, req)
}

func (h *RequisitionHandlers) mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrInvalidArgument):
		return common.SendClientError(c, "INVALID_ARGUMENT", err.Error())
	case errors.Is(err, apperrors.ErrInvalidState):
		return common.SendConflictError(c, "INVALID_STATE", err.Error())
	case errors.Is(err, apperrors.ErrInsufficientStock):
		return common.SendConflictError(c, "INSUFFICIENT_STOCK", err.Error())
	case errors.Is(err, apperrors.ErrProductNotFound):
		return common.SendNotFoundError(c, "product")
	case errors.Is(err, apperrors.ErrNotFound):
		return common.SendNotFoundError(c, "requisition")
	default:
		return common.SendServerError(c, "operation failed")
	}
}

func actorFromContext(c echo.Context) *uuid.UUID {
	if userID, ok := common.GetUserIDFromContext(c.Request().Context()); ok {
		return &userID
	}
	return nil
}

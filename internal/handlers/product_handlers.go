package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"stockdesk/internal/apperrors"
	"stockdesk/internal/common"
	"stockdesk/internal/models"
	"stockdesk/internal/repositories"
	"stockdesk/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type ProductHandlers struct {
	products  repositories.ProductRepository
	movements repositories.InventoryMovementRepository
	stock     services.StockService
}

func NewProductHandlers(products repositories.ProductRepository, movements repositories.InventoryMovementRepository, stock services.StockService) *ProductHandlers {
	return &ProductHandlers{products: products, movements: movements, stock: stock}
}

type adjustStockRequest struct {
	Delta        int    `json:"delta"`
	MovementType string `json:"movement_type"`
	Reason       string `json:"reason"`
}

type adjustStockResponse struct {
	ProductID   uuid.UUID `json:"product_id"`
	NewQuantity int       `json:"new_quantity"`
}

func (h *ProductHandlers) List(c echo.Context) error {
	hotelID, ok := common.GetHotelIDFromContext(c.Request().Context())
	if !ok {
		return common.SendServerError(c, "missing hotel scope")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	products, err := h.products.List(c.Request().Context(), hotelID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "failed to list products")
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandlers) GetByID(c echo.Context) error {
	hotelID, ok := common.GetHotelIDFromContext(c.Request().Context())
	if !ok {
		return common.SendServerError(c, "missing hotel scope")
	}
	productID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, "INVALID_ARGUMENT", err.Error())
	}

	product, err := h.products.GetByID(c.Request().Context(), hotelID, productID)
	if err != nil {
		if errors.Is(err, apperrors.ErrProductNotFound) {
			return common.SendNotFoundError(c, "product")
		}
		return common.SendServerError(c, "failed to fetch product")
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandlers) AdjustStock(c echo.Context) error {
	hotelID, ok := common.GetHotelIDFromContext(c.Request().Context())
	if !ok {
		return common.SendServerError(c, "missing hotel scope")
	}
	productID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, "INVALID_ARGUMENT", err.Error())
	}

	var body adjustStockRequest
	if err := c.Bind(&body); err != nil {
		return common.SendClientError(c, "INVALID_BODY", "invalid request body")
	}

	actor := actorFromContext(c)
	newQty, err := h.stock.AdjustStock(c.Request().Context(), hotelID, productID, body.Delta, models.MovementType(body.MovementType), body.Reason, actor)
	if err != nil {
		if pf, ok := apperrors.AsPartialFailure(err); ok {
			return c.JSON(http.StatusOK, struct {
				adjustStockResponse
				Warning    string `json:"warning"`
				FailedStep string `json:"failed_step"`
			}{
				adjustStockResponse: adjustStockResponse{ProductID: productID, NewQuantity: newQty},
				Warning:             pf.Error(),
				FailedStep:          pf.Step,
			})
		}
		switch {
		case errors.Is(err, apperrors.ErrInvalidArgument):
			return common.SendClientError(c, "INVALID_ARGUMENT", err.Error())
		case errors.Is(err, apperrors.ErrInsufficientStock):
			return common.SendConflictError(c, "INSUFFICIENT_STOCK", err.Error())
		case errors.Is(err, apperrors.ErrProductNotFound):
			return common.SendNotFoundError(c, "product")
		default:
			return common.SendServerError(c, "stock adjustment failed")
		}
	}
	return c.JSON(http.StatusOK, adjustStockResponse{ProductID: productID, NewQuantity: newQty})
}

func (h *ProductHandlers) ListMovements(c echo.Context) error {
	hotelID, ok := common.GetHotelIDFromContext(c.Request().Context())
	if !ok {
		return common.SendServerError(c, "missing hotel scope")
	}
	productID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, "INVALID_ARGUMENT", err.Error())
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	movements, err := h.movements.ListByProduct(c.Request().Context(), hotelID, productID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "failed to list movements")
	}
	return c.JSON(http.StatusOK, movements)
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"stockdesk/internal/apperrors"
	"stockdesk/internal/common"
	"stockdesk/internal/repositories"
	"stockdesk/internal/services"

	"github.com/labstack/echo/v4"
)

type StockHandlers struct {
	sectorStock repositories.SectorStockRepository
	sectors     repositories.SectorRepository
	portioning  services.PortioningService
}

func NewStockHandlers(sectorStock repositories.SectorStockRepository, sectors repositories.SectorRepository, portioning services.PortioningService) *StockHandlers {
	return &StockHandlers{sectorStock: sectorStock, sectors: sectors, portioning: portioning}
}

func (h *StockHandlers) ListSectors(c echo.Context) error {
	hotelID, ok := common.GetHotelIDFromContext(c.Request().Context())
	if !ok {
		return common.SendServerError(c, "missing hotel scope")
	}

	sectors, err := h.sectors.List(c.Request().Context(), hotelID)
	if err != nil {
		return common.SendServerError(c, "failed to list sectors")
	}
	return c.JSON(http.StatusOK, sectors)
}

func (h *StockHandlers) ListSectorStock(c echo.Context) error {
	hotelID, ok := common.GetHotelIDFromContext(c.Request().Context())
	if !ok {
		return common.SendServerError(c, "missing hotel scope")
	}
	sectorID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, "INVALID_ARGUMENT", err.Error())
	}

	if _, err := h.sectors.GetByID(c.Request().Context(), hotelID, sectorID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return common.SendNotFoundError(c, "sector")
		}
		return common.SendServerError(c, "failed to fetch sector")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	stock, err := h.sectorStock.ListBySector(c.Request().Context(), hotelID, sectorID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "failed to list sector stock")
	}
	return c.JSON(http.StatusOK, stock)
}

func (h *StockHandlers) ListPortioningQueue(c echo.Context) error {
	hotelID, ok := common.GetHotelIDFromContext(c.Request().Context())
	if !ok {
		return common.SendServerError(c, "missing hotel scope")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	entries, err := h.portioning.List(c.Request().Context(), hotelID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "failed to list portioning queue")
	}
	return c.JSON(http.StatusOK, entries)
}

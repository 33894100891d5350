package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/service"
)

// ReservationHandler exposes the reservation engine over HTTP.
// Authentication and role checks are applied by the router.
type ReservationHandler struct {
	Reservations service.Reservations
}

func NewReservationHandler(r service.Reservations) *ReservationHandler {
	if r == nil {
		panic("nil reservations service passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: r}
}

// List handles GET /v1/reservations?status=&from_date=&to_date=.
func (h *ReservationHandler) List(c echo.Context) error {
	out, err := h.Reservations.List(c.Request().Context(), service.ListFilter{
		Status:   c.QueryParam("status"),
		FromDate: c.QueryParam("from_date"),
		ToDate:   c.QueryParam("to_date"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ListByUser handles GET /v1/reservations/user/:userId.
func (h *ReservationHandler) ListByUser(c echo.Context) error {
	out, err := h.Reservations.ListByUser(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/reservations/:id and returns the reservation with
// its user and item details.
func (h *ReservationHandler) Get(c echo.Context) error {
	d, err := h.Reservations.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// Create handles POST /v1/reservations.  201 with the stored reservation.
func (h *ReservationHandler) Create(c echo.Context) error {
	var in service.CreateInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "request body must be a JSON object")
	}
	r, err := h.Reservations.Create(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

// Update handles PUT /v1/reservations/:id with a partial body.
func (h *ReservationHandler) Update(c echo.Context) error {
	var in service.UpdateInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "request body must be a JSON object")
	}
	r, err := h.Reservations.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// Delete handles DELETE /v1/reservations/:id.  204 on success.
func (h *ReservationHandler) Delete(c echo.Context) error {
	if err := h.Reservations.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AvailableTables handles
// GET /v1/restaurants/:id/tables/available?start=&end=&guest_count=.
func (h *ReservationHandler) AvailableTables(c echo.Context) error {
	guests := 0
	if raw := strings.TrimSpace(c.QueryParam("guest_count")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return badRequest(c, service.CodeInvalidGuestCount, "guest_count must be an integer")
		}
		guests = n
	}
	out, err := h.Reservations.AvailableTables(c.Request().Context(), service.TableQuery{
		RestaurantID: c.Param("id"),
		Start:        c.QueryParam("start"),
		End:          c.QueryParam("end"),
		GuestCount:   guests,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Reconcile handles POST /v1/admin/tables/reconcile?restaurant_id=&dry_run=.
// It rebuilds table availability flags from confirmed reservations.
func (h *ReservationHandler) Reconcile(c echo.Context) error {
	dryRun := false
	if raw := c.QueryParam("dry_run"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return badRequest(c, "INVALID_QUERY", "dry_run must be a boolean")
		}
		dryRun = v
	}
	changes, err := h.Reservations.ReconcileTables(c.Request().Context(), c.QueryParam("restaurant_id"), dryRun)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"dry_run": dryRun, "changes": changes})
}

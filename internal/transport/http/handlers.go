package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"slotbook/internal/service/booking"
	"slotbook/internal/transport/wire"
)

type handler struct {
	svc bookingService
	log *slog.Logger
}

func (h *handler) createOwner(c *gin.Context) {
	var req wire.CreateOwnerRequest
	if c.Request.ContentLength != 0 {
		if !h.bind(c, &req) {
			return
		}
	}
	if req.Username == "" {
		req.Username = c.Query("username")
	}
	if req.DisplayName == "" {
		req.DisplayName = firstNonEmpty(c.Query("display_name"), c.Query("displayName"))
	}

	owner, err := h.svc.RegisterOwner(c.Request.Context(), req.Username, req.DisplayName)
	if err != nil {
		h.fail(c, "owner create failed", err)
		return
	}
	c.JSON(http.StatusOK, wire.CreateOwnerResponse{Owner: wire.OwnerOf(owner)})
}

func (h *handler) setAvailability(c *gin.Context) {
	var req wire.SetAvailabilityRequest
	if !h.bind(c, &req) {
		return
	}
	username := usernameOf(c, req.Username)

	start, err := wire.ParseTime("start_time", req.StartTime)
	if err != nil {
		h.fail(c, "invalid request", err)
		return
	}
	end, err := wire.ParseTime("end_time", req.EndTime)
	if err != nil {
		h.fail(c, "invalid request", err)
		return
	}

	rule, err := h.svc.SetAvailability(c.Request.Context(), username, start, end)
	if err != nil {
		h.fail(c, "availability update failed", err)
		return
	}
	c.JSON(http.StatusOK, wire.SetAvailabilityResponse{Rule: wire.RuleOf(rule)})
}

func (h *handler) searchSlots(c *gin.Context) {
	var req wire.SearchSlotsRequest
	if c.Request.Method == http.MethodGet {
		req.Date = c.Query("date")
	} else if !h.bind(c, &req) {
		return
	}
	username := usernameOf(c, req.Username)

	date, err := wire.ParseDate("date", req.Date)
	if err != nil {
		h.fail(c, "invalid request", err)
		return
	}

	slots := h.svc.Search(c.Request.Context(), username, date)
	c.JSON(http.StatusOK, wire.SearchSlotsResponse{Slots: wire.SlotsOf(slots)})
}

func (h *handler) bookAppointment(c *gin.Context) {
	var req wire.BookAppointmentRequest
	if !h.bind(c, &req) {
		return
	}
	username := usernameOf(c, req.Username)

	date, err := wire.ParseDate("date", req.Date)
	if err != nil {
		h.fail(c, "invalid request", err)
		return
	}
	start, err := wire.ParseTime("start_time", req.StartTime)
	if err != nil {
		h.fail(c, "invalid request", err)
		return
	}

	slot, err := h.svc.Book(c.Request.Context(), booking.BookInput{
		Username:     username,
		Date:         date,
		Start:        start,
		InviteeName:  req.InviteeName,
		InviteeEmail: req.InviteeEmail,
	})
	if err != nil {
		h.fail(c, "appointment book failed", err)
		return
	}
	c.JSON(http.StatusCreated, wire.BookAppointmentResponse{Slot: wire.SlotOf(slot)})
}

func (h *handler) listUpcoming(c *gin.Context) {
	appts := h.svc.ListUpcoming(c.Request.Context(), c.Param("username"))
	c.JSON(http.StatusOK, wire.ListUpcomingAppointmentsResponse{Appointments: wire.AppointmentsOf(appts)})
}

func (h *handler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.fail(c, "invalid request", fmt.Errorf("%w: %v", wire.ErrMalformed, err))
		return false
	}
	return true
}

func (h *handler) fail(c *gin.Context, msg string, err error) {
	code, body := errorResponse(err)

	attrs := []any{slog.Any("err", err), slog.String("route", c.FullPath()), slog.String("reason", body.Reason)}
	switch {
	case code >= http.StatusInternalServerError:
		h.log.Error(msg, attrs...)
	case code == http.StatusBadRequest:
		h.log.Warn(msg, attrs...)
	default:
		h.log.Info(msg, attrs...)
	}

	c.AbortWithStatusJSON(code, body)
}

// usernameOf prefers the path parameter over the body field.
func usernameOf(c *gin.Context, fromBody string) string {
	if p := c.Param("username"); p != "" {
		return p
	}
	return fromBody
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

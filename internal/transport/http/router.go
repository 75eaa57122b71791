package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"

	"slotbook/internal/domain"
	"slotbook/internal/service/booking"
)

type bookingService interface {
	RegisterOwner(ctx context.Context, username, displayName string) (domain.Owner, error)
	SetAvailability(ctx context.Context, username string, start, end civil.Time) (domain.AvailabilityRule, error)
	Search(ctx context.Context, username string, date civil.Date) []domain.Slot
	Book(ctx context.Context, in booking.BookInput) (domain.Slot, error)
	ListUpcoming(ctx context.Context, username string) []domain.Appointment
}

type RouterConfig struct {
	// RateLimit is the sustained requests per second allowed per client IP.
	// Zero disables limiting.
	RateLimit float64
	RateBurst int
}

func NewRouter(svc bookingService, cfg RouterConfig, log *slog.Logger) *gin.Engine {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "http.booking"))

	r := gin.New()
	r.Use(gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		log.Error("panic recovered", slog.Any("panic", recovered), slog.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Error: "internal error", Reason: reasonInternal})
	}))
	r.Use(requestLogger(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := &handler{svc: svc, log: log}

	api := r.Group("/api")
	if cfg.RateLimit > 0 {
		api.Use(newClientLimiter(cfg.RateLimit, cfg.RateBurst).middleware(log))
	}

	api.POST("/owners", h.createOwner)
	api.PUT("/owners/:username/availability", h.setAvailability)
	api.GET("/owners/:username/slots", h.searchSlots)
	api.POST("/owners/:username/appointments", h.bookAppointment)
	api.GET("/owners/:username/appointments", h.listUpcoming)

	// Flat routes that carry the username in the body.
	api.POST("/availability", h.setAvailability)
	api.POST("/slots/search", h.searchSlots)
	api.POST("/appointments", h.bookAppointment)

	return r
}

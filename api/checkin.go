package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/Domenick1991/checkin/internal/bus"
	"github.com/Domenick1991/checkin/internal/domain"
	"github.com/Domenick1991/checkin/internal/service/checkin"
	"github.com/gin-gonic/gin"
)

// CheckInCaller is implemented by the bus client that forwards the request to
// the check-in service.
type CheckInCaller interface {
	CheckIn(ctx context.Context, req checkin.CheckInRequest) (*checkin.CheckInResponse, error)
}

type CheckInHandler struct {
	client CheckInCaller
}

type checkInRequest struct {
	SessionToken string `json:"session_token"`
	PNR          string `json:"pnr"`
	LastName     string `json:"last_name"`
	PaidSeat     bool   `json:"paid_seat"`
}

func NewCheckInHandler(client CheckInCaller) *CheckInHandler {
	return &CheckInHandler{client: client}
}

func (h *CheckInHandler) Register(router *gin.RouterGroup) {
	router.POST("/checkin", h.checkIn)
}

func (h *CheckInHandler) checkIn(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.client.CheckIn(c.Request.Context(), checkin.CheckInRequest{
		SessionToken: req.SessionToken,
		PNR:          req.PNR,
		LastName:     req.LastName,
		PaidSeat:     req.PaidSeat,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrPassengerNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSeatTaken):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPaymentMissing), errors.Is(err, domain.ErrPaymentInvalid):
		return http.StatusPaymentRequired
	case errors.Is(err, bus.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

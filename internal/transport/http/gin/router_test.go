package httpgin

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/tanishkhot/mayhouse-sub002/internal/gateway"
	"github.com/tanishkhot/mayhouse-sub002/internal/ledger"
	"github.com/tanishkhot/mayhouse-sub002/internal/service/admin"
	"github.com/tanishkhot/mayhouse-sub002/internal/service/booking"
	"github.com/tanishkhot/mayhouse-sub002/internal/service/payout"
)

func TestRespondErrStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "invalid amount", err: ledger.ErrInvalidAmount, wantStatus: http.StatusBadRequest},
		{name: "self booking", err: ledger.ErrSelfBooking, wantStatus: http.StatusForbidden},
		{name: "unauthorized", err: ledger.ErrUnauthorized, wantStatus: http.StatusForbidden},
		{name: "invalid state", err: ledger.ErrInvalidState, wantStatus: http.StatusConflict},
		{name: "booking not found", err: booking.ErrBookingNotFound, wantStatus: http.StatusNotFound},
		{name: "rate limited", err: booking.ErrRateLimited, wantStatus: http.StatusTooManyRequests},
		{
			name:       "rate limited wrapped",
			err:        fmt.Errorf("booking.Service.Create:%w: retry in 30s", booking.ErrRateLimited),
			wantStatus: http.StatusTooManyRequests,
		},
		{name: "not owner", err: admin.ErrNotOwner, wantStatus: http.StatusForbidden},
		{name: "insufficient credit", err: payout.ErrInsufficientCredit, wantStatus: http.StatusConflict},
		{name: "withdrawal failed", err: payout.ErrWithdrawalFailed, wantStatus: http.StatusBadGateway},
		{name: "transfer failed", err: gateway.ErrTransferFailed, wantStatus: http.StatusBadGateway},
		{name: "unknown", err: fmt.Errorf("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondErr(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRespondErrRateLimitedRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondErr(c, fmt.Errorf("wrapped:%w", booking.ErrRateLimited))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

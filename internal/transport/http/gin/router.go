package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/tanishkhot/mayhouse-sub002/internal/domain"
	"github.com/tanishkhot/mayhouse-sub002/internal/gateway"
	"github.com/tanishkhot/mayhouse-sub002/internal/ledger"
	redisrepo "github.com/tanishkhot/mayhouse-sub002/internal/repository/redis"
	"github.com/tanishkhot/mayhouse-sub002/internal/service"
	"github.com/tanishkhot/mayhouse-sub002/internal/service/admin"
	"github.com/tanishkhot/mayhouse-sub002/internal/service/booking"
	"github.com/tanishkhot/mayhouse-sub002/internal/service/payout"
	"github.com/tanishkhot/mayhouse-sub002/internal/service/query"
)

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Bookings
	r.POST("/bookings", handleCreateBooking(svcs, idem))
	r.POST("/bookings/:id/attended", handleMarkAttended(svcs))
	r.POST("/bookings/:id/no-show", handleMarkNoShow(svcs))
	r.POST("/bookings/:id/cancel", handleCancelBooking(svcs))
	r.GET("/bookings/:id", handleGetBooking(svcs))
	r.GET("/bookings", handleListBookings(svcs))

	// Platform + credits
	r.GET("/platform/config", handleGetPlatformConfig(svcs))
	r.GET("/accounts/:address/credits", handleGetCredits(svcs))
	r.POST("/accounts/withdrawals", handleWithdraw(svcs))

	// Admin API (owner-gated at the service layer)
	adminGroup := r.Group("/admin")
	{
		adminGroup.PUT("/platform/wallet", handleUpdateWallet(svcs))
		adminGroup.PUT("/platform/fee", handleUpdateFeePct(svcs))
		adminGroup.PUT("/platform/stake", handleUpdateStakePct(svcs))
		adminGroup.PUT("/platform/owner", handleTransferOwnership(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Create booking (idempotent)
// @Param    X-Account-Address  header  string  true  "traveler account"
// @Param    req  body  CreateBookingRequest  true  "payload"
// @Header   201  {string}  Idempotency-Key  "echo"
// @Success  201  {object}  CreateBookingResponse
// @Failure  400  {object}  ErrorResponse
// @Failure  403  {object}  ErrorResponse  "self-booking"
// @Failure  429  {object}  ErrorResponse  "rate limited"
// @Router   /bookings [post]
func handleCreateBooking(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerAddress(c)
		if !ok {
			return
		}

		var req CreateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		host, err := domain.ParseAddress(req.Host)
		if err != nil {
			badRequest(c, "invalid host address")
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemBooking(caller.String(), req.EventRunRef, idemKey)

			if payload, ok, _ := idem.GetResult(
				c.Request.Context(),
				idemStorageKey,
			); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(
					http.StatusCreated,
					"application/json; charset=utf-8",
					[]byte(payload),
				)
				return
			}

			locked, err := idem.AcquireLock(
				c.Request.Context(),
				idemStorageKey,
				60*time.Second,
			)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(
					c.Request.Context(),
					idemStorageKey,
				); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(
						http.StatusCreated,
						"application/json; charset=utf-8",
						[]byte(payload),
					)
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(
					http.StatusConflict,
					ErrorResponse{Error: "idempotency key in progress"},
				)
				return
			}
		}

		rlKey := "ip:" + c.ClientIP()

		b, err := svcs.Booking.Create(
			c.Request.Context(),
			req.EventRunRef,
			caller,
			host,
			req.Amount,
			rlKey,
		)
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			respondErr(c, err)
			return
		}

		resp := CreateBookingResponse{
			BookingID:   b.ID,
			EventRunRef: b.EventRunRef,
			PriceAmount: b.PriceAmount,
			StakeAmount: b.StakeAmount,
		}

		if idemStorageKey != "" && idem != nil {
			payload, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(payload))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// @Summary  Report attendance and settle
// @Param    X-Account-Address  header  string  true  "host account"
// @Param    id  path  int  true  "Booking ID"
// @Success  200  {object}  SettlementResponse
// @Failure  403  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse  "already settled or cancelled"
// @Router   /bookings/{id}/attended [post]
func handleMarkAttended(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerAddress(c)
		if !ok {
			return
		}
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		s, err := svcs.Booking.MarkAttended(c.Request.Context(), id, caller)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toSettlementResponse(s))
	}
}

// @Summary  Report no-show and settle
// @Param    X-Account-Address  header  string  true  "host account"
// @Param    id  path  int  true  "Booking ID"
// @Success  200  {object}  SettlementResponse
// @Failure  403  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse  "already settled or cancelled"
// @Router   /bookings/{id}/no-show [post]
func handleMarkNoShow(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerAddress(c)
		if !ok {
			return
		}
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		s, err := svcs.Booking.MarkNoShow(c.Request.Context(), id, caller)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toSettlementResponse(s))
	}
}

// @Summary  Cancel booking before settlement
// @Param    X-Account-Address  header  string  true  "traveler account"
// @Param    id  path  int  true  "Booking ID"
// @Success  200  {object}  CancelBookingResponse
// @Failure  403  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse  "already settled or cancelled"
// @Router   /bookings/{id}/cancel [post]
func handleCancelBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerAddress(c)
		if !ok {
			return
		}
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		s, err := svcs.Booking.Cancel(c.Request.Context(), id, caller)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, CancelBookingResponse{
			BookingID:    s.BookingID,
			RefundAmount: s.TravelerPayout,
		})
	}
}

// @Summary  Get booking
// @Param    id  path  int  true  "Booking ID"
// @Success  200  {object}  BookingResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /bookings/{id} [get]
func handleGetBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		b, err := svcs.Query.GetBooking(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 15s
		writeJSONWithCache(c, http.StatusOK, toBookingResponse(b), "public, max-age=15", true)
	}
}

// @Summary  List bookings
// @Param    traveler  query  string  false  "traveler address"
// @Param    host      query  string  false  "host address"
// @Param    limit     query  int     false  "page size"
// @Param    offset    query  int     false  "offset"
// @Success  200  {array}  BookingResponse
// @Router   /bookings [get]
func handleListBookings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var f domain.BookingFilter

		if s := c.Query("traveler"); s != "" {
			addr, err := domain.ParseAddress(s)
			if err != nil {
				badRequest(c, "invalid traveler address")
				return
			}
			f.Traveler = &addr
		}
		if s := c.Query("host"); s != "" {
			addr, err := domain.ParseAddress(s)
			if err != nil {
				badRequest(c, "invalid host address")
				return
			}
			f.Host = &addr
		}
		f.Limit = parseIntDefault(c.Query("limit"), 100)
		f.Offset = parseIntDefault(c.Query("offset"), 0)

		bookings, err := svcs.Query.ListBookings(c.Request.Context(), f)
		if err != nil {
			respondErr(c, err)
			return
		}

		out := make([]BookingResponse, 0, len(bookings))
		for i := range bookings {
			out = append(out, toBookingResponse(&bookings[i]))
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary  Get platform configuration
// @Success  200  {object}  PlatformConfigResponse
// @Router   /platform/config [get]
func handleGetPlatformConfig(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, err := svcs.Query.PlatformConfig(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		resp := PlatformConfigResponse{
			Owner:    cfg.Owner.String(),
			Wallet:   cfg.Wallet.String(),
			FeePct:   cfg.FeePct,
			StakePct: cfg.StakePct,
			Version:  cfg.Version,
		}
		// ETag + Cache-Control 60s
		writeJSONWithCache(c, http.StatusOK, resp, "public, max-age=60", true)
	}
}

// @Summary  Get withdrawable credit balance
// @Param    address  path  string  true  "account address"
// @Success  200  {object}  CreditBalanceResponse
// @Router   /accounts/{address}/credits [get]
func handleGetCredits(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		addr, err := domain.ParseAddress(c.Param("address"))
		if err != nil {
			badRequest(c, "invalid address")
			return
		}
		balance, err := svcs.Query.CreditBalance(c.Request.Context(), addr)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, CreditBalanceResponse{
			Address: addr.String(),
			Balance: balance,
		})
	}
}

// @Summary  Withdraw fallback credit
// @Param    X-Account-Address  header  string  true  "account"
// @Param    req  body  WithdrawRequest  true  "payload"
// @Success  200  {object}  WithdrawResponse
// @Failure  409  {object}  ErrorResponse  "insufficient balance"
// @Router   /accounts/withdrawals [post]
func handleWithdraw(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerAddress(c)
		if !ok {
			return
		}
		var req WithdrawRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		txHash, err := svcs.Payout.Withdraw(c.Request.Context(), caller, req.Amount)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, WithdrawResponse{TxHash: txHash})
	}
}

// @Summary  Update platform wallet
// @Param    X-Account-Address  header  string  true  "owner account"
// @Param    req  body  UpdateWalletRequest  true  "payload"
// @Success  204
// @Failure  403  {object}  ErrorResponse
// @Router   /admin/platform/wallet [put]
func handleUpdateWallet(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerAddress(c)
		if !ok {
			return
		}
		var req UpdateWalletRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		wallet, err := domain.ParseAddress(req.Wallet)
		if err != nil {
			badRequest(c, "invalid wallet address")
			return
		}
		if err := svcs.Admin.UpdateWallet(c.Request.Context(), caller, wallet); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Update platform fee percentage
// @Param    X-Account-Address  header  string  true  "owner account"
// @Param    req  body  UpdatePercentageRequest  true  "payload"
// @Success  204
// @Failure  400  {object}  ErrorResponse  "out of range"
// @Failure  403  {object}  ErrorResponse
// @Router   /admin/platform/fee [put]
func handleUpdateFeePct(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerAddress(c)
		if !ok {
			return
		}
		var req UpdatePercentageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		if err := svcs.Admin.UpdateFeePct(c.Request.Context(), caller, *req.Pct); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Update stake percentage
// @Param    X-Account-Address  header  string  true  "owner account"
// @Param    req  body  UpdatePercentageRequest  true  "payload"
// @Success  204
// @Failure  400  {object}  ErrorResponse  "out of range"
// @Failure  403  {object}  ErrorResponse
// @Router   /admin/platform/stake [put]
func handleUpdateStakePct(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerAddress(c)
		if !ok {
			return
		}
		var req UpdatePercentageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		if err := svcs.Admin.UpdateStakePct(c.Request.Context(), caller, *req.Pct); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Transfer platform ownership
// @Param    X-Account-Address  header  string  true  "owner account"
// @Param    req  body  TransferOwnershipRequest  true  "payload"
// @Success  204
// @Failure  403  {object}  ErrorResponse
// @Router   /admin/platform/owner [put]
func handleTransferOwnership(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerAddress(c)
		if !ok {
			return
		}
		var req TransferOwnershipRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		newOwner, err := domain.ParseAddress(req.NewOwner)
		if err != nil {
			badRequest(c, "invalid owner address")
			return
		}
		if err := svcs.Admin.TransferOwnership(c.Request.Context(), caller, newOwner); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// --- Helpers ---

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	s := c.Param(name)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	// ledger rules
	case errors.Is(err, ledger.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "booking value must be positive"})
		return
	case errors.Is(err, ledger.ErrSelfBooking):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "host cannot book own experience"})
		return
	case errors.Is(err, ledger.ErrUnauthorized):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "caller is not permitted"})
		return
	case errors.Is(err, ledger.ErrInvalidState):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "booking already settled or cancelled"})
		return
	// booking service
	case errors.Is(err, booking.ErrRateLimited):
		c.Header("Retry-After", "60")
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "too many booking attempts"})
		return
	case errors.Is(err, booking.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "booking not found"})
		return
	case errors.Is(err, booking.ErrEmptyEventRun):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "event run reference is required"})
		return
	// query service
	case errors.Is(err, query.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "booking not found"})
		return
	// admin service
	case errors.Is(err, admin.ErrNotOwner):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "caller is not the platform owner"})
		return
	case errors.Is(err, admin.ErrConfigOutOfRange):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, admin.ErrZeroAddress):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "zero address not allowed"})
		return
	// payout service
	case errors.Is(err, payout.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "withdrawal amount must be positive"})
		return
	case errors.Is(err, payout.ErrInsufficientCredit):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "insufficient credit balance"})
		return
	case errors.Is(err, payout.ErrWithdrawalFailed),
		errors.Is(err, gateway.ErrTransferFailed):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "disbursement failed, credit balance restored"})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

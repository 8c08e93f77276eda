package httpgin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/guillermo-martinez42/cc6-trivago/internal/domain"
	"github.com/guillermo-martinez42/cc6-trivago/internal/refdata"
	redisrepo "github.com/guillermo-martinez42/cc6-trivago/internal/repository/redis"
	"github.com/guillermo-martinez42/cc6-trivago/internal/service"
	"github.com/guillermo-martinez42/cc6-trivago/internal/service/booking"
	"github.com/guillermo-martinez42/cc6-trivago/internal/service/flights"
	"github.com/guillermo-martinez42/cc6-trivago/internal/service/payment"
	"github.com/guillermo-martinez42/cc6-trivago/internal/service/seats"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// IdempotencyStore is the slice of the redis idempotency store handlePay
// depends on, so payment replay can be tested without redis.
type IdempotencyStore interface {
	AcquireLock(ctx context.Context, key string, lockTTL time.Duration) (bool, error)
	SaveResult(ctx context.Context, key string, jsonPayload string) error
	GetResult(ctx context.Context, key string) (string, bool, error)
	Release(ctx context.Context, key string) error
}

func NewRouter(
	svcs *service.Services,
	idem IdempotencyStore,
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

	// Reference data
	r.GET("/airports", handleListAirports())
	r.GET("/issuers", handleListIssuers())

	// Flight search and seat maps
	r.GET("/flights", handleSearchFlights(svcs))
	r.GET("/flights/:airline/:number/seats", handleSeatMap(svcs))

	// Card sanity check (no registry lookup)
	r.POST("/cards/check", handleCheckCard())

	// Booking lifecycle
	r.POST("/bookings", handleCreateBooking(svcs))
	r.GET("/bookings/:id", handleGetBooking(svcs))
	r.PUT("/bookings/:id/flight", handleSelectFlight(svcs))
	r.POST("/bookings/:id/seats", handleSelectSeats(svcs))
	r.POST("/bookings/:id/pay", handlePay(svcs, idem))
	r.DELETE("/bookings/:id", handleAbandon(svcs))

	// Purchase history
	r.GET("/users/:id/tickets", handleUserTickets(svcs))
	r.GET("/users/:id/transactions", handleUserTransactions(svcs))

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  List airports
// @Success  200  {array}  domain.Airport
// @Router   /airports [get]
func handleListAirports() gin.HandlerFunc {
	return func(c *gin.Context) {
		// reference data never changes at runtime
		writeJSONWithCache(c, http.StatusOK, refdata.Airports, time.Hour)
	}
}

// @Summary  List card issuers
// @Success  200  {array}  domain.CardIssuer
// @Router   /issuers [get]
func handleListIssuers() gin.HandlerFunc {
	return func(c *gin.Context) {
		writeJSONWithCache(c, http.StatusOK, refdata.Issuers, time.Hour)
	}
}

// @Summary  Search flights
// @Param    origin       query  string  true   "Origin IATA code"
// @Param    destination  query  string  true   "Destination IATA code"
// @Param    date         query  string  true   "Travel date YYYY-MM-DD"
// @Param    passengers   query  int     false  "Passenger count (default 1)"
// @Param    min_price    query  number  false  "Min total price"
// @Param    max_price    query  number  false  "Max total price"
// @Param    departure_from query string false  "Earliest departure HHMM"
// @Param    departure_to query  string  false  "Latest departure HHMM"
// @Param    max_duration query  int     false  "Max duration in minutes"
// @Param    airlines     query  string  false  "Comma-separated airline codes"
// @Param    min_seats    query  int     false  "Min available seats"
// @Param    sort         query  string  false  "price|time|duration|airline|availability"
// @Param    order        query  string  false  "asc|desc"
// @Success  200  {array}   domain.EnrichedFlight
// @Failure  400  {object}  ErrorResponse
// @Router   /flights [get]
func handleSearchFlights(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q SearchQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			badRequest(c, err.Error())
			return
		}

		results, err := svcs.Flights.Search(c.Request.Context(), q.Origin, q.Destination, q.Date)
		if err != nil {
			respondErr(c, err)
			return
		}

		var airlineCodes []string
		if q.Airlines != "" {
			airlineCodes = strings.Split(q.Airlines, ",")
		}

		results = flights.Filter(results, flights.Filters{
			MinPrice:           q.MinPrice,
			MaxPrice:           q.MaxPrice,
			DepartureStartMins: hhmmToMinutes(q.DepartureFrom),
			DepartureEndMins:   hhmmToMinutes(q.DepartureTo),
			MaxDurationMins:    q.MaxDuration,
			Airlines:           airlineCodes,
			MinSeats:           q.MinSeats,
			Passengers:         q.Passengers,
		})

		if q.Sort != "" {
			results = flights.Sort(results, flights.SortKey(q.Sort), q.Order)
		}

		// short cache; availability shifts as seats sell
		writeJSONWithCache(c, http.StatusOK, results, 15*time.Second)
	}
}

// @Summary  Seat map for a flight instance
// @Param    airline  path   string  true  "Airline code"
// @Param    number   path   string  true  "Flight number"
// @Param    date     query  string  true  "Travel date YYYY-MM-DD"
// @Success  200  {array}   domain.SeatWithStatus
// @Failure  404  {object}  ErrorResponse
// @Router   /flights/{airline}/{number}/seats [get]
func handleSeatMap(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		date := c.Query("date")
		if date == "" {
			badRequest(c, "missing date")
			return
		}

		seatMap, err := svcs.Seats.SeatMap(
			c.Request.Context(),
			c.Param("airline"),
			c.Param("number"),
			date,
		)
		if err != nil {
			respondErr(c, err)
			return
		}

		writeJSONWithCache(c, http.StatusOK, seatMap, 15*time.Second)
	}
}

// @Summary  Luhn-check a card number
// @Param    req  body  CheckCardRequest  true  "payload"
// @Success  200  {object}  CheckCardResponse
// @Router   /cards/check [post]
func handleCheckCard() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckCardRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		number := strings.ReplaceAll(strings.ReplaceAll(req.Number, " ", ""), "-", "")

		c.JSON(http.StatusOK, CheckCardResponse{
			Valid:  payment.Luhn(number),
			Masked: payment.MaskNumber(number),
		})
	}
}

// @Summary  Open a booking session
// @Param    req  body  CreateBookingRequest  true  "payload"
// @Success  201  {object}  domain.Booking
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /bookings [post]
func handleCreateBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		b, err := svcs.Booking.Create(
			c.Request.Context(),
			domain.User{
				ID:       req.User.ID,
				FullName: req.User.FullName,
				Document: req.User.Document,
				Email:    req.User.Email,
			},
			req.Airline,
			req.Number,
			req.Date,
			req.Passengers,
		)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, b)
	}
}

// @Summary  Get a booking session
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200  {object}  domain.Booking
// @Failure  404  {object}  ErrorResponse
// @Router   /bookings/{id} [get]
func handleGetBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		b, err := svcs.Booking.Get(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Re-select the flight of a booking
// @Param    id   path  string               true  "Booking ID (uuid)"
// @Param    req  body  SelectFlightRequest  true  "payload"
// @Success  200  {object}  domain.Booking
// @Failure  400  {object}  ErrorResponse
// @Router   /bookings/{id}/flight [put]
func handleSelectFlight(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		var req SelectFlightRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		b, err := svcs.Booking.SelectFlight(
			c.Request.Context(),
			id,
			req.Airline,
			req.Number,
			req.Date,
			req.Passengers,
		)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Select seats on a booking
// @Param    id   path  string              true  "Booking ID (uuid)"
// @Param    req  body  SelectSeatsRequest  true  "payload"
// @Success  200  {object}  domain.Booking
// @Failure  400  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse  "seat already occupied"
// @Router   /bookings/{id}/seats [post]
func handleSelectSeats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		var req SelectSeatsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		b, err := svcs.Booking.SelectSeats(c.Request.Context(), id, req.Seats)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Pay for a booking (idempotent)
// @Param    id   path  string      true  "Booking ID (uuid)"
// @Param    req  body  PayRequest  true  "payload"
// @Header   201  {string}  Idempotency-Key  "echo"
// @Success  201  {object}  booking.PayResult
// @Failure  402  {object}  booking.PayResult  "authorization denied"
// @Failure  409  {object}  ErrorResponse  "seats taken / idem in progress"
// @Failure  429  {object}  ErrorResponse  "rate limited"
// @Router   /bookings/{id}/pay [post]
func handlePay(svcs *service.Services, idem IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		var req PayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemPurchase(id.String(), idemKey)

			if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
				return
			}

			locked, err := idem.AcquireLock(c.Request.Context(), idemStorageKey, 60*time.Second)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
				return
			}
		}

		rlKey := "card:" + c.ClientIP()

		result, err := svcs.Booking.Pay(
			c.Request.Context(),
			id,
			payment.AuthorizeInput{
				Number: req.CardNumber,
				Holder: req.CardHolder,
				Expiry: req.Expiry,
				CVV:    req.CVV,
			},
			rlKey,
		)
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			if errors.Is(err, payment.ErrRateLimited) {
				c.Header("Retry-After", "60")
				c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: err.Error()})
				return
			}
			respondErr(c, err)
			return
		}

		// A denial is retryable with corrected card input, so it is never
		// pinned to the idempotency key.
		if result.Authorization.Status == domain.AuthDenied {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			c.JSON(http.StatusPaymentRequired, result)
			return
		}

		if idemStorageKey != "" && idem != nil {
			b, _ := json.Marshal(result)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, result)
	}
}

// @Summary  Abandon a booking session
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  204
// @Failure  404  {object}  ErrorResponse
// @Router   /bookings/{id} [delete]
func handleAbandon(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		if err := svcs.Booking.Abandon(c.Request.Context(), id); err != nil {
			respondErr(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// @Summary  List a user's tickets
// @Param    id  path  int  true  "User ID"
// @Success  200  {array}  domain.Ticket
// @Router   /users/{id}/tickets [get]
func handleUserTickets(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		tickets, err := svcs.Booking.Tickets(c.Request.Context(), userID)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, tickets)
	}
}

// @Summary  List a user's transactions
// @Param    id  path  int  true  "User ID"
// @Success  200  {array}  domain.Transaction
// @Router   /users/{id}/transactions [get]
func handleUserTransactions(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		txns, err := svcs.Booking.Transactions(c.Request.Context(), userID)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, txns)
	}
}

// --- Helpers ---

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func hhmmToMinutes(s string) int {
	if len(s) != 4 {
		return 0
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil {
		return 0
	}
	m, err := strconv.Atoi(s[2:])
	if err != nil {
		return 0
	}
	return h*60 + m
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var conflict *seats.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{
			"error": "seats unavailable",
			"seats": conflict.Seats,
		})
		return
	}

	switch {
	// flights service
	case errors.Is(err, flights.ErrInvalidSearch):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid search"})
		return
	case errors.Is(err, flights.ErrFlightNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "flight not found"})
		return
	// seats service
	case errors.Is(err, seats.ErrFlightNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "flight not found"})
		return
	case errors.Is(err, seats.ErrSeatOccupied):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "seat occupied"})
		return
	// booking service
	case errors.Is(err, booking.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "booking not found"})
		return
	case errors.Is(err, booking.ErrFlightNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "flight not found"})
		return
	case errors.Is(err, booking.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid travel date"})
		return
	case errors.Is(err, booking.ErrNotOperating):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "flight does not operate on that date"})
		return
	// domain state machine
	case errors.Is(err, domain.ErrSeatCountMismatch):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

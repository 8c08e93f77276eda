package domain

import (
	"time"

	"github.com/google/uuid"
)

// Airport is immutable reference data, keyed by IATA code.
type Airport struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// Weekday is a Spanish day-of-week name ("lunes", "martes", ...),
// matching the operating-day notation of the flight schedule.
type Weekday string

const (
	Domingo   Weekday = "domingo"
	Lunes     Weekday = "lunes"
	Martes    Weekday = "martes"
	Miercoles Weekday = "miercoles"
	Jueves    Weekday = "jueves"
	Viernes   Weekday = "viernes"
	Sabado    Weekday = "sabado"
)

// Flight is immutable reference data. Key = (Airline, Number).
// DepartureTime is "HHMM", Duration is "HH:MM".
type Flight struct {
	Airline       string    `json:"airline"`
	AirlineName   string    `json:"airline_name"`
	Number        string    `json:"number"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime string    `json:"departure_time"`
	Duration      string    `json:"duration"`
	Price         float64   `json:"price"`
	Aircraft      string    `json:"aircraft"`
	OperatingDays []Weekday `json:"operating_days"`
}

// Code returns the public flight code, e.g. "CA123".
func (f Flight) Code() string { return f.Airline + f.Number }

// OperatesOn reports whether the flight runs on the given weekday.
func (f Flight) OperatesOn(day Weekday) bool {
	for _, d := range f.OperatingDays {
		if d == day {
			return true
		}
	}
	return false
}

// PriceCategory buckets a fare for display and filtering.
type PriceCategory string

const (
	PriceEconomico PriceCategory = "economico"
	PriceMedio     PriceCategory = "medio"
	PriceAlto      PriceCategory = "alto"
	PricePremium   PriceCategory = "premium"
)

// EnrichedFlight is a Flight plus the computed fields search results carry.
type EnrichedFlight struct {
	Flight
	Date             string        `json:"date"`
	ArrivalTime      string        `json:"arrival_time"`
	SeatsAvailable   int           `json:"seats_available"`
	OccupancyPercent int           `json:"occupancy_percent"`
	Category         PriceCategory `json:"price_category"`
	DurationMinutes  int           `json:"duration_minutes"`
	DepartureMinutes int           `json:"departure_minutes"`
}

// SeatTemplate describes the cabin of an aircraft type: RowCount rows,
// each with the ordered seat letters in Letters.
type SeatTemplate struct {
	Aircraft string   `json:"aircraft"`
	RowCount int      `json:"row_count"`
	Letters  []string `json:"letters"`
}

// TotalSeats is the template capacity.
func (t SeatTemplate) TotalSeats() int { return t.RowCount * len(t.Letters) }

// Seat is a single cabin position. Code is row+letter, e.g. "12C".
type Seat struct {
	Row    int    `json:"row"`
	Letter string `json:"letter"`
	Code   string `json:"code"`
}

// SeatWithStatus is a Seat plus its occupancy on a concrete flight instance.
type SeatWithStatus struct {
	Seat
	Occupied bool `json:"occupied"`
}

// CardAccount is a mock card-registry record. Available is the only mutable
// field; it decreases on approved authorizations and must never go negative.
type CardAccount struct {
	Number    string  `json:"number"`
	Holder    string  `json:"holder"`
	Expiry    string  `json:"expiry"` // YYYYMM
	CVV       string  `json:"-"`
	Limit     float64 `json:"limit"`
	Available float64 `json:"available"`
	Issuer    string  `json:"issuer"`
}

// CardIssuer is the processor a card settles through.
type CardIssuer struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Host   string `json:"host"`
	Script string `json:"script"`
}

// AuthStatus is the outcome of a card authorization.
type AuthStatus string

const (
	AuthApproved AuthStatus = "APROBADO"
	AuthDenied   AuthStatus = "DENEGADO"
)

// DenialReason explains a denied authorization, in check order.
type DenialReason string

const (
	DenialCardNotFound      DenialReason = "card_not_found"
	DenialExpired           DenialReason = "expired"
	DenialInsufficientFunds DenialReason = "insufficient_funds"
)

// Authorization is the result returned by the card processor.
type Authorization struct {
	Status AuthStatus   `json:"status"`
	Code   string       `json:"code"`
	Issuer string       `json:"issuer,omitempty"`
	Reason DenialReason `json:"reason,omitempty"`
}

// Ticket is issued once per seat after a successful authorization and a full
// seat reservation. Immutable afterwards.
type Ticket struct {
	ID            uuid.UUID `json:"id"`
	Number        string    `json:"number"`
	UserID        int64     `json:"user_id"`
	Passenger     string    `json:"passenger"`
	Document      string    `json:"document"`
	Airline       string    `json:"airline"`
	AirlineName   string    `json:"airline_name"`
	FlightNumber  string    `json:"flight_number"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	Date          string    `json:"date"`
	DepartureTime string    `json:"departure_time"`
	Duration      string    `json:"duration"`
	Aircraft      string    `json:"aircraft"`
	Seat          string    `json:"seat"`
	Price         float64   `json:"price"`
	AuthCode      string    `json:"auth_code"`
	IssuedAt      time.Time `json:"issued_at"`
}

// Transaction is the durable record of a purchase or a payment attempt.
type Transaction struct {
	ID            uuid.UUID  `json:"id"`
	UserID        int64      `json:"user_id"`
	FlightCode    string     `json:"flight_code"`
	Date          string     `json:"date"`
	Seats         []string   `json:"seats"`
	Amount        float64    `json:"amount"`
	Status        AuthStatus `json:"status"`
	AuthCode      string     `json:"auth_code,omitempty"`
	CardLastFour  string     `json:"card_last_four"`
	TicketNumbers []string   `json:"ticket_numbers,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// User is the already-authenticated identity the core receives as input.
type User struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Document string `json:"document"`
	Email    string `json:"email"`
}

package httpgin

type SearchQuery struct {
	Origin      string `form:"origin" binding:"required"`
	Destination string `form:"destination" binding:"required"`
	Date        string `form:"date" binding:"required"`
	Passengers  int    `form:"passengers"`

	MinPrice      float64 `form:"min_price"`
	MaxPrice      float64 `form:"max_price"`
	DepartureFrom string  `form:"departure_from"`
	DepartureTo   string  `form:"departure_to"`
	MaxDuration   int     `form:"max_duration"`
	Airlines      string  `form:"airlines"`
	MinSeats      int     `form:"min_seats"`

	Sort  string `form:"sort"`
	Order string `form:"order"`
}

type CreateBookingRequest struct {
	User       UserInput `json:"user" binding:"required"`
	Airline    string    `json:"airline" binding:"required"`
	Number     string    `json:"number" binding:"required"`
	Date       string    `json:"date" binding:"required"`
	Passengers int       `json:"passengers" binding:"required,gt=0"`
}

type UserInput struct {
	ID       int64  `json:"id" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Document string `json:"document" binding:"required"`
	Email    string `json:"email"`
}

type SelectFlightRequest struct {
	Airline    string `json:"airline" binding:"required"`
	Number     string `json:"number" binding:"required"`
	Date       string `json:"date" binding:"required"`
	Passengers int    `json:"passengers" binding:"required,gt=0"`
}

type SelectSeatsRequest struct {
	Seats []string `json:"seats" binding:"required,min=1,dive,required"`
}

type PayRequest struct {
	CardNumber string `json:"card_number" binding:"required"`
	CardHolder string `json:"card_holder" binding:"required"`
	Expiry     string `json:"expiry" binding:"required"`
	CVV        string `json:"cvv" binding:"required"`
}

type CheckCardRequest struct {
	Number string `json:"number" binding:"required"`
}

type CheckCardResponse struct {
	Valid  bool   `json:"valid"`
	Masked string `json:"masked"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

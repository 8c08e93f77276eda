// Package refdata holds the static sample data the demo runs on: airports,
// airline schedules, seat templates, the mock card registry and a set of
// pre-occupied seats. Everything here is read-only; mutable state (seat
// occupancy, card balances) lives in the memory repositories seeded from it.
package refdata

import (
	"fmt"
	"strings"
	"time"

	"github.com/guillermo-martinez42/cc6-trivago/internal/domain"
)

// Airline groups a carrier with its schedule.
type Airline struct {
	Code    string
	Name    string
	Flights []domain.Flight
}

var Airports = []domain.Airport{
	{Code: "GUA", Name: "La Aurora, Guatemala City", City: "Guatemala City", Country: "Guatemala"},
	{Code: "MIA", Name: "Miami International Airport", City: "Miami", Country: "Estados Unidos"},
	{Code: "FLW", Name: "Flores Airport", City: "Flores", Country: "Guatemala"},
	{Code: "LAX", Name: "Los Angeles International", City: "Los Angeles", Country: "Estados Unidos"},
	{Code: "JFK", Name: "John F. Kennedy International", City: "New York", Country: "Estados Unidos"},
	{Code: "MAD", Name: "Madrid-Barajas Airport", City: "Madrid", Country: "España"},
	{Code: "MEX", Name: "Mexico City International", City: "Mexico City", Country: "México"},
	{Code: "PTY", Name: "Tocumen International", City: "Panama City", Country: "Panamá"},
}

var allDays = []domain.Weekday{
	domain.Lunes, domain.Martes, domain.Miercoles, domain.Jueves,
	domain.Viernes, domain.Sabado, domain.Domingo,
}

var Airlines = []Airline{
	{
		Code: "CA", Name: "Air China",
		Flights: []domain.Flight{
			{Number: "123", Origin: "GUA", Destination: "FLW", DepartureTime: "0800", Duration: "01:15", Price: 450, Aircraft: "Airbus A320", OperatingDays: []domain.Weekday{domain.Lunes, domain.Miercoles, domain.Viernes, domain.Domingo}},
			{Number: "124", Origin: "FLW", Destination: "GUA", DepartureTime: "1000", Duration: "01:15", Price: 450, Aircraft: "Airbus A320", OperatingDays: []domain.Weekday{domain.Lunes, domain.Miercoles, domain.Viernes, domain.Domingo}},
			{Number: "201", Origin: "GUA", Destination: "MIA", DepartureTime: "1400", Duration: "03:30", Price: 850, Aircraft: "Boeing 737", OperatingDays: []domain.Weekday{domain.Martes, domain.Jueves, domain.Sabado}},
			{Number: "202", Origin: "MIA", Destination: "GUA", DepartureTime: "1800", Duration: "03:30", Price: 850, Aircraft: "Boeing 737", OperatingDays: []domain.Weekday{domain.Martes, domain.Jueves, domain.Sabado}},
		},
	},
	{
		Code: "AA", Name: "American Airlines",
		Flights: []domain.Flight{
			{Number: "501", Origin: "MIA", Destination: "LAX", DepartureTime: "0630", Duration: "05:45", Price: 1200, Aircraft: "Boeing 777", OperatingDays: allDays},
			{Number: "502", Origin: "LAX", Destination: "MIA", DepartureTime: "1030", Duration: "04:30", Price: 1200, Aircraft: "Boeing 777", OperatingDays: allDays},
			{Number: "301", Origin: "MIA", Destination: "JFK", DepartureTime: "0900", Duration: "02:45", Price: 650, Aircraft: "Airbus A321", OperatingDays: allDays},
			{Number: "302", Origin: "JFK", Destination: "MIA", DepartureTime: "1500", Duration: "02:45", Price: 650, Aircraft: "Airbus A321", OperatingDays: allDays},
		},
	},
	{
		Code: "QR", Name: "Qatar Airways",
		Flights: []domain.Flight{
			{Number: "701", Origin: "MAD", Destination: "GUA", DepartureTime: "1100", Duration: "10:30", Price: 1800, Aircraft: "Airbus A350", OperatingDays: []domain.Weekday{domain.Martes, domain.Jueves, domain.Sabado}},
			{Number: "702", Origin: "GUA", Destination: "MAD", DepartureTime: "2200", Duration: "11:15", Price: 1800, Aircraft: "Airbus A350", OperatingDays: []domain.Weekday{domain.Miercoles, domain.Viernes, domain.Domingo}},
			{Number: "801", Origin: "MAD", Destination: "MEX", DepartureTime: "1630", Duration: "11:45", Price: 1600, Aircraft: "Boeing 787", OperatingDays: []domain.Weekday{domain.Lunes, domain.Miercoles, domain.Viernes, domain.Domingo}},
		},
	},
	{
		Code: "JL", Name: "Japan Air",
		Flights: []domain.Flight{
			{Number: "401", Origin: "PTY", Destination: "GUA", DepartureTime: "0745", Duration: "02:15", Price: 520, Aircraft: "Boeing 737 MAX", OperatingDays: allDays},
			{Number: "402", Origin: "GUA", Destination: "PTY", DepartureTime: "1130", Duration: "02:15", Price: 520, Aircraft: "Boeing 737 MAX", OperatingDays: allDays},
			{Number: "601", Origin: "PTY", Destination: "MIA", DepartureTime: "1420", Duration: "02:45", Price: 480, Aircraft: "Embraer E190", OperatingDays: allDays},
		},
	},
	{
		Code: "AF", Name: "Air France",
		Flights: []domain.Flight{
			{Number: "901", Origin: "GUA", Destination: "JFK", DepartureTime: "0615", Duration: "04:45", Price: 1100, Aircraft: "Airbus A330", OperatingDays: allDays},
			{Number: "902", Origin: "JFK", Destination: "GUA", DepartureTime: "1245", Duration: "05:15", Price: 1100, Aircraft: "Airbus A330", OperatingDays: allDays},
			{Number: "903", Origin: "LAX", Destination: "MAD", DepartureTime: "1545", Duration: "11:20", Price: 1950, Aircraft: "Boeing 787", OperatingDays: []domain.Weekday{domain.Martes, domain.Jueves, domain.Sabado}},
		},
	},
	{
		Code: "AV", Name: "Avianca",
		Flights: []domain.Flight{
			{Number: "801", Origin: "GUA", Destination: "MEX", DepartureTime: "0730", Duration: "02:30", Price: 380, Aircraft: "Airbus A320", OperatingDays: allDays},
			{Number: "802", Origin: "MEX", Destination: "GUA", DepartureTime: "1115", Duration: "02:30", Price: 380, Aircraft: "Airbus A320", OperatingDays: allDays},
			{Number: "803", Origin: "MEX", Destination: "LAX", DepartureTime: "1435", Duration: "04:15", Price: 750, Aircraft: "Boeing 737", OperatingDays: []domain.Weekday{domain.Miercoles, domain.Viernes, domain.Domingo}},
			{Number: "804", Origin: "LAX", Destination: "MEX", DepartureTime: "1920", Duration: "03:45", Price: 750, Aircraft: "Boeing 737", OperatingDays: []domain.Weekday{domain.Miercoles, domain.Viernes, domain.Domingo}},
		},
	},
}

var Cards = []domain.CardAccount{
	{Number: "1234567812345678", Holder: "JUAN PEREZ", Expiry: "202412", CVV: "123", Limit: 5000, Available: 3000, Issuer: "VISA"},
	{Number: "9876543210987654", Holder: "MARIA GARCIA", Expiry: "202511", CVV: "456", Limit: 8000, Available: 6500, Issuer: "MAST"},
	{Number: "5555444433332222", Holder: "CARLOS RODRIGUEZ", Expiry: "202610", CVV: "789", Limit: 3000, Available: 2800, Issuer: "VISA"},
	{Number: "4444333322221111", Holder: "ANA MARTINEZ", Expiry: "202503", CVV: "321", Limit: 10000, Available: 8200, Issuer: "MAST"},
	{Number: "1111222233334444", Holder: "LUIS GOMEZ", Expiry: "202409", CVV: "654", Limit: 6000, Available: 4500, Issuer: "AMEX"},
}

var Issuers = []domain.CardIssuer{
	{Code: "VISA", Name: "Visa International", Host: "visa-processor.com", Script: "authorize_payment"},
	{Code: "MAST", Name: "Mastercard", Host: "mastercard-processor.com", Script: "process_payment"},
	{Code: "AMEX", Name: "American Express", Host: "amex-processor.com", Script: "validate_transaction"},
}

// SeatTemplates keys cabin layouts by aircraft type. The demo fleet is
// uniform: 20 rows of A-D.
var SeatTemplates = func() map[string]domain.SeatTemplate {
	types := []string{
		"Airbus A320", "Boeing 737", "Boeing 777", "Airbus A321",
		"Airbus A350", "Boeing 787", "Boeing 737 MAX", "Embraer E190",
	}
	m := make(map[string]domain.SeatTemplate, len(types))
	for _, t := range types {
		m[t] = domain.SeatTemplate{Aircraft: t, RowCount: 20, Letters: []string{"A", "B", "C", "D"}}
	}
	return m
}()

// SeededOccupied is the demo occupancy, keyed by flight-instance key.
var SeededOccupied = map[string][]string{
	"CA-123-20250909": {"1A", "1B", "2C", "3A", "5B", "7D", "10A", "12C", "15B", "18A"},
	"CA-124-20250909": {"2A", "3B", "4C", "6A", "8B", "9D", "11A", "13C", "16B", "19A"},
	"AA-501-20250909": {"1A", "1B", "1C", "2A", "3B", "4D", "5A", "6C", "7B", "8A", "9D", "10B", "11A", "12C", "14B", "16A"},
	"AA-302-20250909": {"2B", "3A", "4C", "5D", "7A", "8B", "9C", "11A", "12D", "14B", "15A", "17C", "19B"},
	"QR-701-20250909": {"1A", "1B", "1C", "1D", "2A", "2B", "3C", "4A", "5B", "6D", "7A", "8C", "9B", "10A"},
	"JL-401-20250909": {"3A", "4B", "5C", "6A", "7D", "9B", "10A", "11C", "13B", "14A", "16C", "17D"},
	"AF-901-20250909": {"1A", "2B", "3C", "4D", "6A", "7B", "9C", "11A", "13D", "15B", "17A", "19C"},
	"AV-801-20250909": {"2A", "4B", "6C", "8D", "10A", "12B", "14C", "16D", "18A", "20B"},
}

// AirportByCode returns the airport or nil when the code is unknown.
func AirportByCode(code string) *domain.Airport {
	for i := range Airports {
		if Airports[i].Code == code {
			return &Airports[i]
		}
	}
	return nil
}

// AirlineByCode returns the carrier or nil when the code is unknown.
func AirlineByCode(code string) *Airline {
	for i := range Airlines {
		if Airlines[i].Code == code {
			return &Airlines[i]
		}
	}
	return nil
}

// FlightByKey resolves a flight by its (airline, number) key, with the
// carrier name filled in. Nil on a miss.
func FlightByKey(airline, number string) *domain.Flight {
	a := AirlineByCode(airline)
	if a == nil {
		return nil
	}
	for _, f := range a.Flights {
		if f.Number == number {
			f.Airline = a.Code
			f.AirlineName = a.Name
			return &f
		}
	}
	return nil
}

// AllFlights returns every flight in declaration order, with the carrier
// code and name filled in.
func AllFlights() []domain.Flight {
	var out []domain.Flight
	for _, a := range Airlines {
		for _, f := range a.Flights {
			f.Airline = a.Code
			f.AirlineName = a.Name
			out = append(out, f)
		}
	}
	return out
}

var weekdays = [...]domain.Weekday{
	domain.Domingo, domain.Lunes, domain.Martes, domain.Miercoles,
	domain.Jueves, domain.Viernes, domain.Sabado,
}

// DayOfWeek maps an ISO date ("2025-09-08") to its Spanish weekday name.
func DayOfWeek(date string) (domain.Weekday, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("refdata.DayOfWeek: %w", err)
	}
	return weekdays[int(t.Weekday())], nil
}

// InstanceKey builds the flight-instance key, e.g. "CA-123-20250909".
func InstanceKey(airline, number, date string) string {
	return fmt.Sprintf("%s-%s-%s", airline, number, strings.ReplaceAll(date, "-", ""))
}

// FormatTime renders "HHMM" as "HH:MM"; other inputs pass through unchanged.
func FormatTime(hhmm string) string {
	if len(hhmm) == 4 {
		return hhmm[:2] + ":" + hhmm[2:]
	}
	return hhmm
}

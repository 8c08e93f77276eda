package redisx

import "fmt"

const ns = "skyreserva:v1"

// KeySearch caches enriched search results for a route on a date.
func KeySearch(origin, destination, date string) string {
	return fmt.Sprintf("%s:search:%s:%s:%s", ns, origin, destination, date)
}

// KeySeatMap caches the seat map of one flight instance.
func KeySeatMap(flightKey string) string {
	return fmt.Sprintf("%s:flight:%s:seatmap", ns, flightKey)
}

// KeyAvailability caches the available-seat count of one flight instance.
func KeyAvailability(flightKey string) string {
	return fmt.Sprintf("%s:flight:%s:availability", ns, flightKey)
}

func ChannelSeatsChanged() string {
	return ns + ":seats:changed"
}

package domain

import "time"

// Flight is the view of a flight record owned by the flights service.
type Flight struct {
	ID            int64     `json:"id"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	SeatCapacity  int       `json:"seat_capacity"`
}

package domain

import "time"

// Observation is one booking-history row: occupancy and price for a room type
// on a calendar date.
type Observation struct {
	Date          time.Time `json:"date"`
	RoomType      string    `json:"room_type"`
	Price         float64   `json:"price"`
	OccupancyRate float64   `json:"occupancy_rate"`
}

// RevPAR is revenue per available room: price × occupancy rate.
func (o Observation) RevPAR() float64 {
	return o.Price * o.OccupancyRate
}

// FilterRoomType returns the observations matching roomType, preserving order.
// An empty roomType matches everything.
func FilterRoomType(obs []Observation, roomType string) []Observation {
	if roomType == "" {
		return obs
	}
	out := make([]Observation, 0, len(obs))
	for _, o := range obs {
		if o.RoomType == roomType {
			out = append(out, o)
		}
	}
	return out
}

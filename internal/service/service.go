package service

import (
	"github.com/hotelrevenue/backend/internal/domain"
)

// BookingRepository is re-exported from domain for convenience
type BookingRepository = domain.BookingRepository

package repository

import (
	"milan/internal/database"
)

type Repositories struct {
	Bookings *BookingRepository
	Students *StudentRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Bookings: NewBookingRepository(db),
		Students: NewStudentRepository(db),
	}
}

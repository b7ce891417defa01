package repositories

import (
	"context"

	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/entities"
)

// DoctorFilters narrows doctor listings
type DoctorFilters struct {
	Speciality    string
	AvailableOnly bool
}

// DoctorRepository defines the interface for doctor persistence
type DoctorRepository interface {
	Create(ctx context.Context, doctor *entities.Doctor) error
	GetByID(ctx context.Context, id string) (*entities.Doctor, error)
	GetByEmail(ctx context.Context, email string) (*entities.Doctor, error)
	List(ctx context.Context, filters DoctorFilters) ([]*entities.Doctor, error)
	SetAvailability(ctx context.Context, id string, available bool) error
	// SlotMap returns the currently booked slots for a doctor keyed by
	// ISO date, derived from the doctor_slots table.
	SlotMap(ctx context.Context, doctorID string) (entities.SlotMap, error)
}

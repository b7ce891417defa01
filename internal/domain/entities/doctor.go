package entities

import "time"

// Doctor represents a bookable practitioner profile
type Doctor struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Speciality   string    `json:"speciality" db:"speciality"`
	Degree       string    `json:"degree" db:"degree"`
	Experience   string    `json:"experience" db:"experience"`
	About        string    `json:"about" db:"about"`
	Fees         int64     `json:"fees" db:"fees"` // minor currency units
	AddressLine1 string    `json:"address_line1" db:"address_line1"`
	AddressLine2 string    `json:"address_line2" db:"address_line2"`
	ImageURL     string    `json:"image_url" db:"image_url"`
	Available    bool      `json:"available" db:"available"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// SlotMap is the per-doctor view of booked slots: ISO date -> ordered time labels.
// A time label appears at most once per date; the doctor_slots unique
// constraint is the source of truth.
type SlotMap map[string][]string

package entities

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SlotDateLayout is the wire format for slot dates.
const SlotDateLayout = "2006-01-02"

// Appointment is the sole record of a booking transaction. It is
// append-only except for the cancelled/paid/completed flags.
type Appointment struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`
	DocID  string `json:"doctor_id" db:"doctor_id"`

	// Denormalized snapshots taken at booking time.
	UserName         string `json:"user_name" db:"user_name"`
	UserEmail        string `json:"user_email" db:"user_email"`
	DoctorName       string `json:"doctor_name" db:"doctor_name"`
	DoctorSpeciality string `json:"doctor_speciality" db:"doctor_speciality"`
	DoctorAddress    string `json:"doctor_address" db:"doctor_address"`

	SlotDate time.Time `json:"slot_date" db:"slot_date"`
	SlotTime string    `json:"slot_time" db:"slot_time"`

	Amount   int64  `json:"amount" db:"amount"` // minor currency units
	Currency string `json:"currency" db:"currency"`

	Cancelled bool `json:"cancelled" db:"cancelled"`
	Paid      bool `json:"paid" db:"paid"`
	Completed bool `json:"completed" db:"completed"`

	PaymentProvider string `json:"payment_provider,omitempty" db:"payment_provider"`
	PaymentRef      string `json:"payment_ref,omitempty" db:"payment_ref"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SlotDateKey returns the slot-map key for this appointment's date.
func (a *Appointment) SlotDateKey() string {
	return a.SlotDate.Format(SlotDateLayout)
}

// ParseSlotDate parses a slot date. The canonical format is ISO
// (2006-01-02); the legacy day_month_year token (e.g. "10_5_2024") is
// still accepted and normalized.
func ParseSlotDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("slot date is empty")
	}

	if t, err := time.Parse(SlotDateLayout, raw); err == nil {
		return t, nil
	}

	parts := strings.Split(raw, "_")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("invalid slot date %q", raw)
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid slot date %q", raw)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/entities"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/repositories"
	"github.com/ederjesus1004/Prescito-Doctor/internal/infrastructure/clients/postgres"
	apperrors "github.com/ederjesus1004/Prescito-Doctor/pkg/errors"
)

// DoctorAdapter implements the DoctorRepository interface
type DoctorAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDoctorAdapter creates a new doctor adapter
func NewDoctorAdapter(client *postgres.Client) repositories.DoctorRepository {
	return &DoctorAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var doctorColumns = []interface{}{
	"id", "name", "email", "speciality", "degree", "experience",
	"about", "fees", "address_line1", "address_line2", "image_url",
	"available", "created_at", "updated_at",
}

// Create creates a new doctor
func (a *DoctorAdapter) Create(ctx context.Context, doctor *entities.Doctor) error {
	record := goqu.Record{
		"id":            doctor.ID,
		"name":          doctor.Name,
		"email":         doctor.Email,
		"speciality":    doctor.Speciality,
		"degree":        doctor.Degree,
		"experience":    doctor.Experience,
		"about":         doctor.About,
		"fees":          doctor.Fees,
		"address_line1": doctor.AddressLine1,
		"address_line2": doctor.AddressLine2,
		"image_url":     doctor.ImageURL,
		"available":     doctor.Available,
		"created_at":    doctor.CreatedAt,
		"updated_at":    doctor.UpdatedAt,
	}

	query, args, err := a.db.Insert("doctors").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if isUniqueViolation(err) {
		return apperrors.NewConflictError(fmt.Sprintf("doctor with email %s already exists", doctor.Email))
	}
	if err != nil {
		return apperrors.NewInternalError("failed to create doctor", err)
	}

	return nil
}

// GetByID retrieves a doctor by ID
func (a *DoctorAdapter) GetByID(ctx context.Context, id string) (*entities.Doctor, error) {
	return a.getOne(ctx, goqu.Ex{"id": id}, fmt.Sprintf("doctor with id %s not found", id))
}

// GetByEmail retrieves a doctor by email
func (a *DoctorAdapter) GetByEmail(ctx context.Context, email string) (*entities.Doctor, error) {
	return a.getOne(ctx, goqu.Ex{"email": email}, fmt.Sprintf("doctor with email %s not found", email))
}

func (a *DoctorAdapter) getOne(ctx context.Context, where goqu.Ex, notFoundMsg string) (*entities.Doctor, error) {
	query, args, err := a.db.Select(doctorColumns...).
		From("doctors").
		Where(where).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	doctor, err := scanDoctor(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(notFoundMsg)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get doctor", err)
	}

	return doctor, nil
}

// List retrieves doctors matching the filters
func (a *DoctorAdapter) List(ctx context.Context, filters repositories.DoctorFilters) ([]*entities.Doctor, error) {
	ds := a.db.Select(doctorColumns...).From("doctors")

	if filters.Speciality != "" {
		ds = ds.Where(goqu.Ex{"speciality": filters.Speciality})
	}
	if filters.AvailableOnly {
		ds = ds.Where(goqu.Ex{"available": true})
	}

	ds = ds.Order(goqu.I("name").Asc())

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list doctors", err)
	}
	defer rows.Close()

	var doctors []*entities.Doctor
	for rows.Next() {
		doctor, err := scanDoctor(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan doctor", err)
		}
		doctors = append(doctors, doctor)
	}

	return doctors, nil
}

// SetAvailability toggles a doctor's availability flag
func (a *DoctorAdapter) SetAvailability(ctx context.Context, id string, available bool) error {
	query, args, err := a.db.Update("doctors").
		Set(goqu.Record{
			"available":  available,
			"updated_at": time.Now(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update availability", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("doctor with id %s not found", id))
	}

	return nil
}

// SlotMap returns booked slots keyed by ISO date, ordered by time label
func (a *DoctorAdapter) SlotMap(ctx context.Context, doctorID string) (entities.SlotMap, error) {
	query, args, err := a.db.Select("slot_date", "slot_time").
		From("doctor_slots").
		Where(goqu.Ex{"doctor_id": doctorID}).
		Order(goqu.I("slot_date").Asc(), goqu.I("slot_time").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build slot query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list slots", err)
	}
	defer rows.Close()

	slots := entities.SlotMap{}
	for rows.Next() {
		var slotDate time.Time
		var slotTime string
		if err := rows.Scan(&slotDate, &slotTime); err != nil {
			return nil, apperrors.NewInternalError("failed to scan slot", err)
		}
		key := slotDate.Format(entities.SlotDateLayout)
		slots[key] = append(slots[key], slotTime)
	}

	return slots, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDoctor(row rowScanner) (*entities.Doctor, error) {
	doctor := &entities.Doctor{}
	var degree, experience, about, addr1, addr2, imageURL sql.NullString

	err := row.Scan(
		&doctor.ID,
		&doctor.Name,
		&doctor.Email,
		&doctor.Speciality,
		&degree,
		&experience,
		&about,
		&doctor.Fees,
		&addr1,
		&addr2,
		&imageURL,
		&doctor.Available,
		&doctor.CreatedAt,
		&doctor.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	doctor.Degree = degree.String
	doctor.Experience = experience.String
	doctor.About = about.String
	doctor.AddressLine1 = addr1.String
	doctor.AddressLine2 = addr2.String
	doctor.ImageURL = imageURL.String

	return doctor, nil
}

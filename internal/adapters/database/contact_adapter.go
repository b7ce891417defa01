package database

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/entities"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/repositories"
	"github.com/ederjesus1004/Prescito-Doctor/internal/infrastructure/clients/postgres"
	apperrors "github.com/ederjesus1004/Prescito-Doctor/pkg/errors"
)

// ContactAdapter implements the ContactRepository interface
type ContactAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewContactAdapter creates a new contact adapter
func NewContactAdapter(client *postgres.Client) repositories.ContactRepository {
	return &ContactAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create stores a contact message
func (a *ContactAdapter) Create(ctx context.Context, message *entities.ContactMessage) error {
	record := goqu.Record{
		"id":         message.ID,
		"name":       message.Name,
		"email":      message.Email,
		"phone":      message.Phone,
		"subject":    message.Subject,
		"message":    message.Message,
		"status":     message.Status,
		"created_at": message.CreatedAt,
	}

	query, args, err := a.db.Insert("contact_messages").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create contact message", err)
	}

	return nil
}

// List retrieves all contact messages, newest first
func (a *ContactAdapter) List(ctx context.Context) ([]*entities.ContactMessage, error) {
	query, args, err := a.db.Select(
		"id", "name", "email", "phone", "subject", "message", "status", "created_at",
	).From("contact_messages").
		Order(goqu.I("created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list contact messages", err)
	}
	defer rows.Close()

	var messages []*entities.ContactMessage
	for rows.Next() {
		message := &entities.ContactMessage{}
		err := rows.Scan(
			&message.ID,
			&message.Name,
			&message.Email,
			&message.Phone,
			&message.Subject,
			&message.Message,
			&message.Status,
			&message.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan contact message", err)
		}
		messages = append(messages, message)
	}

	return messages, nil
}

// UpdateStatus updates a contact message's handling status
func (a *ContactAdapter) UpdateStatus(ctx context.Context, id string, status entities.ContactStatus) error {
	query, args, err := a.db.Update("contact_messages").
		Set(goqu.Record{"status": status}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update contact message", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("contact message with id %s not found", id))
	}

	return nil
}

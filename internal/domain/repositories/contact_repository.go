package repositories

import (
	"context"

	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/entities"
)

// ContactRepository defines the interface for contact message persistence
type ContactRepository interface {
	Create(ctx context.Context, message *entities.ContactMessage) error
	List(ctx context.Context) ([]*entities.ContactMessage, error)
	UpdateStatus(ctx context.Context, id string, status entities.ContactStatus) error
}

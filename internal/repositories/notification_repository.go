package repositories

import (
	"github.com/Qwitter/Qwitter-Backend-sub000/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification event operations
type NotificationRepository interface {
	CreateEvent(event *models.NotificationEvent) error
	GetPage(recipientID uint, page, limit int) ([]models.NotificationEvent, error)
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateEvent(event *models.NotificationEvent) error {
	return r.db.Create(event).Error
}

// GetPage returns the recipient's events ordered by creation time
// descending. A page beyond the last event yields an empty slice, not an
// error.
func (r *postgresNotificationRepository) GetPage(recipientID uint, page, limit int) ([]models.NotificationEvent, error) {
	var events []models.NotificationEvent

	offset := (page - 1) * limit
	err := r.db.Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&events).Error

	return events, err
}

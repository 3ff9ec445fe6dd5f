package repositories

import (
	"github.com/Qwitter/Qwitter-Backend-sub000/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the read surface over user rows. Account writes
// happen in the account service upstream; this core only hydrates views.
type UserRepository interface {
	GetUserByID(id uint) (*models.User, error)
	GetUsersByIDs(ids []uint) (map[uint]models.User, error)
	GetUserByUserName(userName string) (*models.User, error)
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// GetUserByID retrieves a user by ID from PostgreSQL
func (r *PostgresUserRepository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUsersByIDs retrieves a batch of users in a single query, keyed by id.
// Missing ids are absent from the map.
func (r *PostgresUserRepository) GetUsersByIDs(ids []uint) (map[uint]models.User, error) {
	byID := make(map[uint]models.User, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	var users []models.User
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

// GetUserByUserName retrieves a user by username (case-insensitive)
func (r *PostgresUserRepository) GetUserByUserName(userName string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("LOWER(user_name) = LOWER(?)", userName).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

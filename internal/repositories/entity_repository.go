package repositories

import (
	"github.com/Qwitter/Qwitter-Backend-sub000/internal/models"
	"gorm.io/gorm"
)

// EntityRepository defines the interface for entity and entity-link
// operations. Usage counts are adjusted with atomic in-database increments
// because concurrent tweets may reuse the same hashtag.
type EntityRepository interface {
	CreateEntity(entity *models.Entity) error
	FindHashtag(text string) (*models.Entity, error)
	FindURL(text string) (*models.Entity, error)
	FindMentionEntity(userID uint) (*models.Entity, error)
	IncrementUsage(entityID uint) error
	LinkTweet(tweetID string, entityIDs []uint) error
	LinkMessage(messageID string, entityIDs []uint) error
	GetEntitiesForTweet(tweetID string) ([]models.Entity, error)
}

// PostgresEntityRepository implements EntityRepository for PostgreSQL
type PostgresEntityRepository struct {
	db *gorm.DB
}

// NewPostgresEntityRepository creates a new PostgresEntityRepository
func NewPostgresEntityRepository(db *gorm.DB) *PostgresEntityRepository {
	return &PostgresEntityRepository{db: db}
}

// CreateEntity creates a new entity in PostgreSQL
func (r *PostgresEntityRepository) CreateEntity(entity *models.Entity) error {
	return r.db.Create(entity).Error
}

// FindHashtag retrieves the hashtag entity with exactly the given text
func (r *PostgresEntityRepository) FindHashtag(text string) (*models.Entity, error) {
	var entity models.Entity
	if err := r.db.Where("kind = ? AND text = ?", models.EntityKindHashtag, text).First(&entity).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// FindURL retrieves the url entity with exactly the given raw text
func (r *PostgresEntityRepository) FindURL(text string) (*models.Entity, error) {
	var entity models.Entity
	if err := r.db.Where("kind = ? AND text = ?", models.EntityKindURL, text).First(&entity).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// FindMentionEntity retrieves the mention entity targeting the given user
func (r *PostgresEntityRepository) FindMentionEntity(userID uint) (*models.Entity, error) {
	var entity models.Entity
	if err := r.db.Where("kind = ? AND user_id = ?", models.EntityKindMention, userID).First(&entity).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// IncrementUsage atomically bumps an entity's usage count
func (r *PostgresEntityRepository) IncrementUsage(entityID uint) error {
	return r.db.Model(&models.Entity{}).Where("id = ?", entityID).
		UpdateColumn("count", gorm.Expr("count + ?", 1)).Error
}

// LinkTweet links entities to a tweet, skipping pairs already linked.
func (r *PostgresEntityRepository) LinkTweet(tweetID string, entityIDs []uint) error {
	if len(entityIDs) == 0 {
		return nil
	}

	var existing []uint
	if err := r.db.Model(&models.TweetEntity{}).Where("tweet_id = ? AND entity_id IN ?", tweetID, entityIDs).
		Pluck("entity_id", &existing).Error; err != nil {
		return err
	}
	linked := make(map[uint]bool, len(existing))
	for _, id := range existing {
		linked[id] = true
	}

	var links []models.TweetEntity
	for _, id := range entityIDs {
		if !linked[id] {
			links = append(links, models.TweetEntity{TweetID: tweetID, EntityID: id})
		}
	}
	if len(links) == 0 {
		return nil
	}
	return r.db.Create(&links).Error
}

// LinkMessage links entities to a direct message, skipping pairs already linked.
func (r *PostgresEntityRepository) LinkMessage(messageID string, entityIDs []uint) error {
	if len(entityIDs) == 0 {
		return nil
	}

	var existing []uint
	if err := r.db.Model(&models.MessageEntity{}).Where("message_id = ? AND entity_id IN ?", messageID, entityIDs).
		Pluck("entity_id", &existing).Error; err != nil {
		return err
	}
	linked := make(map[uint]bool, len(existing))
	for _, id := range existing {
		linked[id] = true
	}

	var links []models.MessageEntity
	for _, id := range entityIDs {
		if !linked[id] {
			links = append(links, models.MessageEntity{MessageID: messageID, EntityID: id})
		}
	}
	if len(links) == 0 {
		return nil
	}
	return r.db.Create(&links).Error
}

// GetEntitiesForTweet retrieves all entities linked to a tweet
func (r *PostgresEntityRepository) GetEntitiesForTweet(tweetID string) ([]models.Entity, error) {
	var entities []models.Entity
	err := r.db.Where("id IN (?)",
		r.db.Model(&models.TweetEntity{}).Select("entity_id").Where("tweet_id = ?", tweetID),
	).Order("id").Find(&entities).Error
	return entities, err
}

package repositories

import (
	"github.com/Qwitter/Qwitter-Backend-sub000/internal/models"
	"gorm.io/gorm"
)

// RelationshipRepository bundles the viewer-state existence probes. Every
// probe tolerates a missing side (zero user id, empty tweet id) by returning
// the no-relationship default instead of erroring, since anonymous reads
// pass empty viewer ids. The rows themselves are written by the social-graph
// service upstream.
type RelationshipRepository interface {
	IsFollowing(followerID, followingID uint) (bool, error)
	IsMuted(muterID, mutedID uint) (bool, error)
	IsBlocked(blockerID, blockedID uint) (bool, error)
	HasLiked(tweetID string, userID uint) (bool, error)
}

// PostgresRelationshipRepository implements RelationshipRepository for PostgreSQL
type PostgresRelationshipRepository struct {
	db *gorm.DB
}

// NewPostgresRelationshipRepository creates a new PostgresRelationshipRepository
func NewPostgresRelationshipRepository(db *gorm.DB) *PostgresRelationshipRepository {
	return &PostgresRelationshipRepository{db: db}
}

// IsFollowing checks if follower follows following
func (r *PostgresRelationshipRepository) IsFollowing(followerID, followingID uint) (bool, error) {
	if followerID == 0 || followingID == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.Model(&models.Follow{}).Where("follower_id = ? AND following_id = ?", followerID, followingID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsMuted checks if muter has muted muted
func (r *PostgresRelationshipRepository) IsMuted(muterID, mutedID uint) (bool, error) {
	if muterID == 0 || mutedID == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.Model(&models.Mute{}).Where("muter_id = ? AND muted_id = ?", muterID, mutedID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsBlocked checks if blocker has blocked blocked
func (r *PostgresRelationshipRepository) IsBlocked(blockerID, blockedID uint) (bool, error) {
	if blockerID == 0 || blockedID == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.Model(&models.Block{}).Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasLiked checks if a user has liked a specific tweet
func (r *PostgresRelationshipRepository) HasLiked(tweetID string, userID uint) (bool, error) {
	if tweetID == "" || userID == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.Model(&models.Like{}).Where("tweet_id = ? AND user_id = ?", tweetID, userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

package models

import "time"

// Follow represents a follow relationship between two users
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"follower_id" gorm:"index;uniqueIndex:idx_follower_following"`
	FollowingID uint      `json:"following_id" gorm:"index;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time `json:"created_at"`
}

// Mute represents a mute relationship: the muter no longer wants to see the
// muted user's activity
type Mute struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	MuterID   uint      `json:"muter_id" gorm:"index;uniqueIndex:idx_muter_muted"`
	MutedID   uint      `json:"muted_id" gorm:"index;uniqueIndex:idx_muter_muted"`
	CreatedAt time.Time `json:"created_at"`
}

// Block represents a block relationship
type Block struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	BlockerID uint      `json:"blocker_id" gorm:"index;uniqueIndex:idx_blocker_blocked"`
	BlockedID uint      `json:"blocked_id" gorm:"index;uniqueIndex:idx_blocker_blocked"`
	CreatedAt time.Time `json:"created_at"`
}

// Like represents a like on a tweet
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TweetID   string    `json:"tweet_id" gorm:"index;uniqueIndex:idx_tweet_user_like"` // MongoDB ObjectID as string
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_tweet_user_like"`
	CreatedAt time.Time `json:"created_at"`
}

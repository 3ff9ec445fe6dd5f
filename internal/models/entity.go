package models

import "time"

// EntityKind discriminates the entity variants. Each variant only uses its
// own payload columns; the rest stay zero.
type EntityKind string

const (
	EntityKindHashtag EntityKind = "hashtag"
	EntityKindMention EntityKind = "mention"
	EntityKindURL     EntityKind = "url"
	EntityKindMedia   EntityKind = "media"
)

// Entity is a shared, append-only content unit extracted from tweet or
// message text. Hashtags are reference-counted by usage: the same text is
// reused and its count incremented, never duplicated.
type Entity struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Kind      EntityKind `json:"kind" gorm:"size:10;index"`
	Text      string     `json:"text,omitempty" gorm:"index"` // hashtag text as captured (with '#'), or raw url
	Count     int64      `json:"count,omitempty"`             // hashtag usage count
	UserID    uint       `json:"user_id,omitempty" gorm:"index"`
	MediaURL  string     `json:"media_url,omitempty"`
	MediaType string     `json:"media_type,omitempty" gorm:"size:20"`
	CreatedAt time.Time  `json:"created_at"`
}

// TweetEntity links an entity to a tweet. One link row per (tweet, entity)
// pair, duplicates rejected by the unique index.
type TweetEntity struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	TweetID  string `json:"tweet_id" gorm:"index;uniqueIndex:idx_tweet_entity"` // MongoDB ObjectID as string
	EntityID uint   `json:"entity_id" gorm:"uniqueIndex:idx_tweet_entity"`
}

// MessageEntity links an entity to a direct message.
type MessageEntity struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	MessageID string `json:"message_id" gorm:"index;uniqueIndex:idx_message_entity"`
	EntityID  uint   `json:"entity_id" gorm:"uniqueIndex:idx_message_entity"`
}

package models

import "time"

// Notification event types. Events with any other type value are dropped
// from the feed projection.
const (
	NotificationTypeReply   = "reply"
	NotificationTypeRetweet = "retweet"
	NotificationTypeLogin   = "login"
	NotificationTypeFollow  = "follow"
	NotificationTypePost    = "post"
	NotificationTypeLike    = "like"
	NotificationTypeMention = "mention"
)

// NotificationEvent is a raw activity record awaiting projection into the
// viewer's feed (PostgreSQL). ObjectID references a tweet and is empty for
// login/follow events; SenderID is zero for login events.
type NotificationEvent struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"size:20;index"`
	RecipientID uint      `json:"recipient_id" gorm:"index"`
	SenderID    uint      `json:"sender_id,omitempty"`
	ObjectID    string    `json:"object_id,omitempty"` // MongoDB ObjectID as string
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

// NotificationView is the per-type projection of an event. Exactly one of
// the optional fields is populated depending on Type:
//
//	reply/retweet/post → Tweet
//	like               → Tweet + Liker
//	mention            → Tweet + Mentioner
//	follow             → Follower
//	login              → timestamp only
type NotificationView struct {
	ID        uint      `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`

	Tweet     *ResolvedTweet `json:"tweet,omitempty"`
	Liker     *UserSummary   `json:"liker,omitempty"`
	Mentioner *UserSummary   `json:"mentioner,omitempty"`
	Follower  *UserSummary   `json:"follower,omitempty"`
}

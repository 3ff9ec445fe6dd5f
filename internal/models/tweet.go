package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tweet represents a micro-post stored in MongoDB. A tweet may be an
// original post, a reply (ReplyToID set), a repost (RetweetedID set) or a
// quote (QuoteTweetedID set, may coexist with either).
type Tweet struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID       string             `json:"author_id" bson:"author_id"`
	Text           *string            `json:"text" bson:"text"` // nil for pure reposts
	ReplyToID      string             `json:"reply_to_id,omitempty" bson:"reply_to_id,omitempty"`
	RetweetedID    string             `json:"retweeted_id,omitempty" bson:"retweeted_id,omitempty"`
	QuoteTweetedID string             `json:"quote_tweeted_id,omitempty" bson:"quote_tweeted_id,omitempty"`
	Sensitive      bool               `json:"sensitive" bson:"sensitive"`
	Counters       TweetCounters      `json:"counters" bson:"counters"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	DeletedAt      *time.Time         `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"` // soft delete
}

// TweetCounters holds the per-tweet engagement counters. Mutated only via
// atomic $inc updates, never read-modify-write.
type TweetCounters struct {
	ReplyCount   int64 `json:"reply_count" bson:"reply_count"`
	RetweetCount int64 `json:"retweet_count" bson:"retweet_count"`
	LikeCount    int64 `json:"like_count" bson:"like_count"`
	QuoteCount   int64 `json:"quote_count" bson:"quote_count"`
}

// IsDeleted reports whether the tweet has been soft-deleted.
func (t *Tweet) IsDeleted() bool {
	return t.DeletedAt != nil
}

// OriginalID returns the id that repost-relative checks must target:
// reposting a repost means reposting the original, so a repost redirects to
// its retweeted target.
func (t *Tweet) OriginalID() string {
	if t.RetweetedID != "" {
		return t.RetweetedID
	}
	return t.ID.Hex()
}

// CreateTweetRequest defines the request body for creating a new tweet.
// A request carrying both reply_to_id and retweeted_id is invalid and is
// rejected at this write boundary.
type CreateTweetRequest struct {
	Text           string `json:"text" validate:"omitempty,max=280"`
	ReplyToID      string `json:"reply_to_id,omitempty" validate:"omitempty,len=24,hexadecimal"`
	RetweetedID    string `json:"retweeted_id,omitempty" validate:"omitempty,len=24,hexadecimal"`
	QuoteTweetedID string `json:"quote_tweeted_id,omitempty" validate:"omitempty,len=24,hexadecimal"`
	Sensitive      bool   `json:"sensitive,omitempty"`
}

// ViewerAnnotation carries the requesting user's relationship to a tweet and
// its author. Computed per request, never persisted.
type ViewerAnnotation struct {
	Liked             bool   `json:"liked"`
	IsFollowingAuthor bool   `json:"is_following_author"`
	IsAuthorMuted     bool   `json:"is_author_muted"`
	ViewerRetweetID   string `json:"viewer_retweet_id,omitempty"`
}

// EntityBuckets groups a tweet's extracted entities into the four ordered
// display buckets.
type EntityBuckets struct {
	Hashtags []Entity `json:"hashtags"`
	Mentions []Entity `json:"mentions"`
	URLs     []Entity `json:"urls"`
	Media    []Entity `json:"media"`
}

// ResolvedTweet is the fully hydrated, viewer-annotated view of a tweet.
// At most one of ReplyParent / RepostOf is set, and nesting is capped at two
// levels: a repost of a reply surfaces both the reposted tweet and the tweet
// it replied to, never anything deeper.
type ResolvedTweet struct {
	ID             string        `json:"id"`
	Author         UserSummary   `json:"author"`
	Text           *string       `json:"text"`
	ReplyToID      string        `json:"reply_to_id,omitempty"`
	RetweetedID    string        `json:"retweeted_id,omitempty"`
	QuoteTweetedID string        `json:"quote_tweeted_id,omitempty"`
	Sensitive      bool          `json:"sensitive"`
	Counters       TweetCounters `json:"counters"`
	CreatedAt      time.Time     `json:"created_at"`

	Entities EntityBuckets    `json:"entities"`
	Viewer   ViewerAnnotation `json:"viewer"`

	// Unavailable marks a soft-deleted tweet so that e.g. a repost of a
	// deleted tweet can be rendered as "unavailable" rather than empty.
	Unavailable bool `json:"unavailable,omitempty"`

	// Missing marks a partial node whose tweet could not be fetched at all,
	// as opposed to one that was deliberately deleted.
	Missing bool `json:"missing,omitempty"`

	ReplyParent *ResolvedTweet `json:"reply_parent,omitempty"`
	RepostOf    *ResolvedTweet `json:"repost_of,omitempty"`
}

package models

import (
	"strconv"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model      `json:"-"`
	ID              uint   `json:"id" gorm:"primaryKey"`
	Name            string `json:"name"`
	UserName        string `json:"user_name" gorm:"uniqueIndex"`
	Email           string `json:"email" gorm:"uniqueIndex"`
	Password        string `json:"-"` // hashed, never serialized
	URL             string `json:"url,omitempty"`
	Description     string `json:"description,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
	FollowersCount  int64  `json:"followers_count"`
	FollowingCount  int64  `json:"following_count"`
}

// UserSummary is the public profile subset attached to resolved tweets and
// notification views. IsFollowing and TweetCount are computed per request
// for notification sender summaries and left zero elsewhere.
type UserSummary struct {
	ID              string `json:"id,omitempty"` // blanked for reply-parent authors
	Name            string `json:"name"`
	UserName        string `json:"user_name"`
	URL             string `json:"url,omitempty"`
	Description     string `json:"description,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
	FollowersCount  int64  `json:"followers_count"`
	FollowingCount  int64  `json:"following_count"`
	IsFollowing     bool   `json:"is_following"`
	TweetCount      int64  `json:"tweet_count"`
}

// ToSummary converts a user row to its public profile subset.
func (u *User) ToSummary() UserSummary {
	return UserSummary{
		ID:              strconv.FormatUint(uint64(u.ID), 10),
		Name:            u.Name,
		UserName:        u.UserName,
		URL:             u.URL,
		Description:     u.Description,
		ProfileImageURL: u.ProfileImageURL,
		FollowersCount:  u.FollowersCount,
		FollowingCount:  u.FollowingCount,
	}
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

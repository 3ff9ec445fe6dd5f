package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/Qwitter/Qwitter-Backend-sub000/internal/models"
	"github.com/Qwitter/Qwitter-Backend-sub000/internal/repositories"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	hashtagPattern = regexp.MustCompile(`#\w+`)
	mentionPattern = regexp.MustCompile(`@\w+`)
	urlPattern     = regexp.MustCompile(`https?://[^\s]+`)
)

// EntityService parses free text for hashtags and mentions, creates or
// reuses the shared entities and links them to the owning tweet or message.
type EntityService struct {
	entities repositories.EntityRepository
	users    repositories.UserRepository
}

// NewEntityService creates a new EntityService
func NewEntityService(entities repositories.EntityRepository, users repositories.UserRepository) *EntityService {
	return &EntityService{entities: entities, users: users}
}

// ExtractAndLink extracts hashtags and mentions from text, creates or
// reuses the matching entities and links them to the tweet. Returns the ids
// of the entities involved; absence of matches yields an empty list.
func (s *EntityService) ExtractAndLink(ctx context.Context, text, tweetID string) ([]uint, error) {
	ids, err := s.extract(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := s.entities.LinkTweet(tweetID, ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// ExtractAndLinkMessage is the direct-message variant of ExtractAndLink.
func (s *EntityService) ExtractAndLinkMessage(ctx context.Context, text, messageID string) ([]uint, error) {
	ids, err := s.extract(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := s.entities.LinkMessage(messageID, ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *EntityService) extract(ctx context.Context, text string) ([]uint, error) {
	var ids []uint

	// Hashtags: reuse and increment by exactly one per distinct tag in this
	// text. A repeated tag is skipped, later tags are still processed.
	seenTags := make(map[string]bool)
	for _, tag := range hashtagPattern.FindAllString(text, -1) {
		if seenTags[tag] {
			continue
		}
		seenTags[tag] = true

		entity, err := s.entities.FindHashtag(tag)
		switch {
		case err == nil:
			if err := s.entities.IncrementUsage(entity.ID); err != nil {
				return nil, err
			}
			ids = append(ids, entity.ID)
		case errors.Is(err, gorm.ErrRecordNotFound):
			entity = &models.Entity{Kind: models.EntityKindHashtag, Text: tag, Count: 1}
			if err := s.entities.CreateEntity(entity); err != nil {
				return nil, err
			}
			ids = append(ids, entity.ID)
		default:
			return nil, err
		}
	}

	// URLs: shared by exact raw text.
	seenURLs := make(map[string]bool)
	for _, raw := range urlPattern.FindAllString(text, -1) {
		if seenURLs[raw] {
			continue
		}
		seenURLs[raw] = true

		entity, err := s.entities.FindURL(raw)
		switch {
		case err == nil:
			ids = append(ids, entity.ID)
		case errors.Is(err, gorm.ErrRecordNotFound):
			entity = &models.Entity{Kind: models.EntityKindURL, Text: raw}
			if err := s.entities.CreateEntity(entity); err != nil {
				return nil, err
			}
			ids = append(ids, entity.ID)
		default:
			return nil, err
		}
	}

	// Mentions: resolve the username to a user; unresolvable mentions are
	// skipped without side effects.
	seenUsers := make(map[uint]bool)
	for _, mention := range mentionPattern.FindAllString(text, -1) {
		userName := strings.TrimPrefix(mention, "@")
		user, err := s.users.GetUserByUserName(userName)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			zap.S().Debugw("mentioned user not found, skipping", "user_name", userName)
			continue
		}
		if seenUsers[user.ID] {
			continue
		}
		seenUsers[user.ID] = true

		entity, err := s.entities.FindMentionEntity(user.ID)
		switch {
		case err == nil:
			ids = append(ids, entity.ID)
		case errors.Is(err, gorm.ErrRecordNotFound):
			entity = &models.Entity{Kind: models.EntityKindMention, UserID: user.ID}
			if err := s.entities.CreateEntity(entity); err != nil {
				return nil, err
			}
			ids = append(ids, entity.ID)
		default:
			return nil, err
		}
	}

	return lo.Uniq(ids), nil
}

package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/Qwitter/Qwitter-Backend-sub000/internal/models"
	"github.com/Qwitter/Qwitter-Backend-sub000/internal/repositories"
	"github.com/Qwitter/Qwitter-Backend-sub000/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// resolveConcurrency bounds how many tweets of a batch are resolved at
// once, so a large page doesn't fan out unbounded store fetches.
const resolveConcurrency = 8

// ResolverOptions tune per-call-site resolution behavior.
type ResolverOptions struct {
	// RedactDeleted strips text and entities from soft-deleted tweets in the
	// output, leaving ids, timestamps and the unavailable marker.
	RedactDeleted bool
}

// Resolver builds viewer-relative views of tweets. Given a raw tweet it
// attaches extracted entities, stamps viewer state and recursively resolves
// the reply parent or retweet original, two levels at most.
type Resolver struct {
	tweets        repositories.TweetRepository
	users         repositories.UserRepository
	relationships repositories.RelationshipRepository
	entities      repositories.EntityRepository
	opts          ResolverOptions
}

// NewResolver creates a new Resolver
func NewResolver(
	tweets repositories.TweetRepository,
	users repositories.UserRepository,
	relationships repositories.RelationshipRepository,
	entities repositories.EntityRepository,
	opts ResolverOptions,
) *Resolver {
	return &Resolver{
		tweets:        tweets,
		users:         users,
		relationships: relationships,
		entities:      entities,
		opts:          opts,
	}
}

// WithoutRedaction returns a resolver over the same stores that keeps
// soft-deleted content, carrying only the unavailable marker.
func (r *Resolver) WithoutRedaction() *Resolver {
	if !r.opts.RedactDeleted {
		return r
	}
	copied := *r
	copied.opts.RedactDeleted = false
	return &copied
}

// Resolve builds the full view of one tweet for the given viewer (0 means
// anonymous). Pure with respect to store state: the same tweet and viewer
// yield a structurally identical result until the store changes.
//
// Nesting: a reply gets its parent attached one level deep; a repost gets
// its target attached, and when that target is itself a reply the target's
// parent is attached too. Never more than two levels.
func (r *Resolver) Resolve(ctx context.Context, tweet *models.Tweet, viewerID uint) (*models.ResolvedTweet, error) {
	start := time.Now()
	defer metrics.ObserveResolve(start)

	rt, err := r.resolveBase(ctx, tweet, viewerID)
	if err != nil {
		return nil, err
	}

	// ReplyToID is checked first so a row that violates the reply-xor-repost
	// invariant still takes one branch deterministically.
	switch {
	case tweet.ReplyToID != "":
		parent, err := r.tweets.GetTweetByID(ctx, tweet.ReplyToID)
		if err != nil {
			zap.S().Warnw("reply parent unavailable, attaching partial node", "tweet_id", rt.ID, "parent_id", tweet.ReplyToID, "error", err)
			rt.ReplyParent = &models.ResolvedTweet{ID: tweet.ReplyToID, Missing: true}
			break
		}
		parentView, err := r.resolveBase(ctx, parent, viewerID)
		if err != nil {
			return nil, err
		}
		// The parent author's raw user id must not leak past the public
		// profile subset.
		parentView.Author.ID = ""
		rt.ReplyParent = parentView

	case tweet.RetweetedID != "":
		target, err := r.tweets.GetTweetByID(ctx, tweet.RetweetedID)
		if err != nil {
			zap.S().Warnw("retweet target unavailable, attaching partial node", "tweet_id", rt.ID, "target_id", tweet.RetweetedID, "error", err)
			rt.RepostOf = &models.ResolvedTweet{ID: tweet.RetweetedID, Missing: true}
			break
		}
		targetView, err := r.resolveBase(ctx, target, viewerID)
		if err != nil {
			return nil, err
		}
		// A repost of a reply surfaces what the reposted tweet replied to.
		if target.ReplyToID != "" {
			grand, err := r.tweets.GetTweetByID(ctx, target.ReplyToID)
			if err != nil {
				zap.S().Warnw("repost grandparent unavailable, attaching partial node", "tweet_id", rt.ID, "parent_id", target.ReplyToID, "error", err)
				targetView.ReplyParent = &models.ResolvedTweet{ID: target.ReplyToID, Missing: true}
			} else {
				grandView, err := r.resolveBase(ctx, grand, viewerID)
				if err != nil {
					return nil, err
				}
				grandView.Author.ID = ""
				targetView.ReplyParent = grandView
			}
		}
		rt.RepostOf = targetView
	}

	return rt, nil
}

// ResolveMany resolves a batch of tweets preserving input order, with
// bounded concurrency across the batch.
func (r *Resolver) ResolveMany(ctx context.Context, tweets []models.Tweet, viewerID uint) ([]*models.ResolvedTweet, error) {
	resolved := make([]*models.ResolvedTweet, len(tweets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i := range tweets {
		i := i
		g.Go(func() error {
			rt, err := r.Resolve(ctx, &tweets[i], viewerID)
			if err != nil {
				return err
			}
			resolved[i] = rt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resolved, nil
}

// resolveBase builds a single-level view: entities, author profile and
// viewer annotation, no nested resolution. The independent sub-fetches run
// concurrently and are joined before returning.
func (r *Resolver) resolveBase(ctx context.Context, tweet *models.Tweet, viewerID uint) (*models.ResolvedTweet, error) {
	rt := &models.ResolvedTweet{
		ID:             tweet.ID.Hex(),
		Text:           tweet.Text,
		ReplyToID:      tweet.ReplyToID,
		RetweetedID:    tweet.RetweetedID,
		QuoteTweetedID: tweet.QuoteTweetedID,
		Sensitive:      tweet.Sensitive,
		Counters:       tweet.Counters,
		CreatedAt:      tweet.CreatedAt,
		Unavailable:    tweet.IsDeleted(),
	}

	authorID64, _ := strconv.ParseUint(tweet.AuthorID, 10, 32)
	authorID := uint(authorID64)

	// Liked and viewer-repost checks target the original when the tweet is
	// itself a repost; following/muted always target the immediate author.
	originalID := tweet.OriginalID()

	var (
		entities []models.Entity
		author   *models.User
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ents, err := r.entities.GetEntitiesForTweet(rt.ID)
		if err != nil {
			return err
		}
		entities = ents
		return nil
	})

	g.Go(func() error {
		if authorID == 0 {
			return nil
		}
		u, err := r.users.GetUserByID(authorID)
		if err != nil {
			// Missing author yields a partial node, not a failure.
			zap.S().Debugw("tweet author not found", "tweet_id", rt.ID, "author_id", tweet.AuthorID)
			return nil
		}
		author = u
		return nil
	})

	if viewerID != 0 {
		g.Go(func() error {
			liked, err := r.relationships.HasLiked(originalID, viewerID)
			if err != nil {
				return err
			}
			rt.Viewer.Liked = liked
			return nil
		})
		g.Go(func() error {
			following, err := r.relationships.IsFollowing(viewerID, authorID)
			if err != nil {
				return err
			}
			rt.Viewer.IsFollowingAuthor = following
			return nil
		})
		g.Go(func() error {
			muted, err := r.relationships.IsMuted(viewerID, authorID)
			if err != nil {
				return err
			}
			rt.Viewer.IsAuthorMuted = muted
			return nil
		})
		g.Go(func() error {
			retweet, err := r.tweets.FindRetweetByAuthor(gctx, strconv.FormatUint(uint64(viewerID), 10), originalID)
			if err != nil {
				if errors.Is(err, repositories.ErrTweetNotFound) {
					return nil
				}
				return err
			}
			rt.Viewer.ViewerRetweetID = retweet.ID.Hex()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if author != nil {
		rt.Author = author.ToSummary()
	}
	rt.Entities = bucketEntities(entities)

	if r.opts.RedactDeleted && tweet.IsDeleted() {
		rt.Text = nil
		rt.Entities = models.EntityBuckets{}
	}

	return rt, nil
}

// bucketEntities splits a tweet's entities into the four ordered display
// buckets.
func bucketEntities(entities []models.Entity) models.EntityBuckets {
	var buckets models.EntityBuckets
	for _, e := range entities {
		switch e.Kind {
		case models.EntityKindHashtag:
			buckets.Hashtags = append(buckets.Hashtags, e)
		case models.EntityKindMention:
			buckets.Mentions = append(buckets.Mentions, e)
		case models.EntityKindURL:
			buckets.URLs = append(buckets.URLs, e)
		case models.EntityKindMedia:
			buckets.Media = append(buckets.Media, e)
		}
	}
	return buckets
}

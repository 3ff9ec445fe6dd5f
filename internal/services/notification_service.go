package services

import (
	"context"
	"strconv"
	"sync"

	"github.com/Qwitter/Qwitter-Backend-sub000/internal/models"
	"github.com/Qwitter/Qwitter-Backend-sub000/internal/repositories"
	"github.com/Qwitter/Qwitter-Backend-sub000/pkg/metrics"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// NotificationService projects raw activity events into the viewer's
// notification feed, reusing the tweet resolver for every tweet-shaped
// event, and owns the unread counter side effects.
type NotificationService struct {
	notifications repositories.NotificationRepository
	tweets        repositories.TweetRepository
	users         repositories.UserRepository
	relationships repositories.RelationshipRepository
	unread        repositories.UnreadCounterStore
	resolver      *Resolver
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notifications repositories.NotificationRepository,
	tweets repositories.TweetRepository,
	users repositories.UserRepository,
	relationships repositories.RelationshipRepository,
	unread repositories.UnreadCounterStore,
	resolver *Resolver,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		tweets:        tweets,
		users:         users,
		relationships: relationships,
		unread:        unread,
		// Feed views keep soft-deleted content with only the unavailable
		// marker; redaction is a read-path concern.
		resolver: resolver.WithoutRedaction(),
	}
}

// Dispatch records a new activity event and bumps the recipient's unread
// counter.
func (s *NotificationService) Dispatch(ctx context.Context, event *models.NotificationEvent) error {
	if err := s.notifications.CreateEvent(event); err != nil {
		return err
	}
	return s.unread.Increment(ctx, event.RecipientID)
}

// UnreadCount reads the viewer's unread notification counter.
func (s *NotificationService) UnreadCount(ctx context.Context, viewerID uint) (int64, error) {
	return s.unread.Get(ctx, viewerID)
}

// BuildFeed fetches one page of the viewer's events (newest first) and
// projects each into its typed view. Events whose type is unrecognized or
// whose primary referenced object is gone are omitted, so the result may be
// shorter than the page. As a side effect of any successful fetch the
// viewer's unread counter is reset, even when the page is empty.
//
// The distinct referenced tweet and sender ids of the page are fetched in
// single batch round trips, then resolved under bounded concurrency; the
// per-event projection below only assembles from those batches.
func (s *NotificationService) BuildFeed(ctx context.Context, viewerID uint, page, limit int) ([]models.NotificationView, error) {
	events, err := s.notifications.GetPage(viewerID, page, limit)
	if err != nil {
		metrics.FeedBuilds.WithLabelValues("error").Inc()
		return nil, err
	}

	// Collect the distinct ids each branch will need. `post` events are
	// resolved without viewer state, so their ids are kept separate.
	var viewerTweetIDs, anonTweetIDs []string
	var senderIDs []uint
	for _, ev := range events {
		switch ev.Type {
		case models.NotificationTypeReply, models.NotificationTypeRetweet:
			viewerTweetIDs = append(viewerTweetIDs, ev.ObjectID)
		case models.NotificationTypeLike, models.NotificationTypeMention:
			viewerTweetIDs = append(viewerTweetIDs, ev.ObjectID)
			senderIDs = append(senderIDs, ev.SenderID)
		case models.NotificationTypePost:
			anonTweetIDs = append(anonTweetIDs, ev.ObjectID)
		case models.NotificationTypeFollow:
			senderIDs = append(senderIDs, ev.SenderID)
		}
	}
	viewerTweetIDs = lo.Uniq(viewerTweetIDs)
	anonTweetIDs = lo.Uniq(anonTweetIDs)
	senderIDs = lo.Uniq(senderIDs)

	tweetByID, err := s.tweets.GetTweetsByIDs(ctx, lo.Uniq(append(viewerTweetIDs, anonTweetIDs...)))
	if err != nil {
		metrics.FeedBuilds.WithLabelValues("error").Inc()
		return nil, err
	}
	userByID, err := s.users.GetUsersByIDs(senderIDs)
	if err != nil {
		metrics.FeedBuilds.WithLabelValues("error").Inc()
		return nil, err
	}

	var (
		mu             sync.Mutex
		resolvedViewer = make(map[string]*models.ResolvedTweet, len(viewerTweetIDs))
		resolvedAnon   = make(map[string]*models.ResolvedTweet, len(anonTweetIDs))
		summaries      = make(map[uint]models.UserSummary, len(senderIDs))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)

	for _, id := range viewerTweetIDs {
		tweet, ok := tweetByID[id]
		if !ok {
			continue
		}
		g.Go(func() error {
			rt, err := s.resolver.Resolve(gctx, tweet, viewerID)
			if err != nil {
				return err
			}
			mu.Lock()
			resolvedViewer[tweet.ID.Hex()] = rt
			mu.Unlock()
			return nil
		})
	}
	for _, id := range anonTweetIDs {
		tweet, ok := tweetByID[id]
		// A posting notification never surfaces a soft-deleted tweet.
		if !ok || tweet.IsDeleted() {
			continue
		}
		g.Go(func() error {
			rt, err := s.resolver.Resolve(gctx, tweet, 0)
			if err != nil {
				return err
			}
			mu.Lock()
			resolvedAnon[tweet.ID.Hex()] = rt
			mu.Unlock()
			return nil
		})
	}
	for _, id := range senderIDs {
		user, ok := userByID[id]
		if !ok {
			continue
		}
		g.Go(func() error {
			summary, err := s.senderSummary(gctx, &user, viewerID)
			if err != nil {
				return err
			}
			mu.Lock()
			summaries[user.ID] = summary
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.FeedBuilds.WithLabelValues("error").Inc()
		return nil, err
	}

	views := make([]models.NotificationView, 0, len(events))
	for _, ev := range events {
		view := models.NotificationView{ID: ev.ID, Type: ev.Type, CreatedAt: ev.CreatedAt}

		switch ev.Type {
		case models.NotificationTypeReply, models.NotificationTypeRetweet:
			rt, ok := resolvedViewer[ev.ObjectID]
			if !ok {
				metrics.DroppedEvents.WithLabelValues("missing_tweet").Inc()
				continue
			}
			view.Tweet = rt

		case models.NotificationTypePost:
			rt, ok := resolvedAnon[ev.ObjectID]
			if !ok {
				metrics.DroppedEvents.WithLabelValues("missing_tweet").Inc()
				continue
			}
			view.Tweet = rt

		case models.NotificationTypeLike:
			rt, ok := resolvedViewer[ev.ObjectID]
			if !ok {
				metrics.DroppedEvents.WithLabelValues("missing_tweet").Inc()
				continue
			}
			view.Tweet = rt
			if summary, ok := summaries[ev.SenderID]; ok {
				view.Liker = &summary
			}

		case models.NotificationTypeMention:
			rt, ok := resolvedViewer[ev.ObjectID]
			if !ok {
				metrics.DroppedEvents.WithLabelValues("missing_tweet").Inc()
				continue
			}
			view.Tweet = rt
			if summary, ok := summaries[ev.SenderID]; ok {
				view.Mentioner = &summary
			}

		case models.NotificationTypeFollow:
			summary, ok := summaries[ev.SenderID]
			if !ok {
				metrics.DroppedEvents.WithLabelValues("missing_sender").Inc()
				continue
			}
			view.Follower = &summary

		case models.NotificationTypeLogin:
			// timestamp only

		default:
			zap.S().Infow("dropping notification event with unrecognized type", "event_id", ev.ID, "type", ev.Type)
			metrics.DroppedEvents.WithLabelValues("unknown_type").Inc()
			continue
		}

		views = append(views, view)
	}

	if err := s.unread.Reset(ctx, viewerID); err != nil {
		zap.S().Warnw("failed to reset unread counter", "viewer_id", viewerID, "error", err)
	}

	metrics.FeedBuilds.WithLabelValues("success").Inc()
	return views, nil
}

// senderSummary builds the public profile summary attached to like, mention
// and follow views, with the viewer-relative follow flag and the sender's
// live tweet count.
func (s *NotificationService) senderSummary(ctx context.Context, user *models.User, viewerID uint) (models.UserSummary, error) {
	summary := user.ToSummary()

	following, err := s.relationships.IsFollowing(viewerID, user.ID)
	if err != nil {
		return summary, err
	}
	summary.IsFollowing = following

	count, err := s.tweets.CountByAuthor(ctx, strconv.FormatUint(uint64(user.ID), 10))
	if err != nil {
		return summary, err
	}
	summary.TweetCount = count

	return summary, nil
}

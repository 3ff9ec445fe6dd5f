package services_test

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Qwitter/Qwitter-Backend-sub000/internal/models"
	"github.com/Qwitter/Qwitter-Backend-sub000/internal/repositories"
	"gorm.io/gorm"
)

// In-memory repository fakes backing the service tests.

type fakeTweetRepo struct {
	mu     sync.Mutex
	tweets map[string]*models.Tweet
}

func newFakeTweetRepo() *fakeTweetRepo {
	return &fakeTweetRepo{tweets: map[string]*models.Tweet{}}
}

func (r *fakeTweetRepo) put(t *models.Tweet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tweets[t.ID.Hex()] = t
}

func (r *fakeTweetRepo) CreateTweet(ctx context.Context, t *models.Tweet) error {
	r.put(t)
	return nil
}

func (r *fakeTweetRepo) GetTweetByID(ctx context.Context, id string) (*models.Tweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tweets[id]
	if !ok {
		return nil, repositories.ErrTweetNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTweetRepo) GetTweetsByIDs(ctx context.Context, ids []string) (map[string]*models.Tweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]*models.Tweet{}
	for _, id := range ids {
		if t, ok := r.tweets[id]; ok {
			copied := *t
			out[id] = &copied
		}
	}
	return out, nil
}

func (r *fakeTweetRepo) GetTimeline(ctx context.Context, skip, limit int64) ([]models.Tweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []models.Tweet
	for _, t := range r.tweets {
		if !t.IsDeleted() {
			all = append(all, *t)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if skip >= int64(len(all)) {
		return nil, nil
	}
	all = all[skip:]
	if int64(len(all)) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeTweetRepo) FindRetweetByAuthor(ctx context.Context, authorID, originalID string) (*models.Tweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tweets {
		if t.AuthorID == authorID && t.RetweetedID == originalID && !t.IsDeleted() {
			copied := *t
			return &copied, nil
		}
	}
	return nil, repositories.ErrTweetNotFound
}

func (r *fakeTweetRepo) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, t := range r.tweets {
		if t.AuthorID == authorID && !t.IsDeleted() {
			count++
		}
	}
	return count, nil
}

func (r *fakeTweetRepo) IncrementCounter(ctx context.Context, tweetID, field string, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tweets[tweetID]
	if !ok {
		return repositories.ErrTweetNotFound
	}
	switch field {
	case repositories.CounterReply:
		t.Counters.ReplyCount += delta
	case repositories.CounterRetweet:
		t.Counters.RetweetCount += delta
	case repositories.CounterLike:
		t.Counters.LikeCount += delta
	case repositories.CounterQuote:
		t.Counters.QuoteCount += delta
	}
	return nil
}

func (r *fakeTweetRepo) SoftDeleteTweet(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tweets[id]
	if !ok || t.IsDeleted() {
		return repositories.ErrTweetNotFound
	}
	now := t.CreatedAt
	t.DeletedAt = &now
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uint]models.User
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[uint]models.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetUsersByIDs(ids []uint) (map[uint]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[uint]models.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (r *fakeUserRepo) GetUserByUserName(userName string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.UserName, userName) {
			copied := u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type relKey struct {
	a, b uint
}

type fakeRelationshipRepo struct {
	mu      sync.Mutex
	follows map[relKey]bool
	mutes   map[relKey]bool
	blocks  map[relKey]bool
	likes   map[string]map[uint]bool
}

func newFakeRelationshipRepo() *fakeRelationshipRepo {
	return &fakeRelationshipRepo{
		follows: map[relKey]bool{},
		mutes:   map[relKey]bool{},
		blocks:  map[relKey]bool{},
		likes:   map[string]map[uint]bool{},
	}
}

func (r *fakeRelationshipRepo) follow(a, b uint) { r.follows[relKey{a, b}] = true }
func (r *fakeRelationshipRepo) mute(a, b uint)   { r.mutes[relKey{a, b}] = true }
func (r *fakeRelationshipRepo) like(tweetID string, userID uint) {
	if r.likes[tweetID] == nil {
		r.likes[tweetID] = map[uint]bool{}
	}
	r.likes[tweetID][userID] = true
}

func (r *fakeRelationshipRepo) IsFollowing(followerID, followingID uint) (bool, error) {
	if followerID == 0 || followingID == 0 {
		return false, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.follows[relKey{followerID, followingID}], nil
}

func (r *fakeRelationshipRepo) IsMuted(muterID, mutedID uint) (bool, error) {
	if muterID == 0 || mutedID == 0 {
		return false, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mutes[relKey{muterID, mutedID}], nil
}

func (r *fakeRelationshipRepo) IsBlocked(blockerID, blockedID uint) (bool, error) {
	if blockerID == 0 || blockedID == 0 {
		return false, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.blocks[relKey{blockerID, blockedID}], nil
}

func (r *fakeRelationshipRepo) HasLiked(tweetID string, userID uint) (bool, error) {
	if tweetID == "" || userID == 0 {
		return false, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.likes[tweetID][userID], nil
}

type fakeEntityRepo struct {
	mu           sync.Mutex
	nextID       uint
	entities     map[uint]*models.Entity
	tweetLinks   map[string][]uint
	messageLinks map[string][]uint
}

func newFakeEntityRepo() *fakeEntityRepo {
	return &fakeEntityRepo{
		entities:     map[uint]*models.Entity{},
		tweetLinks:   map[string][]uint{},
		messageLinks: map[string][]uint{},
	}
}

func (r *fakeEntityRepo) CreateEntity(e *models.Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e.ID = r.nextID
	copied := *e
	r.entities[e.ID] = &copied
	return nil
}

func (r *fakeEntityRepo) FindHashtag(text string) (*models.Entity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entities {
		if e.Kind == models.EntityKindHashtag && e.Text == text {
			copied := *e
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeEntityRepo) FindURL(text string) (*models.Entity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entities {
		if e.Kind == models.EntityKindURL && e.Text == text {
			copied := *e
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeEntityRepo) FindMentionEntity(userID uint) (*models.Entity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entities {
		if e.Kind == models.EntityKindMention && e.UserID == userID {
			copied := *e
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeEntityRepo) IncrementUsage(entityID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entities[entityID]; ok {
		e.Count++
	}
	return nil
}

func (r *fakeEntityRepo) LinkTweet(tweetID string, entityIDs []uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	linked := map[uint]bool{}
	for _, id := range r.tweetLinks[tweetID] {
		linked[id] = true
	}
	for _, id := range entityIDs {
		if !linked[id] {
			r.tweetLinks[tweetID] = append(r.tweetLinks[tweetID], id)
			linked[id] = true
		}
	}
	return nil
}

func (r *fakeEntityRepo) LinkMessage(messageID string, entityIDs []uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	linked := map[uint]bool{}
	for _, id := range r.messageLinks[messageID] {
		linked[id] = true
	}
	for _, id := range entityIDs {
		if !linked[id] {
			r.messageLinks[messageID] = append(r.messageLinks[messageID], id)
			linked[id] = true
		}
	}
	return nil
}

func (r *fakeEntityRepo) GetEntitiesForTweet(tweetID string) ([]models.Entity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := append([]uint(nil), r.tweetLinks[tweetID]...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []models.Entity
	for _, id := range ids {
		if e, ok := r.entities[id]; ok {
			out = append(out, *e)
		}
	}
	return out, nil
}

type fakeNotificationRepo struct {
	mu     sync.Mutex
	nextID uint
	events []models.NotificationEvent
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) CreateEvent(ev *models.NotificationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	ev.ID = r.nextID
	r.events = append(r.events, *ev)
	return nil
}

func (r *fakeNotificationRepo) GetPage(recipientID uint, page, limit int) ([]models.NotificationEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var mine []models.NotificationEvent
	for _, ev := range r.events {
		if ev.RecipientID == recipientID {
			mine = append(mine, ev)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].CreatedAt.After(mine[j].CreatedAt) })
	offset := (page - 1) * limit
	if offset >= len(mine) {
		return nil, nil
	}
	mine = mine[offset:]
	if len(mine) > limit {
		mine = mine[:limit]
	}
	return mine, nil
}

type fakeUnreadStore struct {
	mu     sync.Mutex
	counts map[uint]int64
	resets int
}

func newFakeUnreadStore() *fakeUnreadStore {
	return &fakeUnreadStore{counts: map[uint]int64{}}
}

func (s *fakeUnreadStore) Increment(ctx context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[userID]++
	return nil
}

func (s *fakeUnreadStore) Reset(ctx context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counts, userID)
	s.resets++
	return nil
}

func (s *fakeUnreadStore) Get(ctx context.Context, userID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[userID], nil
}

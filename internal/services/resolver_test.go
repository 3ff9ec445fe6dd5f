package services_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/Qwitter/Qwitter-Backend-sub000/internal/models"
	"github.com/Qwitter/Qwitter-Backend-sub000/internal/services"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type resolverEnv struct {
	tweets        *fakeTweetRepo
	users         *fakeUserRepo
	relationships *fakeRelationshipRepo
	entities      *fakeEntityRepo
}

func newResolverEnv(users ...models.User) *resolverEnv {
	return &resolverEnv{
		tweets:        newFakeTweetRepo(),
		users:         newFakeUserRepo(users...),
		relationships: newFakeRelationshipRepo(),
		entities:      newFakeEntityRepo(),
	}
}

func (e *resolverEnv) resolver(opts services.ResolverOptions) *services.Resolver {
	return services.NewResolver(e.tweets, e.users, e.relationships, e.entities, opts)
}

func (e *resolverEnv) addTweet(authorID uint, text string) *models.Tweet {
	t := &models.Tweet{
		ID:        primitive.NewObjectID(),
		AuthorID:  strconv.FormatUint(uint64(authorID), 10),
		CreatedAt: time.Now(),
	}
	if text != "" {
		t.Text = &text
	}
	e.tweets.put(t)
	return t
}

func (e *resolverEnv) addReply(authorID uint, text, parentID string) *models.Tweet {
	t := e.addTweet(authorID, text)
	t.ReplyToID = parentID
	return t
}

func (e *resolverEnv) addRetweet(authorID uint, targetID string) *models.Tweet {
	t := e.addTweet(authorID, "")
	t.RetweetedID = targetID
	return t
}

func TestResolveStandaloneTweet(t *testing.T) {
	env := newResolverEnv(
		models.User{ID: 1, Name: "Ada", UserName: "ada"},
		models.User{ID: 2, Name: "Bob", UserName: "bob"},
	)
	tweet := env.addTweet(1, "hello #world")
	env.relationships.follow(2, 1)
	env.relationships.like(tweet.ID.Hex(), 2)
	env.entities.CreateEntity(&models.Entity{Kind: models.EntityKindHashtag, Text: "#world", Count: 1})
	env.entities.LinkTweet(tweet.ID.Hex(), []uint{1})

	resolved, err := env.resolver(services.ResolverOptions{}).Resolve(context.Background(), tweet, 2)
	require.NoError(t, err)

	require.Equal(t, tweet.ID.Hex(), resolved.ID)
	require.Equal(t, "ada", resolved.Author.UserName)
	require.True(t, resolved.Viewer.Liked)
	require.True(t, resolved.Viewer.IsFollowingAuthor)
	require.False(t, resolved.Viewer.IsAuthorMuted)
	require.Len(t, resolved.Entities.Hashtags, 1)
	require.Equal(t, "#world", resolved.Entities.Hashtags[0].Text)
	require.Nil(t, resolved.ReplyParent)
	require.Nil(t, resolved.RepostOf)
}

func TestResolveAnonymousViewer(t *testing.T) {
	env := newResolverEnv(models.User{ID: 1, UserName: "ada"})
	tweet := env.addTweet(1, "hello")
	env.relationships.like(tweet.ID.Hex(), 1)

	resolved, err := env.resolver(services.ResolverOptions{}).Resolve(context.Background(), tweet, 0)
	require.NoError(t, err)
	require.Equal(t, models.ViewerAnnotation{}, resolved.Viewer)
}

func TestResolveReplyAttachesParentOneLevel(t *testing.T) {
	env := newResolverEnv(
		models.User{ID: 1, UserName: "ada"},
		models.User{ID: 2, UserName: "bob"},
	)
	grandparent := env.addTweet(1, "root")
	parent := env.addReply(1, "middle", grandparent.ID.Hex())
	reply := env.addReply(2, "leaf", parent.ID.Hex())

	resolved, err := env.resolver(services.ResolverOptions{}).Resolve(context.Background(), reply, 0)
	require.NoError(t, err)

	require.NotNil(t, resolved.ReplyParent)
	require.Equal(t, parent.ID.Hex(), resolved.ReplyParent.ID)
	require.Empty(t, resolved.ReplyParent.Author.ID, "parent author's raw id must be trimmed")
	require.Equal(t, "ada", resolved.ReplyParent.Author.UserName)
	require.Nil(t, resolved.ReplyParent.ReplyParent, "parent's own parent must not be expanded")
}

func TestResolveRepostOfReplyTwoLevels(t *testing.T) {
	env := newResolverEnv(
		models.User{ID: 1, UserName: "ada"},
		models.User{ID: 2, UserName: "bob"},
		models.User{ID: 3, UserName: "eve"},
	)
	// A (original) ← B (reply to A) ← C (repost of B)
	a := env.addTweet(1, "post A")
	b := env.addReply(2, "post B", a.ID.Hex())
	c := env.addRetweet(3, b.ID.Hex())

	resolved, err := env.resolver(services.ResolverOptions{}).Resolve(context.Background(), c, 0)
	require.NoError(t, err)

	require.NotNil(t, resolved.RepostOf)
	require.Equal(t, b.ID.Hex(), resolved.RepostOf.ID)
	require.NotNil(t, resolved.RepostOf.ReplyParent)
	require.Equal(t, a.ID.Hex(), resolved.RepostOf.ReplyParent.ID)

	// Exactly two levels: the grandparent is a leaf.
	require.Nil(t, resolved.RepostOf.ReplyParent.ReplyParent)
	require.Nil(t, resolved.RepostOf.ReplyParent.RepostOf)
}

func TestResolveTwoLevelCapWhenGrandparentIsRepost(t *testing.T) {
	env := newResolverEnv(models.User{ID: 1, UserName: "ada"})
	z := env.addTweet(1, "deep original")
	a := env.addRetweet(1, z.ID.Hex())
	b := env.addReply(1, "reply to the repost", a.ID.Hex())
	c := env.addRetweet(1, b.ID.Hex())

	resolved, err := env.resolver(services.ResolverOptions{}).Resolve(context.Background(), c, 0)
	require.NoError(t, err)

	require.NotNil(t, resolved.RepostOf)
	require.NotNil(t, resolved.RepostOf.ReplyParent)
	require.Nil(t, resolved.RepostOf.ReplyParent.RepostOf, "grandparent must stay a leaf even when it is itself a repost")
}

func TestResolveRepostViewerStateTargetsOriginal(t *testing.T) {
	env := newResolverEnv(
		models.User{ID: 1, UserName: "ada"},
		models.User{ID: 2, UserName: "bob"},
		models.User{ID: 9, UserName: "viewer"},
	)
	original := env.addTweet(1, "the original")
	repost := env.addRetweet(2, original.ID.Hex())

	// The viewer liked and reposted the original, not the repost.
	env.relationships.like(original.ID.Hex(), 9)
	viewerRepost := env.addRetweet(9, original.ID.Hex())

	r := env.resolver(services.ResolverOptions{})

	fromRepost, err := r.Resolve(context.Background(), repost, 9)
	require.NoError(t, err)
	fromOriginal, err := r.Resolve(context.Background(), original, 9)
	require.NoError(t, err)

	require.True(t, fromRepost.Viewer.Liked)
	require.Equal(t, viewerRepost.ID.Hex(), fromRepost.Viewer.ViewerRetweetID)
	// Reposting a repost is reposting the original: both reads agree.
	require.Equal(t, fromOriginal.Viewer.ViewerRetweetID, fromRepost.Viewer.ViewerRetweetID)
}

func TestResolveIdempotent(t *testing.T) {
	env := newResolverEnv(
		models.User{ID: 1, UserName: "ada"},
		models.User{ID: 2, UserName: "bob"},
	)
	parent := env.addTweet(1, "parent")
	reply := env.addReply(2, "child", parent.ID.Hex())
	env.relationships.follow(1, 2)

	r := env.resolver(services.ResolverOptions{})
	first, err := r.Resolve(context.Background(), reply, 1)
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), reply, 1)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestResolveRepostOfDeletedTweet(t *testing.T) {
	env := newResolverEnv(
		models.User{ID: 1, UserName: "ada"},
		models.User{ID: 2, UserName: "bob"},
	)
	original := env.addTweet(1, "soon gone")
	repost := env.addRetweet(2, original.ID.Hex())
	require.NoError(t, env.tweets.SoftDeleteTweet(context.Background(), original.ID.Hex()))

	resolved, err := env.resolver(services.ResolverOptions{}).Resolve(context.Background(), repost, 0)
	require.NoError(t, err)

	require.NotNil(t, resolved.RepostOf)
	require.True(t, resolved.RepostOf.Unavailable, "soft deletion must propagate as a distinct marker")
	require.False(t, resolved.RepostOf.Missing, "deleted is not the same as vanished")
	require.NotNil(t, resolved.RepostOf.Text, "without redaction the content survives")
}

func TestResolveRedactsDeletedNestedContent(t *testing.T) {
	env := newResolverEnv(
		models.User{ID: 1, UserName: "ada"},
		models.User{ID: 2, UserName: "bob"},
	)
	original := env.addTweet(1, "soon gone")
	repost := env.addRetweet(2, original.ID.Hex())
	require.NoError(t, env.tweets.SoftDeleteTweet(context.Background(), original.ID.Hex()))

	resolved, err := env.resolver(services.ResolverOptions{RedactDeleted: true}).Resolve(context.Background(), repost, 0)
	require.NoError(t, err)

	require.True(t, resolved.RepostOf.Unavailable)
	require.Nil(t, resolved.RepostOf.Text)
	require.Equal(t, original.ID.Hex(), resolved.RepostOf.ID, "id and timestamps survive redaction")
}

func TestResolveVanishedParentYieldsPartialNode(t *testing.T) {
	env := newResolverEnv(models.User{ID: 1, UserName: "ada"})
	reply := env.addReply(1, "orphan", primitive.NewObjectID().Hex())

	resolved, err := env.resolver(services.ResolverOptions{}).Resolve(context.Background(), reply, 0)
	require.NoError(t, err, "a vanished parent must not fail the resolution")
	require.NotNil(t, resolved.ReplyParent)
	require.Equal(t, reply.ReplyToID, resolved.ReplyParent.ID)
	require.True(t, resolved.ReplyParent.Missing)
	require.False(t, resolved.ReplyParent.Unavailable, "a vanished parent is missing, not deleted")
}

func TestResolveBothLinkageFieldsTakesReplyBranch(t *testing.T) {
	env := newResolverEnv(
		models.User{ID: 1, UserName: "ada"},
		models.User{ID: 2, UserName: "bob"},
	)
	parent := env.addTweet(1, "parent")
	other := env.addTweet(1, "other")
	// Corrupt row violating the write-boundary invariant.
	bad := env.addReply(2, "bad", parent.ID.Hex())
	bad.RetweetedID = other.ID.Hex()

	resolved, err := env.resolver(services.ResolverOptions{}).Resolve(context.Background(), bad, 0)
	require.NoError(t, err)
	require.NotNil(t, resolved.ReplyParent)
	require.Nil(t, resolved.RepostOf)
}

func TestResolveManyPreservesOrder(t *testing.T) {
	env := newResolverEnv(models.User{ID: 1, UserName: "ada"})
	var tweets []models.Tweet
	for i := 0; i < 20; i++ {
		tweets = append(tweets, *env.addTweet(1, "tweet"))
	}

	resolved, err := env.resolver(services.ResolverOptions{}).ResolveMany(context.Background(), tweets, 0)
	require.NoError(t, err)
	require.Len(t, resolved, len(tweets))
	for i := range tweets {
		require.Equal(t, tweets[i].ID.Hex(), resolved[i].ID)
	}
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Qwitter/Qwitter-Backend-sub000/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrTweetNotFound is returned when a tweet id resolves to no document.
var ErrTweetNotFound = errors.New("tweet not found")

// Counter field names accepted by IncrementCounter.
const (
	CounterReply   = "counters.reply_count"
	CounterRetweet = "counters.retweet_count"
	CounterLike    = "counters.like_count"
	CounterQuote   = "counters.quote_count"
)

// TweetRepository defines the interface for tweet data operations
type TweetRepository interface {
	CreateTweet(ctx context.Context, tweet *models.Tweet) error
	GetTweetByID(ctx context.Context, id string) (*models.Tweet, error)
	GetTweetsByIDs(ctx context.Context, ids []string) (map[string]*models.Tweet, error)
	GetTimeline(ctx context.Context, skip, limit int64) ([]models.Tweet, error)
	FindRetweetByAuthor(ctx context.Context, authorID, originalID string) (*models.Tweet, error)
	CountByAuthor(ctx context.Context, authorID string) (int64, error)
	IncrementCounter(ctx context.Context, tweetID, field string, delta int64) error
	SoftDeleteTweet(ctx context.Context, id string) error
}

// MongoTweetRepository implements TweetRepository for MongoDB
type MongoTweetRepository struct {
	collection *mongo.Collection
}

// NewMongoTweetRepository creates a new MongoTweetRepository
func NewMongoTweetRepository(db *mongo.Database) *MongoTweetRepository {
	return &MongoTweetRepository{collection: db.Collection("tweets")}
}

// CreateTweet creates a new tweet in MongoDB
func (r *MongoTweetRepository) CreateTweet(ctx context.Context, tweet *models.Tweet) error {
	tweet.ID = primitive.NewObjectID()
	tweet.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, tweet)
	return err
}

// GetTweetByID retrieves a tweet by ID, soft-deleted documents included so
// that deletion can be reflected upward by the resolver.
func (r *MongoTweetRepository) GetTweetByID(ctx context.Context, id string) (*models.Tweet, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid tweet ID format: %w", err)
	}

	var tweet models.Tweet
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&tweet)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrTweetNotFound
		}
		return nil, err
	}
	return &tweet, nil
}

// GetTweetsByIDs retrieves a batch of tweets in a single round trip, keyed
// by hex id. Ids that resolve to no document are simply absent from the map.
func (r *MongoTweetRepository) GetTweetsByIDs(ctx context.Context, ids []string) (map[string]*models.Tweet, error) {
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue // bad ids are treated as not found
		}
		objIDs = append(objIDs, objID)
	}
	if len(objIDs) == 0 {
		return map[string]*models.Tweet{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tweets []models.Tweet
	if err = cursor.All(ctx, &tweets); err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Tweet, len(tweets))
	for i := range tweets {
		byID[tweets[i].ID.Hex()] = &tweets[i]
	}
	return byID, nil
}

// GetTimeline retrieves non-deleted tweets with pagination, newest first.
func (r *MongoTweetRepository) GetTimeline(ctx context.Context, skip, limit int64) ([]models.Tweet, error) {
	var tweets []models.Tweet
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"deleted_at": nil}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &tweets); err != nil {
		return nil, err
	}
	return tweets, nil
}

// FindRetweetByAuthor finds the author's own non-deleted repost of the given
// original tweet, or ErrTweetNotFound.
func (r *MongoTweetRepository) FindRetweetByAuthor(ctx context.Context, authorID, originalID string) (*models.Tweet, error) {
	var tweet models.Tweet
	err := r.collection.FindOne(ctx, bson.M{
		"author_id":    authorID,
		"retweeted_id": originalID,
		"deleted_at":   nil,
	}).Decode(&tweet)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrTweetNotFound
		}
		return nil, err
	}
	return &tweet, nil
}

// CountByAuthor counts the author's non-deleted tweets.
func (r *MongoTweetRepository) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"author_id": authorID, "deleted_at": nil})
}

// IncrementCounter atomically adjusts one of the tweet's counters.
func (r *MongoTweetRepository) IncrementCounter(ctx context.Context, tweetID, field string, delta int64) error {
	objID, err := primitive.ObjectIDFromHex(tweetID)
	if err != nil {
		return fmt.Errorf("invalid tweet ID format: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{field: delta}})
	return err
}

// SoftDeleteTweet marks a tweet as deleted without removing the document.
func (r *MongoTweetRepository) SoftDeleteTweet(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid tweet ID format: %w", err)
	}

	now := time.Now()
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "deleted_at": nil},
		bson.M{"$set": bson.M{"deleted_at": now}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrTweetNotFound
	}
	return nil
}

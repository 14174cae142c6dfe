package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mindful-journal/journal-backend/internal/models"
)

// JournalCollection is the MongoDB collection holding journal entries.
const JournalCollection = "journals"

// MongoJournalStore keeps journal entries in MongoDB.
type MongoJournalStore struct {
	col *mongo.Collection
}

func NewMongoJournalStore(db *mongo.Database) *MongoJournalStore {
	return &MongoJournalStore{col: db.Collection(JournalCollection)}
}

// EnsureIndexes configures the owner/creation-time index used by ListByUser.
func (s *MongoJournalStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "created_at", Value: -1},
		},
		Options: options.Index().SetName("idx_user_created_at"),
	})
	return err
}

func (s *MongoJournalStore) Insert(ctx context.Context, j *models.Journal) error {
	if _, err := s.col.InsertOne(ctx, j); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *MongoJournalStore) ListByUser(ctx context.Context, userID string) ([]models.Journal, error) {
	// ids are time-ordered, so ascending _id keeps equal timestamps in creation order
	findOptions := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: 1},
	})

	cursor, err := s.col.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	journals := make([]models.Journal, 0)
	if err := cursor.All(ctx, &journals); err != nil {
		return nil, err
	}
	for i := range journals {
		normalize(&journals[i])
	}
	return journals, nil
}

func (s *MongoJournalStore) FindByID(ctx context.Context, userID, id string) (*models.Journal, error) {
	var j models.Journal
	err := s.col.FindOne(ctx, ownerFilter(userID, id)).Decode(&j)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	normalize(&j)
	return &j, nil
}

func (s *MongoJournalStore) Update(ctx context.Context, userID, id string, fn func(*models.Journal)) (*models.Journal, error) {
	current, err := s.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	next := current.Clone()
	fn(&next)
	next.ID, next.UserID = current.ID, current.UserID

	// Matching on the previous updated_at rejects a write that raced with ours.
	filter := ownerFilter(userID, id)
	filter["updated_at"] = current.UpdatedAt
	res, err := s.col.ReplaceOne(ctx, filter, next)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return &next, nil
}

func (s *MongoJournalStore) Delete(ctx context.Context, userID, id string) error {
	res, err := s.col.DeleteOne(ctx, ownerFilter(userID, id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func ownerFilter(userID, id string) bson.M {
	return bson.M{"_id": id, "user_id": userID}
}

func normalize(j *models.Journal) {
	if j.Tags == nil {
		j.Tags = []string{}
	}
}

package repo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/reverie-app/reverie-backend/internal/models"
)

const entriesCollection = "entries"

// entryDoc is the MongoDB document shape for a journal entry.
type entryDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	Mood      string             `bson:"mood,omitempty"`
	Images    []string           `bson:"images"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d entryDoc) toModel() models.JournalEntry {
	images := d.Images
	if images == nil {
		images = []string{}
	}
	return models.JournalEntry{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Title:     d.Title,
		Content:   d.Content,
		Mood:      models.Mood(d.Mood),
		Images:    images,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// MongoEntryRepository persists journal entries in the "entries" collection.
type MongoEntryRepository struct {
	col *mongo.Collection
}

func NewMongoEntryRepository(db *mongo.Database) *MongoEntryRepository {
	return &MongoEntryRepository{col: db.Collection(entriesCollection)}
}

// EnsureEntryIndexes creates the owner/created_at index used by ListByOwner.
func EnsureEntryIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(entriesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

func (r *MongoEntryRepository) ListByOwner(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	findOptions := options.Find().SetSort(bson.M{"created_at": -1})

	cursor, err := r.col.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []entryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode entries: %w", err)
	}

	entries := make([]models.JournalEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, d.toModel())
	}
	return entries, nil
}

func (r *MongoEntryRepository) Insert(ctx context.Context, entry *models.JournalEntry) error {
	now := time.Now().UTC()
	doc := entryDoc{
		ID:        primitive.NewObjectID(),
		UserID:    entry.UserID,
		Title:     entry.Title,
		Content:   entry.Content,
		Mood:      string(entry.Mood),
		Images:    entry.Images,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if doc.Images == nil {
		doc.Images = []string{}
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	entry.ID = doc.ID.Hex()
	entry.Images = doc.Images
	entry.CreatedAt = doc.CreatedAt
	entry.UpdatedAt = doc.UpdatedAt
	return nil
}

func (r *MongoEntryRepository) Update(ctx context.Context, userID, id string, upd EntryUpdate) (time.Time, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return time.Time{}, ErrNotFound
	}

	now := time.Now().UTC()
	set := bson.M{"updated_at": now}
	unset := bson.M{}

	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Content != nil {
		set["content"] = *upd.Content
	}
	if upd.Mood != nil {
		if *upd.Mood == "" {
			unset["mood"] = ""
		} else {
			set["mood"] = string(*upd.Mood)
		}
	}
	if upd.Images != nil {
		images := *upd.Images
		if images == nil {
			images = []string{}
		}
		set["images"] = images
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	// Owner is part of the filter so users can only ever touch their own rows
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": objectID, "user_id": userID}, update)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to update entry: %w", err)
	}
	if res.MatchedCount == 0 {
		return time.Time{}, ErrNotFound
	}
	return now, nil
}

func (r *MongoEntryRepository) Delete(ctx context.Context, userID, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": objectID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

var _ EntryRepository = (*MongoEntryRepository)(nil)

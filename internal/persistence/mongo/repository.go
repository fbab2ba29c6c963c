// Package mongo stores one document per activity in a MongoDB collection,
// keyed by activity name in _id.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"example.com/extracurricular/internal/domain"
)

var _ domain.ActivityRepository = (*Repository)(nil)

type activityDocument struct {
	Name            string   `bson:"_id"`
	Description     string   `bson:"description"`
	Schedule        string   `bson:"schedule"`
	MaxParticipants int      `bson:"max_participants"`
	Participants    []string `bson:"participants"`
}

func toDocument(a domain.Activity) activityDocument {
	a = a.Clone()
	return activityDocument{
		Name:            a.Name,
		Description:     a.Description,
		Schedule:        a.Schedule,
		MaxParticipants: a.MaxParticipants,
		Participants:    a.Participants,
	}
}

func (d activityDocument) toDomain() domain.Activity {
	participants := d.Participants
	if participants == nil {
		participants = []string{}
	}
	return domain.Activity{
		Name:            d.Name,
		Description:     d.Description,
		Schedule:        d.Schedule,
		MaxParticipants: d.MaxParticipants,
		Participants:    participants,
	}
}

// Connect dials uri and verifies the primary is reachable.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// Repository provides MongoDB-backed persistence for activities.
type Repository struct {
	collection *mongo.Collection
}

// NewRepository constructs a Repository over collection.
func NewRepository(collection *mongo.Collection) *Repository {
	return &Repository{collection: collection}
}

// Count returns the number of activity documents.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// Insert creates the activity document.
func (r *Repository) Insert(ctx context.Context, activity domain.Activity) error {
	if _, err := r.collection.InsertOne(ctx, toDocument(activity)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateKey, activity.Name)
		}
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// Get looks up an activity by name.
func (r *Repository) Get(ctx context.Context, name string) (*domain.Activity, error) {
	var doc activityDocument
	err := r.collection.FindOne(ctx, bson.D{{Key: "_id", Value: name}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find activity: %w", err)
	}
	activity := doc.toDomain()
	return &activity, nil
}

// ListAll returns every activity ordered by name.
func (r *Repository) ListAll(ctx context.Context) ([]domain.Activity, error) {
	cursor, err := r.collection.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find activities: %w", err)
	}
	var docs []activityDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode activities: %w", err)
	}

	out := make([]domain.Activity, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toDomain())
	}
	return out, nil
}

// AppendParticipant pushes email onto the roster unless it is already present.
func (r *Repository) AppendParticipant(ctx context.Context, name, email string) (bool, error) {
	filter := bson.D{
		{Key: "_id", Value: name},
		{Key: "participants", Value: bson.D{{Key: "$ne", Value: email}}},
	}
	update := bson.D{{Key: "$push", Value: bson.D{{Key: "participants", Value: email}}}}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("push participant: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

// RemoveParticipant pulls email from the roster when present.
func (r *Repository) RemoveParticipant(ctx context.Context, name, email string) (bool, error) {
	filter := bson.D{
		{Key: "_id", Value: name},
		{Key: "participants", Value: email},
	}
	update := bson.D{{Key: "$pull", Value: bson.D{{Key: "participants", Value: email}}}}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("pull participant: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

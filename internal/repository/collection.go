package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/farmrakshaa/backend/internal/apperr"
)

// Store is the uniform CRUD contract for the secondary resources (alerts,
// farms, compliance records, feedback).
type Store[T any] interface {
	Create(ctx context.Context, doc *T) error
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id primitive.ObjectID) (*T, error)
	Update(ctx context.Context, id primitive.ObjectID, doc *T) (*T, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Collection implements Store over one Mongo collection. The secondary
// resources are flat documents with identical access patterns, so a single
// generic implementation covers all four.
type Collection[T any] struct {
	col *mongo.Collection
}

func NewCollection[T any](database *mongo.Database, name string) *Collection[T] {
	return &Collection[T]{col: database.Collection(name)}
}

func (c *Collection[T]) Create(ctx context.Context, doc *T) error {
	fields, err := createFields(doc)
	if err != nil {
		return err
	}
	if _, err := c.col.InsertOne(ctx, fields); err != nil {
		return err
	}
	// Surface the generated id and default timestamps back into the
	// document for the response.
	applyFields(doc, fields)
	return nil
}

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	cursor, err := c.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []T{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Collection[T]) Get(ctx context.Context, id primitive.ObjectID) (*T, error) {
	var doc T
	err := c.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Collection[T]) Update(ctx context.Context, id primitive.ObjectID, doc *T) (*T, error) {
	fields, err := updateFields(doc)
	if err != nil {
		return nil, err
	}
	var updated T
	err = c.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := c.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// documentFields flattens a document into its bson field map.
func documentFields[T any](doc *T) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func isZeroTime(v interface{}) bool {
	t, ok := v.(primitive.DateTime)
	return ok && t.Time().IsZero()
}

// createFields prepares an insert document: a fresh id, and current time for
// any timestamp field the caller left unset.
func createFields[T any](doc *T) (bson.M, error) {
	fields, err := documentFields(doc)
	if err != nil {
		return nil, err
	}
	fields["_id"] = primitive.NewObjectID()
	now := primitive.NewDateTimeFromTime(time.Now())
	for _, key := range []string{"date", "createdAt", "updatedAt"} {
		if v, ok := fields[key]; ok && isZeroTime(v) {
			fields[key] = now
		}
	}
	return fields, nil
}

// updateFields prepares a $set payload. The id is never rewritten, and
// timestamps the caller did not send are left alone instead of being zeroed
// by the full-document overwrite; updatedAt is refreshed.
func updateFields[T any](doc *T) (bson.M, error) {
	fields, err := documentFields(doc)
	if err != nil {
		return nil, err
	}
	delete(fields, "_id")
	for _, key := range []string{"date", "createdAt"} {
		if v, ok := fields[key]; ok && isZeroTime(v) {
			delete(fields, key)
		}
	}
	if v, ok := fields["updatedAt"]; ok && isZeroTime(v) {
		fields["updatedAt"] = primitive.NewDateTimeFromTime(time.Now())
	}
	return fields, nil
}

// applyFields writes a field map back into the typed document.
func applyFields[T any](doc *T, fields bson.M) {
	raw, err := bson.Marshal(fields)
	if err != nil {
		return
	}
	_ = bson.Unmarshal(raw, doc)
}

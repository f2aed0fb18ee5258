package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/farmrakshaa/backend/internal/apperr"
	"github.com/farmrakshaa/backend/internal/models"
)

// UserStore is the persistence contract the auth service depends on. The
// Mongo implementation below is the real one; tests use an in-memory fake.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByAadhaar(ctx context.Context, aadhaar string) (*models.User, error)
	FindByLicense(ctx context.Context, license string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	UpdateFarmData(ctx context.Context, id string, data models.FarmData) (*models.User, error)
}

// MongoUserStore implements UserStore on the users collection.
type MongoUserStore struct {
	col *mongo.Collection
}

func NewMongoUserStore(database *mongo.Database) *MongoUserStore {
	return &MongoUserStore{col: database.Collection("users")}
}

// uniqueFields maps index key names to the request fields they protect, used
// to translate duplicate-key errors raised when two registrations race.
var uniqueFields = []string{"email", "aadhaarNumber", "licenseNumber"}

func mapDuplicateKey(err error) error {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return err
	}
	msg := err.Error()
	for _, field := range uniqueFields {
		if strings.Contains(msg, field) {
			return &apperr.DuplicateError{Field: field}
		}
	}
	return &apperr.DuplicateError{Field: "record"}
}

func (s *MongoUserStore) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	_, err := s.col.InsertOne(ctx, user)
	return mapDuplicateKey(err)
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := s.col.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoUserStore) FindByAadhaar(ctx context.Context, aadhaar string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"aadhaarNumber": aadhaar})
}

func (s *MongoUserStore) FindByLicense(ctx context.Context, license string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"licenseNumber": license})
}

func (s *MongoUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	return s.findOne(ctx, bson.M{"_id": objID})
}

func (s *MongoUserStore) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"password": hash, "updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *MongoUserStore) UpdateFarmData(ctx context.Context, id string, data models.FarmData) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	var user models.User
	err = s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": objID},
		bson.M{"$set": bson.M{"farmData": data, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

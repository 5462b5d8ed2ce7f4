package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/kevinaaaquil/watchlist/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func decodeUser(res *mongo.SingleResult) (*models.User, error) {
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	var u models.User
	if err := res.Decode(&u); err != nil {
		return nil, fmt.Errorf("%w: decode user: %v", models.ErrCorruptRecord, err)
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return &u, nil
}

// UserByEmail returns the user with the given (already normalised) email, or nil if none exists.
func (db *DB) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return decodeUser(db.Users().FindOne(ctx, bson.M{"email": email}))
}

// UserByID returns the user with the given id, or nil if none exists.
func (db *DB) UserByID(ctx context.Context, id string) (*models.User, error) {
	return decodeUser(db.Users().FindOne(ctx, bson.M{"_id": id}))
}

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	if user.Movies == nil {
		user.Movies = []string{}
	}
	_, err := db.Users().InsertOne(ctx, user, options.InsertOne())
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	return err
}

// UpdateUser sets the non-nil fields on the user document.
func (db *DB) UpdateUser(ctx context.Context, id string, email *string, hashedPassword *string) error {
	updates := bson.M{}
	if email != nil {
		updates["email"] = *email
	}
	if hashedPassword != nil {
		updates["password"] = *hashedPassword
	}
	if len(updates) == 0 {
		return nil
	}
	res, err := db.Users().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendMovie pushes movieID onto the user's list. Duplicates are not filtered.
func (db *DB) AppendMovie(ctx context.Context, userID, movieID string) error {
	res, err := db.Users().UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$push": bson.M{"movies": movieID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

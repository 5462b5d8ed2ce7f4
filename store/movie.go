package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kevinaaaquil/watchlist/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) InsertMovie(ctx context.Context, movie *models.Movie) error {
	normaliseLists(movie)
	_, err := db.Movies().InsertOne(ctx, movie, options.InsertOne())
	return err
}

// MovieByID returns the movie with the given id, or nil if none exists.
func (db *DB) MovieByID(ctx context.Context, id string) (*models.Movie, error) {
	res := db.Movies().FindOne(ctx, bson.M{"_id": id})
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	var m models.Movie
	if err := res.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: decode movie: %v", models.ErrCorruptRecord, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// MoviesByIDs returns the movies whose ids appear in ids, ordered as in ids.
// Ids with no matching document are skipped.
func (db *DB) MoviesByIDs(ctx context.Context, ids []string) ([]models.Movie, error) {
	if len(ids) == 0 {
		return []models.Movie{}, nil
	}
	cur, err := db.Movies().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	byID := make(map[string]models.Movie, len(ids))
	for cur.Next(ctx) {
		var m models.Movie
		if err := cur.Decode(&m); err != nil {
			return nil, fmt.Errorf("%w: decode movie: %v", models.ErrCorruptRecord, err)
		}
		if err := m.Validate(); err != nil {
			return nil, err
		}
		byID[m.ID] = m
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	movies := make([]models.Movie, 0, len(byID))
	seen := make(map[string]bool, len(byID))
	for _, id := range ids {
		m, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		movies = append(movies, m)
	}
	return movies, nil
}

// UpdateMovie replaces the editable fields of a movie.
func (db *DB) UpdateMovie(ctx context.Context, id string, movie *models.Movie) error {
	normaliseLists(movie)
	update := bson.M{
		"title":       movie.Title,
		"director":    movie.Director,
		"year":        movie.Year,
		"cast":        movie.Cast,
		"series":      movie.Series,
		"tags":        movie.Tags,
		"description": movie.Description,
		"video_link":  movie.VideoLink,
		"image_link":  movie.ImageLink,
	}
	return db.setMovieFields(ctx, id, update)
}

func (db *DB) SetMovieRating(ctx context.Context, id string, rating int) error {
	return db.setMovieFields(ctx, id, bson.M{"rating": rating})
}

func (db *DB) SetMovieLastWatched(ctx context.Context, id string, at time.Time) error {
	return db.setMovieFields(ctx, id, bson.M{"last_watched": at})
}

// SetMoviePoster records an uploaded poster's object key. The image link is left alone.
func (db *DB) SetMoviePoster(ctx context.Context, id, posterKey string) error {
	return db.setMovieFields(ctx, id, bson.M{"poster_key": posterKey})
}

func (db *DB) setMovieFields(ctx context.Context, id string, fields bson.M) error {
	res, err := db.Movies().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// normaliseLists stores empty arrays rather than null for unset list fields.
func normaliseLists(m *models.Movie) {
	if m.Cast == nil {
		m.Cast = []string{}
	}
	if m.Series == nil {
		m.Series = []string{}
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
}

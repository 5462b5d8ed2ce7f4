package models

import (
	"fmt"
	"time"
)

// MinMovieYear is the year of the first known motion picture.
const MinMovieYear = 1878

// MaxRating is the highest rating a movie can be given; zero means unrated.
const MaxRating = 5

type Movie struct {
	ID          string     `bson:"_id" json:"id"`
	Title       string     `bson:"title" json:"title"`
	Director    string     `bson:"director" json:"director"`
	Year        int        `bson:"year" json:"year"`
	Cast        []string   `bson:"cast" json:"cast"`
	Series      []string   `bson:"series" json:"series"`
	LastWatched *time.Time `bson:"last_watched" json:"lastWatched,omitempty"`
	Rating      int        `bson:"rating" json:"rating"`
	Tags        []string   `bson:"tags" json:"tags"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	VideoLink   string     `bson:"video_link,omitempty" json:"videoLink,omitempty"`
	ImageLink   string     `bson:"image_link,omitempty" json:"imageLink,omitempty"`
	PosterKey   string     `bson:"poster_key,omitempty" json:"-"` // object key in S3
}

// Validate reports whether a decoded movie carries every required field.
func (m *Movie) Validate() error {
	switch {
	case m.ID == "":
		return fmt.Errorf("%w: movie missing _id", ErrCorruptRecord)
	case m.Title == "":
		return fmt.Errorf("%w: movie %s missing title", ErrCorruptRecord, m.ID)
	case m.Director == "":
		return fmt.Errorf("%w: movie %s missing director", ErrCorruptRecord, m.ID)
	case m.Year < MinMovieYear:
		return fmt.Errorf("%w: movie %s has year %d", ErrCorruptRecord, m.ID, m.Year)
	}
	return nil
}

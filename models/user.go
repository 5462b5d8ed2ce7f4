package models

import (
	"errors"
	"fmt"
)

// ErrCorruptRecord is returned when a stored document is missing required fields
// or holds values of the wrong type.
var ErrCorruptRecord = errors.New("corrupt record")

type User struct {
	ID       string   `bson:"_id" json:"id"`
	Email    string   `bson:"email" json:"email"`
	Password string   `bson:"password" json:"-"` // bcrypt hash
	Movies   []string `bson:"movies" json:"movies"`
}

// Validate reports whether a decoded user carries every required field.
func (u *User) Validate() error {
	switch {
	case u.ID == "":
		return fmt.Errorf("%w: user missing _id", ErrCorruptRecord)
	case u.Email == "":
		return fmt.Errorf("%w: user %s missing email", ErrCorruptRecord, u.ID)
	case u.Password == "":
		return fmt.Errorf("%w: user %s missing password", ErrCorruptRecord, u.ID)
	}
	return nil
}

// HasMovie reports whether movieID is on the user's list.
func (u *User) HasMovie(movieID string) bool {
	for _, id := range u.Movies {
		if id == movieID {
			return true
		}
	}
	return false
}

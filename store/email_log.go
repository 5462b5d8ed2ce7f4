package store

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kevinaaaquil/watchlist/models"
)

// InsertEmailLog records that an email was sent to a user.
func (db *DB) InsertEmailLog(ctx context.Context, log *models.EmailLog) error {
	_, err := db.EmailLogs().InsertOne(ctx, log, options.InsertOne())
	return err
}

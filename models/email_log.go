package models

import "time"

// EmailKindPasswordReset marks a password reset link email.
const EmailKindPasswordReset = "password_reset"

// EmailLog records an email sent to a user. The message body is not stored.
type EmailLog struct {
	ID      string    `bson:"_id" json:"id"`
	UserID  string    `bson:"user_id" json:"userId"`
	ToEmail string    `bson:"to_email" json:"toEmail"`
	Kind    string    `bson:"kind" json:"kind"`
	SentAt  time.Time `bson:"sent_at" json:"sentAt"`
}

package entities

import "time"

const (
	EmailStatusPending = "pending"
	EmailStatusSent    = "sent"
	EmailStatusFailed  = "failed"
)

type Email struct {
	ID        string     `db:"id"`
	Recipient string     `db:"recipient"`
	Subject   string     `db:"subject"`
	HTMLBody  string     `db:"html_body"`
	TextBody  string     `db:"text_body"`
	Status    string     `db:"status"`
	Attempts  int        `db:"attempts"`
	LastError *string    `db:"last_error"`
	CreatedAt time.Time  `db:"created_at"`
	SentAt    *time.Time `db:"sent_at"`
}

package models

import "time"

// AccountMapping links a HighLevel sub-account to a Transmit-SMS account.
// All routing happens server-side; the client only creates and deletes pairs.
type AccountMapping struct {
	ID                  string    `json:"id" gorm:"primaryKey"`
	GHLAccount          string    `json:"ghl_account"`
	TransmitAccount     string    `json:"transmit_account"`
	GHLAccountName      string    `json:"ghl_account_name,omitempty"`
	TransmitAccountName string    `json:"transmit_account_name,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

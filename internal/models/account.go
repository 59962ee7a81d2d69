package models

import "time"

// GHLAccount is a HighLevel sub-account connected through OAuth credentials.
type GHLAccount struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name"`
	LocationID string    `json:"location_id"`
	Email      string    `json:"email,omitempty"`
	Connected  bool      `json:"connected"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// GHLAccountInput is the create/update payload for a HighLevel account.
type GHLAccountInput struct {
	Name       string `json:"name"`
	LocationID string `json:"location_id"`
	Email      string `json:"email,omitempty"`
}

// TransmitAccount is a Transmit-SMS provider account. The API secret is
// write-only; list responses carry a masked hint instead.
type TransmitAccount struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	SenderID  string    `json:"sender_id"`
	APIKeyEnd string    `json:"api_key_end,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TransmitAccountInput is the create/update payload for a provider account.
type TransmitAccountInput struct {
	Name     string `json:"name"`
	SenderID string `json:"sender_id"`
	APIKey   string `json:"api_key,omitempty"`
}

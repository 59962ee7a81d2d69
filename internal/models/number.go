package models

// AvailableNumber is a dedicated number purchasable from the SMS provider.
type AvailableNumber struct {
	ID      string  `json:"id" gorm:"primaryKey"`
	Number  string  `json:"number"`
	Label   string  `json:"label,omitempty"`
	Country string  `json:"country"`
	Price   float64 `json:"price"`
}

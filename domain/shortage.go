package domain

import "time"

// ShortagesPath is the store path of the shared shortage list.
const ShortagesPath = "shortages"

// Shortage is a photo of a missing product with an optional note.
type Shortage struct {
	ID          string    `json:"id"`
	Image       string    `json:"image"`
	StoragePath string    `json:"-"`
	Note        string    `json:"note"`
	At          time.Time `json:"at"`
}

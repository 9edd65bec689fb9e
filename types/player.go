package types

import "time"

// Player is a roster entry. Squad groups players (e.g. "senior", "youth").
type Player struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Position  string    `json:"position" db:"position"`
	Squad     string    `json:"squad" db:"squad"`
	Number    int       `json:"number" db:"number"`
	HeightCm  int       `json:"height_cm" db:"height_cm"`
	WeightKg  int       `json:"weight_kg" db:"weight_kg"`
	PhotoURL  string    `json:"photo_url" db:"photo_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

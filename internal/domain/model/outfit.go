package model

import (
	"time"

	"github.com/google/uuid"
)

// OutfitRecord is one generated look in a session's wardrobe.
// Records are immutable once created.
type OutfitRecord struct {
	ID        string    `json:"id"`
	Idea      string    `json:"idea"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

func NewOutfitRecord(idea, imageURL string) OutfitRecord {
	return OutfitRecord{
		ID:        uuid.NewString(),
		Idea:      idea,
		ImageURL:  imageURL,
		CreatedAt: time.Now(),
	}
}

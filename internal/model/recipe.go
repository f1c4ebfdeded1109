package model

import (
	"time"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/pageza/snapcook/backend/internal/types"
)

// EmbeddingDimensions matches text-embedding-3-small.
const EmbeddingDimensions = 1536

// Recipe is a row of the recipe index. Ingredients holds the embedded
// document; the remaining text columns are the search metadata.
type Recipe struct {
	ID           string           `gorm:"primaryKey;size:64" json:"id"`
	Title        string           `gorm:"size:255;not null" json:"title"`
	Description  string           `gorm:"type:text" json:"description"`
	Ingredients  string           `gorm:"type:text;not null" json:"ingredients"`
	Instructions string           `gorm:"type:text" json:"instructions"`
	Minutes      int              `gorm:"not null;default:0" json:"minutes"`
	Embedding    *pgvector.Vector `gorm:"type:vector(1536)" json:"-"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// ToType converts the row to the service-level recipe.
func (r *Recipe) ToType() *types.Recipe {
	return &types.Recipe{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Ingredients:  r.Ingredients,
		Instructions: r.Instructions,
		Minutes:      r.Minutes,
	}
}

// Metadata returns the columns stored alongside the embedding.
func (r *Recipe) Metadata() types.RecipeMetadata {
	return types.RecipeMetadata{
		Title:        r.Title,
		Description:  r.Description,
		Instructions: r.Instructions,
		Minutes:      r.Minutes,
	}
}

package service

import (
	"context"
	"errors"
	"fmt"

	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/snapcook/backend/internal/model"
	"github.com/pageza/snapcook/backend/internal/types"
)

// PGVectorStore is the recipe index on PostgreSQL with pgvector. Query
// ranks by cosine distance (the <=> operator).
type PGVectorStore struct {
	db       *gorm.DB
	embedder Embedder
}

// NewPGVectorStore creates a new PGVectorStore instance
func NewPGVectorStore(db *gorm.DB, embedder Embedder) *PGVectorStore {
	return &PGVectorStore{db: db, embedder: embedder}
}

func (s *PGVectorStore) Upsert(ctx context.Context, id, document string, metadata types.RecipeMetadata) error {
	vec, err := s.embedder.Embed(ctx, document)
	if err != nil {
		return upstream(ServiceEmbedding, err)
	}
	embedding := pgvector.NewVector(vec)

	recipe := model.Recipe{
		ID:           id,
		Title:        metadata.Title,
		Description:  metadata.Description,
		Ingredients:  document,
		Instructions: metadata.Instructions,
		Minutes:      metadata.Minutes,
		Embedding:    &embedding,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "description", "ingredients", "instructions", "minutes", "embedding", "updated_at",
		}),
	}).Create(&recipe).Error
	if err != nil {
		return upstream(ServiceVectorStore, fmt.Errorf("failed to upsert recipe %s: %w", id, err))
	}
	return nil
}

type recipeHit struct {
	model.Recipe
	Distance float64
}

func (s *PGVectorStore) Query(ctx context.Context, text string, topN int) ([]types.QueryResult, error) {
	if topN <= 0 {
		return nil, invalidInput("result count must be positive")
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, upstream(ServiceEmbedding, err)
	}

	var hits []recipeHit
	err = s.db.WithContext(ctx).
		Model(&model.Recipe{}).
		Select("id, title, description, ingredients, instructions, minutes, embedding <=> ? AS distance", pgvector.NewVector(vec)).
		Where("embedding IS NOT NULL").
		Order("distance").
		Limit(topN).
		Scan(&hits).Error
	if err != nil {
		return nil, upstream(ServiceVectorStore, fmt.Errorf("failed to query recipes: %w", err))
	}

	results := make([]types.QueryResult, len(hits))
	for i := range hits {
		h := &hits[i]
		results[i] = types.QueryResult{
			ID:       h.ID,
			Distance: h.Distance,
			Document: h.Ingredients,
			Metadata: h.Metadata(),
		}
	}
	return results, nil
}

func (s *PGVectorStore) GetByID(ctx context.Context, id string) (*types.Recipe, error) {
	var recipe model.Recipe
	err := s.db.WithContext(ctx).Omit("embedding").First(&recipe, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecipeNotFound
	}
	if err != nil {
		return nil, upstream(ServiceVectorStore, fmt.Errorf("failed to get recipe %s: %w", id, err))
	}
	return recipe.ToType(), nil
}

package database

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pageza/snapcook/backend/internal/model"
)

// RunMigrations prepares the recipe index schema. PostgreSQL gets the vector
// extension and an HNSW cosine index; sqlite only gets the table.
func RunMigrations(db *gorm.DB) error {
	if db.Dialector.Name() == "sqlite" {
		log.Info().Msg("Using GORM auto-migration for SQLite")
		return db.AutoMigrate(&model.Recipe{})
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("failed to install pgvector extension: %w", err)
	}

	if err := db.AutoMigrate(&model.Recipe{}); err != nil {
		return fmt.Errorf("failed to migrate recipes table: %w", err)
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS recipes_embedding_hnsw_idx
		ON recipes USING hnsw (embedding vector_cosine_ops)
	`).Error; err != nil {
		return fmt.Errorf("failed to create embedding index: %w", err)
	}

	log.Info().Msg("Applied recipe index migrations")
	return nil
}

package service_test

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/snapcook/backend/internal/model"
	"github.com/pageza/snapcook/backend/internal/service"
	"github.com/pageza/snapcook/backend/internal/testdb"
	"github.com/pageza/snapcook/backend/internal/types"
)

// bagOfWordsEmbedder hashes comma separated tokens into a fixed-size vector
// so that recipes sharing ingredients end up close in cosine distance.
type bagOfWordsEmbedder struct {
	err error
}

func (e bagOfWordsEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	vec := make([]float32, model.EmbeddingDimensions)
	for _, tok := range service.SplitIngredients(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%model.EmbeddingDimensions] += 1
	}
	return vec, nil
}

func TestPGVectorStoreUpsertAndGet(t *testing.T) {
	db := testdb.SetupSQLite(t)
	store := service.NewPGVectorStore(db, bagOfWordsEmbedder{})
	ctx := context.Background()

	meta := types.RecipeMetadata{Title: "Tomato Soup", Description: "Cozy", Instructions: "Simmer.", Minutes: 30}
	require.NoError(t, store.Upsert(ctx, "1", "tomato, onion, garlic", meta))

	got, err := store.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, &types.Recipe{
		ID: "1", Title: "Tomato Soup", Description: "Cozy",
		Ingredients: "tomato, onion, garlic", Instructions: "Simmer.", Minutes: 30,
	}, got)

	meta.Title = "Roasted Tomato Soup"
	require.NoError(t, store.Upsert(ctx, "1", "tomato, onion, garlic, basil", meta))
	got, err = store.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Roasted Tomato Soup", got.Title)
	assert.Equal(t, "tomato, onion, garlic, basil", got.Ingredients)

	var count int64
	require.NoError(t, db.Model(&model.Recipe{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPGVectorStoreGetByIDNotFound(t *testing.T) {
	store := service.NewPGVectorStore(testdb.SetupSQLite(t), bagOfWordsEmbedder{})

	_, err := store.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, service.ErrRecipeNotFound)
}

func TestPGVectorStoreEmbeddingFailure(t *testing.T) {
	boom := errors.New("embedding quota")
	store := service.NewPGVectorStore(testdb.SetupSQLite(t), bagOfWordsEmbedder{err: boom})

	err := store.Upsert(context.Background(), "1", "egg", types.RecipeMetadata{Title: "Egg"})
	var ue *service.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, service.ServiceEmbedding, ue.Service)

	_, err = store.Query(context.Background(), "egg", 5)
	require.ErrorAs(t, err, &ue)
	assert.ErrorIs(t, err, boom)
}

func TestPGVectorStoreQuery(t *testing.T) {
	tdb := testdb.SetupTestDB(t)
	store := service.NewPGVectorStore(tdb.DB.DB, bagOfWordsEmbedder{})
	ctx := context.Background()

	recipes := []struct {
		id, doc, title string
	}{
		{"1", "onion, garlic, tomato", "Marinara"},
		{"2", "flour, sugar, butter, egg", "Shortbread"},
		{"3", "onion, garlic, chicken", "Garlic Chicken"},
		{"4", "rice, egg, soy sauce", "Fried Rice"},
	}
	for _, r := range recipes {
		require.NoError(t, store.Upsert(ctx, r.id, r.doc, types.RecipeMetadata{Title: r.title, Minutes: 15}))
	}

	results, err := store.Query(ctx, "onion, garlic", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].Distance, results[i].Distance)
	}
	top := []string{results[0].ID, results[1].ID}
	assert.ElementsMatch(t, []string{"1", "3"}, top)
	assert.Equal(t, 15, results[0].Metadata.Minutes)
	for _, r := range results {
		for _, want := range recipes {
			if want.id == r.ID {
				assert.Equal(t, want.doc, r.Document)
				assert.Equal(t, want.title, r.Metadata.Title)
			}
		}
	}

	retriever := service.NewRecipeRetriever(store)
	cards, err := retriever.Retrieve(ctx, []string{"onion", "garlic"}, 5)
	require.NoError(t, err)
	assert.Len(t, cards, 4)
	assert.InDelta(t, results[0].Distance, cards[0].MatchScore, 1e-9)
}

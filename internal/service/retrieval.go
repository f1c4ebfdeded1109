package service

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pageza/snapcook/backend/internal/metrics"
	"github.com/pageza/snapcook/backend/internal/types"
)

// DefaultTopN is the number of recipes returned when none is configured.
const DefaultTopN = 5

// RecipeRetriever maps an ingredient set to the nearest recipes.
type RecipeRetriever struct {
	store VectorStore
}

// NewRecipeRetriever creates a new RecipeRetriever instance
func NewRecipeRetriever(store VectorStore) *RecipeRetriever {
	return &RecipeRetriever{store: store}
}

// Retrieve returns up to topN recipe cards ordered by ascending distance.
// MatchScore is the raw cosine distance, so lower means a closer match.
func (r *RecipeRetriever) Retrieve(ctx context.Context, ingredients []string, topN int) ([]types.RecipeCard, error) {
	if len(ingredients) == 0 {
		return nil, invalidInput("No ingredients to search for.")
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	query := strings.Join(ingredients, ", ")
	zerolog.Ctx(ctx).Debug().Str("query", query).Int("top_n", topN).Msg("querying recipe index")

	results, err := r.store.Query(ctx, query, topN)
	if err != nil {
		return nil, upstream(ServiceVectorStore, err)
	}
	metrics.RecipeQueries.Inc()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	cards := make([]types.RecipeCard, len(results))
	for i, res := range results {
		cards[i] = types.RecipeCard{
			ID:          res.ID,
			Title:       res.Metadata.Title,
			Description: res.Metadata.Description,
			Minutes:     res.Metadata.Minutes,
			MatchScore:  res.Distance,
		}
	}
	return cards, nil
}

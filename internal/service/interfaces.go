package service

import (
	"context"

	"github.com/pageza/snapcook/backend/internal/types"
)

// FragmentStream is a pull iterator over streamed text. Next blocks until a
// fragment is available or the stream ends; Err reports why it ended.
type FragmentStream interface {
	Next() bool
	Current() string
	Err() error
	Close() error
}

// ChatModel streams a completion for a system prompt and message history.
type ChatModel interface {
	StreamChat(ctx context.Context, system string, history []types.Message) (FragmentStream, error)
}

// VisionClassifier lists the food ingredients visible in an image.
type VisionClassifier interface {
	Classify(ctx context.Context, image types.ImageInput) ([]string, error)
}

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorStore is the recipe similarity index.
type VectorStore interface {
	Upsert(ctx context.Context, id, document string, metadata types.RecipeMetadata) error
	Query(ctx context.Context, text string, topN int) ([]types.QueryResult, error)
	GetByID(ctx context.Context, id string) (*types.Recipe, error)
}

// ThreadStore persists conversation history. Append is atomic per call and
// sets the recipe context only when the thread has none.
type ThreadStore interface {
	Load(ctx context.Context, id string) (types.Thread, bool, error)
	Append(ctx context.Context, id, recipeContext string, msgs ...types.Message) error
	Ping(ctx context.Context) error
}

// ImageArchive keeps a copy of uploaded images and returns where it went.
type ImageArchive interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// IRecipeRetriever finds the recipes closest to a set of ingredients.
type IRecipeRetriever interface {
	Retrieve(ctx context.Context, ingredients []string, topN int) ([]types.RecipeCard, error)
}

// IAnalysisService defines the interface for ingredient analysis
type IAnalysisService interface {
	Analyze(ctx context.Context, image *types.ImageInput, text string) (*types.AnalysisResult, error)
}

// IConversationService defines the interface for cooking conversations
type IConversationService interface {
	StartConversation(ctx context.Context, recipeID, seed string) (string, FragmentStream, error)
	ContinueConversation(ctx context.Context, threadID, message string) (FragmentStream, error)
}

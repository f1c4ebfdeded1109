package types

// Recipe is the full record behind a search hit. Ingredients is the
// free-text document that gets embedded.
type Recipe struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Ingredients  string `json:"ingredients"`
	Instructions string `json:"instructions"`
	Minutes      int    `json:"minutes"`
}

// RecipeMetadata is what the vector store keeps next to each embedding.
type RecipeMetadata struct {
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Instructions string `json:"instructions"`
	Minutes      int    `json:"minutes"`
}

// QueryResult is one nearest-neighbour hit. Distance is the raw cosine
// distance, lower is closer. Document is the embedded ingredient text.
type QueryResult struct {
	ID       string
	Distance float64
	Document string
	Metadata RecipeMetadata
}

// RecipeCard is the summary shown in search results.
type RecipeCard struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Minutes     int     `json:"minutes"`
	MatchScore  float64 `json:"match_score"`
}

// ImageInput is an uploaded photo.
type ImageInput struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AnalysisResult is the response of an ingredient analysis.
type AnalysisResult struct {
	DetectedIngredients []string     `json:"detected_ingredients"`
	Recipes             []RecipeCard `json:"recipes"`
}

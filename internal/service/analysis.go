package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pageza/snapcook/backend/internal/metrics"
	"github.com/pageza/snapcook/backend/internal/types"
)

const (
	msgNoInput       = "Please provide an image or text ingredients."
	msgNoIngredients = "No ingredients could be identified."
)

// AnalysisService turns a photo and/or typed ingredients into recipe matches.
type AnalysisService struct {
	vision    VisionClassifier
	retriever IRecipeRetriever
	archive   ImageArchive
	topN      int
}

// NewAnalysisService creates a new AnalysisService. archive may be nil.
func NewAnalysisService(vision VisionClassifier, retriever IRecipeRetriever, archive ImageArchive, topN int) *AnalysisService {
	return &AnalysisService{
		vision:    vision,
		retriever: retriever,
		archive:   archive,
		topN:      topN,
	}
}

// Analyze detects ingredients and retrieves matching recipes. Ingredients
// are deduplicated case-sensitively and returned in first-seen order.
func (s *AnalysisService) Analyze(ctx context.Context, image *types.ImageInput, text string) (*types.AnalysisResult, error) {
	hasImage := image != nil && len(image.Data) > 0
	typed := SplitIngredients(text)
	if !hasImage && len(typed) == 0 {
		return nil, invalidInput(msgNoInput)
	}

	logger := zerolog.Ctx(ctx)
	var detected []string
	if hasImage {
		s.archiveImage(ctx, image)

		tokens, err := s.vision.Classify(ctx, *image)
		if err != nil {
			return nil, upstream(ServiceVision, err)
		}
		logger.Debug().Strs("ingredients", tokens).Msg("vision model detected ingredients")
		detected = tokens
	}

	ingredients := dedupe(append(detected, typed...))
	if len(ingredients) == 0 {
		return nil, invalidInput(msgNoIngredients)
	}
	metrics.IngredientAnalyses.WithLabelValues(analysisSource(hasImage, len(typed) > 0)).Inc()

	cards, err := s.retriever.Retrieve(ctx, ingredients, s.topN)
	if err != nil {
		return nil, err
	}

	return &types.AnalysisResult{
		DetectedIngredients: ingredients,
		Recipes:             cards,
	}, nil
}

func (s *AnalysisService) archiveImage(ctx context.Context, image *types.ImageInput) {
	if s.archive == nil {
		return
	}
	location, err := s.archive.Save(ctx, image.Filename, image.ContentType, image.Data)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to archive upload")
		return
	}
	zerolog.Ctx(ctx).Debug().Str("location", location).Msg("archived upload")
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

func analysisSource(image, text bool) string {
	switch {
	case image && text:
		return "both"
	case image:
		return "image"
	default:
		return "text"
	}
}

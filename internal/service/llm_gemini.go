package service

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"google.golang.org/genai"

	"github.com/pageza/snapcook/backend/internal/types"
)

// GeminiClient serves chat and vision from the Gemini API.
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float64
}

// NewGeminiClient creates a Gemini client for the given model.
func NewGeminiClient(ctx context.Context, apiKey, model string, temperature float64) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY or GEMINI_API_KEY_FILE must be set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}
	return &GeminiClient{client: client, model: model, temperature: temperature}, nil
}

func (c *GeminiClient) StreamChat(ctx context.Context, system string, history []types.Message) (FragmentStream, error) {
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case types.RoleUser:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		case types.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		}
	}

	seq := c.client.Models.GenerateContentStream(ctx, c.model, contents, c.chatConfig(system))
	return newGeminiStream(seq), nil
}

func (c *GeminiClient) chatConfig(system string) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(system),
		Temperature:       genai.Ptr(float32(c.temperature)),
	}
}

// systemInstruction wraps a prompt for GenerateContentConfig. The API reads
// system text as a user turn.
func systemInstruction(text string) *genai.Content {
	return genai.NewContentFromText(text, genai.RoleUser)
}

type geminiStream struct {
	next    func() (*genai.GenerateContentResponse, error, bool)
	stop    func()
	current string
	err     error
}

func newGeminiStream(seq iter.Seq2[*genai.GenerateContentResponse, error]) *geminiStream {
	next, stop := iter.Pull2(seq)
	return &geminiStream{next: next, stop: stop}
}

func (s *geminiStream) Next() bool {
	if s.err != nil {
		return false
	}
	for {
		resp, err, ok := s.next()
		if !ok {
			return false
		}
		if err != nil {
			s.err = fmt.Errorf("gemini: streaming content: %w", err)
			return false
		}
		if text := resp.Text(); text != "" {
			s.current = text
			return true
		}
	}
}

func (s *geminiStream) Current() string {
	return s.current
}

func (s *geminiStream) Err() error {
	return s.err
}

func (s *geminiStream) Close() error {
	s.stop()
	return nil
}

func (c *GeminiClient) Classify(ctx context.Context, image types.ImageInput) ([]string, error) {
	mimeType := image.ContentType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	res, err := c.client.Models.GenerateContent(ctx, c.model, []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(visionUserPrompt),
			genai.NewPartFromBytes(image.Data, mimeType),
		}, genai.RoleUser),
	}, &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(visionSystemPrompt),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: classifying image: %w", err)
	}
	return SplitIngredients(res.Text()), nil
}

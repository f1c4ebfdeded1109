package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/ssestream"

	"github.com/pageza/snapcook/backend/internal/types"
)

// OpenAIConfig configures the OpenAI client.
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	VisionModel    string
	EmbeddingModel string
	Temperature    float64
}

// OpenAIClient serves chat, vision and embeddings from one OpenAI account.
type OpenAIClient struct {
	client         openai.Client
	chatModel      string
	visionModel    string
	embeddingModel string
	temperature    float64
}

// NewOpenAIClient creates a new OpenAIClient instance
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OPENAI_API_KEY or OPENAI_API_KEY_FILE must be set")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// Failed calls surface to the caller instead of being retried.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		client:         openai.NewClient(opts...),
		chatModel:      cfg.ChatModel,
		visionModel:    cfg.VisionModel,
		embeddingModel: cfg.EmbeddingModel,
		temperature:    cfg.Temperature,
	}, nil
}

func (c *OpenAIClient) StreamChat(ctx context.Context, system string, history []types.Message) (FragmentStream, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	messages = append(messages, openai.SystemMessage(system))
	for _, m := range history {
		switch m.Role {
		case types.RoleUser:
			messages = append(messages, openai.UserMessage(m.Content))
		case types.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		case types.RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		}
	}

	stream := c.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.chatModel),
		Messages:    messages,
		Temperature: openai.Float(c.temperature),
	})
	return &openAIChatStream{stream: stream}, nil
}

type openAIChatStream struct {
	stream  *ssestream.Stream[openai.ChatCompletionChunk]
	current string
}

func (s *openAIChatStream) Next() bool {
	for s.stream.Next() {
		chunk := s.stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if content := chunk.Choices[0].Delta.Content; content != "" {
			s.current = content
			return true
		}
	}
	return false
}

func (s *openAIChatStream) Current() string {
	return s.current
}

func (s *openAIChatStream) Err() error {
	if err := s.stream.Err(); err != nil {
		return fmt.Errorf("openai: streaming chat completion: %w", err)
	}
	return nil
}

func (s *openAIChatStream) Close() error {
	return s.stream.Close()
}

func (c *OpenAIClient) Classify(ctx context.Context, image types.ImageInput) ([]string, error) {
	contentType := image.ContentType
	if !strings.HasPrefix(contentType, "image/") {
		contentType = "image/jpeg"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(image.Data))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.visionModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(visionSystemPrompt),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(visionUserPrompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
			}),
		},
		MaxTokens: openai.Int(300),
	})
	if err != nil {
		return nil, fmt.Errorf("openai: classifying image: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: classifying image: empty response")
	}
	return SplitIngredients(resp.Choices[0].Message.Content), nil
}

func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.EmbeddingModel(c.embeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("openai: creating embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("openai: creating embedding: empty response")
	}

	values := resp.Data[0].Embedding
	vec := make([]float32, len(values))
	for i, v := range values {
		vec[i] = float32(v)
	}
	return vec, nil
}

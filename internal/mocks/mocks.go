package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/snapcook/backend/internal/service"
	"github.com/pageza/snapcook/backend/internal/types"
)

// MockAnalysisService is a mock implementation of the analysis service
type MockAnalysisService struct {
	mock.Mock
}

// Analyze mocks the Analyze method
func (m *MockAnalysisService) Analyze(ctx context.Context, image *types.ImageInput, text string) (*types.AnalysisResult, error) {
	args := m.Called(ctx, image, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.AnalysisResult), args.Error(1)
}

// MockConversationService is a mock implementation of the conversation service
type MockConversationService struct {
	mock.Mock
}

// StartConversation mocks the StartConversation method
func (m *MockConversationService) StartConversation(ctx context.Context, recipeID, seed string) (string, service.FragmentStream, error) {
	args := m.Called(ctx, recipeID, seed)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(service.FragmentStream), args.Error(2)
}

// ContinueConversation mocks the ContinueConversation method
func (m *MockConversationService) ContinueConversation(ctx context.Context, threadID, message string) (service.FragmentStream, error) {
	args := m.Called(ctx, threadID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(service.FragmentStream), args.Error(1)
}

// MockThreadStore is a mock implementation of the thread store
type MockThreadStore struct {
	mock.Mock
}

// Load mocks the Load method
func (m *MockThreadStore) Load(ctx context.Context, id string) (types.Thread, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.Thread), args.Bool(1), args.Error(2)
}

// Append mocks the Append method
func (m *MockThreadStore) Append(ctx context.Context, id, recipeContext string, msgs ...types.Message) error {
	args := m.Called(ctx, id, recipeContext, msgs)
	return args.Error(0)
}

// Ping mocks the Ping method
func (m *MockThreadStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// FakeStream replays fixed fragments and then ends with Error.
type FakeStream struct {
	Fragments []string
	Error     error
	Closed    bool

	pos     int
	current string
}

// NewFakeStream creates a stream over fragments.
func NewFakeStream(fragments ...string) *FakeStream {
	return &FakeStream{Fragments: fragments}
}

func (s *FakeStream) Next() bool {
	if s.Closed || s.pos >= len(s.Fragments) {
		return false
	}
	s.current = s.Fragments[s.pos]
	s.pos++
	return true
}

func (s *FakeStream) Current() string {
	return s.current
}

func (s *FakeStream) Err() error {
	if s.pos >= len(s.Fragments) {
		return s.Error
	}
	return nil
}

func (s *FakeStream) Close() error {
	s.Closed = true
	return nil
}

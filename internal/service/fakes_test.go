package service

import (
	"context"
	"errors"
	"sync"

	"github.com/pageza/snapcook/backend/internal/types"
)

var errUpstreamDown = errors.New("upstream down")

// scriptedStream replays fragments, then fails with err if set. When gate is
// non-nil every fragment waits for a value on it.
type scriptedStream struct {
	ctx       context.Context
	fragments []string
	err       error
	gate      chan struct{}

	pos     int
	current string
	failed  error
	closed  bool
}

func (s *scriptedStream) Next() bool {
	if s.closed || s.pos >= len(s.fragments) {
		if s.err != nil {
			s.failed = s.err
		}
		return false
	}
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-s.ctx.Done():
			s.failed = s.ctx.Err()
			return false
		}
	}
	if err := s.ctx.Err(); err != nil {
		s.failed = err
		return false
	}
	s.current = s.fragments[s.pos]
	s.pos++
	return true
}

func (s *scriptedStream) Current() string { return s.current }
func (s *scriptedStream) Err() error      { return s.failed }

func (s *scriptedStream) Close() error {
	s.closed = true
	return nil
}

type chatCall struct {
	system  string
	history []types.Message
}

// fakeChat returns one scripted reply per call, cycling through replies.
type fakeChat struct {
	mu       sync.Mutex
	replies  [][]string
	failMid  error
	startErr error
	gate     chan struct{}
	calls    []chatCall
}

func (f *fakeChat) StreamChat(ctx context.Context, system string, history []types.Message) (FragmentStream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, chatCall{system: system, history: append([]types.Message(nil), history...)})
	if f.startErr != nil {
		return nil, f.startErr
	}
	reply := []string{"Let's ", "cook! ", "🍳"}
	if len(f.replies) > 0 {
		reply = f.replies[(len(f.calls)-1)%len(f.replies)]
	}
	return &scriptedStream{ctx: ctx, fragments: reply, err: f.failMid, gate: f.gate}, nil
}

func (f *fakeChat) lastCall() chatCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type fakeVectorStore struct {
	recipes  map[string]*types.Recipe
	results  []types.QueryResult
	queryErr error

	queries []string
	topNs   []int
}

func (f *fakeVectorStore) Upsert(_ context.Context, id, document string, metadata types.RecipeMetadata) error {
	if f.recipes == nil {
		f.recipes = make(map[string]*types.Recipe)
	}
	f.recipes[id] = &types.Recipe{
		ID:           id,
		Title:        metadata.Title,
		Description:  metadata.Description,
		Ingredients:  document,
		Instructions: metadata.Instructions,
		Minutes:      metadata.Minutes,
	}
	return nil
}

func (f *fakeVectorStore) Query(_ context.Context, text string, topN int) ([]types.QueryResult, error) {
	f.queries = append(f.queries, text)
	f.topNs = append(f.topNs, topN)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return append([]types.QueryResult(nil), f.results...), nil
}

func (f *fakeVectorStore) GetByID(_ context.Context, id string) (*types.Recipe, error) {
	r, ok := f.recipes[id]
	if !ok {
		return nil, ErrRecipeNotFound
	}
	return r, nil
}

type fakeVision struct {
	tokens []string
	err    error
	calls  int
}

func (f *fakeVision) Classify(context.Context, types.ImageInput) ([]string, error) {
	f.calls++
	return f.tokens, f.err
}

type fakeArchive struct {
	saved []string
	err   error
}

func (f *fakeArchive) Save(_ context.Context, name, _ string, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.saved = append(f.saved, name)
	return "archive/" + name, nil
}

// countingThreadStore records Append calls on top of a memory store.
type countingThreadStore struct {
	*MemoryThreadStore
	mu      sync.Mutex
	appends int
}

func (c *countingThreadStore) Append(ctx context.Context, id, recipeContext string, msgs ...types.Message) error {
	c.mu.Lock()
	c.appends++
	c.mu.Unlock()
	return c.MemoryThreadStore.Append(ctx, id, recipeContext, msgs...)
}

func (c *countingThreadStore) appendCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.appends
}

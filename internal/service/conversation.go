package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pageza/snapcook/backend/internal/metrics"
	"github.com/pageza/snapcook/backend/internal/types"
)

// Orchestrator runs cooking conversations. Turns on the same thread are
// serialized; a turn holds its thread from the start of the model call until
// its Stream is closed.
type Orchestrator struct {
	chat    ChatModel
	recipes VectorStore
	threads ThreadStore
	locks   *keyedLocks
	newID   func() string
	now     func() time.Time
}

// NewOrchestrator creates a new Orchestrator instance
func NewOrchestrator(chat ChatModel, recipes VectorStore, threads ThreadStore) *Orchestrator {
	return &Orchestrator{
		chat:    chat,
		recipes: recipes,
		threads: threads,
		locks:   newKeyedLocks(),
		newID:   uuid.NewString,
		now:     time.Now,
	}
}

// StartConversation opens a new thread bound to a recipe and streams the
// reply to seed. An empty seed uses DefaultSeedMessage.
func (o *Orchestrator) StartConversation(ctx context.Context, recipeID, seed string) (string, FragmentStream, error) {
	if strings.TrimSpace(recipeID) == "" {
		return "", nil, invalidInput("recipe_id is required.")
	}

	recipe, err := o.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return "", nil, upstream(ServiceVectorStore, err)
	}
	if strings.TrimSpace(seed) == "" {
		seed = DefaultSeedMessage
	}

	threadID := o.newID()
	zerolog.Ctx(ctx).Info().Str("thread_id", threadID).Str("recipe_id", recipeID).Msg("starting conversation")

	stream, err := o.turn(ctx, threadID, RecipeContext(recipe.Title, recipe.Instructions), seed)
	if err != nil {
		return "", nil, err
	}
	return threadID, stream, nil
}

// ContinueConversation streams the reply to message on an existing thread.
// An unknown thread id starts an empty thread without a recipe.
func (o *Orchestrator) ContinueConversation(ctx context.Context, threadID, message string) (FragmentStream, error) {
	if strings.TrimSpace(threadID) == "" {
		return nil, invalidInput("thread_id is required.")
	}
	if strings.TrimSpace(message) == "" {
		return nil, invalidInput("message is required.")
	}
	stream, err := o.turn(ctx, threadID, "", message)
	if err != nil {
		return nil, err
	}
	return stream, nil
}

func (o *Orchestrator) turn(ctx context.Context, threadID, newContext, text string) (*Stream, error) {
	unlock, err := o.locks.Lock(ctx, threadID)
	if err != nil {
		metrics.ConversationTurns.WithLabelValues(metrics.OutcomeCancelled).Inc()
		return nil, err
	}

	thread, found, err := o.threads.Load(ctx, threadID)
	if err != nil {
		unlock()
		metrics.ConversationTurns.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, upstream(ServiceThreadStore, err)
	}
	if !found && newContext == "" {
		zerolog.Ctx(ctx).Warn().Str("thread_id", threadID).Msg("unknown thread, continuing with empty history")
	}

	recipeContext := thread.RecipeContext
	if recipeContext == "" {
		recipeContext = newContext
	}

	user := types.Message{
		Role:      types.RoleUser,
		Content:   text,
		Position:  thread.NextPosition(),
		CreatedAt: o.now(),
	}
	history := make([]types.Message, 0, len(thread.Messages)+1)
	history = append(history, thread.Messages...)
	history = append(history, user)

	fragments, err := o.chat.StreamChat(ctx, ChefSystemPrompt(recipeContext), history)
	if err != nil {
		unlock()
		metrics.ConversationTurns.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, upstream(ServiceChat, err)
	}

	return &Stream{
		ctx:        ctx,
		orch:       o,
		threadID:   threadID,
		newContext: newContext,
		user:       user,
		fragments:  fragments,
		unlock:     unlock,
	}, nil
}

// Stream yields the assistant's reply fragment by fragment. When the model
// finishes cleanly the user message and the full reply are committed to the
// thread together; on failure or early Close nothing is committed.
type Stream struct {
	ctx        context.Context
	orch       *Orchestrator
	threadID   string
	newContext string
	user       types.Message
	fragments  FragmentStream

	reply   strings.Builder
	current string
	err     error
	done    bool

	unlock      func()
	releaseOnce sync.Once
	closeOnce   sync.Once
}

func (s *Stream) Next() bool {
	if s.done {
		return false
	}
	if s.fragments.Next() {
		s.current = s.fragments.Current()
		s.reply.WriteString(s.current)
		metrics.StreamedFragments.Inc()
		return true
	}

	s.done = true
	logger := zerolog.Ctx(s.ctx)
	if err := s.fragments.Err(); err != nil {
		if s.ctx.Err() != nil {
			s.err = s.ctx.Err()
			s.finish(metrics.OutcomeCancelled)
			return false
		}
		s.err = upstream(ServiceChat, err)
		logger.Error().Err(err).Str("thread_id", s.threadID).Msg("chat model stream failed")
		s.finish(metrics.OutcomeFailed)
		return false
	}
	if err := s.ctx.Err(); err != nil {
		s.err = err
		s.finish(metrics.OutcomeCancelled)
		return false
	}

	assistant := types.Message{
		Role:      types.RoleAssistant,
		Content:   s.reply.String(),
		Position:  s.user.Position + 1,
		CreatedAt: s.orch.now(),
	}
	if err := s.orch.threads.Append(s.ctx, s.threadID, s.newContext, s.user, assistant); err != nil {
		s.err = upstream(ServiceThreadStore, err)
		logger.Error().Err(err).Str("thread_id", s.threadID).Msg("failed to commit conversation turn")
		s.finish(metrics.OutcomeFailed)
		return false
	}
	s.finish(metrics.OutcomeCommitted)
	return false
}

func (s *Stream) Current() string {
	return s.current
}

func (s *Stream) Err() error {
	return s.err
}

// Close stops the model stream and releases the thread. Closing before the
// stream is drained discards the turn.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if !s.done {
			s.done = true
			s.finish(metrics.OutcomeCancelled)
		}
		err = s.fragments.Close()
	})
	return err
}

func (s *Stream) finish(outcome string) {
	metrics.ConversationTurns.WithLabelValues(outcome).Inc()
	s.releaseOnce.Do(s.unlock)
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/snapcook/backend/config"
	"github.com/pageza/snapcook/backend/internal/api"
	"github.com/pageza/snapcook/backend/internal/metrics"
	"github.com/pageza/snapcook/backend/internal/middleware"
	"github.com/pageza/snapcook/backend/internal/mocks"
	"github.com/pageza/snapcook/backend/internal/testdb"
	"github.com/pageza/snapcook/backend/internal/types"
)

func testConfig() *config.Config {
	return &config.Config{
		ServerHost:         "127.0.0.1",
		ServerPort:         "0",
		CORSAllowedOrigins: []string{"*"},
	}
}

func newTestServer(t *testing.T, conversation *mocks.MockConversationService) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	return New(testConfig(), zerolog.Nop(), &api.Handlers{
		Analysis:     new(mocks.MockAnalysisService),
		Conversation: conversation,
		Checks: map[string]api.HealthChecker{
			"thread_store": api.HealthCheckFunc(func(context.Context) error { return nil }),
		},
	})
}

func TestNew(t *testing.T) {
	srv := newTestServer(t, new(mocks.MockConversationService))
	require.NotNil(t, srv)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
}

func TestStreamingThroughMiddleware(t *testing.T) {
	conversation := new(mocks.MockConversationService)
	conversation.On("ContinueConversation", mock.Anything, "t1", "hello").
		Return(mocks.NewFakeStream("Hi ", "there"), nil)
	srv := newTestServer(t, conversation)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"thread_id":"t1","message":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Hi there", rr.Body.String())
	assert.Equal(t, "t1", rr.Header().Get(middleware.ThreadIDHeader))
	assert.Contains(t, rr.Header().Get("Access-Control-Expose-Headers"), http.CanonicalHeaderKey(middleware.ThreadIDHeader))
	conversation.AssertExpectations(t)
}

func loggedRemoteAddr(t *testing.T, cfg *config.Config, peer, forwardedFor string) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	srv := New(cfg, zerolog.New(&buf), &api.Handlers{
		Analysis:     new(mocks.MockAnalysisService),
		Conversation: new(mocks.MockConversationService),
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = peer
	req.Header.Set("X-Forwarded-For", forwardedFor)
	srv.Handler().ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	return line["remote_addr"].(string)
}

func TestForwardedForFromUntrustedPeerIsIgnored(t *testing.T) {
	assert.Equal(t, "203.0.113.7", loggedRemoteAddr(t, testConfig(), "203.0.113.7:5000", "1.1.1.1"))
}

func TestForwardedForFromTrustedProxy(t *testing.T) {
	cfg := testConfig()
	cfg.TrustedProxies = []string{"203.0.113.0/24"}

	assert.Equal(t, "1.1.1.1", loggedRemoteAddr(t, cfg, "203.0.113.7:5000", "1.1.1.1"))
}

func TestAnalyzeRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	redisClient := testdb.SetupRedis(t)
	gin.SetMode(gin.TestMode)

	analysis := new(mocks.MockAnalysisService)
	analysis.On("Analyze", mock.Anything, mock.Anything, "egg").
		Return(&types.AnalysisResult{DetectedIngredients: []string{"egg"}, Recipes: []types.RecipeCard{}}, nil)
	srv := New(testConfig(), zerolog.Nop(), &api.Handlers{
		Analysis:     analysis,
		Conversation: new(mocks.MockConversationService),
		RateLimiter:  middleware.NewAnalyzeRateLimiter(redisClient, 1),
	})

	codes := make([]int, 0, 2)
	for _, spoofed := range []string{"1.1.1.1", "2.2.2.2"} {
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader("text_input=egg"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Forwarded-For", spoofed)
		req.RemoteAddr = "203.0.113.7:5000"
		rr := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestPanicIsCounted(t *testing.T) {
	srv := newTestServer(t, new(mocks.MockConversationService))
	srv.router.GET("/boom", func(c *gin.Context) { panic("boom") })
	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/boom", "500")
	before := promtestutil.ToFloat64(counter)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, before+1, promtestutil.ToFloat64(counter))
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, new(mocks.MockConversationService))

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStartAndShutdown(t *testing.T) {
	srv := newTestServer(t, new(mocks.MockConversationService))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	// Give ListenAndServe a moment to bind before shutting down.
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/answer"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/detect"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/guard"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/llm"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/store"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/symbolic"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// judgeAccepts is a judge verdict approving any candidate response.
const judgeAccepts = `{"is_direct_answer": false, "reason": "guiding question", "confidence": 0.9}`

// newTestServer builds a Server over a temp database with every real
// component except generation, which runs on the scripted mock.
func newTestServer(t *testing.T, mock *llm.Mock) *Server {
	t.Helper()

	st, err := store.NewStore(filepath.Join(t.TempDir(), "tutor.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := symbolic.NewEngine()
	validator := guard.NewValidator(mock, logger)

	return New(Deps{
		Store:     st,
		Detector:  detect.NewDetector(0),
		Engine:    engine,
		Checker:   answer.NewChecker(engine),
		Extractor: answer.NewExtractor(engine),
		Orch:      guard.NewOrchestrator(mock, validator, 0, logger),
		Client:    mock,
		Logger:    logger,
	})
}

// envelope mirrors the API's uniform response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return env
}

// decodeData asserts the success envelope and unmarshals its payload.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	env := decode(t, w)
	require.True(t, env.Success, "expected success envelope, got error %q", env.Error)
	require.NoError(t, json.Unmarshal(env.Data, out))
}

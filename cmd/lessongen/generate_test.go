package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/phrazzld/microlesson-api/internal/generation"
	"github.com/phrazzld/microlesson-api/internal/mocks"
	"github.com/phrazzld/microlesson-api/internal/platform/groq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lessonContent = `{"lesson":"Water cycles through evaporation and rain.","quiz":[{"question":"What falls from clouds?","options":["Rain","Rocks"],"answer":"Rain"}]}`

func fakeProvider(t *testing.T, content string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(mocks.ContentEnvelope(content))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("MICROLESSON_LLM_GROQ_API_KEY", "")

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestGenerate_PrintsLessonAndQuiz(t *testing.T) {
	srv, calls := fakeProvider(t, lessonContent)

	out, _, err := execute(t, "generate",
		"--topic", "The water cycle", "--level", "Intermediate",
		"--api-key", "test-key", "--base-url", srv.URL)

	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, out, "The water cycle")
	assert.Contains(t, out, "intermediate")
	assert.Contains(t, out, "Water cycles through evaporation and rain.")
	assert.Contains(t, out, "1. What falls from clouds?")
	assert.Contains(t, out, "a) Rain")
	assert.Contains(t, out, "Answer: Rain")
}

func TestGenerate_JSONOutput(t *testing.T) {
	srv, _ := fakeProvider(t, lessonContent)

	out, _, err := execute(t, "generate", "--topic", "Water", "--json",
		"--api-key", "test-key", "--base-url", srv.URL)
	require.NoError(t, err)

	var doc struct {
		Lesson   string          `json:"lesson"`
		Level    string          `json:"level"`
		Quiz     json.RawMessage `json:"quiz"`
		Attempts int             `json:"attempts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Water cycles through evaporation and rain.", doc.Lesson)
	assert.Equal(t, "beginner", doc.Level)
	assert.Equal(t, 1, doc.Attempts)
	assert.Contains(t, string(doc.Quiz), "What falls from clouds?")
}

func TestGenerate_APIKeyFromEnvironment(t *testing.T) {
	srv, calls := fakeProvider(t, lessonContent)

	var stdout bytes.Buffer
	t.Setenv("GROQ_API_KEY", "test-key")
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"generate", "--topic", "Water", "--base-url", srv.URL})

	require.NoError(t, root.Execute())
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerate_MissingAPIKey(t *testing.T) {
	srv, calls := fakeProvider(t, lessonContent)

	_, errOut, err := execute(t, "generate", "--topic", "Water", "--base-url", srv.URL)

	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, errOut, groq.MsgMissingAPIKey)
	assert.Equal(t, int32(0), calls.Load())
}

func TestGenerate_MalformedContentUsesAllAttempts(t *testing.T) {
	srv, calls := fakeProvider(t, "definitely not json")

	_, errOut, err := execute(t, "generate", "--topic", "Water", "--max-attempts", "2",
		"--api-key", "test-key", "--base-url", srv.URL)

	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, errOut, generation.MsgInvalidJSON)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGenerate_RequiresTopic(t *testing.T) {
	_, _, err := execute(t, "generate")
	assert.ErrorContains(t, err, `required flag(s) "topic" not set`)
}

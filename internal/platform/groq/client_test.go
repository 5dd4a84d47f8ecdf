package groq_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/microlesson-api/internal/generation"
	"github.com/phrazzld/microlesson-api/internal/platform/groq"
	"github.com/phrazzld/microlesson-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL, key string) *groq.Client {
	t.Helper()
	log, _ := logger.NewCapture()
	return groq.NewClient(groq.Config{APIKey: key, BaseURL: baseURL, Timeout: 2 * time.Second}, log)
}

func requireFailure(t *testing.T, err error) *generation.Failure {
	t.Helper()
	var f *generation.Failure
	require.ErrorAs(t, err, &f)
	return f
}

func TestSend_MissingKeyMakesNoRequest(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	for _, key := range []string{"", "   "} {
		env, err := newTestClient(t, srv.URL, key).Send(context.Background(), "prompt")

		assert.Nil(t, env)
		f := requireFailure(t, err)
		assert.Equal(t, generation.KindConfiguration, f.Kind)
		assert.Equal(t, "GROQ_API_KEY is not configured", f.Message)
	}
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestSend_RequestShape(t *testing.T) {
	var (
		hits      int32
		gotMethod string
		gotPath   string
		gotHeader http.Header
		gotBody   map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotHeader = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"lesson\":\"L\"}"}}]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL+"/openai/v1/", "gsk_test_key")
	env, err := client.Send(context.Background(), "teach me")
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/openai/v1/chat/completions", gotPath)
	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.Equal(t, "Bearer gsk_test_key", gotHeader.Get("Authorization"))

	assert.Equal(t, groq.DefaultModel, gotBody["model"])
	assert.Equal(t, 0.7, gotBody["temperature"])
	assert.Equal(t, []any{map[string]any{"role": "user", "content": "teach me"}}, gotBody["messages"])

	assert.JSONEq(t, `{"choices":[{"message":{"content":"{\"lesson\":\"L\"}"}}]}`, string(env))
}

func TestSend_CustomModel(t *testing.T) {
	var model string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		model = body.Model
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := groq.NewClient(groq.Config{APIKey: "k", BaseURL: srv.URL, Model: "llama-3.3-70b-versatile"}, nil)
	_, err := client.Send(context.Background(), "p")
	require.NoError(t, err)

	assert.Equal(t, "llama-3.3-70b-versatile", model)
	assert.Equal(t, "llama-3.3-70b-versatile", client.Model())
}

func TestSend_ErrorStatusWithJSONBodyIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"tokens"}}`))
	}))
	defer srv.Close()

	env, err := newTestClient(t, srv.URL, "k").Send(context.Background(), "p")
	require.NoError(t, err)

	_, extractErr := generation.Extract(env)
	f := requireFailure(t, extractErr)
	assert.Equal(t, generation.KindUpstream, f.Kind)
	assert.Equal(t, "Rate limit reached", f.Message)
}

func TestSend_SingleRequestOnRetryableStatus(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var hits int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&hits, 1)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "0")
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"error":{"message":"try later"}}`))
			}))
			defer srv.Close()

			env, err := newTestClient(t, srv.URL, "k").Send(context.Background(), "p")
			require.NoError(t, err)

			assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
			assert.JSONEq(t, `{"error":{"message":"try later"}}`, string(env))
		})
	}
}

func TestSend_ErrorFieldOnSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":"model overloaded"}`))
	}))
	defer srv.Close()

	env, err := newTestClient(t, srv.URL, "k").Send(context.Background(), "p")
	require.NoError(t, err)

	_, extractErr := generation.Extract(env)
	f := requireFailure(t, extractErr)
	assert.Equal(t, generation.KindUpstream, f.Kind)
	assert.Equal(t, "model overloaded", f.Message)
}

func TestSend_TransportFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		message string
	}{
		{
			name: "non-json success body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>ok</html>"))
			},
			message: "provider response is not valid JSON",
		},
		{
			name: "non-json error body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte("bad gateway"))
			},
			message: "provider returned status 502",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			env, err := newTestClient(t, srv.URL, "k").Send(context.Background(), "p")
			assert.Nil(t, env)
			f := requireFailure(t, err)
			assert.Equal(t, generation.KindTransport, f.Kind)
			assert.Equal(t, tc.message, f.Message)
		})
	}
}

func TestSend_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(t, url, "k").Send(context.Background(), "p")

	f := requireFailure(t, err)
	assert.Equal(t, generation.KindTransport, f.Kind)
	assert.NotEmpty(t, f.Message)
}

func TestSend_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := groq.NewClient(groq.Config{APIKey: "k", BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, nil)
	_, err := client.Send(context.Background(), "p")

	f := requireFailure(t, err)
	assert.Equal(t, generation.KindTransport, f.Kind)
	assert.Contains(t, f.Message, "Timeout")
}

func TestSend_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(t, srv.URL, "k").Send(ctx, "p")

	f := requireFailure(t, err)
	assert.Equal(t, generation.KindTransport, f.Kind)
	assert.Contains(t, f.Message, "context canceled")
}

func TestSend_WithHTTPClient(t *testing.T) {
	var used int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	hc := srv.Client()
	base := hc.Transport
	hc.Transport = roundTripFunc(func(r *http.Request) (*http.Response, error) {
		atomic.AddInt32(&used, 1)
		return base.RoundTrip(r)
	})

	client := groq.NewClient(groq.Config{APIKey: "k", BaseURL: srv.URL}, nil, groq.WithHTTPClient(hc))
	_, err := client.Send(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&used))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

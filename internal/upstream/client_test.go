package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "squadup-test", r.UserAgent())
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(WithUserAgent("squadup-test"))
	resp, err := c.Get(context.Background(), srv.URL+"/start")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.ContentType)
	assert.Equal(t, []byte("png-bytes"), resp.Body)
	assert.Equal(t, srv.URL+"/final", resp.URL)
}

func TestGetRedirectLoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.Path, http.StatusFound)
	}))
	defer srv.Close()

	_, err := NewClient().Get(context.Background(), srv.URL+"/loop")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many redirects")
}

func TestGetBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 4096))
	}))
	defer srv.Close()

	_, err := NewClient(WithMaxBodySize(1024)).Get(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestGetRespectsContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := NewClient().Get(ctx, srv.URL)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
}

func TestGetJSONRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"title":"Halo"}`))
	}))
	defer srv.Close()

	var out struct {
		Title string `json:"title"`
	}
	err := NewClient(WithRetry(3)).GetJSON(context.Background(), srv.URL, &out)
	require.NoError(t, err)
	assert.Equal(t, "Halo", out.Title)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetJSONDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	err := NewClient(WithRetry(3)).GetJSON(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatus))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetJSONSendsProvidedHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(WithHeaderProvider(func() map[string]string {
		return map[string]string{"X-Api-Key": "secret", " ": "ignored"}
	}))
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, nil))
}

func TestResolveLocation(t *testing.T) {
	next, err := resolveLocation("http://a.example/x/y", "../z")
	require.NoError(t, err)
	assert.Equal(t, "http://a.example/z", next)

	_, err = resolveLocation("http://a.example/", "ftp://b.example/")
	assert.Error(t, err)

	_, err = resolveLocation("http://a.example/", "")
	assert.Error(t, err)
}

func TestBackoffDuration(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, backoffDuration(1))
	assert.Equal(t, 200*time.Millisecond, backoffDuration(2))
	assert.Equal(t, 3200*time.Millisecond, backoffDuration(99))
}

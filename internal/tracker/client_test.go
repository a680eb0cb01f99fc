package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{Token: "secret"})
	assert.Error(t, err)

	_, err = NewClient(Config{BaseURL: "http://tracker.example.com"})
	assert.Error(t, err)

	client, err := NewClient(Config{BaseURL: "http://tracker.example.com/", Token: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "http://tracker.example.com", client.baseURL)
}

func TestClient_SendsTokenHeader(t *testing.T) {
	var gotAuth, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		fmt.Fprint(w, `{}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL, Token: "secret"})
	require.NoError(t, err)

	var out struct{}
	require.NoError(t, client.get(context.Background(), "/api/flowcells/", &out))
	assert.Equal(t, "Token secret", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
}

func TestClient_ParsesDetailError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"detail": "Not found."}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL, Token: "secret"})
	require.NoError(t, err)

	err = client.get(context.Background(), "/api/flowcells/", nil)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "Not found.", apiErr.Message)
}

func TestClient_FallsBackToRawBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "boom")
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL, Token: "secret"})
	require.NoError(t, err)

	err = client.get(context.Background(), "/", nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "boom", apiErr.Message)
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		BaseURL: server.URL,
		Token:   "secret",
		Retry:   Policy{MaxAttempts: 3, BaseDelay: time.Millisecond},
	})
	require.NoError(t, err)

	var out struct{}
	require.NoError(t, client.get(context.Background(), "/", &out))
	assert.Equal(t, 3, attempts)
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"detail": "bad payload"}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		BaseURL: server.URL,
		Token:   "secret",
		Retry:   Policy{MaxAttempts: 3, BaseDelay: time.Millisecond},
	})
	require.NoError(t, err)

	err = client.get(context.Background(), "/", nil)
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestClient_ExhaustedRetriesReturnAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"detail": "database on fire"}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		BaseURL: server.URL,
		Token:   "secret",
		Retry:   Policy{MaxAttempts: 2, BaseDelay: time.Millisecond},
	})
	require.NoError(t, err)

	err = client.get(context.Background(), "/", nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 500, apiErr.StatusCode)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"server error", &APIError{StatusCode: 500}, true},
		{"rate limited", &APIError{StatusCode: 429}, true},
		{"not found", &APIError{StatusCode: 404}, false},
		{"bad request", &APIError{StatusCode: 400}, false},
		{"auth failure", &APIError{StatusCode: 401}, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"transport failure", io.ErrUnexpectedEOF, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

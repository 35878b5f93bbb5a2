package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotchart/internal/model"
)

func serve(t *testing.T, status int, body string) (*Client, *string) {
	t.Helper()
	var gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", time.Second, nil), &gotURL
}

func TestClient_FetchRecords(t *testing.T) {
	c, gotURL := serve(t, http.StatusOK, `[{"position":1,"preis":"10,0"},{"position":2,"preis":"12,0"}]`)

	res, err := c.Fetch(context.Background(), model.EndpointPrimary, "20251001")

	require.NoError(t, err)
	assert.Equal(t, "/api/strompreise?date=20251001", *gotURL)
	assert.Equal(t, http.StatusOK, res.Status)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "10,0", res.Records[0]["preis"])
}

func TestClient_NoDateParameter(t *testing.T) {
	c, gotURL := serve(t, http.StatusOK, `[{"value":1}]`)

	_, err := c.Fetch(context.Background(), model.EndpointWorkweekAverage, "")

	require.NoError(t, err)
	assert.Equal(t, "/api/strompreise/workweekavg", *gotURL)
}

func TestClient_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
		reason string
	}{
		{"status", http.StatusInternalServerError, `oops`, func(t *testing.T, err error) {
			var ne *NetworkError
			require.ErrorAs(t, err, &ne)
			assert.Equal(t, 500, ne.Status)
		}, "status"},
		{"malformed", http.StatusOK, `[{"a":`, func(t *testing.T, err error) {
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
		}, "parse"},
		{"empty array", http.StatusOK, `[]`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrEmptyResult)
		}, "empty"},
		{"object", http.StatusOK, `{"rows":[]}`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrEmptyResult)
		}, "empty"},
		{"backend error", http.StatusOK, `{"error":"Keine Daten"}`, func(t *testing.T, err error) {
			var be *BackendError
			require.ErrorAs(t, err, &be)
			assert.Equal(t, "Keine Daten", be.Message)
		}, "backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := serve(t, tt.status, tt.body)
			res, err := c.Fetch(context.Background(), model.EndpointLastYear, "20251001")
			require.Error(t, err)
			tt.check(t, err)
			assert.Equal(t, tt.reason, Reason(err))
			assert.Equal(t, tt.body, string(res.Body))
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(srv.URL, time.Second, nil)

	_, err := c.Fetch(context.Background(), model.EndpointComparison, "20251001")

	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Zero(t, ne.Status)
	assert.Equal(t, "network", Reason(err))
}

func TestClient_ContextCanceled(t *testing.T) {
	c, _ := serve(t, http.StatusOK, `[]`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Fetch(ctx, model.EndpointPrimary, "20251001")

	assert.True(t, errors.Is(err, context.Canceled))
}

func TestReason(t *testing.T) {
	assert.Equal(t, "ok", Reason(nil))
	assert.Equal(t, "other", Reason(errors.New("x")))
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "abc", Prefix([]byte("abc"), 200))
	assert.Equal(t, "ab", Prefix([]byte("abc"), 2))
}

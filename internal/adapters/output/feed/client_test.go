package feed

import (
	"context"
	"hue-alerts/internal/domain/model"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_FirstFetchBuildsURL(t *testing.T) {
	reqs := make(chan *url.URL, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqs <- r.URL
		io.WriteString(w, `{"events":[],"nextUrl":"`+"http://"+r.Host+`/events/alice/secret/?i=42"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/events/", "alice", "secret", srv.Client(), nil)
	batch, err := c.FetchBatch(context.Background(), "", 30*time.Second)

	require.NoError(t, err)
	got := <-reqs
	assert.Equal(t, "/events/alice/secret/", got.Path)
	assert.Equal(t, "30", got.Query().Get("timeout"))
	assert.Empty(t, batch.Events)
	assert.Equal(t, srv.URL+"/events/alice/secret/?i=42", batch.NextCursor)
}

func TestClient_FollowsCursor(t *testing.T) {
	reqs := make(chan *url.URL, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqs <- r.URL
		io.WriteString(w, `{
			"events": [
				{"id": "1", "method": "userEnter", "object": {"user": {"username": "alice", "inFanclub": true}}},
				{"id": 2, "method": "tip", "object": {}},
				{"object": {"user": {"username": "nobody"}}},
				"not an object"
			],
			"nextUrl": "next"
		}`)
	}))
	defer srv.Close()

	c := NewClient("unused", "alice", "secret", srv.Client(), nil)
	batch, err := c.FetchBatch(context.Background(), srv.URL+"/events/alice/secret/?i=42&timeout=10", 5*time.Second)

	require.NoError(t, err)
	got := <-reqs
	assert.Equal(t, "42", got.Query().Get("i"))
	assert.Equal(t, "5", got.Query().Get("timeout"))
	assert.Equal(t, "next", batch.NextCursor)
	require.Len(t, batch.Events, 4)
	assert.Equal(t, model.FeedEvent{
		ID:     "1",
		Method: "userEnter",
		Object: map[string]any{"user": map[string]any{"username": "alice", "inFanclub": true}},
	}, batch.Events[0])
	assert.Equal(t, "2", batch.Events[1].ID)
	assert.Empty(t, batch.Events[2].Method)
	assert.Equal(t, model.FeedEvent{}, batch.Events[3])
}

func TestClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "alice", "secret", srv.Client(), nil)
	_, err := c.FetchBatch(context.Background(), "", time.Second)
	assert.ErrorContains(t, err, "429")
}

func TestClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"events": [`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "alice", "secret", srv.Client(), nil)
	_, err := c.FetchBatch(context.Background(), "", time.Second)
	assert.ErrorContains(t, err, "decode events")
}

func TestClient_RequiresCredentials(t *testing.T) {
	c := NewClient("https://example.invalid/events", "", "", nil, nil)
	_, err := c.FetchBatch(context.Background(), "", time.Second)
	assert.Error(t, err)
}

func TestClient_TransportErrorHidesToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := NewClient(base, "alice", "s3cr3t-token", nil, nil)
	_, err := c.FetchBatch(context.Background(), "", time.Second)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "s3cr3t-token")
}

func TestClient_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewClient(srv.URL, "alice", "secret", srv.Client(), nil)
	_, err := c.FetchBatch(ctx, "", 30*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

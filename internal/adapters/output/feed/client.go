package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hue-alerts/internal/domain/model"
	"hue-alerts/internal/ports"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const maxErrorBody = 512

// Client long-polls the events API. The cursor is the nextUrl returned by
// the previous response.
type Client struct {
	baseURL    string
	username   string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL, username, token string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		username:   username,
		token:      token,
		httpClient: httpClient,
		logger:     logger.With("component", "feed"),
	}
}

var _ ports.FeedSource = (*Client)(nil)

type response struct {
	Events  []json.RawMessage `json:"events"`
	NextURL string            `json:"nextUrl"`
}

func (c *Client) FetchBatch(ctx context.Context, cursor string, timeout time.Duration) (model.Batch, error) {
	target, err := c.requestURL(cursor, timeout)
	if err != nil {
		return model.Batch{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return model.Batch{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Batch{}, fmt.Errorf("fetch events: %w", c.redact(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return model.Batch{}, fmt.Errorf("events API error: %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return model.Batch{}, fmt.Errorf("decode events: %w", err)
	}

	batch := model.Batch{NextCursor: payload.NextURL, Events: make([]model.FeedEvent, 0, len(payload.Events))}
	for _, raw := range payload.Events {
		batch.Events = append(batch.Events, decodeEvent(raw))
	}
	c.logger.Debug("batch fetched", "events", len(batch.Events))
	return batch, nil
}

func (c *Client) requestURL(cursor string, timeout time.Duration) (string, error) {
	raw := cursor
	if raw == "" {
		if c.username == "" || c.token == "" {
			return "", fmt.Errorf("events API username and token are required")
		}
		raw = c.baseURL + "/" + url.PathEscape(c.username) + "/" + url.PathEscape(c.token) + "/"
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid events URL: %w", c.redact(err))
	}
	if secs := int(timeout / time.Second); secs > 0 {
		q := u.Query()
		q.Set("timeout", strconv.Itoa(secs))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// redact strips the API token from URL errors.
func (c *Client) redact(err error) error {
	var uerr *url.Error
	if c.token != "" && errors.As(err, &uerr) {
		uerr.URL = strings.ReplaceAll(uerr.URL, c.token, "***")
	}
	return err
}

// decodeEvent is permissive: an event that does not decode keeps an empty
// method and is reported by the dispatcher instead of failing the batch.
func decodeEvent(raw json.RawMessage) model.FeedEvent {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return model.FeedEvent{}
	}

	ev := model.FeedEvent{}
	switch id := fields["id"].(type) {
	case string:
		ev.ID = id
	case float64:
		ev.ID = strconv.FormatFloat(id, 'f', -1, 64)
	}
	ev.Method, _ = fields["method"].(string)
	ev.Object, _ = fields["object"].(map[string]any)
	return ev
}

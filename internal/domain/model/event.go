package model

// FeedEvent is one entry of a feed batch. Object holds the raw payload as
// decoded from JSON.
type FeedEvent struct {
	ID     string         `json:"id"`
	Method string         `json:"method"`
	Object map[string]any `json:"object"`
}

// Batch is the result of one successful fetch. NextCursor must be handed
// to the following fetch to continue where this one stopped.
type Batch struct {
	Events     []FeedEvent
	NextCursor string
}

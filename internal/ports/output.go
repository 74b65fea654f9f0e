package ports

import (
	"context"
	"hue-alerts/internal/domain/model"
	"time"
)

// Discoverer is one strategy of the bridge discovery chain. It returns
// ErrNoBridgeFound when the strategy ran but found nothing.
type Discoverer interface {
	Source() model.DiscoverySource
	Discover(ctx context.Context) (string, error)
}

// FeedSource fetches the batch following cursor. An empty cursor starts at
// the feed's current head. timeout is the server-side long-poll window.
type FeedSource interface {
	FetchBatch(ctx context.Context, cursor string, timeout time.Duration) (model.Batch, error)
}

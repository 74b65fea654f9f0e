package discovery

import (
	"context"
	"fmt"
	"hue-alerts/internal/domain/model"
	"hue-alerts/internal/ports"
	"log/slog"
	"time"

	"github.com/amimof/huego"
)

// Cloud asks the vendor's discovery directory which bridges registered
// from this network.
type Cloud struct {
	timeout time.Duration
	lookup  func(ctx context.Context) ([]huego.Bridge, error)
	logger  *slog.Logger
}

func NewCloud(timeout time.Duration, logger *slog.Logger) *Cloud {
	return &Cloud{timeout: timeout, lookup: huego.DiscoverAllContext, logger: componentLogger(logger)}
}

func (d *Cloud) Source() model.DiscoverySource { return model.DiscoverySourceCloud }

func (d *Cloud) Discover(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	bridges, err := d.lookup(ctx)
	if err != nil {
		return "", fmt.Errorf("cloud lookup: %w", err)
	}
	for _, b := range bridges {
		if b.Host != "" {
			if len(bridges) > 1 {
				d.logger.Info("several bridges registered, using the first", "count", len(bridges), "id", b.ID)
			}
			return b.Host, nil
		}
	}
	return "", ports.ErrNoBridgeFound
}

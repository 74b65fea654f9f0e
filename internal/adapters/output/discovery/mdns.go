package discovery

import (
	"context"
	"fmt"
	"hue-alerts/internal/domain/model"
	"hue-alerts/internal/ports"
	"log/slog"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	mdnsServiceType = "_hue._tcp"
	mdnsDomain      = "local."
)

// MDNS finds bridges announcing themselves over mDNS/DNS-SD.
type MDNS struct {
	timeout time.Duration
	logger  *slog.Logger
}

func NewMDNS(timeout time.Duration, logger *slog.Logger) *MDNS {
	return &MDNS{timeout: timeout, logger: componentLogger(logger)}
}

func (d *MDNS) Source() model.DiscoverySource { return model.DiscoverySourceMDNS }

// Discover browses until the first bridge answers or the scan times out.
func (d *MDNS) Discover(ctx context.Context) (string, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return "", fmt.Errorf("mdns resolver: %w", err)
	}

	scanCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	done := make(chan string, 1)
	go func() {
		var first string
		for entry := range entries {
			addr := entryAddress(entry)
			d.logger.Debug("mdns entry", "instance", entry.Instance, "address", addr)
			if first == "" && addr != "" {
				first = addr
				cancel()
			}
		}
		done <- first
	}()

	if err := resolver.Browse(scanCtx, mdnsServiceType, mdnsDomain, entries); err != nil {
		cancel()
		<-done
		return "", fmt.Errorf("mdns browse: %w", err)
	}

	<-scanCtx.Done()
	address := <-done
	if address == "" {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "", ports.ErrNoBridgeFound
	}
	return address, nil
}

// entryAddress prefers IPv4; the bridge API is served on the default port,
// not the announced one.
func entryAddress(entry *zeroconf.ServiceEntry) string {
	if len(entry.AddrIPv4) > 0 {
		return entry.AddrIPv4[0].String()
	}
	if len(entry.AddrIPv6) > 0 {
		return "[" + entry.AddrIPv6[0].String() + "]"
	}
	return ""
}

package discovery

import (
	"bufio"
	"context"
	"fmt"
	"hue-alerts/internal/domain/model"
	"hue-alerts/internal/ports"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
)

// Manual asks the operator for the bridge address. It is the last link of
// the chain and the only interactive one.
//
// Input is read by a single goroutine for the lifetime of the Manual. A
// prompt abandoned through ctx leaves that read pending, and the line it
// eventually returns answers the next prompt.
type Manual struct {
	in     io.Reader
	out    io.Writer
	logger *slog.Logger

	once  sync.Once
	lines chan lineResult
}

type lineResult struct {
	line string
	err  error
}

func NewManual(in io.Reader, out io.Writer, logger *slog.Logger) *Manual {
	return &Manual{in: in, out: out, logger: componentLogger(logger), lines: make(chan lineResult)}
}

func (d *Manual) Source() model.DiscoverySource { return model.DiscoverySourceManual }

func (d *Manual) Discover(ctx context.Context) (string, error) {
	fmt.Fprint(d.out, "No Hue bridge found automatically. Enter the bridge IP address (empty to abort): ")

	d.once.Do(func() { go d.readLines() })

	var res lineResult
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r, ok := <-d.lines:
		if !ok {
			return "", ports.ErrNoBridgeFound
		}
		res = r
	}
	if res.err == io.EOF {
		return "", ports.ErrNoBridgeFound
	}
	if res.err != nil {
		return "", fmt.Errorf("read address: %w", res.err)
	}

	address := strings.TrimSpace(res.line)
	if address == "" {
		return "", ports.ErrNoBridgeFound
	}
	if !validAddress(address) {
		return "", fmt.Errorf("invalid bridge address %q", address)
	}
	d.logger.Info("bridge address entered", "address", address)
	return address, nil
}

// readLines feeds d.lines until the input ends. The last result carries
// the read error; the channel is closed after it.
func (d *Manual) readLines() {
	defer close(d.lines)
	r := bufio.NewReader(d.in)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			d.lines <- lineResult{line: line}
		}
		if err != nil {
			d.lines <- lineResult{err: err}
			return
		}
	}
}

func validAddress(s string) bool {
	host := s
	if h, _, err := net.SplitHostPort(s); err == nil {
		host = h
	}
	if net.ParseIP(host) != nil {
		return true
	}
	return host != "" && !strings.ContainsAny(host, " /\\")
}

func componentLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger.With("component", "discovery")
}

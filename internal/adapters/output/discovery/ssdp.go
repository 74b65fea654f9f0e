package discovery

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"hue-alerts/internal/domain/model"
	"hue-alerts/internal/ports"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const ssdpMulticastAddr = "239.255.255.250:1900"

// SSDP sends an M-SEARCH to the UPnP multicast group and picks the first
// responder that identifies as a Hue bridge.
type SSDP struct {
	addr    string
	timeout time.Duration
	logger  *slog.Logger
}

func NewSSDP(timeout time.Duration, logger *slog.Logger) *SSDP {
	return &SSDP{addr: ssdpMulticastAddr, timeout: timeout, logger: componentLogger(logger)}
}

func (d *SSDP) Source() model.DiscoverySource { return model.DiscoverySourceSSDP }

func (d *SSDP) Discover(ctx context.Context) (string, error) {
	dest, err := net.ResolveUDPAddr("udp4", d.addr)
	if err != nil {
		return "", err
	}

	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return "", fmt.Errorf("ssdp listen: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(d.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return "", err
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetReadDeadline(time.Now()) })
	defer stop()

	if _, err := conn.WriteToUDP(mSearch(d.addr, d.timeout), dest); err != nil {
		return "", fmt.Errorf("ssdp send: %w", err)
	}

	buf := make([]byte, 2048)
	for {
		n, src, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return "", ports.ErrNoBridgeFound
			}
			return "", fmt.Errorf("ssdp read: %w", err)
		}

		host, ok := parseSSDPResponse(buf[:n])
		if !ok {
			d.logger.Debug("ignoring ssdp responder", "from", src.String())
			continue
		}
		if host == "" {
			host = src.IP.String()
		}
		return host, nil
	}
}

func mSearch(host string, timeout time.Duration) []byte {
	mx := int(timeout / time.Second)
	if mx < 1 {
		mx = 1
	}
	return []byte(fmt.Sprintf("M-SEARCH * HTTP/1.1\r\n"+
		"HOST: %s\r\n"+
		"MAN: \"ssdp:discover\"\r\n"+
		"MX: %d\r\n"+
		"ST: ssdp:all\r\n\r\n", host, mx))
}

// parseSSDPResponse reports whether data is a Hue bridge answer and
// returns the host of its description LOCATION, if any.
func parseSSDPResponse(data []byte) (string, bool) {
	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(data)), nil)
	if err != nil {
		return "", false
	}
	resp.Body.Close()

	isBridge := resp.Header.Get("hue-bridgeid") != "" ||
		strings.Contains(resp.Header.Get("Server"), "IpBridge")
	if !isBridge {
		return "", false
	}

	loc, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		return "", true
	}
	return loc.Hostname(), true
}

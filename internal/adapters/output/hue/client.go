package hue

import (
	"context"
	"errors"
	"fmt"
	"hue-alerts/internal/domain/model"
	"hue-alerts/internal/ports"
	"log/slog"
	"strings"

	"github.com/amimof/huego"
	"golang.org/x/time/rate"
)

// linkButtonNotPressed is the bridge API error type returned by user
// creation until the link button is pressed.
const linkButtonNotPressed = 101

const maxBrightness = 254

// Client talks to Hue bridges through huego. All gateways opened from one
// client share its command limiter.
type Client struct {
	deviceType string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient returns a client that registers itself as deviceType and
// sends at most commandsPerSecond requests to the bridge.
func NewClient(deviceType string, commandsPerSecond float64, logger *slog.Logger) *Client {
	limit := rate.Inf
	if commandsPerSecond > 0 {
		limit = rate.Limit(commandsPerSecond)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		deviceType: deviceType,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger.With("component", "hue"),
	}
}

var _ ports.BridgeClient = (*Client)(nil)

func (c *Client) Open(cred model.Credential) ports.Gateway {
	return c.Connect(cred)
}

// Connect is Open with the concrete type, for callers that also need the
// inventory.
func (c *Client) Connect(cred model.Credential) *Gateway {
	return &Gateway{
		bridge:  huego.New(baseURL(cred.Address), cred.Token),
		limiter: c.limiter,
		logger:  c.logger.With("address", cred.Address),
	}
}

func (c *Client) Enroll(ctx context.Context, address string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	user, err := huego.New(baseURL(address), "").CreateUserContext(ctx, c.deviceType)
	if err != nil {
		if isLinkButtonError(err) {
			return "", fmt.Errorf("%w (%v)", ports.ErrEnrollmentNotConfirmed, err)
		}
		return "", fmt.Errorf("create user: %w", err)
	}
	c.logger.Info("bridge user created", "address", address)
	return user, nil
}

func isLinkButtonError(err error) bool {
	var apiErr *huego.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Type == linkButtonNotPressed
	}
	return strings.Contains(strings.ToLower(err.Error()), "link button")
}

// huego mutates Host on first use when it lacks a scheme; setting it up
// front keeps shared bridges race free.
func baseURL(address string) string {
	lower := strings.ToLower(address)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return address
	}
	return "http://" + address
}

// Gateway reads and writes lights and groups of one bridge.
type Gateway struct {
	bridge  *huego.Bridge
	limiter *rate.Limiter
	logger  *slog.Logger
}

var (
	_ ports.Gateway   = (*Gateway)(nil)
	_ ports.Inventory = (*Gateway)(nil)
)

func (g *Gateway) ReadState(ctx context.Context, targetID string) (model.DeviceSnapshot, error) {
	target, err := model.ParseTarget(targetID)
	if err != nil {
		return model.DeviceSnapshot{}, err
	}
	state, err := g.readState(ctx, target)
	if err != nil {
		return model.DeviceSnapshot{}, err
	}
	return snapshotOf(state), nil
}

func (g *Gateway) readState(ctx context.Context, target model.Target) (*huego.State, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var state *huego.State
	switch target.Kind {
	case model.TargetGroup:
		group, err := g.bridge.GetGroupContext(ctx, target.ID)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", target, err)
		}
		state = group.State
	default:
		light, err := g.bridge.GetLightContext(ctx, target.ID)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", target, err)
		}
		state = light.State
	}
	if state == nil {
		return nil, fmt.Errorf("read %s: bridge returned no state", target)
	}
	return state, nil
}

// WriteState sends update to the target. The bridge payload always
// carries "on", so an update without On first reads the current value.
func (g *Gateway) WriteState(ctx context.Context, targetID string, update model.StateUpdate) error {
	target, err := model.ParseTarget(targetID)
	if err != nil {
		return err
	}

	var state huego.State
	if update.On != nil {
		state.On = *update.On
	} else {
		current, err := g.readState(ctx, target)
		if err != nil {
			return err
		}
		state.On = current.On
	}
	if update.Brightness != nil {
		state.Bri = clampBrightness(*update.Brightness)
	}
	if len(update.XY) == 2 {
		state.Xy = []float32{update.XY[0], update.XY[1]}
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}
	switch target.Kind {
	case model.TargetGroup:
		_, err = g.bridge.SetGroupStateContext(ctx, target.ID, state)
	default:
		_, err = g.bridge.SetLightStateContext(ctx, target.ID, state)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	g.logger.Debug("state written", "target", target.String(), "on", state.On, "bri", state.Bri)
	return nil
}

func (g *Gateway) Lights(ctx context.Context) ([]model.LightInfo, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	lights, err := g.bridge.GetLightsContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list lights: %w", err)
	}

	out := make([]model.LightInfo, 0, len(lights))
	for _, l := range lights {
		info := model.LightInfo{
			ID:   model.Target{Kind: model.TargetLight, ID: l.ID}.String(),
			Name: l.Name,
			Type: l.Type,
		}
		if l.State != nil {
			info.On = l.State.On
		}
		out = append(out, info)
	}
	return out, nil
}

func snapshotOf(s *huego.State) model.DeviceSnapshot {
	snap := model.DeviceSnapshot{
		On:         s.On,
		Brightness: int(s.Bri),
		Reachable:  s.Reachable,
	}
	if len(s.Xy) == 2 {
		snap.XY = []float32{s.Xy[0], s.Xy[1]}
	}
	return snap
}

func clampBrightness(v int) uint8 {
	switch {
	case v < 1:
		return 1
	case v > maxBrightness:
		return maxBrightness
	default:
		return uint8(v)
	}
}


package service

import (
	"context"
	"errors"
	"hue-alerts/internal/domain/model"
	"hue-alerts/internal/ports"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Load(ctx context.Context) (model.Credential, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.Credential), args.Error(1)
}

func (m *MockRepository) Save(ctx context.Context, cred model.Credential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

type MockBridgeClient struct {
	mock.Mock
}

func (m *MockBridgeClient) Open(cred model.Credential) ports.Gateway {
	args := m.Called(cred)
	return args.Get(0).(ports.Gateway)
}

func (m *MockBridgeClient) Enroll(ctx context.Context, address string) (string, error) {
	args := m.Called(ctx, address)
	return args.String(0), args.Error(1)
}

type MockDiscoverer struct {
	mock.Mock
	source model.DiscoverySource
}

func (m *MockDiscoverer) Source() model.DiscoverySource { return m.source }

func (m *MockDiscoverer) Discover(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockActuator struct {
	mock.Mock
}

func (m *MockActuator) Trigger(ctx context.Context, req model.ActuationRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockActuator) InFlight() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

// fakeGateway keeps per-target state so restore can be checked against the
// final device state. The write numbered failWrite (1-based) fails without
// being applied.
type fakeGateway struct {
	mu        sync.Mutex
	states    map[string]model.DeviceSnapshot
	writes    []gatewayWrite
	reads     map[string]int
	readErr   error
	failWrite int
}

type gatewayWrite struct {
	target string
	update model.StateUpdate
}

func newFakeGateway(states map[string]model.DeviceSnapshot) *fakeGateway {
	return &fakeGateway{states: states, reads: make(map[string]int)}
}

func (g *fakeGateway) ReadState(ctx context.Context, target string) (model.DeviceSnapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reads[target]++
	if g.readErr != nil {
		return model.DeviceSnapshot{}, g.readErr
	}
	s := g.states[target]
	s.XY = append([]float32(nil), s.XY...)
	return s, nil
}

func (g *fakeGateway) WriteState(ctx context.Context, target string, u model.StateUpdate) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.writes = append(g.writes, gatewayWrite{target: target, update: u})
	if len(g.writes) == g.failWrite {
		return errors.New("bridge unreachable")
	}
	s := g.states[target]
	if u.On != nil {
		s.On = *u.On
	}
	if u.Brightness != nil {
		s.Brightness = *u.Brightness
	}
	if u.XY != nil {
		s.XY = append([]float32(nil), u.XY...)
	}
	g.states[target] = s
	return nil
}

func (g *fakeGateway) state(target string) model.DeviceSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.states[target]
}

func (g *fakeGateway) writeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.writes)
}

func (g *fakeGateway) readCount(target string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reads[target]
}

// scriptedFeed replays steps in order, then blocks until the context ends.
type scriptedFeed struct {
	mu      sync.Mutex
	steps   []feedStep
	cursors []string
}

type feedStep struct {
	batch model.Batch
	err   error
}

func (f *scriptedFeed) FetchBatch(ctx context.Context, cursor string, timeout time.Duration) (model.Batch, error) {
	f.mu.Lock()
	f.cursors = append(f.cursors, cursor)
	n := len(f.cursors)
	if n <= len(f.steps) {
		s := f.steps[n-1]
		f.mu.Unlock()
		return s.batch, s.err
	}
	f.mu.Unlock()
	<-ctx.Done()
	return model.Batch{}, ctx.Err()
}

func (f *scriptedFeed) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.cursors...)
}

// sleepRecorder records requested delays and returns immediately.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *sleepRecorder) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

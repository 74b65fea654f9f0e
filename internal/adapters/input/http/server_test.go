package http

import (
	"context"
	"encoding/json"
	"fmt"
	"hue-alerts/internal/domain/model"
	"hue-alerts/internal/domain/service"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

type stubStatus struct {
	cursor   string
	state    string
	failures int
}

func (s stubStatus) Cursor() string { return s.cursor }
func (s stubStatus) State() string  { return s.state }
func (s stubStatus) Failures() int  { return s.failures }

func TestServer_Status(t *testing.T) {
	act := new(MockActuator)
	act.On("InFlight").Return([]string{"group:0"})
	srv := NewServer(stubStatus{cursor: "https://feed/next?i=3", state: "backoff", failures: 2}, act, "group:0", nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, statusResponse{Cursor: "https://feed/next?i=3", State: "backoff", Failures: 2, InFlight: []string{"group:0"}}, body)
}

func TestServer_Flash(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		target     string
		triggerErr error
		wantCode   int
	}{
		{"explicit target", "/flash/light:3", "light:3", nil, http.StatusAccepted},
		{"default target", "/flash", "group:0", nil, http.StatusAccepted},
		{"conflict", "/flash/group:1", "group:1", fmt.Errorf("%w: group:1", service.ErrAlreadyInProgress), http.StatusConflict},
		{"shutting down", "/flash/light:4", "light:4", fmt.Errorf("%w: light:4", service.ErrActuatorClosed), http.StatusServiceUnavailable},
		{"bridge failure", "/flash/group:2", "group:2", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act := new(MockActuator)
			act.On("Trigger", mock.Anything, model.ActuationRequest{TargetID: tt.target, Pattern: model.PatternAlertFlash}).Return(tt.triggerErr)
			srv := NewServer(stubStatus{}, act, "group:0", nil)

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tt.path, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			act.AssertExpectations(t)
		})
	}
}

func TestServer_FlashRejectsBadTarget(t *testing.T) {
	act := new(MockActuator)
	srv := NewServer(stubStatus{}, act, "group:0", nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/flash/kitchen", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	act.AssertNotCalled(t, "Trigger", mock.Anything, mock.Anything)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	srv := NewServer(stubStatus{}, new(MockActuator), "group:0", nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/flash/group:0", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

package pattern

import (
	"hue-alerts/internal/domain/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertFlashSteps(t *testing.T) {
	s := &AlertFlash{Brightness: 200, XY: [2]float32{0.1, 0.8}, HoldOn: 600 * time.Millisecond, HoldOff: time.Second}

	steps := s.Steps()
	require.Len(t, steps, 4)

	assert.Equal(t, []Phase{Phase1On, Phase1Off, Phase2On, Phase2Off},
		[]Phase{steps[0].Phase, steps[1].Phase, steps[2].Phase, steps[3].Phase})

	on := steps[0].Update
	require.NotNil(t, on.On)
	assert.True(t, *on.On)
	assert.Equal(t, 200, *on.Brightness)
	assert.Equal(t, []float32{0.1, 0.8}, on.XY)
	assert.Equal(t, 600*time.Millisecond, steps[0].Hold)

	off := steps[1].Update
	require.NotNil(t, off.On)
	assert.False(t, *off.On)
	assert.Nil(t, off.Brightness)
	assert.Equal(t, time.Second, steps[1].Hold)
}

func TestFactory(t *testing.T) {
	f := NewFactory(&AlertFlash{})

	s, err := f.GetStrategy(model.PatternAlertFlash)
	assert.NoError(t, err)
	assert.IsType(t, &AlertFlash{}, s)

	_, err = f.GetStrategy(model.Pattern("strobe"))
	assert.ErrorIs(t, err, ErrUnknownPattern)
}

package gpio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUnitHasNoFeaturesWired(t *testing.T) {
	u := New()
	assert.Equal(t, Feature(0), u.Features())
	assert.False(t, u.HasRTC())
	assert.False(t, u.HasGyro())
	assert.False(t, u.HasRumble())
}

func TestInitRTCSetsFeatureAndFlag(t *testing.T) {
	u := New()
	u.InitRTC()

	assert.True(t, u.HasRTC())
	assert.Equal(t, RTC, u.Features())
}

func TestInitGyroAndRumbleCombineIntoFeatureMask(t *testing.T) {
	u := New()
	u.InitGyro()
	u.InitRumble()

	assert.True(t, u.HasGyro())
	assert.True(t, u.HasRumble())
	assert.Equal(t, Gyro|Rumble, u.Features())
}

func TestSetRumbleIsNoOpWithoutInitRumble(t *testing.T) {
	u := New()
	u.SetRumble(true)
	assert.False(t, u.RumbleActive())
}

func TestSetRumbleTogglesActiveStateOnceInitialized(t *testing.T) {
	u := New()
	u.InitRumble()

	u.SetRumble(true)
	assert.True(t, u.RumbleActive())

	u.SetRumble(false)
	assert.False(t, u.RumbleActive())
}

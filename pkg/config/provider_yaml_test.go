package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
devices:
  - name: patio-uv
    type: veml6075
    enabled: true
    serial_device: /dev/ttyUSB0
    baud: 115200
    latitude: 47.6
    longitude: -122.3
    calibration:
      uva_coef_a: 2.22
      uva_coef_b: 1.33
      uvb_coef_c: 2.95
      uvb_coef_d: 1.74
      uva_response: 0.001461
      uvb_response: 0.002591
      integration_time_ms: 100
      dynamic_range: normal
      mode: continuous
    transport:
      serial_device: /dev/ttyUSB1
      baud: 9600
      bridge_name: uvmon

profile:
  skin_type: 3
  spf: 30
  await_peer: true
  floor_substitution: true
  session_timeout_secs: 120
  on_session_timeout: defaults

storage:
  timescaledb:
    connection_string: "host=localhost port=5432 dbname=uvmon"
  mqtt:
    broker: tcp://localhost:1883
    topic: uvmon/readings

controllers:
  - type: rest
    rest:
      port: 8080
`

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestYAMLProviderLoadConfig(t *testing.T) {
	provider := NewYAMLProvider(writeTempConfig(t, sampleYAML))

	cfg, err := provider.LoadConfig()
	require.NoError(t, err)

	require.Len(t, cfg.Devices, 1)
	device := cfg.Devices[0]
	assert.Equal(t, "patio-uv", device.Name)
	assert.Equal(t, "veml6075", device.Type)
	assert.True(t, device.Enabled)
	assert.Equal(t, "/dev/ttyUSB0", device.SerialDevice)
	assert.Equal(t, 115200, device.Baud)
	assert.Equal(t, 2.22, device.Calibration.UVACoefA)
	assert.Equal(t, 0.002591, device.Calibration.UVBResponse)
	assert.Equal(t, 100, device.Calibration.IntegrationTimeMs)
	assert.Equal(t, "/dev/ttyUSB1", device.Transport.SerialDevice)
	assert.Equal(t, "uvmon", device.Transport.BridgeName)

	assert.Equal(t, 3, cfg.Profile.SkinType)
	assert.Equal(t, 30, cfg.Profile.SPF)
	assert.True(t, cfg.Profile.AwaitPeer)
	assert.True(t, cfg.Profile.FloorSubstitution)
	assert.Equal(t, 120, cfg.Profile.SessionTimeoutSecs)
	assert.Equal(t, "defaults", cfg.Profile.OnSessionTimeout)

	require.NotNil(t, cfg.Storage.TimescaleDB)
	assert.Contains(t, cfg.Storage.TimescaleDB.ConnectionString, "dbname=uvmon")
	require.NotNil(t, cfg.Storage.MQTT)
	assert.Equal(t, "uvmon/readings", cfg.Storage.MQTT.Topic)

	require.Len(t, cfg.Controllers, 1)
	require.NotNil(t, cfg.Controllers[0].RESTServer)
	assert.Equal(t, 8080, cfg.Controllers[0].RESTServer.Port)
}

func TestYAMLProviderSectionGetters(t *testing.T) {
	provider := NewYAMLProvider(writeTempConfig(t, sampleYAML))

	devices, err := provider.GetDevices()
	require.NoError(t, err)
	assert.Len(t, devices, 1)

	profile, err := provider.GetProfile()
	require.NoError(t, err)
	assert.Equal(t, 3, profile.SkinType)

	storage, err := provider.GetStorageConfig()
	require.NoError(t, err)
	assert.NotNil(t, storage.TimescaleDB)

	assert.True(t, provider.IsReadOnly())
	assert.NoError(t, provider.Close())
}

func TestYAMLProviderMissingFile(t *testing.T) {
	provider := NewYAMLProvider(filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := provider.LoadConfig()
	assert.Error(t, err)
}

func TestYAMLProviderBadYAML(t *testing.T) {
	provider := NewYAMLProvider(writeTempConfig(t, "devices: [unclosed"))
	_, err := provider.LoadConfig()
	assert.Error(t, err)
}

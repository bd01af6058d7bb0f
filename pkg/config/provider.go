// Package config defines the configuration model and its providers. The
// same ConfigData can be loaded from a YAML file or a SQLite database.
package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetDevices() ([]DeviceData, error)
	GetProfile() (*ProfileData, error)
	GetStorageConfig() (*StorageData, error)
	GetControllers() ([]ControllerData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Devices     []DeviceData     `yaml:"devices" json:"devices"`
	Profile     ProfileData      `yaml:"profile" json:"profile"`
	Storage     StorageData      `yaml:"storage,omitempty" json:"storage,omitempty"`
	Controllers []ControllerData `yaml:"controllers,omitempty" json:"controllers,omitempty"`
}

// DeviceData holds the configuration for one UV sensor node and the remote
// peer link paired with it.
type DeviceData struct {
	Name         string          `yaml:"name" json:"name"`
	Type         string          `yaml:"type,omitempty" json:"type,omitempty"`
	Enabled      bool            `yaml:"enabled" json:"enabled"`
	Hostname     string          `yaml:"hostname,omitempty" json:"hostname,omitempty"`
	Port         string          `yaml:"port,omitempty" json:"port,omitempty"`
	SerialDevice string          `yaml:"serial_device,omitempty" json:"serial_device,omitempty"`
	Baud         int             `yaml:"baud,omitempty" json:"baud,omitempty"`
	Latitude     float64         `yaml:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude    float64         `yaml:"longitude,omitempty" json:"longitude,omitempty"`
	Calibration  CalibrationData `yaml:"calibration,omitempty" json:"calibration,omitempty"`
	Transport    TransportData   `yaml:"transport" json:"transport"`
}

// CalibrationData is the sensor's fixed startup calibration: two linear
// compensation coefficients per UV band plus the two band response factors,
// and the sampling configuration. Set once at startup, never varied at
// runtime.
type CalibrationData struct {
	UVACoefA          float64 `yaml:"uva_coef_a,omitempty" json:"uva_coef_a,omitempty"`
	UVACoefB          float64 `yaml:"uva_coef_b,omitempty" json:"uva_coef_b,omitempty"`
	UVBCoefC          float64 `yaml:"uvb_coef_c,omitempty" json:"uvb_coef_c,omitempty"`
	UVBCoefD          float64 `yaml:"uvb_coef_d,omitempty" json:"uvb_coef_d,omitempty"`
	UVAResponse       float64 `yaml:"uva_response,omitempty" json:"uva_response,omitempty"`
	UVBResponse       float64 `yaml:"uvb_response,omitempty" json:"uvb_response,omitempty"`
	IntegrationTimeMs int     `yaml:"integration_time_ms,omitempty" json:"integration_time_ms,omitempty"`
	DynamicRange      string  `yaml:"dynamic_range,omitempty" json:"dynamic_range,omitempty"`
	Mode              string  `yaml:"mode,omitempty" json:"mode,omitempty"`
}

// TransportData holds the remote peer link: a BLE bridge on a local serial
// port, or a TCP endpoint.
type TransportData struct {
	SerialDevice string `yaml:"serial_device,omitempty" json:"serial_device,omitempty"`
	Baud         int    `yaml:"baud,omitempty" json:"baud,omitempty"`
	Hostname     string `yaml:"hostname,omitempty" json:"hostname,omitempty"`
	Port         string `yaml:"port,omitempty" json:"port,omitempty"`
	BridgeName   string `yaml:"bridge_name,omitempty" json:"bridge_name,omitempty"`
	FactoryReset bool   `yaml:"factory_reset,omitempty" json:"factory_reset,omitempty"`
}

// ProfileData holds the exposure profile and protocol policy.
type ProfileData struct {
	SkinType          int  `yaml:"skin_type" json:"skin_type"`
	SPF               int  `yaml:"spf" json:"spf"`
	SkipConfig        bool `yaml:"skip_config,omitempty" json:"skip_config,omitempty"`
	AwaitPeer         bool `yaml:"await_peer,omitempty" json:"await_peer,omitempty"`
	Verbose           bool `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	TaggedReplies     bool `yaml:"tagged_replies,omitempty" json:"tagged_replies,omitempty"`
	FloorSubstitution bool `yaml:"floor_substitution,omitempty" json:"floor_substitution,omitempty"`
	SmoothingWindow   int  `yaml:"smoothing_window,omitempty" json:"smoothing_window,omitempty"`

	// ReportIntervalSecs is the accumulator tick period. Zero means the
	// nominal 1 second.
	ReportIntervalSecs int `yaml:"report_interval_secs,omitempty" json:"report_interval_secs,omitempty"`
	PromptIntervalSecs int `yaml:"prompt_interval_secs,omitempty" json:"prompt_interval_secs,omitempty"`
	// SessionTimeoutSecs bounds the configuration exchange. Zero waits
	// forever, matching the original firmware.
	SessionTimeoutSecs int `yaml:"session_timeout_secs,omitempty" json:"session_timeout_secs,omitempty"`
	// OnSessionTimeout is "defaults" (proceed with the profile defaults) or
	// "fail" (treat as a fatal startup error).
	OnSessionTimeout string `yaml:"on_session_timeout,omitempty" json:"on_session_timeout,omitempty"`
}

// StorageData holds the configuration for various storage backends
type StorageData struct {
	TimescaleDB *TimescaleDBData `yaml:"timescaledb,omitempty" json:"timescaledb,omitempty"`
	MQTT        *MQTTData        `yaml:"mqtt,omitempty" json:"mqtt,omitempty"`
}

type TimescaleDBData struct {
	ConnectionString string `yaml:"connection_string" json:"connection_string"`
}

type MQTTData struct {
	Broker   string `yaml:"broker" json:"broker"`
	ClientID string `yaml:"client_id,omitempty" json:"client_id,omitempty"`
	Username string `yaml:"username,omitempty" json:"username,omitempty"`
	Password string `yaml:"password,omitempty" json:"password,omitempty"`
	Topic    string `yaml:"topic,omitempty" json:"topic,omitempty"`
}

// ControllerData holds the configuration for controller backends
type ControllerData struct {
	Type       string          `yaml:"type,omitempty" json:"type,omitempty"`
	RESTServer *RESTServerData `yaml:"rest,omitempty" json:"rest,omitempty"`
}

type RESTServerData struct {
	ListenAddr string `yaml:"listen_addr,omitempty" json:"listen_addr,omitempty"`
	Port       int    `yaml:"port" json:"port"`
}

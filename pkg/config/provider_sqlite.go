package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from the SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	devices, err := s.GetDevices()
	if err != nil {
		return nil, fmt.Errorf("failed to load devices: %w", err)
	}
	config.Devices = devices

	profile, err := s.GetProfile()
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	config.Profile = *profile

	storage, err := s.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	config.Storage = *storage

	controllers, err := s.GetControllers()
	if err != nil {
		return nil, fmt.Errorf("failed to load controllers: %w", err)
	}
	config.Controllers = controllers

	return config, nil
}

// GetDevices returns device configurations from the database
func (s *SQLiteProvider) GetDevices() ([]DeviceData, error) {
	query := `
		SELECT name, type, enabled, hostname, port, serial_device, baud,
		       latitude, longitude,
		       cal_uva_coef_a, cal_uva_coef_b, cal_uvb_coef_c, cal_uvb_coef_d,
		       cal_uva_response, cal_uvb_response,
		       cal_integration_time_ms, cal_dynamic_range, cal_mode,
		       transport_serial_device, transport_baud, transport_hostname,
		       transport_port, transport_bridge_name, transport_factory_reset
		FROM devices
		ORDER BY name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	var devices []DeviceData
	for rows.Next() {
		var d DeviceData
		var hostname, port, serialDevice sql.NullString
		var baud sql.NullInt64
		var tSerial, tHostname, tPort, tBridgeName sql.NullString
		var tBaud sql.NullInt64
		var tFactoryReset sql.NullBool
		var dynRange, mode sql.NullString

		err := rows.Scan(&d.Name, &d.Type, &d.Enabled, &hostname, &port,
			&serialDevice, &baud, &d.Latitude, &d.Longitude,
			&d.Calibration.UVACoefA, &d.Calibration.UVACoefB,
			&d.Calibration.UVBCoefC, &d.Calibration.UVBCoefD,
			&d.Calibration.UVAResponse, &d.Calibration.UVBResponse,
			&d.Calibration.IntegrationTimeMs, &dynRange, &mode,
			&tSerial, &tBaud, &tHostname, &tPort, &tBridgeName, &tFactoryReset)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device row: %w", err)
		}

		d.Hostname = hostname.String
		d.Port = port.String
		d.SerialDevice = serialDevice.String
		d.Baud = int(baud.Int64)
		d.Calibration.DynamicRange = dynRange.String
		d.Calibration.Mode = mode.String
		d.Transport.SerialDevice = tSerial.String
		d.Transport.Baud = int(tBaud.Int64)
		d.Transport.Hostname = tHostname.String
		d.Transport.Port = tPort.String
		d.Transport.BridgeName = tBridgeName.String
		d.Transport.FactoryReset = tFactoryReset.Bool

		devices = append(devices, d)
	}

	return devices, rows.Err()
}

// GetProfile returns the single exposure profile row
func (s *SQLiteProvider) GetProfile() (*ProfileData, error) {
	query := `
		SELECT skin_type, spf, skip_config, await_peer, verbose,
		       tagged_replies, floor_substitution, smoothing_window,
		       report_interval_secs, prompt_interval_secs,
		       session_timeout_secs, on_session_timeout
		FROM profile LIMIT 1`

	p := &ProfileData{}
	var onTimeout sql.NullString
	err := s.db.QueryRow(query).Scan(&p.SkinType, &p.SPF, &p.SkipConfig,
		&p.AwaitPeer, &p.Verbose, &p.TaggedReplies, &p.FloorSubstitution,
		&p.SmoothingWindow, &p.ReportIntervalSecs, &p.PromptIntervalSecs,
		&p.SessionTimeoutSecs, &onTimeout)
	if err == sql.ErrNoRows {
		// No profile row: fall back to zero-value defaults
		return &ProfileData{SPF: 1}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	p.OnSessionTimeout = onTimeout.String
	return p, nil
}

// GetStorageConfig returns the storage backend configuration
func (s *SQLiteProvider) GetStorageConfig() (*StorageData, error) {
	storage := &StorageData{}

	var connString sql.NullString
	err := s.db.QueryRow(`SELECT connection_string FROM storage_timescaledb LIMIT 1`).Scan(&connString)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to query timescaledb storage: %w", err)
	}
	if err == nil && connString.String != "" {
		storage.TimescaleDB = &TimescaleDBData{ConnectionString: connString.String}
	}

	var broker, clientID, username, password, topic sql.NullString
	err = s.db.QueryRow(`SELECT broker, client_id, username, password, topic FROM storage_mqtt LIMIT 1`).
		Scan(&broker, &clientID, &username, &password, &topic)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to query mqtt storage: %w", err)
	}
	if err == nil && broker.String != "" {
		storage.MQTT = &MQTTData{
			Broker:   broker.String,
			ClientID: clientID.String,
			Username: username.String,
			Password: password.String,
			Topic:    topic.String,
		}
	}

	return storage, nil
}

// GetControllers returns the controller configurations
func (s *SQLiteProvider) GetControllers() ([]ControllerData, error) {
	rows, err := s.db.Query(`SELECT type, listen_addr, port FROM controllers ORDER BY type`)
	if err != nil {
		return nil, fmt.Errorf("failed to query controllers: %w", err)
	}
	defer rows.Close()

	var controllers []ControllerData
	for rows.Next() {
		var c ControllerData
		var listenAddr sql.NullString
		var port sql.NullInt64
		if err := rows.Scan(&c.Type, &listenAddr, &port); err != nil {
			return nil, fmt.Errorf("failed to scan controller row: %w", err)
		}
		if c.Type == "rest" {
			c.RESTServer = &RESTServerData{
				ListenAddr: listenAddr.String,
				Port:       int(port.Int64),
			}
		}
		controllers = append(controllers, c)
	}

	return controllers, rows.Err()
}

// IsReadOnly returns false: SQLite configs can be managed in place
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}

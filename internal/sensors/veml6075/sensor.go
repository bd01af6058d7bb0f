// Package veml6075 drives a UV sensor node built around the VEML6075 UVA/UVB
// sensor. The node is reached over a local serial port or TCP and speaks a
// simple line protocol: configuration commands answered with OK, and a UV?
// poll answered with UV:<index>.
package veml6075

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	serial "github.com/tarm/goserial"
	"go.uber.org/zap"

	"github.com/uvmon/uvmon/internal/sensors"
	"github.com/uvmon/uvmon/pkg/config"
)

const (
	defaultBaud  = 115200
	replyTimeout = 3 * time.Second
)

// Sensor holds the connection to a VEML6075 sensor node.
type Sensor struct {
	config  config.DeviceData
	rwc     io.ReadWriteCloser
	netConn net.Conn
	br      *bufio.Reader
	logger  *zap.SugaredLogger
}

// NewSensor creates a sensor node driver from device configuration.
func NewSensor(cfg config.DeviceData, logger *zap.SugaredLogger) (sensors.UVSource, error) {
	if cfg.SerialDevice == "" && (cfg.Hostname == "" || cfg.Port == "") {
		return nil, fmt.Errorf("sensor [%s] must define either a serial device or hostname+port", cfg.Name)
	}
	if cfg.Baud == 0 {
		cfg.Baud = defaultBaud
	}
	return &Sensor{
		config: cfg,
		logger: logger,
	}, nil
}

// SourceName returns the configured device name.
func (s *Sensor) SourceName() string {
	return s.config.Name
}

// Init connects to the node and pushes the startup configuration: sampling
// parameters and the 6-coefficient calibration vector. These are set once
// and never varied at runtime; any failure here is a fatal startup error for
// the caller.
func (s *Sensor) Init(ctx context.Context) error {
	if err := s.connect(ctx); err != nil {
		return err
	}

	cal := s.config.Calibration
	commands := []string{
		fmt.Sprintf("IT %d", defaultInt(cal.IntegrationTimeMs, 100)),
		fmt.Sprintf("RANGE %s", defaultStr(cal.DynamicRange, "normal")),
		fmt.Sprintf("MODE %s", defaultStr(cal.Mode, "continuous")),
		fmt.Sprintf("CAL %s %s %s %s %s %s",
			formatCoef(cal.UVACoefA), formatCoef(cal.UVACoefB),
			formatCoef(cal.UVBCoefC), formatCoef(cal.UVBCoefD),
			formatCoef(cal.UVAResponse), formatCoef(cal.UVBResponse)),
	}

	for _, cmd := range commands {
		reply, err := s.command(cmd)
		if err != nil {
			return fmt.Errorf("sensor [%s] init command %q failed: %w", s.config.Name, cmd, err)
		}
		if !strings.HasPrefix(reply, "OK") {
			return fmt.Errorf("sensor [%s] rejected %q: %q", s.config.Name, cmd, reply)
		}
	}

	s.logger.Infof("sensor [%s] configured", s.config.Name)
	return nil
}

// connect opens the serial port or TCP connection to the node.
func (s *Sensor) connect(ctx context.Context) error {
	var err error

	if s.config.SerialDevice != "" {
		s.logger.Infof("connecting to sensor [%s] via %s ...", s.config.Name, s.config.SerialDevice)
		sc := &serial.Config{Name: s.config.SerialDevice, Baud: s.config.Baud}
		s.rwc, err = serial.OpenPort(sc)
		if err != nil {
			return fmt.Errorf("failed to open serial port %s: %w", s.config.SerialDevice, err)
		}
	} else {
		addr := net.JoinHostPort(s.config.Hostname, s.config.Port)
		s.logger.Infof("connecting to sensor [%s] at %s ...", s.config.Name, addr)
		dialer := net.Dialer{Timeout: 10 * time.Second}
		s.netConn, err = dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return fmt.Errorf("could not connect to %v: %w", addr, err)
		}
		s.rwc = s.netConn
	}

	s.br = bufio.NewReader(s.rwc)
	return nil
}

// ReadUVIndex polls the node for the current UV index. A faulted node may
// answer with a negative value; that is passed through unchanged, matching
// the no-error-channel contract of the underlying sensor.
func (s *Sensor) ReadUVIndex() (float64, error) {
	reply, err := s.command("UV?")
	if err != nil {
		return 0, fmt.Errorf("sensor [%s] read failed: %w", s.config.Name, err)
	}

	value, ok := strings.CutPrefix(reply, "UV:")
	if !ok {
		return 0, fmt.Errorf("sensor [%s] unexpected reply: %q", s.config.Name, reply)
	}

	uv, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("sensor [%s] unparseable UV value %q: %w", s.config.Name, value, err)
	}
	return uv, nil
}

// command writes one line and reads the node's one-line reply.
func (s *Sensor) command(cmd string) (string, error) {
	if s.rwc == nil {
		return "", fmt.Errorf("not connected")
	}

	if s.netConn != nil {
		s.netConn.SetDeadline(time.Now().Add(replyTimeout))
	}

	if _, err := s.rwc.Write([]byte(cmd + "\n")); err != nil {
		return "", fmt.Errorf("error writing command: %w", err)
	}

	line, err := s.br.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("error reading reply: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Close closes the connection to the node.
func (s *Sensor) Close() error {
	if s.rwc == nil {
		return nil
	}
	return s.rwc.Close()
}

func defaultInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

func defaultStr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func formatCoef(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

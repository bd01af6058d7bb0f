package transport

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// BridgeConfig controls the startup handshake with the BLE bridge module.
// These are fixed vendor-protocol operations run once before the session
// protocol starts; they are never re-issued at runtime.
type BridgeConfig struct {
	// Name is advertised over the air. Empty skips the rename.
	Name string
	// FactoryReset restores the module's defaults before configuration.
	FactoryReset bool
	// ReplyTimeout bounds each command's wait for a reply.
	ReplyTimeout time.Duration
}

const defaultReplyTimeout = 3 * time.Second

// InitBridge runs the AT startup sequence: optional factory reset, echo
// suppression, advertised name, firmware version query. Any failure is
// returned to the caller, which treats it as a fatal startup error.
func InitBridge(t LineTransport, cfg BridgeConfig, logger *zap.SugaredLogger) error {
	timeout := cfg.ReplyTimeout
	if timeout <= 0 {
		timeout = defaultReplyTimeout
	}

	if cfg.FactoryReset {
		if err := atCommand(t, "AT+RESET", timeout, logger); err != nil {
			return fmt.Errorf("bridge factory reset failed: %w", err)
		}
		// The module reboots after a reset; give it a moment before the
		// next command.
		time.Sleep(500 * time.Millisecond)
	}

	if err := atCommand(t, "ATE0", timeout, logger); err != nil {
		return fmt.Errorf("bridge echo suppression failed: %w", err)
	}

	if cfg.Name != "" {
		if err := atCommand(t, "AT+NAME="+cfg.Name, timeout, logger); err != nil {
			return fmt.Errorf("bridge rename failed: %w", err)
		}
	}

	version, err := atQuery(t, "AT+VERS?", timeout)
	if err != nil {
		return fmt.Errorf("bridge version query failed: %w", err)
	}
	logger.Infof("BLE bridge firmware: %s", version)

	return nil
}

// atCommand sends one AT command and expects an OK-class reply.
func atCommand(t LineTransport, cmd string, timeout time.Duration, logger *zap.SugaredLogger) error {
	logger.Debugf("bridge <- %s", cmd)
	if err := t.WriteLine(cmd); err != nil {
		return err
	}
	reply, err := WaitLine(t, timeout)
	if err != nil {
		return err
	}
	logger.Debugf("bridge -> %s", reply)
	if !strings.HasPrefix(reply, "OK") {
		return fmt.Errorf("unexpected reply to %s: %q", cmd, reply)
	}
	return nil
}

// atQuery sends an AT query and returns the raw reply line.
func atQuery(t LineTransport, cmd string, timeout time.Duration) (string, error) {
	if err := t.WriteLine(cmd); err != nil {
		return "", err
	}
	return WaitLine(t, timeout)
}

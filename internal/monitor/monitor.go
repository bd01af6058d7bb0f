// Package monitor runs the per-device loop: drive the configuration session
// over the remote link, then tick the dose accumulator and report each cycle
// to the peer, the status registry, and the reading distributor.
package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/uvmon/uvmon/internal/dose"
	"github.com/uvmon/uvmon/internal/sensors"
	"github.com/uvmon/uvmon/internal/session"
	"github.com/uvmon/uvmon/internal/transport"
	"github.com/uvmon/uvmon/internal/types"
	"github.com/uvmon/uvmon/pkg/config"
	"github.com/uvmon/uvmon/pkg/solar"
)

const (
	defaultReportInterval = time.Second
	defaultPollInterval   = 100 * time.Millisecond

	// suspectUVThreshold is the UV index above which a nighttime reading is
	// flagged as a suspect sensor.
	suspectUVThreshold = 0.5
)

// Monitor owns one sensor node and its paired remote link.
type Monitor struct {
	ctx         context.Context
	wg          *sync.WaitGroup
	device      config.DeviceData
	profile     config.ProfileData
	source      sensors.UVSource
	link        transport.LineTransport
	distributor chan<- types.Reading
	status      *Status
	logger      *zap.SugaredLogger

	tracker   *dose.Tracker
	sessionID string

	reportInterval time.Duration
	pollInterval   time.Duration
}

// New creates a Monitor around an initialized sensor source and remote link.
func New(ctx context.Context, wg *sync.WaitGroup, device config.DeviceData, profile config.ProfileData,
	source sensors.UVSource, link transport.LineTransport, distributor chan<- types.Reading,
	status *Status, logger *zap.SugaredLogger) *Monitor {

	m := &Monitor{
		ctx:            ctx,
		wg:             wg,
		device:         device,
		profile:        profile,
		source:         source,
		link:           link,
		distributor:    distributor,
		status:         status,
		logger:         logger,
		reportInterval: defaultReportInterval,
		pollInterval:   defaultPollInterval,
	}
	if profile.ReportIntervalSecs > 0 {
		m.reportInterval = time.Duration(profile.ReportIntervalSecs) * time.Second
	}
	return m
}

// Start launches the monitor goroutine.
func (m *Monitor) Start() {
	m.wg.Add(1)
	go m.run()
}

func (m *Monitor) run() {
	defer m.wg.Done()

	if err := m.configure(); err != nil {
		m.logger.Errorf("monitor [%s] configuration failed: %v", m.device.Name, err)
		return
	}
	m.report()
}

// configure drives the session state machine to completion. The loop polls
// rather than blocks, so cancellation and the configurable timeout policy
// stay in the monitor's hands instead of being hardcoded into the protocol.
func (m *Monitor) configure() error {
	sess := session.New(session.Config{
		AwaitPeer:       m.profile.AwaitPeer,
		SkipConfig:      m.profile.SkipConfig,
		Tagged:          m.profile.TaggedReplies,
		Verbose:         m.profile.Verbose,
		DefaultSkinType: m.profile.SkinType,
		DefaultSPF:      m.profile.SPF,
		PromptInterval:  time.Duration(m.profile.PromptIntervalSecs) * time.Second,
	}, m.logger)
	m.sessionID = sess.ID()

	var deadline time.Time
	if m.profile.SessionTimeoutSecs > 0 {
		deadline = time.Now().Add(time.Duration(m.profile.SessionTimeoutSecs) * time.Second)
	}

	for !sess.Done() {
		select {
		case <-m.ctx.Done():
			return m.ctx.Err()
		default:
		}

		if prompt, due := sess.TickPrompt(time.Now()); due {
			m.writeLine(prompt)
		}

		for {
			line, ok, err := m.link.ReadLine()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			echo, advanced := sess.HandleLine(line)
			if advanced {
				m.logger.Infof("monitor [%s] session now %v", m.device.Name, sess.State())
			}
			for _, e := range echo {
				m.writeLine(e)
			}
		}

		if sess.Done() {
			break
		}

		if !deadline.IsZero() && time.Now().After(deadline) {
			if m.profile.OnSessionTimeout == "fail" {
				return context.DeadlineExceeded
			}
			m.logger.Warnf("monitor [%s] configuration timed out, proceeding with defaults (skin type %d, SPF %d)",
				m.device.Name, sess.SkinType(), sess.SPF())
			break
		}

		select {
		case <-m.ctx.Done():
			return m.ctx.Err()
		case <-time.After(m.pollInterval):
		}
	}

	m.tracker = dose.NewTracker(dose.Params{
		SkinType:        sess.SkinType(),
		SPF:             sess.SPF(),
		ApplyFloor:      m.profile.FloorSubstitution,
		SmoothingWindow: m.profile.SmoothingWindow,
	}, m.logger)

	m.logger.Infof("monitor [%s] reporting: skin type %d (threshold %.0f), SPF %d",
		m.device.Name, m.tracker.SkinType(), m.tracker.Threshold(), m.tracker.SPF())
	return nil
}

// report runs the accumulator tick loop until cancelled.
func (m *Monitor) report() {
	ticker := time.NewTicker(m.reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			m.logger.Infof("monitor [%s] cancellation request received, stopping reporting", m.device.Name)
			return
		case <-ticker.C:
			m.tick()
		}
	}
}

// tick runs one cycle: sample, accumulate, derive, report. A failed sensor
// read is logged and the cycle proceeds with the returned value; the dose
// floor is the only defense against a faulted sensor.
func (m *Monitor) tick() {
	uv, err := m.source.ReadUVIndex()
	if err != nil {
		m.logger.Errorf("monitor [%s] sensor read failed: %v", m.device.Name, err)
	}

	rep := m.tracker.Step(uv)

	suspect := m.suspectReading(uv, time.Now())
	if suspect {
		m.logger.Warnf("monitor [%s] suspect reading: UV %.2f after dark", m.device.Name, uv)
	}

	for _, line := range session.FormatReport(rep, m.profile.Verbose) {
		m.writeLine(line)
	}

	reading := types.Reading{
		Timestamp:      time.Now(),
		DeviceName:     m.device.Name,
		SessionID:      m.sessionID,
		SkinType:       m.tracker.SkinType(),
		SPF:            m.tracker.SPF(),
		UVIndex:        rep.UVIndex,
		DoseIncrement:  rep.Increment,
		CumulativeDose: rep.CumulativeDose,
		BurnPercent:    rep.BurnPercent,
		TimeToBurnMin:  rep.TimeToBurnMin,
		SmoothedToBurn: rep.SmoothedToBurnMin,
		OverThreshold:  rep.OverThreshold,
		SensorSuspect:  suspect,
	}

	if m.status != nil {
		m.status.Update(reading)
	}

	select {
	case m.distributor <- reading:
	case <-m.ctx.Done():
	}
}

// suspectReading flags meaningful UV after dark. Devices without a
// configured location skip the check.
func (m *Monitor) suspectReading(uv float64, at time.Time) bool {
	if m.device.Latitude == 0 && m.device.Longitude == 0 {
		return false
	}
	if uv <= suspectUVThreshold {
		return false
	}
	return !solar.IsDaylight(at, m.device.Latitude, m.device.Longitude)
}

// writeLine logs transport write failures without blocking progress: the
// device keeps accumulating even when the peer link drops lines.
func (m *Monitor) writeLine(line string) {
	if err := m.link.WriteLine(line); err != nil {
		m.logger.Errorf("monitor [%s] transport write failed: %v", m.device.Name, err)
	}
}

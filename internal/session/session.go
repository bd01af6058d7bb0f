// Package session implements the configuration protocol spoken with the
// remote peer over the line transport before continuous reporting begins:
// wait for the peer's sentinel, then request skin type and SPF.
//
// The state machine is purely event-driven. HandleLine consumes one inbound
// line and TickPrompt tells the caller when a prompt re-send is due; the
// caller owns the polling loop, delays, and any timeout or cancellation
// policy.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State identifies the protocol phase.
type State int

const (
	// StateAwaitPeer repeats the hello prompt until the peer sends the
	// exact sentinel token.
	StateAwaitPeer State = iota
	// StateAwaitSkinType polls for a line whose first character is a digit
	// and parses its leading decimal prefix as the skin type.
	StateAwaitSkinType
	// StateAwaitSPF polls identically for the SPF value.
	StateAwaitSPF
	// StateReporting is the terminal steady state.
	StateReporting
)

func (s State) String() string {
	switch s {
	case StateAwaitPeer:
		return "await-peer"
	case StateAwaitSkinType:
		return "await-skin-type"
	case StateAwaitSPF:
		return "await-spf"
	default:
		return "reporting"
	}
}

// Default protocol strings. The prompts and sentinel are fixed tokens on the
// wire; changing them breaks peers built against the original firmware.
const (
	DefaultSentinel       = "READY"
	DefaultPeerPrompt     = "HELLO"
	DefaultSkinPrompt     = "SKIN?"
	DefaultSPFPrompt      = "SPF?"
	DefaultPromptInterval = 2 * time.Second

	// Tag prefixes for tagged-reply mode.
	skinTag = "s:"
	spfTag  = "f:"
)

// Config selects the protocol variant.
type Config struct {
	// AwaitPeer enables the initial sentinel handshake. When false the
	// session starts directly at the skin-type request.
	AwaitPeer bool
	// SkipConfig bypasses the protocol entirely: the session is born in
	// StateReporting with the default skin type and SPF.
	SkipConfig bool
	// Tagged requires replies to carry an "s:" / "f:" tag matching the
	// awaited field. Untagged first-char-digit parsing remains the default
	// for wire compatibility with the original peer, which cannot tag.
	Tagged bool
	// Verbose selects human-readable prompts and echoes over the terse
	// machine-parseable ones.
	Verbose bool

	DefaultSkinType int
	DefaultSPF      int

	Sentinel       string
	PromptInterval time.Duration
}

// Session is the configuration state machine for one monitoring run.
type Session struct {
	cfg      Config
	state    State
	skinType int
	spf      int
	id       string

	lastPrompt time.Time
	logger     *zap.SugaredLogger
}

// New creates a Session. SkipConfig sessions are already Done.
func New(cfg Config, logger *zap.SugaredLogger) *Session {
	if cfg.Sentinel == "" {
		cfg.Sentinel = DefaultSentinel
	}
	if cfg.PromptInterval <= 0 {
		cfg.PromptInterval = DefaultPromptInterval
	}

	s := &Session{
		cfg:      cfg,
		skinType: cfg.DefaultSkinType,
		spf:      cfg.DefaultSPF,
		id:       uuid.New().String(),
		logger:   logger,
	}

	switch {
	case cfg.SkipConfig:
		s.state = StateReporting
	case cfg.AwaitPeer:
		s.state = StateAwaitPeer
	default:
		s.state = StateAwaitSkinType
	}
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// State returns the current protocol phase.
func (s *Session) State() State { return s.state }

// Done reports whether the session has reached the terminal reporting state.
func (s *Session) Done() bool { return s.state == StateReporting }

// SkinType returns the negotiated (or default) skin type.
func (s *Session) SkinType() int { return s.skinType }

// SPF returns the negotiated (or default) SPF.
func (s *Session) SPF() int { return s.spf }

// TickPrompt returns the prompt to transmit if one is due at now. Prompts
// re-send every PromptInterval until the state advances.
func (s *Session) TickPrompt(now time.Time) (string, bool) {
	if s.Done() {
		return "", false
	}
	if !s.lastPrompt.IsZero() && now.Sub(s.lastPrompt) < s.cfg.PromptInterval {
		return "", false
	}
	s.lastPrompt = now
	return s.prompt(), true
}

func (s *Session) prompt() string {
	switch s.state {
	case StateAwaitPeer:
		if s.cfg.Verbose {
			return fmt.Sprintf("%s - send %s to begin", DefaultPeerPrompt, s.cfg.Sentinel)
		}
		return DefaultPeerPrompt
	case StateAwaitSkinType:
		if s.cfg.Verbose {
			return "Enter skin type (0-6):"
		}
		return DefaultSkinPrompt
	case StateAwaitSPF:
		if s.cfg.Verbose {
			return "Enter SPF:"
		}
		return DefaultSPFPrompt
	}
	return ""
}

// HandleLine consumes one inbound line. It returns the echo lines to send
// back to the peer and whether the state advanced. Invalid lines are
// silently ignored: the state is unchanged and the prompt will re-send on
// the next due tick.
func (s *Session) HandleLine(line string) (echo []string, advanced bool) {
	switch s.state {
	case StateAwaitPeer:
		// Exact, case-sensitive match only. Near-misses never advance.
		if line != s.cfg.Sentinel {
			return nil, false
		}
		s.advance(StateAwaitSkinType)
		return nil, true

	case StateAwaitSkinType:
		v, ok := s.parseValue(line, skinTag)
		if !ok {
			return nil, false
		}
		s.skinType = v
		s.advance(StateAwaitSPF)
		return []string{s.echoSkin(v)}, true

	case StateAwaitSPF:
		v, ok := s.parseValue(line, spfTag)
		if !ok {
			return nil, false
		}
		s.spf = v
		s.advance(StateReporting)
		return []string{s.echoSPF(v)}, true
	}
	return nil, false
}

func (s *Session) advance(next State) {
	if s.logger != nil {
		s.logger.Debugf("session %s: %v -> %v", s.id, s.state, next)
	}
	s.state = next
	s.lastPrompt = time.Time{} // next prompt is due immediately
}

// parseValue applies the line validity check and leading-digit-prefix parse.
// In tagged mode the line must carry the tag for the awaited field; a line
// tagged for a different field is ignored rather than misapplied, so a
// dropped or reordered reply cannot silently desynchronize the exchange.
func (s *Session) parseValue(line, tag string) (int, bool) {
	if s.cfg.Tagged {
		if len(line) < len(tag) || line[:len(tag)] != tag {
			return 0, false
		}
		line = line[len(tag):]
	}
	return leadingInt(line)
}

// leadingInt parses the decimal digit prefix of line. The first character
// must be a digit; trailing non-digit characters are ignored, matching
// C-style atoi semantics.
func leadingInt(line string) (int, bool) {
	if len(line) == 0 || line[0] < '0' || line[0] > '9' {
		return 0, false
	}
	n := 0
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func (s *Session) echoSkin(v int) string {
	if s.cfg.Verbose {
		return fmt.Sprintf("skin type %d accepted", v)
	}
	return fmt.Sprintf("s:%d", v)
}

func (s *Session) echoSPF(v int) string {
	if s.cfg.Verbose {
		return fmt.Sprintf("SPF %d accepted", v)
	}
	return fmt.Sprintf("f:%d", v)
}

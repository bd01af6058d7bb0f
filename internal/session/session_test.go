package session

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/uvmon/uvmon/internal/dose"
)

func newTestSession(cfg Config) *Session {
	return New(cfg, nil)
}

func TestSentinelHandshake(t *testing.T) {
	s := newTestSession(Config{AwaitPeer: true})

	if s.State() != StateAwaitPeer {
		t.Fatalf("initial state = %v, expected await-peer", s.State())
	}

	// Unmatched lines never advance, no matter how often they repeat.
	for i := 0; i < 5; i++ {
		if _, advanced := s.HandleLine("ready"); advanced {
			t.Fatal("case-mismatched sentinel advanced the state machine")
		}
	}
	if _, advanced := s.HandleLine("READY!"); advanced {
		t.Fatal("near-miss sentinel advanced the state machine")
	}
	if _, advanced := s.HandleLine(""); advanced {
		t.Fatal("empty line advanced the state machine")
	}
	if s.State() != StateAwaitPeer {
		t.Fatalf("state after garbage = %v, expected await-peer", s.State())
	}

	// Exact match advances.
	if _, advanced := s.HandleLine("READY"); !advanced {
		t.Fatal("exact sentinel did not advance")
	}
	if s.State() != StateAwaitSkinType {
		t.Fatalf("state after sentinel = %v, expected await-skin-type", s.State())
	}
}

func TestLeadingDigitParse(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected int
		ok       bool
	}{
		{"plain integer", "3", 3, true},
		{"trailing junk ignored", "3abc", 3, true},
		{"multi-digit prefix", "30x", 30, true},
		{"digit then junk then digit", "4a2", 4, true},
		{"no leading digit", "xyz", 0, false},
		{"leading space rejected", " 3", 0, false},
		{"empty line", "", 0, false},
		{"zero", "0", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := leadingInt(tt.line)
			if ok != tt.ok || got != tt.expected {
				t.Errorf("leadingInt(%q) = (%d, %v), expected (%d, %v)", tt.line, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestSkinTypeAndSPFExchange(t *testing.T) {
	s := newTestSession(Config{})

	if s.State() != StateAwaitSkinType {
		t.Fatalf("initial state without peer handshake = %v", s.State())
	}

	// Invalid line leaves the state unchanged.
	if _, advanced := s.HandleLine("xyz"); advanced {
		t.Fatal("non-digit line advanced await-skin-type")
	}
	if s.State() != StateAwaitSkinType {
		t.Fatalf("state after invalid line = %v", s.State())
	}

	echo, advanced := s.HandleLine("3abc")
	if !advanced {
		t.Fatal("valid skin type line did not advance")
	}
	if s.SkinType() != 3 {
		t.Errorf("skin type = %d, expected 3 (leading-digit parse of \"3abc\")", s.SkinType())
	}
	if len(echo) != 1 || echo[0] != "s:3" {
		t.Errorf("skin echo = %v, expected [s:3]", echo)
	}

	echo, advanced = s.HandleLine("30")
	if !advanced {
		t.Fatal("valid SPF line did not advance")
	}
	if s.SPF() != 30 {
		t.Errorf("SPF = %d, expected 30", s.SPF())
	}
	if len(echo) != 1 || echo[0] != "f:30" {
		t.Errorf("SPF echo = %v, expected [f:30]", echo)
	}

	if !s.Done() {
		t.Error("session not done after SPF exchange")
	}

	// Terminal state: further lines are ignored.
	if _, advanced := s.HandleLine("5"); advanced {
		t.Error("reporting state consumed a line")
	}
}

func TestTaggedReplies(t *testing.T) {
	s := newTestSession(Config{Tagged: true})

	// Untagged and wrongly tagged replies are ignored in tagged mode.
	if _, advanced := s.HandleLine("3"); advanced {
		t.Fatal("untagged reply accepted in tagged mode")
	}
	if _, advanced := s.HandleLine("f:30"); advanced {
		t.Fatal("SPF-tagged reply accepted while awaiting skin type")
	}

	if _, advanced := s.HandleLine("s:3"); !advanced {
		t.Fatal("tagged skin reply not accepted")
	}
	if s.SkinType() != 3 {
		t.Errorf("skin type = %d, expected 3", s.SkinType())
	}

	// A stale duplicate of the skin reply cannot be misapplied as SPF.
	if _, advanced := s.HandleLine("s:3"); advanced {
		t.Fatal("duplicate skin reply consumed as SPF")
	}
	if _, advanced := s.HandleLine("f:30"); !advanced {
		t.Fatal("tagged SPF reply not accepted")
	}
	if s.SPF() != 30 {
		t.Errorf("SPF = %d, expected 30", s.SPF())
	}
}

func TestSkipConfig(t *testing.T) {
	s := newTestSession(Config{SkipConfig: true, DefaultSkinType: 2, DefaultSPF: 15})

	if !s.Done() {
		t.Fatal("skip-config session not born in reporting state")
	}
	if s.SkinType() != 2 || s.SPF() != 15 {
		t.Errorf("defaults = (%d, %d), expected (2, 15)", s.SkinType(), s.SPF())
	}
	if _, due := s.TickPrompt(time.Now()); due {
		t.Error("skip-config session issued a prompt")
	}
}

func TestPromptCadence(t *testing.T) {
	s := newTestSession(Config{AwaitPeer: true, PromptInterval: 2 * time.Second})
	start := time.Now()

	p, due := s.TickPrompt(start)
	if !due || p != "HELLO" {
		t.Fatalf("first prompt = (%q, %v), expected (HELLO, true)", p, due)
	}

	// Not due again until the interval elapses.
	if _, due := s.TickPrompt(start.Add(500 * time.Millisecond)); due {
		t.Error("prompt re-sent before interval elapsed")
	}
	if _, due := s.TickPrompt(start.Add(2 * time.Second)); !due {
		t.Error("prompt not re-sent after interval elapsed")
	}

	// Advancing makes the next state's prompt due immediately.
	s.HandleLine("READY")
	p, due = s.TickPrompt(start.Add(2500 * time.Millisecond))
	if !due || p != "SKIN?" {
		t.Errorf("post-advance prompt = (%q, %v), expected (SKIN?, true)", p, due)
	}
}

func TestVerbosePrompts(t *testing.T) {
	s := newTestSession(Config{AwaitPeer: true, Verbose: true})

	p, _ := s.TickPrompt(time.Now())
	if !strings.Contains(p, "READY") {
		t.Errorf("verbose peer prompt %q does not name the sentinel", p)
	}

	s.HandleLine("READY")
	echo, _ := s.HandleLine("4")
	if len(echo) != 1 || !strings.Contains(echo[0], "skin type 4") {
		t.Errorf("verbose skin echo = %v", echo)
	}
}

func TestFormatReportTerse(t *testing.T) {
	r := dose.Report{
		UVIndex:           4,
		Increment:         100,
		CumulativeDose:    400,
		Threshold:         150000,
		BurnPercent:       0.27,
		TimeToBurnMin:     24.93,
		SmoothedToBurnMin: 24.93,
	}

	lines := FormatReport(r, false)
	expected := []string{"q:400.00", "p:0.27", "t:24.93", "u:4.00"}
	if len(lines) != len(expected) {
		t.Fatalf("terse report = %v, expected %v", lines, expected)
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Errorf("line %d = %q, expected %q", i, lines[i], expected[i])
		}
	}
}

func TestFormatReportWarning(t *testing.T) {
	r := dose.Report{BurnPercent: 100, OverThreshold: true}

	lines := FormatReport(r, false)
	if lines[len(lines)-1] != terseWarning {
		t.Errorf("terse warning missing: %v", lines)
	}

	lines = FormatReport(r, true)
	if lines[len(lines)-1] != verboseWarning {
		t.Errorf("verbose warning missing: %v", lines)
	}
}

func TestFormatReportInfinity(t *testing.T) {
	r := dose.Report{TimeToBurnMin: math.Inf(1), SmoothedToBurnMin: math.Inf(1)}
	lines := FormatReport(r, false)
	if lines[2] != "t:inf" {
		t.Errorf("infinite time-to-burn rendered as %q, expected t:inf", lines[2])
	}
}

package browser

import (
	"context"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher/flags"
)

func TestNewLauncher_Headless(t *testing.T) {
	l := newLauncher(Config{Headless: true})
	if !l.Has(flags.Headless) {
		t.Fatal("headless config should set the headless flag")
	}
}

func TestNewLauncher_Visible(t *testing.T) {
	l := newLauncher(Config{Headless: false})
	if l.Has(flags.Headless) {
		t.Fatal("visible config must not set the headless flag")
	}
	if v := l.Get("disable-blink-features"); v != "AutomationControlled" {
		t.Fatalf("anti-detection flag = %q", v)
	}
}

func TestConfigDefaults(t *testing.T) {
	m := NewManager(Config{})
	if m.cfg.StepTimeout != 30*time.Second {
		t.Errorf("StepTimeout = %v", m.cfg.StepTimeout)
	}
	if m.cfg.Settle != 2*time.Second {
		t.Errorf("Settle = %v", m.cfg.Settle)
	}
	if m.cfg.Logger == nil {
		t.Error("Logger should default to slog.Default()")
	}

	if m := NewManager(Config{Settle: -1}); m.cfg.Settle != 0 {
		t.Errorf("negative Settle should disable the pause, got %v", m.cfg.Settle)
	}
}

func TestCallsBeforeStart(t *testing.T) {
	m := NewManager(Config{Settle: -1})
	ctx := context.Background()
	if err := m.Navigate(ctx, "https://example.org"); err == nil {
		t.Error("Navigate before Start should fail")
	}
	if err := m.SelectOption(ctx, "#city", "Ankara"); err == nil {
		t.Error("SelectOption before Start should fail")
	}
	if _, err := m.ReadState(ctx); err == nil {
		t.Error("ReadState before Start should fail")
	}
}

func TestStartAfterClose(t *testing.T) {
	m := NewManager(Config{})
	if err := m.Close(); err != nil {
		t.Fatalf("Close on idle manager: %v", err)
	}
	if err := m.Start(context.Background()); err == nil {
		t.Fatal("Start after Close should fail")
	}
}

func TestShouldBlock(t *testing.T) {
	set := map[string]bool{"images": true, "fonts": true}
	tests := []struct {
		typ  string
		want bool
	}{
		{"Image", true},
		{"Font", true},
		{"Stylesheet", false},
		{"Document", false},
		{"XHR", false},
	}
	for _, tt := range tests {
		if got := shouldBlock(set, tt.typ); got != tt.want {
			t.Errorf("shouldBlock(%q) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestOptionIndex(t *testing.T) {
	choices := []string{"Seçiniz", "Ankara Merkez", "Ankara", "Turistik Vize (Grup)", "Turistik Vize"}
	tests := []struct {
		text string
		want int
	}{
		{"Ankara", 2},
		{" Ankara ", 2},
		{"Ankara Merkez", 1},
		{"Turistik Vize", 4},
		{"ankara", -1},
		{"Ank", -1},
		{"İzmir", -1},
	}
	for _, tt := range tests {
		if got := optionIndex(choices, tt.text); got != tt.want {
			t.Errorf("optionIndex(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

package cmd

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/sstrack/sstrack/pkg/notify"
	"github.com/sstrack/sstrack/pkg/player"
	"github.com/sstrack/sstrack/pkg/polling"
)

func TestNewRenderer_Highlights(t *testing.T) {
	viper.Reset()
	setDefaults()
	viper.Set("notify.color", 42)
	viper.Set("notify.highlights", map[string]interface{}{"Someone": "123", "Broken": "red"})

	r := newRenderer()
	if r.Color != 42 {
		t.Fatalf("expected color 42, got %d", r.Color)
	}
	if r.Highlights["someone"] != 123 && r.Highlights["Someone"] != 123 {
		t.Fatalf("highlight not parsed: %#v", r.Highlights)
	}
	if _, ok := r.Highlights["Broken"]; ok {
		t.Fatalf("unparseable color should be skipped")
	}
}

func TestNewNotifier_FallsBackToConsole(t *testing.T) {
	viper.Reset()
	setDefaults()

	if _, ok := newNotifier(nil, false).(*notify.Console); !ok {
		t.Fatalf("expected console sink without a webhook")
	}

	viper.Set("webhook_url", "https://discord.com/api/webhooks/1/x")
	if _, ok := newNotifier(nil, false).(*notify.DiscordWebhook); !ok {
		t.Fatalf("expected webhook sink")
	}
	if m, ok := newNotifier(nil, true).(notify.Multi); !ok || len(m) != 2 {
		t.Fatalf("expected webhook plus console")
	}
}

func TestChangedSummary(t *testing.T) {
	if got := changedSummary(&polling.Result{IsNew: true}); got != "new" {
		t.Fatalf("got %q", got)
	}
	if got := changedSummary(&polling.Result{}); got != "-" {
		t.Fatalf("got %q", got)
	}
	prev := player.Snapshot{Rank: 10, PP: 1}
	cur := player.Snapshot{Rank: 9, PP: 2}
	if got := changedSummary(&polling.Result{Delta: player.ComputeDelta(prev, cur)}); got != "pp,rank" {
		t.Fatalf("got %q", got)
	}
}

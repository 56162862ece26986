package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/sentry/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatal(err)
	}
	if om != nil {
		t.Fatal("expected nil manager for empty dir")
	}
	// All methods accept a nil receiver.
	if err := om.WriteEvents([]Event{{}}); err != nil {
		t.Error(err)
	}
	if err := om.WritePerf(PerfStats{}, 1); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	first := []Event{NewEvent(3, 7, EventAlertRaised, "chase", 0.06)}
	second := []Event{
		NewEvent(9, 7, EventFire, "fire", 0.18),
		NewEvent(9, 8, EventTargetLost, "idle", 0.18),
	}
	if err := om.WriteEvents(first); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteEvents(second); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteAgentSamples([]AgentSample{{Tick: 3, AgentID: 7, Archetype: "chaser", TargetDist: -1}}); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, "events.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var rows []Event
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		t.Fatalf("reading events.csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3 (header written once)", len(rows))
	}
	if rows[1].Type != "fire" || rows[2].AgentID != 8 {
		t.Errorf("rows = %+v", rows)
	}

	data, err := os.ReadFile(filepath.Join(dir, "agents.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "tick,agent_id,archetype,") {
		t.Errorf("agents.csv header = %q", strings.SplitN(string(data), "\n", 2)[0])
	}
}

func TestOutputManagerWritesConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer om.Close()

	if err := om.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
}

func TestCountersRecord(t *testing.T) {
	var c Counters
	for _, e := range []EventType{EventAlertRaised, EventFire, EventFire, EventTargetAcquired, EventTargetLost, EventAlertDecayed} {
		c.Record(e)
	}
	want := Counters{AlertsRaised: 1, AlertsDecayed: 1, Shots: 2, Acquired: 1, Lost: 1}
	if c != want {
		t.Errorf("Counters = %+v, want %+v", c, want)
	}
}

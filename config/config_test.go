package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Perception.AlertDecay != 5 {
		t.Errorf("AlertDecay = %v, want 5", cfg.Perception.AlertDecay)
	}
	if cfg.Physics.DT <= 0 {
		t.Errorf("DT = %v, want positive", cfg.Physics.DT)
	}
	if cfg.Derived.StatsEvery != 500 {
		t.Errorf("StatsEvery = %d, want 500", cfg.Derived.StatsEvery)
	}

	for _, name := range []string{"chaser", "skittish", "turret", "patroller", "boss"} {
		if _, ok := cfg.Archetype(name); !ok {
			t.Errorf("missing archetype %q", name)
		}
	}
	for _, s := range cfg.Scenario.Agents {
		if _, ok := cfg.Archetype(s.Archetype); !ok {
			t.Errorf("scenario spawns unknown archetype %q", s.Archetype)
		}
	}
}

func TestArchetypeInheritsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	chaser, _ := cfg.Archetype("chaser")
	if chaser.MaxVelocity != cfg.Steering.MaxVelocity {
		t.Errorf("chaser MaxVelocity = %v, want section default %v", chaser.MaxVelocity, cfg.Steering.MaxVelocity)
	}
	if chaser.SenseRadius != cfg.Perception.SenseRadius {
		t.Errorf("chaser SenseRadius = %v, want %v", chaser.SenseRadius, cfg.Perception.SenseRadius)
	}

	boss, _ := cfg.Archetype("boss")
	if boss.MaxForce != 16 {
		t.Errorf("boss MaxForce = %v, want 16", boss.MaxForce)
	}
	if boss.MaxRepelForce != cfg.Steering.MaxRepelForce {
		t.Errorf("boss MaxRepelForce = %v, want %v", boss.MaxRepelForce, cfg.Steering.MaxRepelForce)
	}
}

func TestArchetypeViewAngle(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	patroller, _ := cfg.Archetype("patroller")
	if got, want := patroller.ViewAngleRad(), 2*math.Pi/3; math.Abs(got-want) > 1e-12 {
		t.Errorf("patroller view = %v rad, want %v", got, want)
	}
	turret, _ := cfg.Archetype("turret")
	if turret.ViewAngleRad() != 0 {
		t.Errorf("turret view = %v, want 0 (all round)", turret.ViewAngleRad())
	}
}

func TestLoadDefaultBehaviorTimings(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Boss.MeleeRange != 7 || cfg.Boss.RangedRange != 12 || cfg.Boss.BurstCount != 3 {
		t.Errorf("boss = %+v", cfg.Boss)
	}
	if cfg.Skittish.Flee != 3 || cfg.Skittish.Rest != 2 {
		t.Errorf("skittish = %+v, want 3s flee 2s rest", cfg.Skittish)
	}
	if cfg.Patroller.ChaseTimeout != 3 {
		t.Errorf("ChaseTimeout = %v, want 3", cfg.Patroller.ChaseTimeout)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	path := writeConfig(t, "perception:\n  alert_decay: 2.5\ngrid:\n  width: 8\n  height: 8\n  goal: [7, 7]\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Perception.AlertDecay != 2.5 {
		t.Errorf("AlertDecay = %v, want 2.5", cfg.Perception.AlertDecay)
	}
	if cfg.Perception.SenseRadius != 15 {
		t.Errorf("SenseRadius = %v, want default 15", cfg.Perception.SenseRadius)
	}
	if cfg.Grid.Width != 8 || cfg.Grid.Goal != [2]int{7, 7} {
		t.Errorf("grid = %dx%d goal %v", cfg.Grid.Width, cfg.Grid.Height, cfg.Grid.Goal)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero dt", "physics:\n  dt: 0\n"},
		{"goal outside grid", "grid:\n  goal: [20, 3]\n"},
		{"start outside grid", "grid:\n  start: [-1, 0]\n"},
		{"bad probability", "grid:\n  obstacle_probability: 1.5\n"},
		{"negative steering", "steering:\n  max_force: -1\n"},
		{"negative count", "scenario:\n  agents:\n    - archetype: chaser\n      count: -2\n"},
		{"duplicate archetype", "archetypes:\n  - name: a\n  - name: a\n"},
		{"view angle too wide", "archetypes:\n  - name: a\n    view_angle: 400\n"},
		{"boss band inverted", "boss:\n  melee_range: 15\n"},
		{"negative waypoints", "scenario:\n  waypoints: -1\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Turret.Cooldown = 3.25

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Turret.Cooldown != 3.25 {
		t.Errorf("Cooldown = %v, want 3.25", back.Turret.Cooldown)
	}
}

package systems

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func engaged(now, dist float64) *BehaviorContext {
	return &BehaviorContext{
		Now:       now,
		Alert:     true,
		HasTarget: true,
		TargetPos: r3.Vec{X: dist},
	}
}

func TestBossModeBand(t *testing.T) {
	boss := NewBoss(DefaultBossTimings())

	// Between the melee and ranged thresholds the mode holds.
	steps := []struct {
		dist float64
		want BossMode
	}{
		{1, BossMelee},
		{7, BossMelee},
		{10, BossMelee},
		{12, BossMelee},
		{12.01, BossRanged},
		{12, BossRanged},
		{7.01, BossRanged},
		{7, BossMelee},
		{9, BossMelee},
	}
	for i, s := range steps {
		boss.Decide(engaged(float64(i)*0.1, s.dist))
		if boss.Mode() != s.want {
			t.Errorf("step %d dist %v: mode = %v, want %v", i, s.dist, boss.Mode(), s.want)
		}
	}
}

func TestBossMeleeRotation(t *testing.T) {
	boss := NewBoss(DefaultBossTimings())

	steps := []struct {
		now   float64
		state BossState
		fire  bool
		move  bool
	}{
		{0.0, BossDirectHit, true, false},
		{0.5, BossDirectHit, false, false},
		{1.0, BossGap, false, true},
		{2.9, BossGap, false, true},
		{3.0, BossCharge, true, true},
		{3.5, BossGap, false, true},
		{5.5, BossAreaSmash, true, false},
		{7.0, BossGap, false, true},
		{9.0, BossDirectHit, true, false},
	}
	for _, s := range steps {
		d := boss.Decide(engaged(s.now, 1))
		if boss.State() != s.state {
			t.Fatalf("t=%v: state = %v, want %v", s.now, boss.State(), s.state)
		}
		if d.Phase != s.state.String() {
			t.Errorf("t=%v: phase = %q, want %q", s.now, d.Phase, s.state)
		}
		if d.Fire != s.fire || d.Move != s.move {
			t.Errorf("t=%v: fire/move = %v/%v, want %v/%v", s.now, d.Fire, d.Move, s.fire, s.move)
		}
		if d.Move && d.Action != Approach {
			t.Errorf("t=%v: action = %v, want approach", s.now, d.Action)
		}
	}
}

func TestBossRangedSpecialThenBursts(t *testing.T) {
	boss := NewBoss(DefaultBossTimings())

	steps := []struct {
		now   float64
		state BossState
		fire  bool
	}{
		{0.0, BossSpecial, true},
		{1.0, BossSpecial, false},
		{2.0, BossBurst, true},
		{2.1, BossBurst, false},
		{2.2, BossBurst, true},
		{2.4, BossBurst, true},
		{2.6, BossRecover, false},
		{3.0, BossRecover, false},
		{3.6, BossBurst, true},
		{3.8, BossBurst, true},
		{4.0, BossBurst, true},
		{4.2, BossRecover, false},
		{5.2, BossSpecial, true},
	}
	for _, s := range steps {
		d := boss.Decide(engaged(s.now, 15))
		if boss.State() != s.state {
			t.Fatalf("t=%v: state = %v, want %v", s.now, boss.State(), s.state)
		}
		if d.Fire != s.fire {
			t.Errorf("t=%v: Fire = %v, want %v", s.now, d.Fire, s.fire)
		}
		if d.Move {
			t.Errorf("t=%v: ranged boss moved", s.now)
		}
	}
}

func TestBossModeSwitchAbortsAttack(t *testing.T) {
	boss := NewBoss(DefaultBossTimings())
	boss.Decide(engaged(0, 1))
	if boss.State() != BossDirectHit {
		t.Fatalf("state = %v, want direct_hit", boss.State())
	}

	d := boss.Decide(engaged(0.5, 13))
	if boss.Mode() != BossRanged || boss.State() != BossSpecial || !d.Fire {
		t.Errorf("after retreat: mode %v state %v fire %v, want ranged special firing",
			boss.Mode(), boss.State(), d.Fire)
	}
}

func TestBossIgnoresTargetWhenCalm(t *testing.T) {
	boss := NewBoss(DefaultBossTimings())
	d := boss.Decide(&BehaviorContext{HasTarget: true, TargetPos: r3.Vec{X: 1}})
	if d.Move || d.Fire || boss.State() != BossIdle {
		t.Errorf("calm boss engaged: %+v state %v", d, boss.State())
	}
}

func TestBossDisengagesWhenTargetLost(t *testing.T) {
	boss := NewBoss(DefaultBossTimings())
	boss.Decide(engaged(0, 1))
	boss.Decide(&BehaviorContext{Now: 0.5, Alert: true})
	if boss.State() != BossIdle {
		t.Fatalf("state = %v, want idle", boss.State())
	}

	// Re-engaging continues the rotation.
	if d := boss.Decide(engaged(0.6, 1)); boss.State() != BossCharge || !d.Fire {
		t.Errorf("state = %v fire %v, want charge firing", boss.State(), d.Fire)
	}
}

func TestNewBossFillsZeroTimings(t *testing.T) {
	boss := NewBoss(BossTimings{Charge: 4})
	if boss.timings.Charge != 4 {
		t.Errorf("Charge = %v, want 4", boss.timings.Charge)
	}
	def := DefaultBossTimings()
	if boss.timings.MeleeRange != def.MeleeRange || boss.timings.BurstCount != def.BurstCount {
		t.Errorf("timings = %+v, want defaults for unset fields", boss.timings)
	}
}

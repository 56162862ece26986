package systems

// BossMode is the boss's attack style.
type BossMode uint8

const (
	BossMelee BossMode = iota
	BossRanged
)

func (m BossMode) String() string {
	if m == BossRanged {
		return "ranged"
	}
	return "melee"
}

// BossState is the phase of the boss within its current mode.
type BossState uint8

const (
	BossIdle BossState = iota // not engaged
	BossReady                 // next attack starts this tick
	BossDirectHit
	BossCharge
	BossAreaSmash
	BossGap // melee pause between attacks
	BossSpecial
	BossBurst
	BossRecover // ranged pause after a burst
)

func (s BossState) String() string {
	switch s {
	case BossReady:
		return "ready"
	case BossDirectHit:
		return "direct_hit"
	case BossCharge:
		return "charge"
	case BossAreaSmash:
		return "area_smash"
	case BossGap:
		return "gap"
	case BossSpecial:
		return "special"
	case BossBurst:
		return "burst"
	case BossRecover:
		return "recover"
	}
	return "idle"
}

// BossTimings holds the boss ranges (world units) and durations (seconds).
type BossTimings struct {
	MeleeRange  float64 // switch to melee at or inside this distance
	RangedRange float64 // switch to ranged beyond this distance

	DirectHit float64
	Charge    float64
	AreaSmash float64
	AttackGap float64 // pause after each melee attack

	BurstCount      int
	BurstRate       float64 // seconds between burst shots
	BurstRecover    float64 // pause after the last burst shot
	SpecialCooldown float64
	SpecialRecover  float64
}

// DefaultBossTimings returns the stock boss.
func DefaultBossTimings() BossTimings {
	return BossTimings{
		MeleeRange:      7,
		RangedRange:     12,
		DirectHit:       1,
		Charge:          0.5,
		AreaSmash:       1.5,
		AttackGap:       2,
		BurstCount:      3,
		BurstRate:       0.2,
		BurstRecover:    1,
		SpecialCooldown: 5,
		SpecialRecover:  2,
	}
}

// meleeRotation is the order of melee attacks.
var meleeRotation = [...]BossState{BossDirectHit, BossCharge, BossAreaSmash}

// Boss fights in melee up close and at range otherwise. Distances between
// MeleeRange and RangedRange keep the current mode. Melee rotates direct
// hit, charge and area smash with a pause after each; ranged fires a
// special when its cooldown allows and bursts otherwise. Changing mode
// abandons the attack in progress. The boss only engages while alert.
type Boss struct {
	timings  BossTimings
	mode     BossMode
	state    BossState
	deadline float64

	nextMelee   int
	shotsLeft   int
	specialUsed bool
	lastSpecial float64
}

// NewBoss creates an idle boss in melee mode. Zero timings take the
// defaults field by field.
func NewBoss(t BossTimings) *Boss {
	def := DefaultBossTimings()
	fill := func(v *float64, d float64) {
		if *v <= 0 {
			*v = d
		}
	}
	fill(&t.MeleeRange, def.MeleeRange)
	fill(&t.RangedRange, def.RangedRange)
	fill(&t.DirectHit, def.DirectHit)
	fill(&t.Charge, def.Charge)
	fill(&t.AreaSmash, def.AreaSmash)
	fill(&t.AttackGap, def.AttackGap)
	fill(&t.BurstRate, def.BurstRate)
	fill(&t.BurstRecover, def.BurstRecover)
	fill(&t.SpecialCooldown, def.SpecialCooldown)
	fill(&t.SpecialRecover, def.SpecialRecover)
	if t.BurstCount <= 0 {
		t.BurstCount = def.BurstCount
	}
	return &Boss{timings: t}
}

func (b *Boss) Name() string { return "boss" }

// Mode returns the current attack style.
func (b *Boss) Mode() BossMode { return b.mode }

// State returns the current phase.
func (b *Boss) State() BossState { return b.state }

func (b *Boss) enter(s BossState, now, length float64) {
	b.state = s
	b.deadline = now + length
}

func (b *Boss) selectMode(dist float64) {
	switch {
	case dist <= b.timings.MeleeRange && b.mode != BossMelee:
		b.mode = BossMelee
	case dist > b.timings.RangedRange && b.mode != BossRanged:
		b.mode = BossRanged
	default:
		return
	}
	b.state = BossReady
	b.shotsLeft = 0
}

// startAttack begins the next attack of the current mode and reports
// whether it fires on this tick.
func (b *Boss) startAttack(now float64) bool {
	if b.mode == BossMelee {
		s := meleeRotation[b.nextMelee]
		b.nextMelee = (b.nextMelee + 1) % len(meleeRotation)
		length := b.timings.DirectHit
		switch s {
		case BossCharge:
			length = b.timings.Charge
		case BossAreaSmash:
			length = b.timings.AreaSmash
		}
		b.enter(s, now, length)
		return true
	}

	if !b.specialUsed || deadlineReached(now, b.lastSpecial+b.timings.SpecialCooldown) {
		b.specialUsed = true
		b.lastSpecial = now
		b.enter(BossSpecial, now, b.timings.SpecialRecover)
		return true
	}
	b.enter(BossBurst, now, b.timings.BurstRate)
	b.shotsLeft = b.timings.BurstCount - 1
	return true
}

// advance moves the state machine to now and reports whether the boss
// fires on this tick.
func (b *Boss) advance(now float64) bool {
	switch b.state {
	case BossReady:
		return b.startAttack(now)
	case BossDirectHit, BossCharge, BossAreaSmash:
		if deadlineReached(now, b.deadline) {
			b.state = BossGap
			b.deadline += b.timings.AttackGap
		}
	case BossGap, BossSpecial, BossRecover:
		if deadlineReached(now, b.deadline) {
			return b.startAttack(now)
		}
	case BossBurst:
		if !deadlineReached(now, b.deadline) {
			return false
		}
		if b.shotsLeft == 0 {
			b.state = BossRecover
			b.deadline += b.timings.BurstRecover
			return false
		}
		b.shotsLeft--
		b.deadline += b.timings.BurstRate
		return true
	}
	return false
}

func (b *Boss) Decide(ctx *BehaviorContext) Decision {
	if !ctx.HasTarget || !ctx.Alert {
		b.state = BossIdle
		return Decision{Phase: BossIdle.String()}
	}

	b.selectMode(Distance(ctx.Self, ctx.TargetPos))
	if b.state == BossIdle {
		b.state = BossReady
	}
	fire := b.advance(ctx.Now)

	var d Decision
	if b.mode == BossMelee {
		switch b.state {
		case BossGap, BossCharge:
			d = approach(ctx)
		}
	}
	d.Fire = fire
	d.Goal = ctx.TargetPos
	d.Phase = b.state.String()
	return d
}

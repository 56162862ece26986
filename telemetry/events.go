package telemetry

// EventType identifies notable per-agent events.
type EventType uint8

const (
	EventAlertRaised EventType = iota
	EventAlertDecayed
	EventFire
	EventTargetAcquired
	EventTargetLost
)

func (t EventType) String() string {
	switch t {
	case EventAlertRaised:
		return "alert_raised"
	case EventAlertDecayed:
		return "alert_decayed"
	case EventFire:
		return "fire"
	case EventTargetAcquired:
		return "target_acquired"
	case EventTargetLost:
		return "target_lost"
	}
	return "unknown"
}

// Event is a single per-agent event, one row of events.csv.
type Event struct {
	Tick    int32   `csv:"tick"`
	AgentID uint32  `csv:"agent_id"`
	Type    string  `csv:"type"`
	Phase   string  `csv:"phase"`
	Time    float64 `csv:"time"`
}

// NewEvent creates an event row.
func NewEvent(tick int32, agentID uint32, t EventType, phase string, now float64) Event {
	return Event{Tick: tick, AgentID: agentID, Type: t.String(), Phase: phase, Time: now}
}

// AgentSample is one agent's state at a sampled tick, one row of agents.csv.
type AgentSample struct {
	Tick       int32   `csv:"tick"`
	AgentID    uint32  `csv:"agent_id"`
	Archetype  string  `csv:"archetype"`
	X          float64 `csv:"x"`
	Y          float64 `csv:"y"`
	Z          float64 `csv:"z"`
	Speed      float64 `csv:"speed"`
	Alert      bool    `csv:"alert"`
	HasTarget  bool    `csv:"has_target"`
	TargetDist float64 `csv:"target_dist"` // -1 without a target
	Obstacles  int     `csv:"obstacles"`
	Phase      string  `csv:"phase"`
}

// Counters accumulates event totals over a run.
type Counters struct {
	AlertsRaised  int
	AlertsDecayed int
	Shots         int
	Acquired      int
	Lost          int
}

// Record bumps the counter for t.
func (c *Counters) Record(t EventType) {
	switch t {
	case EventAlertRaised:
		c.AlertsRaised++
	case EventAlertDecayed:
		c.AlertsDecayed++
	case EventFire:
		c.Shots++
	case EventTargetAcquired:
		c.Acquired++
	case EventTargetLost:
		c.Lost++
	}
}

package stats

import (
	"sync"
	"time"

	"github.com/frstrtr/mongotron/internal/model"
)

// Accumulator gathers per-session counters. Safe for concurrent use.
type Accumulator struct {
	mu sync.Mutex

	started        time.Time
	events         uint64
	suppressed     uint64
	byContractType map[string]uint64
	firstBlock     uint64
	lastBlock      uint64
}

// Summary is a point-in-time snapshot of an accumulator.
type Summary struct {
	Started        time.Time         `json:"started"`
	Duration       time.Duration     `json:"duration"`
	Events         uint64            `json:"events"`
	Suppressed     uint64            `json:"suppressed"`
	EventsPerSec   float64           `json:"events_per_sec"`
	ByContractType map[string]uint64 `json:"by_contract_type,omitempty"`
	FirstBlock     uint64            `json:"first_block,omitempty"`
	LastBlock      uint64            `json:"last_block,omitempty"`
}

func NewAccumulator(started time.Time) *Accumulator {
	return &Accumulator{
		started:        started,
		byContractType: make(map[string]uint64),
	}
}

// Add records one decoded event.
func (a *Accumulator) Add(ev *model.DecodedEvent) {
	if ev == nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.events++
	if ev.Suppressed {
		a.suppressed++
	}
	if ev.ContractType != "" {
		a.byContractType[ev.ContractType]++
	}
	if ev.BlockNumber > 0 {
		if a.firstBlock == 0 || ev.BlockNumber < a.firstBlock {
			a.firstBlock = ev.BlockNumber
		}
		if ev.BlockNumber > a.lastBlock {
			a.lastBlock = ev.BlockNumber
		}
	}
}

// Events returns the number of events recorded so far.
func (a *Accumulator) Events() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.events
}

// Summary snapshots the counters as of now.
func (a *Accumulator) Summary(now time.Time) Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	duration := now.Sub(a.started)
	byType := make(map[string]uint64, len(a.byContractType))
	for tag, count := range a.byContractType {
		byType[tag] = count
	}

	rate := 0.0
	if seconds := duration.Seconds(); seconds > 0 {
		rate = float64(a.events) / seconds
	}

	return Summary{
		Started:        a.started,
		Duration:       duration,
		Events:         a.events,
		Suppressed:     a.suppressed,
		EventsPerSec:   rate,
		ByContractType: byType,
		FirstBlock:     a.firstBlock,
		LastBlock:      a.lastBlock,
	}
}

// Package worldstate tracks faction influence and the world events it
// triggers. The narrative prompt builder reads the active events to color
// generated scenes.
package worldstate

import (
	"sync"

	"go.uber.org/zap"

	"github.com/dungeonmaister/gameserver/internal/game/content"
)

// defaultInfluence is the starting influence of every faction.
const defaultInfluence = 10

// Tracker holds faction influence values and the set of triggered world
// events. Safe for concurrent use.
type Tracker struct {
	mu         sync.RWMutex
	influences map[string]int
	active     map[string]content.WorldEvent
	events     []content.WorldEvent
	logger     *zap.Logger
}

// NewTracker seeds every faction at the default influence.
//
// Precondition: logger must be non-nil.
func NewTracker(factions []content.Faction, events []content.WorldEvent, logger *zap.Logger) *Tracker {
	t := &Tracker{
		influences: make(map[string]int, len(factions)),
		active:     make(map[string]content.WorldEvent),
		events:     append([]content.WorldEvent(nil), events...),
		logger:     logger,
	}
	for _, f := range factions {
		t.influences[f.ID] = defaultInfluence
	}
	return t
}

// Influence returns a faction's current influence. Unknown factions read as
// the default so content referencing factions outside the loaded set does
// not skew triggers.
func (t *Tracker) Influence(factionID string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if v, ok := t.influences[factionID]; ok {
		return v
	}
	return defaultInfluence
}

// UpdateInfluence adjusts a faction's influence by delta and returns any
// world events newly triggered by the change. An event triggers when its
// faction's influence reaches the trigger threshold; once active it stays
// active and never re-triggers.
func (t *Tracker) UpdateInfluence(factionID string, delta int) []content.WorldEvent {
	t.mu.Lock()
	defer t.mu.Unlock()

	current, ok := t.influences[factionID]
	if !ok {
		current = defaultInfluence
	}
	current += delta
	t.influences[factionID] = current

	var triggered []content.WorldEvent
	for _, ev := range t.events {
		if ev.Trigger.FactionID != factionID {
			continue
		}
		if _, already := t.active[ev.ID]; already {
			continue
		}
		if current >= ev.Trigger.Threshold {
			t.active[ev.ID] = ev
			triggered = append(triggered, ev)
			t.logger.Info("world event triggered",
				zap.String("event", ev.ID),
				zap.String("faction", factionID),
				zap.Int("influence", current),
			)
		}
	}
	return triggered
}

// ActiveEvents returns the triggered events in content order.
func (t *Tracker) ActiveEvents() []content.WorldEvent {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]content.WorldEvent, 0, len(t.active))
	for _, ev := range t.events {
		if _, ok := t.active[ev.ID]; ok {
			out = append(out, ev)
		}
	}
	return out
}

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dungeonmaister/gameserver/internal/game/character"
	"github.com/dungeonmaister/gameserver/internal/game/combat"
	"github.com/dungeonmaister/gameserver/internal/game/rules"
	"github.com/dungeonmaister/gameserver/internal/game/session"
	"github.com/dungeonmaister/gameserver/internal/game/state"
	"github.com/dungeonmaister/gameserver/internal/narrative"
	"github.com/dungeonmaister/gameserver/internal/observability"
	"github.com/dungeonmaister/gameserver/internal/scripting"
	"github.com/dungeonmaister/gameserver/internal/storage/postgres"
)

// requireState fetches the session's game state or fails with a rule
// violation when play has not started.
func requireState(s *session.Session) (*state.GameState, error) {
	if s.State == nil {
		return nil, ruleErr("no game in progress for this session")
	}
	return s.State, nil
}

type moveRequest struct {
	SessionID string `json:"sessionId"`
	EntityID  string `json:"entityId"`
	Direction string `json:"direction"`
}

func (g *Gateway) handleMove(payload json.RawMessage) ([]Envelope, error) {
	var req moveRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	dir, err := rules.ParseDirection(req.Direction)
	if err != nil {
		return nil, validationErr("unknown direction %q", req.Direction)
	}

	var out Envelope
	err = g.sessions.Do(req.SessionID, func(s *session.Session) error {
		gs, err := requireState(s)
		if err != nil {
			return err
		}
		next := gs.Clone()
		entity := next.Entity(req.EntityID)
		if entity == nil {
			return validationErr("unknown entity %q", req.EntityID)
		}
		rules.MoveEntity(entity, dir, next.Map)
		s.State = next
		out = stateEnvelope(next.Clone())
		return nil
	})
	if err != nil {
		return nil, wrapSessionErr(err)
	}
	return []Envelope{out}, nil
}

type commandRequest struct {
	SessionID  string `json:"sessionId"`
	Text       string `json:"text"`
	SkillID    string `json:"skillId,omitempty"`
	DC         int    `json:"dc,omitempty"`
	LocationID string `json:"locationId,omitempty"`
	// FactionID and InfluenceDelta record the command's effect on the world:
	// the named faction's influence shifts, possibly triggering world events.
	FactionID      string `json:"factionId,omitempty"`
	InfluenceDelta int    `json:"influenceDelta,omitempty"`
}

func (g *Gateway) handleCommand(ctx context.Context, payload json.RawMessage) ([]Envelope, error) {
	var req commandRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	if req.Text == "" {
		return nil, validationErr("command text must not be empty")
	}
	if req.FactionID != "" && !g.knownFaction(req.FactionID) {
		return nil, validationErr("unknown faction %q", req.FactionID)
	}

	var responses []Envelope
	var snapshot *state.GameState
	err := g.sessions.Do(req.SessionID, func(s *session.Session) error {
		gs, err := requireState(s)
		if err != nil {
			return err
		}
		if req.SkillID != "" {
			actor := gs.Character(gs.SelectedEntity)
			if actor == nil {
				return ruleErr("no selected entity to attempt the check")
			}
			result := rules.SkillCheck(actor, req.SkillID, req.DC, g.src)
			responses = append(responses, mustEnvelope("check_result", result))
		}
		snapshot = gs.Clone()
		return nil
	})
	if err != nil {
		return nil, wrapSessionErr(err)
	}

	// Influence shifts before the prompt is built so a world event the
	// command just triggered colors its own narration.
	if req.FactionID != "" {
		for _, ev := range g.world.UpdateInfluence(req.FactionID, req.InfluenceDelta) {
			responses = append(responses,
				messageEnvelope("world_event", ev.Name+": "+ev.Description, "system"))
		}
	}

	// Narration happens outside the session lock: the model call can take
	// seconds and works from the snapshot alone.
	nc := narrative.Context{
		State:        snapshot,
		Command:      req.Text,
		Factions:     g.store.Factions(),
		Beliefs:      g.store.Beliefs(),
		History:      g.store.History(),
		ActiveEvents: g.world.ActiveEvents(),
	}
	if req.LocationID != "" {
		if loc, ok := g.store.Location(req.LocationID); ok {
			nc.Location = loc
		}
	}
	prose := g.generator.Narrate(ctx, nc)
	responses = append(responses, messageEnvelope("narration", prose, "narrator"))
	return responses, nil
}

// knownFaction reports whether the faction id exists in loaded content.
func (g *Gateway) knownFaction(id string) bool {
	for _, f := range g.store.Factions() {
		if f.ID == id {
			return true
		}
	}
	return false
}

type combatRequest struct {
	SessionID string   `json:"sessionId"`
	EntityIDs []string `json:"entityIds,omitempty"`
}

func (g *Gateway) handleStartCombat(payload json.RawMessage) ([]Envelope, error) {
	var req combatRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	var out Envelope
	err := g.sessions.Do(req.SessionID, func(s *session.Session) error {
		gs, err := requireState(s)
		if err != nil {
			return err
		}
		if gs.Combat != nil && gs.Combat.Active {
			return ruleErr("combat is already running")
		}
		next := gs.Clone()

		ids := req.EntityIDs
		if len(ids) == 0 {
			for _, e := range next.Entities {
				ids = append(ids, e.ID)
			}
		}
		var cs combat.State
		if err := cs.Start(ids, next.Characters); err != nil {
			return validationErr("%v", err)
		}
		next.Combat = &cs
		s.State = next
		out = stateEnvelope(next.Clone())
		return nil
	})
	if err != nil {
		return nil, wrapSessionErr(err)
	}
	return []Envelope{out}, nil
}

type attackRequest struct {
	SessionID  string `json:"sessionId"`
	AttackerID string `json:"attackerId"`
	DefenderID string `json:"defenderId"`
}

func (g *Gateway) handleAttack(payload json.RawMessage) ([]Envelope, error) {
	var req attackRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	var responses []Envelope
	err := g.sessions.Do(req.SessionID, func(s *session.Session) error {
		gs, err := requireState(s)
		if err != nil {
			return err
		}
		if gs.Combat == nil || !gs.Combat.Active {
			return ruleErr("no combat is running")
		}
		current, err := gs.Combat.Current()
		if err != nil {
			return fmt.Errorf("reading current turn: %w", err)
		}
		if current != req.AttackerID {
			return ruleErr("it is not %q's turn", req.AttackerID)
		}

		next, result, err := gs.ApplyAttack(req.AttackerID, req.DefenderID, g.src)
		if err != nil {
			return validationErr("%v", err)
		}
		s.State = next
		responses = append(responses,
			messageEnvelope("combat", result.Narrative, "system"),
			stateEnvelope(next.Clone()),
		)
		return nil
	})
	if err != nil {
		return nil, wrapSessionErr(err)
	}
	return responses, nil
}

func (g *Gateway) handleNextTurn(payload json.RawMessage) ([]Envelope, error) {
	var req combatRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	var out Envelope
	err := g.sessions.Do(req.SessionID, func(s *session.Session) error {
		gs, err := requireState(s)
		if err != nil {
			return err
		}
		next := gs.Clone()
		if next.Combat == nil || !next.Combat.Active {
			return ruleErr("no combat is running")
		}
		if err := next.Combat.NextTurn(); err != nil {
			return fmt.Errorf("advancing turn: %w", err)
		}
		s.State = next
		out = stateEnvelope(next.Clone())
		return nil
	})
	if err != nil {
		return nil, wrapSessionErr(err)
	}
	return []Envelope{out}, nil
}

func (g *Gateway) handleEndCombat(payload json.RawMessage) ([]Envelope, error) {
	var req combatRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	var out Envelope
	err := g.sessions.Do(req.SessionID, func(s *session.Session) error {
		gs, err := requireState(s)
		if err != nil {
			return err
		}
		next := gs.Clone()
		if next.Combat != nil {
			next.Combat.End()
		}
		next.Combat = nil
		s.State = next
		out = stateEnvelope(next.Clone())
		return nil
	})
	if err != nil {
		return nil, wrapSessionErr(err)
	}
	return []Envelope{out}, nil
}

type useItemRequest struct {
	SessionID string `json:"sessionId"`
	CasterID  string `json:"casterId"`
	ItemID    string `json:"itemId"`
	TargetID  string `json:"targetId"`
}

func (g *Gateway) handleUseItem(payload json.RawMessage) ([]Envelope, error) {
	var req useItemRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	item, ok := g.store.Item(req.ItemID)
	if !ok {
		return nil, validationErr("unknown item %q", req.ItemID)
	}
	if item.EffectScript == "" {
		return nil, ruleErr("item %q has no use effect", item.Name)
	}

	var responses []Envelope
	err := g.sessions.Do(req.SessionID, func(s *session.Session) error {
		gs, err := requireState(s)
		if err != nil {
			return err
		}
		next := gs.Clone()
		caster := next.Character(req.CasterID)
		if caster == nil {
			return validationErr("unknown caster %q", req.CasterID)
		}
		target := next.Character(req.TargetID)
		if target == nil {
			return validationErr("unknown target %q", req.TargetID)
		}
		if !caster.RemoveItem(req.ItemID) {
			return ruleErr("%s does not carry %q", caster.Name, item.Name)
		}

		effect, err := g.effects.RunEffect(item.EffectScript, snapshotTarget(caster), snapshotTarget(target))
		if errors.Is(err, scripting.ErrEffectNotFound) {
			return ruleErr("item %q has no working effect", item.Name)
		}
		if err != nil {
			return fmt.Errorf("running item effect: %w", err)
		}

		applyEffect(target, effect)
		s.State = next
		if effect.Narrative != "" {
			responses = append(responses, messageEnvelope("effect", effect.Narrative, "system"))
		}
		responses = append(responses, stateEnvelope(next.Clone()))
		return nil
	})
	if err != nil {
		return nil, wrapSessionErr(err)
	}
	return responses, nil
}

type useAbilityRequest struct {
	SessionID string `json:"sessionId"`
	CasterID  string `json:"casterId"`
	AbilityID string `json:"abilityId"`
	TargetID  string `json:"targetId"`
}

func (g *Gateway) handleUseAbility(payload json.RawMessage) ([]Envelope, error) {
	var req useAbilityRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	ability, ok := g.store.Ability(req.AbilityID)
	if !ok {
		return nil, validationErr("unknown ability %q", req.AbilityID)
	}
	if ability.EffectScript == "" {
		return nil, ruleErr("ability %q has no effect", ability.Name)
	}

	var responses []Envelope
	err := g.sessions.Do(req.SessionID, func(s *session.Session) error {
		gs, err := requireState(s)
		if err != nil {
			return err
		}
		next := gs.Clone()
		caster := next.Character(req.CasterID)
		if caster == nil {
			return validationErr("unknown caster %q", req.CasterID)
		}
		target := next.Character(req.TargetID)
		if target == nil {
			return validationErr("unknown target %q", req.TargetID)
		}
		if caster.EP.Current < ability.EPCost {
			return ruleErr("%s needs %d EP for %q, has %d",
				caster.Name, ability.EPCost, ability.Name, caster.EP.Current)
		}

		effect, err := g.effects.RunEffect(ability.EffectScript, snapshotTarget(caster), snapshotTarget(target))
		if errors.Is(err, scripting.ErrEffectNotFound) {
			return ruleErr("ability %q has no working effect", ability.Name)
		}
		if err != nil {
			return fmt.Errorf("running ability effect: %w", err)
		}

		caster.EP.Current -= ability.EPCost
		applyEffect(target, effect)
		s.State = next
		if effect.Narrative != "" {
			responses = append(responses, messageEnvelope("effect", effect.Narrative, "system"))
		}
		responses = append(responses, stateEnvelope(next.Clone()))
		return nil
	})
	if err != nil {
		return nil, wrapSessionErr(err)
	}
	return responses, nil
}

// snapshotTarget converts a character into the read-only view scripts get.
func snapshotTarget(c *character.Character) scripting.Target {
	return scripting.Target{
		ID:    c.ID,
		Name:  c.Name,
		HP:    c.HP.Current,
		MaxHP: c.HP.Max,
		SP:    c.SP.Current,
		MaxSP: c.SP.Max,
		EP:    c.EP.Current,
		MaxEP: c.EP.Max,
	}
}

// applyEffect adds script deltas to the target's pools. Heals cap at the
// pool maximum; damage may drive a pool negative.
func applyEffect(c *character.Character, effect scripting.Effect) {
	c.HP.Current = capAt(c.HP.Current+effect.HPDelta, c.HP.Max)
	c.SP.Current = capAt(c.SP.Current+effect.SPDelta, c.SP.Max)
	c.EP.Current = capAt(c.EP.Current+effect.EPDelta, c.EP.Max)
}

func capAt(v, max int) int {
	if v > max {
		return max
	}
	return v
}

type saveRequest struct {
	SessionID string `json:"sessionId"`
}

func (g *Gateway) handleSaveGame(ctx context.Context, payload json.RawMessage) ([]Envelope, error) {
	var req saveRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	var snapshot *state.GameState
	err := g.sessions.Do(req.SessionID, func(s *session.Session) error {
		gs, err := requireState(s)
		if err != nil {
			return err
		}
		snapshot = gs.Clone()
		return nil
	})
	if err != nil {
		return nil, wrapSessionErr(err)
	}

	// Persistence outside the session lock; the snapshot is already
	// detached from live state.
	if err := g.saves.Save(ctx, req.SessionID, snapshot); err != nil {
		return nil, fmt.Errorf("saving game: %w", err)
	}
	observability.WithSession(g.logger, req.SessionID).Info("game saved")
	return []Envelope{messageEnvelope("system", "Game saved.", "system")}, nil
}

func (g *Gateway) handleLoadGame(ctx context.Context, payload json.RawMessage) ([]Envelope, error) {
	var req saveRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	snapshot, err := g.saves.Load(ctx, req.SessionID)
	if errors.Is(err, postgres.ErrSaveNotFound) {
		return nil, ruleErr("no saved game for this session")
	}
	if err != nil {
		return nil, fmt.Errorf("loading game: %w", err)
	}

	var out Envelope
	err = g.sessions.Do(req.SessionID, func(s *session.Session) error {
		s.State = snapshot
		out = stateEnvelope(snapshot.Clone())
		return nil
	})
	if err != nil {
		return nil, wrapSessionErr(err)
	}
	observability.WithSession(g.logger, req.SessionID).Info("game loaded")
	return []Envelope{out}, nil
}

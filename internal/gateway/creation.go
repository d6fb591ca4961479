package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dungeonmaister/gameserver/internal/game/character"
	"github.com/dungeonmaister/gameserver/internal/game/content"
	"github.com/dungeonmaister/gameserver/internal/game/mapgen"
	"github.com/dungeonmaister/gameserver/internal/game/session"
	"github.com/dungeonmaister/gameserver/internal/game/state"
	"github.com/dungeonmaister/gameserver/internal/observability"
)

type startSessionRequest struct {
	SessionID string `json:"sessionId,omitempty"`
}

type sessionStartedPayload struct {
	SessionID string `json:"sessionId"`
}

func (g *Gateway) handleStartSession(payload json.RawMessage) ([]Envelope, error) {
	var req startSessionRequest
	if len(payload) > 0 {
		if err := decode(payload, &req); err != nil {
			return nil, err
		}
	}
	id := req.SessionID
	if id == "" {
		id = uuid.NewString()
	}
	if _, err := g.sessions.Create(id); err != nil {
		return nil, validationErr("session %q already exists", id)
	}
	observability.WithSession(g.logger, id).Info("session started")
	return []Envelope{mustEnvelope("session_started", sessionStartedPayload{SessionID: id})}, nil
}

type creationStartRequest struct {
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
}

type creationStatePayload struct {
	CharacterID string               `json:"characterId"`
	Step        content.Step         `json:"step"`
	Character   *character.Character `json:"character"`
}

func (g *Gateway) handleCreationStart(payload json.RawMessage) ([]Envelope, error) {
	var req creationStartRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, validationErr("name must not be empty")
	}

	var out Envelope
	err := g.sessions.Do(req.SessionID, func(s *session.Session) error {
		id := uuid.NewString()
		progress := &session.CreationProgress{
			Character: character.NewBaseline(id, req.Name),
			Step:      content.StepKingdom,
		}
		s.Creation[id] = progress
		out = mustEnvelope("cc_state", creationStatePayload{
			CharacterID: id,
			Step:        progress.Step,
			Character:   progress.Character,
		})
		return nil
	})
	if err != nil {
		return nil, wrapSessionErr(err)
	}
	return []Envelope{out}, nil
}

type creationChoicesRequest struct {
	SessionID   string `json:"sessionId"`
	CharacterID string `json:"characterId"`
}

type creationChoicesPayload struct {
	Step    content.Step     `json:"step"`
	Choices []content.Choice `json:"choices"`
}

func (g *Gateway) handleCreationChoices(payload json.RawMessage) ([]Envelope, error) {
	var req creationChoicesRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	var out Envelope
	err := g.sessions.Do(req.SessionID, func(s *session.Session) error {
		progress, ok := s.Creation[req.CharacterID]
		if !ok {
			return validationErr("no character creation in progress for %q", req.CharacterID)
		}
		if progress.Step == content.StepComplete {
			return ruleErr("character creation is already complete")
		}
		choices, err := g.store.ChoicesFor(progress.Step)
		if err != nil {
			return fmt.Errorf("listing choices: %w", err)
		}
		out = mustEnvelope("cc_choices", creationChoicesPayload{
			Step:    progress.Step,
			Choices: choices,
		})
		return nil
	})
	if err != nil {
		return nil, wrapSessionErr(err)
	}
	return []Envelope{out}, nil
}

type creationSelectRequest struct {
	SessionID   string `json:"sessionId"`
	CharacterID string `json:"characterId"`
	ChoiceID    string `json:"choiceId"`
}

func (g *Gateway) handleCreationSelect(payload json.RawMessage) ([]Envelope, error) {
	var req creationSelectRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	var out Envelope
	err := g.sessions.Do(req.SessionID, func(s *session.Session) error {
		progress, ok := s.Creation[req.CharacterID]
		if !ok {
			return validationErr("no character creation in progress for %q", req.CharacterID)
		}
		if err := g.applyChoice(progress, req.ChoiceID); err != nil {
			return err
		}
		next, _ := content.NextStep(progress.Step)
		progress.Step = next
		out = mustEnvelope("cc_state", creationStatePayload{
			CharacterID: req.CharacterID,
			Step:        progress.Step,
			Character:   progress.Character,
		})
		return nil
	})
	if err != nil {
		return nil, wrapSessionErr(err)
	}
	return []Envelope{out}, nil
}

// applyChoice applies the choice for the progress's current step.
func (g *Gateway) applyChoice(progress *session.CreationProgress, choiceID string) error {
	c := progress.Character
	switch progress.Step {
	case content.StepKingdom:
		kingdom, ok := g.store.Kingdom(choiceID)
		if !ok {
			return validationErr("unknown kingdom %q", choiceID)
		}
		progress.KingdomID = kingdom.ID
	case content.StepSpeciesFeature:
		feature, ok := g.store.SpeciesFeature(choiceID)
		if !ok {
			return validationErr("unknown species feature %q", choiceID)
		}
		character.ApplySpeciesFeature(c, feature)
	case content.StepOrigin:
		origin, ok := g.store.Origin(choiceID)
		if !ok {
			return validationErr("unknown origin %q", choiceID)
		}
		character.ApplyOrigin(c, origin)
	case content.StepLifeEvent:
		event, ok := g.store.LifeEvent(choiceID)
		if !ok {
			return validationErr("unknown life event %q", choiceID)
		}
		character.ApplyLifeEvent(c, event)
	case content.StepCareer:
		career, ok := g.store.Career(choiceID)
		if !ok {
			return validationErr("unknown career %q", choiceID)
		}
		character.ApplyCareer(c, career)
	case content.StepDevotion:
		devotion, ok := g.store.Devotion(choiceID)
		if !ok {
			return validationErr("unknown devotion %q", choiceID)
		}
		if !character.MeetsPrerequisite(c, devotion) {
			return ruleErr("devotion %q prerequisite not met", devotion.Name)
		}
		character.ApplyDevotion(c, devotion)
	case content.StepBirthSign:
		sign, ok := g.store.BirthSign(choiceID)
		if !ok {
			return validationErr("unknown birth sign %q", choiceID)
		}
		character.ApplyBirthSign(c, sign)
	case content.StepComplete:
		return ruleErr("character creation is already complete")
	default:
		return fmt.Errorf("gateway: unexpected creation step %q", progress.Step)
	}
	return nil
}

type creationFinalizeRequest struct {
	SessionID   string `json:"sessionId"`
	CharacterID string `json:"characterId"`
	Theme       string `json:"theme"`
}

func (g *Gateway) handleCreationFinalize(ctx context.Context, payload json.RawMessage) ([]Envelope, error) {
	var req creationFinalizeRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	// Validate the creation state before the blocking model call so a bad
	// request fails fast and without spend.
	var hero *character.Character
	err := g.sessions.Do(req.SessionID, func(s *session.Session) error {
		progress, ok := s.Creation[req.CharacterID]
		if !ok {
			return validationErr("no character creation in progress for %q", req.CharacterID)
		}
		if progress.Step != content.StepComplete {
			return ruleErr("character creation is not complete, at step %q", progress.Step)
		}
		hero = progress.Character.Clone()
		return nil
	})
	if err != nil {
		return nil, wrapSessionErr(err)
	}

	// Model call outside the session lock.
	logger := observability.WithSession(g.logger, req.SessionID)
	result := g.generator.MapParams(ctx, req.Theme)
	if result.FromDefault {
		logger.Info("map params fell back to defaults")
	}

	m, props, err := mapgen.Generate(g.cfg.MapWidth, g.cfg.MapHeight, result.Params, g.src)
	if err != nil {
		return nil, fmt.Errorf("generating map: %w", err)
	}

	entities := []*state.Entity{{ID: hero.ID, Name: hero.Name, IsPlayer: true}}
	chars := map[string]*character.Character{hero.ID: hero}
	for i := 0; i < result.Params.EnemyCount; i++ {
		enemy := newEnemy(i)
		entities = append(entities, &state.Entity{ID: enemy.ID, Name: enemy.Name})
		chars[enemy.ID] = enemy
	}

	gs, err := state.NewInitialState(m, props, entities, chars)
	if err != nil {
		return nil, fmt.Errorf("building initial state: %w", err)
	}
	gs.MapName = req.Theme

	var out Envelope
	err = g.sessions.Do(req.SessionID, func(s *session.Session) error {
		if _, still := s.Creation[req.CharacterID]; !still {
			return validationErr("character creation for %q vanished during finalize", req.CharacterID)
		}
		delete(s.Creation, req.CharacterID)
		s.State = gs
		out = stateEnvelope(s.State.Clone())
		return nil
	})
	if err != nil {
		return nil, wrapSessionErr(err)
	}
	logger.Info("session finalized",
		zap.String("character", req.CharacterID),
		zap.Int("enemies", result.Params.EnemyCount),
	)
	return []Envelope{out}, nil
}

// newEnemy builds a throwaway baseline opponent.
func newEnemy(n int) *character.Character {
	return character.NewBaseline(uuid.NewString(), fmt.Sprintf("Marauder %d", n+1))
}

// wrapSessionErr maps an unknown session id to a validation error and
// passes everything else through unchanged, so handler failures keep their
// own codes and anything unexpected surfaces as an internal error with the
// detail kept server-side.
func wrapSessionErr(err error) error {
	if errors.Is(err, session.ErrNotFound) {
		return validationErr("%v", err)
	}
	return err
}

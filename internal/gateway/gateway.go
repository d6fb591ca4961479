// Package gateway is the websocket transport: it decodes event envelopes,
// dispatches them to game handlers, and streams responses back to clients.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/dungeonmaister/gameserver/internal/game/content"
	"github.com/dungeonmaister/gameserver/internal/game/dice"
	"github.com/dungeonmaister/gameserver/internal/game/session"
	"github.com/dungeonmaister/gameserver/internal/game/state"
	"github.com/dungeonmaister/gameserver/internal/game/worldstate"
	"github.com/dungeonmaister/gameserver/internal/narrative"
	"github.com/dungeonmaister/gameserver/internal/scripting"
)

// Envelope is the wire frame for every client and server event.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Error codes carried in error payloads.
const (
	CodeValidation    = "validation"
	CodeRuleViolation = "rule_violation"
	CodeInternal      = "internal"
)

// ErrorPayload is the payload of an "error" envelope.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MessagePayload is the payload of a "message" envelope.
type MessagePayload struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

// gwError is an error with a client-facing code. Handlers return it for
// anything the client should see verbatim; everything else is reported as
// an internal error with the detail kept server-side.
type gwError struct {
	code string
	msg  string
}

func (e *gwError) Error() string { return e.msg }

func validationErr(format string, args ...any) error {
	return &gwError{code: CodeValidation, msg: fmt.Sprintf(format, args...)}
}

func ruleErr(format string, args ...any) error {
	return &gwError{code: CodeRuleViolation, msg: fmt.Sprintf(format, args...)}
}

// SaveStore persists and restores session snapshots. Load reports a missing
// save by returning an error wrapping postgres.ErrSaveNotFound.
type SaveStore interface {
	Save(ctx context.Context, sessionID string, snapshot *state.GameState) error
	Load(ctx context.Context, sessionID string) (*state.GameState, error)
}

// Config carries the gateway's game tunables.
type Config struct {
	// MapWidth and MapHeight size generated maps.
	MapWidth  int
	MapHeight int
}

// Gateway wires the websocket transport to the game core.
type Gateway struct {
	sessions  *session.Manager
	store     *content.Store
	generator narrative.Generator
	saves     SaveStore
	effects   *scripting.Engine
	world     *worldstate.Tracker
	src       dice.Source
	cfg       Config
	logger    *zap.Logger
}

// New creates a Gateway.
//
// Precondition: all dependencies must be non-nil; cfg map dimensions >= 3.
func New(
	sessions *session.Manager,
	store *content.Store,
	generator narrative.Generator,
	saves SaveStore,
	effects *scripting.Engine,
	world *worldstate.Tracker,
	src dice.Source,
	cfg Config,
	logger *zap.Logger,
) *Gateway {
	return &Gateway{
		sessions:  sessions,
		store:     store,
		generator: generator,
		saves:     saves,
		effects:   effects,
		world:     world,
		src:       src,
		cfg:       cfg,
		logger:    logger,
	}
}

// ServeHTTP upgrades the connection and runs the event loop until the
// client disconnects.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "server error")

	ctx := r.Context()
	g.logger.Info("client connected", zap.String("remote", r.RemoteAddr))

	for {
		var env Envelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				g.logger.Info("client disconnected", zap.String("remote", r.RemoteAddr))
			} else {
				g.logger.Warn("read failed", zap.Error(err))
			}
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}

		responses := g.Dispatch(ctx, env)
		for _, resp := range responses {
			if err := wsjson.Write(ctx, conn, resp); err != nil {
				g.logger.Warn("write failed", zap.Error(err))
				return
			}
		}
	}
}

// Dispatch routes one envelope to its handler and converts handler errors
// into error envelopes. Exposed for transport-free tests.
func (g *Gateway) Dispatch(ctx context.Context, env Envelope) []Envelope {
	responses, err := g.handle(ctx, env)
	if err == nil {
		return responses
	}

	var ge *gwError
	if errors.As(err, &ge) {
		return []Envelope{errorEnvelope(ge.code, ge.msg)}
	}
	g.logger.Error("handler failed",
		zap.String("event", env.Event),
		zap.Error(err),
	)
	return []Envelope{errorEnvelope(CodeInternal, "internal server error")}
}

func (g *Gateway) handle(ctx context.Context, env Envelope) ([]Envelope, error) {
	switch env.Event {
	case "start_session":
		return g.handleStartSession(env.Payload)
	case "cc_start":
		return g.handleCreationStart(env.Payload)
	case "cc_get_choices":
		return g.handleCreationChoices(env.Payload)
	case "cc_select_choice":
		return g.handleCreationSelect(env.Payload)
	case "cc_finalize":
		return g.handleCreationFinalize(ctx, env.Payload)
	case "move":
		return g.handleMove(env.Payload)
	case "command":
		return g.handleCommand(ctx, env.Payload)
	case "start_combat":
		return g.handleStartCombat(env.Payload)
	case "attack":
		return g.handleAttack(env.Payload)
	case "next_turn":
		return g.handleNextTurn(env.Payload)
	case "end_combat":
		return g.handleEndCombat(env.Payload)
	case "use_item":
		return g.handleUseItem(env.Payload)
	case "use_ability":
		return g.handleUseAbility(env.Payload)
	case "save_game":
		return g.handleSaveGame(ctx, env.Payload)
	case "load_game":
		return g.handleLoadGame(ctx, env.Payload)
	}
	return nil, validationErr("unknown event %q", env.Event)
}

// decode unmarshals a payload, mapping malformed JSON to a validation error.
func decode(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return validationErr("missing payload")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return validationErr("malformed payload: %v", err)
	}
	return nil
}

func mustEnvelope(event string, payload any) Envelope {
	raw, err := json.Marshal(payload)
	if err != nil {
		// All payload types are plain structs; marshalling cannot fail.
		panic(fmt.Sprintf("gateway: marshalling %s payload: %v", event, err))
	}
	return Envelope{Event: event, Payload: raw}
}

func errorEnvelope(code, msg string) Envelope {
	return mustEnvelope("error", ErrorPayload{Code: code, Message: msg})
}

func stateEnvelope(gs *state.GameState) Envelope {
	return mustEnvelope("game_state", gs)
}

func messageEnvelope(msgType, content, author string) Envelope {
	return mustEnvelope("message", MessagePayload{Type: msgType, Content: content, Author: author})
}

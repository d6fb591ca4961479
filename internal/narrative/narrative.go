// Package narrative turns game state and player commands into prose via an
// LLM, and asks the model for map-generation parameters. Model failures
// never reach players: narration falls back to a fixed line and map
// parameters fall back to the conservative defaults.
package narrative

import (
	"context"
	"fmt"
	"strings"

	"github.com/dungeonmaister/gameserver/internal/game/content"
	"github.com/dungeonmaister/gameserver/internal/game/state"
)

// FallbackNarration is returned whenever the model errors or produces an
// empty response.
const FallbackNarration = "The scene unfolds before you, though the details remain hazy."

// maxNarrationRunes caps model output before it reaches clients.
const maxNarrationRunes = 1200

// Context carries everything the prompt builder may weave into a scene.
// Slices may be empty; State and Command are required.
type Context struct {
	State        *state.GameState
	Command      string
	Location     *content.Location
	Factions     []content.Faction
	Beliefs      []content.Belief
	History      []content.HistoricalEvent
	ActiveEvents []content.WorldEvent
}

// Generator produces narration and map parameters. Implementations must
// not return errors to callers for narration: a degraded model yields the
// fallback line instead.
type Generator interface {
	// Narrate describes the outcome of a player command in the current
	// scene. Never returns an empty string.
	Narrate(ctx context.Context, nc Context) string
	// MapParams asks for map-generation parameters for a theme, as JSON.
	// Returns validated parameters or the defaults.
	MapParams(ctx context.Context, theme string) MapParamsResult
}

// BuildPrompt renders the narration prompt: world lore sections first, then
// the scene, then the command to narrate.
func BuildPrompt(nc Context) string {
	var b strings.Builder

	if len(nc.Factions) > 0 {
		b.WriteString("Factions of this world:\n")
		for _, f := range nc.Factions {
			fmt.Fprintf(&b, "- %s (%s): %s\n", f.Name, f.Type, f.Description)
		}
		b.WriteString("\n")
	}
	if len(nc.Beliefs) > 0 {
		b.WriteString("Widely held beliefs:\n")
		for _, belief := range nc.Beliefs {
			fmt.Fprintf(&b, "- %s: %s\n", belief.Name, belief.Description)
		}
		b.WriteString("\n")
	}
	if len(nc.History) > 0 {
		b.WriteString("Historical events still talked about:\n")
		for _, h := range nc.History {
			fmt.Fprintf(&b, "- %s: %s\n", h.Name, h.Description)
		}
		b.WriteString("\n")
	}
	if len(nc.ActiveEvents) > 0 {
		b.WriteString("Currently unfolding:\n")
		for _, ev := range nc.ActiveEvents {
			fmt.Fprintf(&b, "- %s: %s\n", ev.Name, ev.Description)
		}
		b.WriteString("\n")
	}
	if nc.Location != nil {
		fmt.Fprintf(&b, "The party is at %s: %s\n\n", nc.Location.Name, nc.Location.Description)
	}
	if nc.State != nil {
		b.WriteString("Present in the scene:\n")
		for _, e := range nc.State.Entities {
			role := "a foe"
			if e.IsPlayer {
				role = "an adventurer"
			}
			line := fmt.Sprintf("- %s, %s", e.Name, role)
			if c := nc.State.Character(e.ID); c != nil {
				line += fmt.Sprintf(" (%d/%d HP)", c.HP.Current, c.HP.Max)
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Narrate the outcome of this action in two or three sentences, second person, present tense: %s\n", nc.Command)
	return b.String()
}

// truncate clips s to maxNarrationRunes.
func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxNarrationRunes {
		return s
	}
	return string(runes[:maxNarrationRunes])
}

package content

import "fmt"

// Step identifies one step of the character-creation wizard.
type Step string

// Wizard steps in their canonical order. Birth sign is the epilogue step
// after devotion; "complete" is the terminal marker.
const (
	StepKingdom        Step = "kingdom"
	StepSpeciesFeature Step = "species_feature"
	StepOrigin         Step = "origin"
	StepLifeEvent      Step = "life_event"
	StepCareer         Step = "career"
	StepDevotion       Step = "devotion"
	StepBirthSign      Step = "birth_sign"
	StepComplete       Step = "complete"
)

// NextStep returns the step following s in the canonical life-path sequence.
//
// Postcondition: Returns (next, true) for a wizard step, or ("", false) for
// StepComplete or an unknown step.
func NextStep(s Step) (Step, bool) {
	switch s {
	case StepKingdom:
		return StepSpeciesFeature, true
	case StepSpeciesFeature:
		return StepOrigin, true
	case StepOrigin:
		return StepLifeEvent, true
	case StepLifeEvent:
		return StepCareer, true
	case StepCareer:
		return StepDevotion, true
	case StepDevotion:
		return StepBirthSign, true
	case StepBirthSign:
		return StepComplete, true
	default:
		return "", false
	}
}

// ValidStep reports whether s is a selectable wizard step.
func ValidStep(s Step) bool {
	switch s {
	case StepKingdom, StepSpeciesFeature, StepOrigin, StepLifeEvent,
		StepCareer, StepDevotion, StepBirthSign:
		return true
	}
	return false
}

// Choice is the step-agnostic view of a content record offered to players.
type Choice struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Store holds all loaded content, immutable after Load returns.
// It is safe for concurrent reads across sessions without synchronization.
type Store struct {
	kingdoms        []Kingdom
	speciesFeatures []SpeciesFeature
	origins         []Origin
	lifeEvents      []LifeEvent
	careers         []Career
	devotions       []Devotion
	birthSigns      []BirthSign
	skills          []SkillDefinition
	locations       []Location
	factions        []Faction
	beliefs         []Belief
	history         []HistoricalEvent
	worldEvents     []WorldEvent
	items           []ItemDefinition
	abilities       []AbilityDefinition
}

// Kingdoms returns all kingdoms in load order.
func (s *Store) Kingdoms() []Kingdom { return s.kingdoms }

// SpeciesFeatures returns all species features in load order.
func (s *Store) SpeciesFeatures() []SpeciesFeature { return s.speciesFeatures }

// Origins returns all origins in load order.
func (s *Store) Origins() []Origin { return s.origins }

// LifeEvents returns all life events in load order.
func (s *Store) LifeEvents() []LifeEvent { return s.lifeEvents }

// Careers returns all careers in load order.
func (s *Store) Careers() []Career { return s.careers }

// Devotions returns all devotions in load order.
func (s *Store) Devotions() []Devotion { return s.devotions }

// BirthSigns returns all birth signs in load order.
func (s *Store) BirthSigns() []BirthSign { return s.birthSigns }

// Skills returns all skill definitions in load order.
func (s *Store) Skills() []SkillDefinition { return s.skills }

// Locations returns all locations in load order.
func (s *Store) Locations() []Location { return s.locations }

// Factions returns all factions in load order.
func (s *Store) Factions() []Faction { return s.factions }

// Beliefs returns all beliefs in load order.
func (s *Store) Beliefs() []Belief { return s.beliefs }

// History returns all historical events in load order.
func (s *Store) History() []HistoricalEvent { return s.history }

// WorldEvents returns all world events in load order.
func (s *Store) WorldEvents() []WorldEvent { return s.worldEvents }

// Items returns all item definitions in load order.
func (s *Store) Items() []ItemDefinition { return s.items }

// Abilities returns all ability definitions in load order.
func (s *Store) Abilities() []AbilityDefinition { return s.abilities }

// SpeciesFeature returns the species feature with the given ID.
func (s *Store) SpeciesFeature(id string) (*SpeciesFeature, bool) {
	for i := range s.speciesFeatures {
		if s.speciesFeatures[i].ID == id {
			return &s.speciesFeatures[i], true
		}
	}
	return nil, false
}

// Origin returns the origin with the given ID.
func (s *Store) Origin(id string) (*Origin, bool) {
	for i := range s.origins {
		if s.origins[i].ID == id {
			return &s.origins[i], true
		}
	}
	return nil, false
}

// LifeEvent returns the life event with the given ID.
func (s *Store) LifeEvent(id string) (*LifeEvent, bool) {
	for i := range s.lifeEvents {
		if s.lifeEvents[i].ID == id {
			return &s.lifeEvents[i], true
		}
	}
	return nil, false
}

// Career returns the career with the given ID.
func (s *Store) Career(id string) (*Career, bool) {
	for i := range s.careers {
		if s.careers[i].ID == id {
			return &s.careers[i], true
		}
	}
	return nil, false
}

// Devotion returns the devotion with the given ID.
func (s *Store) Devotion(id string) (*Devotion, bool) {
	for i := range s.devotions {
		if s.devotions[i].ID == id {
			return &s.devotions[i], true
		}
	}
	return nil, false
}

// BirthSign returns the birth sign with the given ID.
func (s *Store) BirthSign(id string) (*BirthSign, bool) {
	for i := range s.birthSigns {
		if s.birthSigns[i].ID == id {
			return &s.birthSigns[i], true
		}
	}
	return nil, false
}

// Kingdom returns the kingdom with the given ID.
func (s *Store) Kingdom(id string) (*Kingdom, bool) {
	for i := range s.kingdoms {
		if s.kingdoms[i].ID == id {
			return &s.kingdoms[i], true
		}
	}
	return nil, false
}

// Item returns the item definition with the given ID.
func (s *Store) Item(id string) (*ItemDefinition, bool) {
	for i := range s.items {
		if s.items[i].ID == id {
			return &s.items[i], true
		}
	}
	return nil, false
}

// Ability returns the ability definition with the given ID.
func (s *Store) Ability(id string) (*AbilityDefinition, bool) {
	for i := range s.abilities {
		if s.abilities[i].ID == id {
			return &s.abilities[i], true
		}
	}
	return nil, false
}

// Location returns the location with the given ID.
func (s *Store) Location(id string) (*Location, bool) {
	for i := range s.locations {
		if s.locations[i].ID == id {
			return &s.locations[i], true
		}
	}
	return nil, false
}

// ChoicesFor returns the selectable choices for a wizard step.
//
// Postcondition: Returns an error for non-wizard steps; the slice preserves
// load order.
func (s *Store) ChoicesFor(step Step) ([]Choice, error) {
	switch step {
	case StepKingdom:
		out := make([]Choice, len(s.kingdoms))
		for i, k := range s.kingdoms {
			out[i] = Choice{ID: k.ID, Name: k.Name, Description: k.Description}
		}
		return out, nil
	case StepSpeciesFeature:
		out := make([]Choice, len(s.speciesFeatures))
		for i, f := range s.speciesFeatures {
			out[i] = Choice{ID: f.ID, Name: f.Name, Description: f.Description}
		}
		return out, nil
	case StepOrigin:
		out := make([]Choice, len(s.origins))
		for i, o := range s.origins {
			out[i] = Choice{ID: o.ID, Name: o.Name, Description: o.Description}
		}
		return out, nil
	case StepLifeEvent:
		out := make([]Choice, len(s.lifeEvents))
		for i, e := range s.lifeEvents {
			out[i] = Choice{ID: e.ID, Name: e.Name, Description: e.Description}
		}
		return out, nil
	case StepCareer:
		out := make([]Choice, len(s.careers))
		for i, c := range s.careers {
			out[i] = Choice{ID: c.ID, Name: c.Name, Description: c.Description}
		}
		return out, nil
	case StepDevotion:
		out := make([]Choice, len(s.devotions))
		for i, d := range s.devotions {
			out[i] = Choice{ID: d.ID, Name: d.Name, Description: d.Description}
		}
		return out, nil
	case StepBirthSign:
		out := make([]Choice, len(s.birthSigns))
		for i, b := range s.birthSigns {
			out[i] = Choice{ID: b.ID, Name: b.Name, Description: b.Description}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("content: no choices for step %q", step)
	}
}

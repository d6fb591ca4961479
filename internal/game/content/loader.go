package content

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Content file names expected under the content directory.
const (
	fileKingdoms        = "kingdoms.yaml"
	fileSpeciesFeatures = "species_features.yaml"
	fileOrigins         = "origins.yaml"
	fileLifeEvents      = "life_events.yaml"
	fileCareers         = "careers.yaml"
	fileDevotions       = "devotions.yaml"
	fileBirthSigns      = "birth_signs.yaml"
	fileSkills          = "skills.yaml"
	fileLocations       = "locations.yaml"
	fileFactions        = "factions.yaml"
	fileBeliefs         = "beliefs.yaml"
	fileHistory         = "history.yaml"
	fileWorldEvents     = "world_events.yaml"
	fileItems           = "items.yaml"
	fileAbilities       = "abilities.yaml"
)

// Load reads every content category from dir and returns an immutable Store.
// Loading is all-or-nothing: a missing file, unparseable YAML, or an invalid
// record fails the whole load. Content failures are fatal at startup, never
// recovered per-call.
//
// Precondition: dir must be a readable directory containing all content files.
// Postcondition: Returns a fully populated Store or a non-nil error.
func Load(dir string) (*Store, error) {
	s := &Store{}

	if err := loadFile(dir, fileKingdoms, &s.kingdoms); err != nil {
		return nil, err
	}
	if err := loadFile(dir, fileSpeciesFeatures, &s.speciesFeatures); err != nil {
		return nil, err
	}
	if err := loadFile(dir, fileOrigins, &s.origins); err != nil {
		return nil, err
	}
	if err := loadFile(dir, fileLifeEvents, &s.lifeEvents); err != nil {
		return nil, err
	}
	if err := loadFile(dir, fileCareers, &s.careers); err != nil {
		return nil, err
	}
	if err := loadFile(dir, fileDevotions, &s.devotions); err != nil {
		return nil, err
	}
	if err := loadFile(dir, fileBirthSigns, &s.birthSigns); err != nil {
		return nil, err
	}
	if err := loadFile(dir, fileSkills, &s.skills); err != nil {
		return nil, err
	}
	if err := loadFile(dir, fileLocations, &s.locations); err != nil {
		return nil, err
	}
	if err := loadFile(dir, fileFactions, &s.factions); err != nil {
		return nil, err
	}
	if err := loadFile(dir, fileBeliefs, &s.beliefs); err != nil {
		return nil, err
	}
	if err := loadFile(dir, fileHistory, &s.history); err != nil {
		return nil, err
	}
	if err := loadFile(dir, fileWorldEvents, &s.worldEvents); err != nil {
		return nil, err
	}
	if err := loadFile(dir, fileItems, &s.items); err != nil {
		return nil, err
	}
	if err := loadFile(dir, fileAbilities, &s.abilities); err != nil {
		return nil, err
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("content: validating %s: %w", dir, err)
	}
	return s, nil
}

func loadFile[T any](dir, name string, out *[]T) error {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("content: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("content: parsing %s: %w", path, err)
	}
	return nil
}

// validate checks record-level invariants across all loaded categories.
func (s *Store) validate() error {
	ids := make(map[string]bool)
	unique := func(category, id string) error {
		if id == "" {
			return fmt.Errorf("%s record with empty id", category)
		}
		key := category + "/" + id
		if ids[key] {
			return fmt.Errorf("duplicate %s id %q", category, id)
		}
		ids[key] = true
		return nil
	}

	for _, k := range s.kingdoms {
		if err := unique("kingdom", k.ID); err != nil {
			return err
		}
		for _, sub := range k.PrimarySubStats {
			if !sub.Valid() {
				return fmt.Errorf("kingdom %q: unknown sub-attribute %q", k.ID, sub)
			}
		}
	}
	for _, f := range s.speciesFeatures {
		if err := unique("species_feature", f.ID); err != nil {
			return err
		}
		if err := validateEffects(fmt.Sprintf("species_feature %q", f.ID), f.Effects); err != nil {
			return err
		}
	}
	for _, o := range s.origins {
		if err := unique("origin", o.ID); err != nil {
			return err
		}
	}
	for _, e := range s.lifeEvents {
		if err := unique("life_event", e.ID); err != nil {
			return err
		}
		if err := validateModifiers(fmt.Sprintf("life_event %q", e.ID), e.StatModifiers); err != nil {
			return err
		}
	}
	for _, c := range s.careers {
		if err := unique("career", c.ID); err != nil {
			return err
		}
		if err := validateModifiers(fmt.Sprintf("career %q", c.ID), c.StatModifiers); err != nil {
			return err
		}
	}
	for _, d := range s.devotions {
		if err := unique("devotion", d.ID); err != nil {
			return err
		}
		if !d.Bonus.SubAttribute.Valid() {
			return fmt.Errorf("devotion %q: unknown sub-attribute %q", d.ID, d.Bonus.SubAttribute)
		}
		if d.Prerequisite != nil && !d.Prerequisite.Attribute.Valid() {
			return fmt.Errorf("devotion %q: unknown primary attribute %q", d.ID, d.Prerequisite.Attribute)
		}
	}
	for _, b := range s.birthSigns {
		if err := unique("birth_sign", b.ID); err != nil {
			return err
		}
		if err := validateEffects(fmt.Sprintf("birth_sign %q", b.ID), b.Effects); err != nil {
			return err
		}
	}
	for _, sk := range s.skills {
		if err := unique("skill", sk.ID); err != nil {
			return err
		}
	}
	for _, l := range s.locations {
		if err := unique("location", l.ID); err != nil {
			return err
		}
	}
	for _, f := range s.factions {
		if err := unique("faction", f.ID); err != nil {
			return err
		}
	}
	for _, w := range s.worldEvents {
		if err := unique("world_event", w.ID); err != nil {
			return err
		}
		if w.Trigger.FactionID == "" {
			return fmt.Errorf("world_event %q: empty trigger faction", w.ID)
		}
	}
	for _, it := range s.items {
		if err := unique("item", it.ID); err != nil {
			return err
		}
	}
	for _, ab := range s.abilities {
		if err := unique("ability", ab.ID); err != nil {
			return err
		}
		if ab.EPCost < 0 {
			return fmt.Errorf("ability %q: negative ep_cost %d", ab.ID, ab.EPCost)
		}
	}

	return nil
}

func validateEffects(owner string, effects []Effect) error {
	for _, eff := range effects {
		if eff.Type == EffectSubAttributeBonus && !eff.SubAttribute.Valid() {
			return fmt.Errorf("%s: unknown sub-attribute %q", owner, eff.SubAttribute)
		}
	}
	return nil
}

func validateModifiers(owner string, mods []StatModifier) error {
	for _, mod := range mods {
		if !mod.SubAttribute.Valid() {
			return fmt.Errorf("%s: unknown sub-attribute %q", owner, mod.SubAttribute)
		}
	}
	return nil
}

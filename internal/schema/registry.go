// Package schema resolves foreign keys into the game's static schema
// tables: zone type codes and defined enemy types. The registry is optional
// for the definition pipeline; without one the schema-dependent checks and
// definition kinds are skipped.
package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Registry holds the zone and enemy schema tables.
type Registry struct {
	zoneTypes map[uint32]uint8
	enemies   map[uint32]struct{}
}

type rawRegistry struct {
	Zones []struct {
		ID   uint32 `yaml:"id"`
		Type uint8  `yaml:"type"`
	} `yaml:"zones"`
	Enemies []uint32 `yaml:"enemies"`
}

// Parse builds a Registry from a YAML schema document.
func Parse(data []byte) (*Registry, error) {
	var raw rawRegistry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("schema: parsing registry: %w", err)
	}
	r := &Registry{
		zoneTypes: make(map[uint32]uint8, len(raw.Zones)),
		enemies:   make(map[uint32]struct{}, len(raw.Enemies)),
	}
	for _, z := range raw.Zones {
		if _, exists := r.zoneTypes[z.ID]; exists {
			return nil, fmt.Errorf("schema: duplicate zone %d in registry", z.ID)
		}
		r.zoneTypes[z.ID] = z.Type
	}
	for _, id := range raw.Enemies {
		r.enemies[id] = struct{}{}
	}
	return r, nil
}

// Load reads and parses a YAML schema file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: reading registry %q: %w", path, err)
	}
	return Parse(data)
}

// ZoneType returns the type code of a zone ID, or false when the zone is
// not in the registry.
func (r *Registry) ZoneType(zoneID uint32) (uint8, bool) {
	t, ok := r.zoneTypes[zoneID]
	return t, ok
}

// EnemyExists reports whether the enemy type is defined.
func (r *Registry) EnemyExists(enemyType uint32) bool {
	_, ok := r.enemies[enemyType]
	return ok
}

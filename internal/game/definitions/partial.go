package definitions

// GlobalPartialID is the reserved partial ID whose spawn content applies
// globally. Its NPC, object, spot, and dynamic-map content is
// diagnostic-only and never merged.
const GlobalPartialID uint32 = 0

// ZonePartial is a patch definition overlaid onto a base zone, either
// automatically (by dynamic-map scope) or on explicit request.
type ZonePartial struct {
	ID uint32
	// AutoApply marks the partial for automatic application to every zone
	// whose dynamic map ID appears in DynamicMapIDs.
	AutoApply bool
	// DynamicMapIDs scopes the partial. Empty means it applies to all
	// dynamic maps (explicit application only).
	DynamicMapIDs map[uint32]struct{}

	NPCs                []*NPC
	Objects             []*Object
	Spawns              map[uint32]*Spawn
	SpawnGroups         map[uint32]*SpawnGroup
	SpawnLocationGroups map[uint32]*SpawnLocationGroup
	Spots               map[uint32]*Spot
	Triggers            []*Trigger

	DropSetIDs     map[uint32]struct{}
	SkillWhitelist map[uint32]struct{}
	SkillBlacklist map[uint32]struct{}
}

// AppliesTo reports whether the partial's scope admits the given dynamic
// map ID. An empty scope admits every dynamic map.
func (p *ZonePartial) AppliesTo(dynamicMapID uint32) bool {
	if len(p.DynamicMapIDs) == 0 {
		return true
	}
	_, ok := p.DynamicMapIDs[dynamicMapID]
	return ok
}

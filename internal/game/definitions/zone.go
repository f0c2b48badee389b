package definitions

import "fmt"

// SpawnCategory classifies a spawn template.
type SpawnCategory string

// Spawn categories.
const (
	CategoryNormal SpawnCategory = "normal"
	CategoryBoss   SpawnCategory = "boss"
)

// Spawn is a monster template placed in a zone or partial.
type Spawn struct {
	// ID uniquely identifies the spawn within its owning zone or partial.
	ID uint32
	// EnemyType is a foreign key into the schema registry's enemy table.
	EnemyType uint32
	// Category classifies the spawn; boss-group members must be CategoryBoss.
	Category SpawnCategory
	// BossGroup ties boss spawns together. Zero means no group.
	BossGroup uint32
	// Level overrides the enemy's default level. Zero means default.
	Level int8
}

// SpawnGroup is a named set of spawn templates with counts plus the action
// lists fired when the group spawns or is defeated.
type SpawnGroup struct {
	ID uint32
	// Spawns maps spawn IDs in the owning zone to the count spawned.
	Spawns map[uint32]int
	// SpawnActions run when the group spawns.
	SpawnActions []*Action
	// DefeatActions run when the last group member is defeated.
	DefeatActions []*Action
}

// Clone returns a copy with its own Spawns map. Action lists are immutable
// after load and are shared.
func (g *SpawnGroup) Clone() *SpawnGroup {
	c := &SpawnGroup{
		ID:            g.ID,
		Spawns:        make(map[uint32]int, len(g.Spawns)),
		SpawnActions:  g.SpawnActions,
		DefeatActions: g.DefeatActions,
	}
	for id, count := range g.Spawns {
		c.Spawns[id] = count
	}
	return c
}

// SpawnLocationGroup ties spawn groups to map locations.
type SpawnLocationGroup struct {
	ID uint32
	// GroupIDs is the set of spawn group IDs placed at this location.
	GroupIDs map[uint32]struct{}
	// RespawnTime is the delay in seconds before a defeated group respawns.
	RespawnTime float32
}

// Clone returns a copy with its own GroupIDs set.
func (g *SpawnLocationGroup) Clone() *SpawnLocationGroup {
	c := &SpawnLocationGroup{
		ID:          g.ID,
		GroupIDs:    make(map[uint32]struct{}, len(g.GroupIDs)),
		RespawnTime: g.RespawnTime,
	}
	for id := range g.GroupIDs {
		c.GroupIDs[id] = struct{}{}
	}
	return c
}

// Spot is a named region in a zone with enter and leave action lists.
type Spot struct {
	ID uint32
	// Actions run when an entity enters the spot.
	Actions []*Action
	// LeaveActions run when an entity leaves the spot.
	LeaveActions []*Action
}

// NPC is an NPC placement in a zone or partial. An ID of zero on a partial
// entry is a deletion marker: it removes conflicting base entries without
// adding a replacement.
type NPC struct {
	ID       uint32
	SpotID   uint32
	X        float32
	Y        float32
	Rotation float32
	Actions  []*Action
}

// Object is an interactive object placement. Same merge semantics as NPC.
type Object struct {
	ID       uint32
	SpotID   uint32
	X        float32
	Y        float32
	Rotation float32
	Actions  []*Action
}

// TriggerType identifies the event that fires a zone trigger.
type TriggerType string

// Trigger kinds. The eight player-actor kinds are listed first; every
// other kind runs in an automated context.
const (
	TriggerOnDeath               TriggerType = "on_death"
	TriggerOnDiasporaBaseCapture TriggerType = "on_diaspora_base_capture"
	TriggerOnFlagSet             TriggerType = "on_flag_set"
	TriggerOnPvPBaseCapture      TriggerType = "on_pvp_base_capture"
	TriggerOnPvPComplete         TriggerType = "on_pvp_complete"
	TriggerOnRevival             TriggerType = "on_revival"
	TriggerOnZoneIn              TriggerType = "on_zone_in"
	TriggerOnZoneOut             TriggerType = "on_zone_out"
	TriggerOnSetup               TriggerType = "on_setup"
	TriggerOnTime                TriggerType = "on_time"
	TriggerOnSystemTime          TriggerType = "on_system_time"
)

// Trigger pairs an event kind with the actions it fires.
type Trigger struct {
	Trigger TriggerType
	Actions []*Action
}

// Zone is a playable map definition, identified by (ID, DynamicMapID).
// A zone definition is not unique by ID alone.
type Zone struct {
	ID           uint32
	DynamicMapID uint32
	Name         string

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

// Label renders the zone identity for diagnostics: "id" when the dynamic
// map ID matches the zone ID, "id (dynamicMapID)" otherwise.
func (z *Zone) Label() string {
	if z.ID != z.DynamicMapID {
		return fmt.Sprintf("%d (%d)", z.ID, z.DynamicMapID)
	}
	return fmt.Sprintf("%d", z.ID)
}

// Clone returns a copy with its own containers. Leaf definitions (spawns,
// groups, spots, placements, triggers, actions) are shared; the composition
// engine clones the specific groups it needs to shrink.
func (z *Zone) Clone() *Zone {
	c := &Zone{
		ID:                  z.ID,
		DynamicMapID:        z.DynamicMapID,
		Name:                z.Name,
		NPCs:                make([]*NPC, len(z.NPCs)),
		Objects:             make([]*Object, len(z.Objects)),
		Spawns:              make(map[uint32]*Spawn, len(z.Spawns)),
		SpawnGroups:         make(map[uint32]*SpawnGroup, len(z.SpawnGroups)),
		SpawnLocationGroups: make(map[uint32]*SpawnLocationGroup, len(z.SpawnLocationGroups)),
		Spots:               make(map[uint32]*Spot, len(z.Spots)),
		Triggers:            make([]*Trigger, len(z.Triggers)),
		DropSetIDs:          make(map[uint32]struct{}, len(z.DropSetIDs)),
		SkillWhitelist:      make(map[uint32]struct{}, len(z.SkillWhitelist)),
		SkillBlacklist:      make(map[uint32]struct{}, len(z.SkillBlacklist)),
	}
	copy(c.NPCs, z.NPCs)
	copy(c.Objects, z.Objects)
	copy(c.Triggers, z.Triggers)
	for id, s := range z.Spawns {
		c.Spawns[id] = s
	}
	for id, g := range z.SpawnGroups {
		c.SpawnGroups[id] = g
	}
	for id, g := range z.SpawnLocationGroups {
		c.SpawnLocationGroups[id] = g
	}
	for id, s := range z.Spots {
		c.Spots[id] = s
	}
	for id := range z.DropSetIDs {
		c.DropSetIDs[id] = struct{}{}
	}
	for id := range z.SkillWhitelist {
		c.SkillWhitelist[id] = struct{}{}
	}
	for id := range z.SkillBlacklist {
		c.SkillBlacklist[id] = struct{}{}
	}
	return c
}

package definitions

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
)

// placementConflictRange is the distance in map units below which two
// non-spotted placements on each axis are treated as the same placement.
const placementConflictRange = 10.0

// Composer derives ephemeral zone definitions by overlaying partials onto
// stored base zones. It only reads the Store; every derived zone and every
// shrunk group is a fresh clone owned by the caller, so concurrent
// ResolveZone calls on a sealed store need no locking.
type Composer struct {
	store  *Store
	logger *zap.Logger
}

// NewComposer creates a Composer over the given store.
//
// Precondition: store and logger must be non-nil.
func NewComposer(store *Store, logger *zap.Logger) *Composer {
	return &Composer{store: store, logger: logger}
}

// ResolveZone returns the zone for (zoneID, dynamicMapID), composing
// applicable partials onto it when applyPartials is true. A zero
// dynamicMapID selects an arbitrary stored match.
//
// The applied set is every auto-apply partial scoped to the zone's dynamic
// map ID plus each extra ID that resolves to a non-auto-apply partial whose
// scope admits the dynamic map. An extra ID that resolves but is
// scope-ineligible is skipped with a warning; an extra ID that does not
// resolve at all fails the whole resolution. Partials are applied in
// ascending ID order.
//
// Postcondition: When no partial applies, the stored definition itself is
// returned (no clone). Returns (nil, nil) when the zone does not exist.
func (c *Composer) ResolveZone(zoneID, dynamicMapID uint32, applyPartials bool, extraPartialIDs []uint32) (*Zone, error) {
	zone, ok := c.store.Zone(zoneID, dynamicMapID)
	if !ok {
		return nil, nil
	}
	if !applyPartials {
		return zone, nil
	}

	partialIDs := c.store.AutoAppliedPartialIDs(zone.DynamicMapID)
	applied := make(map[uint32]struct{}, len(partialIDs)+len(extraPartialIDs))
	for _, id := range partialIDs {
		applied[id] = struct{}{}
	}

	for _, id := range extraPartialIDs {
		partial, ok := c.store.Partial(id)
		if !ok {
			return nil, fmt.Errorf("invalid zone partial ID %d requested for zone %s", id, zone.Label())
		}
		if partial.AutoApply || !partial.AppliesTo(zone.DynamicMapID) {
			c.logger.Warn("skipping ineligible extra zone partial",
				zap.Uint32("partial_id", id),
				zap.String("zone", zone.Label()),
			)
			continue
		}
		applied[id] = struct{}{}
	}

	if len(applied) == 0 {
		return zone, nil
	}

	ordered := make([]uint32, 0, len(applied))
	for id := range applied {
		ordered = append(ordered, id)
	}
	sort.Slice(ordered, func(a, b int) bool { return ordered[a] < ordered[b] })

	derived := zone.Clone()
	for _, id := range ordered {
		if err := c.ApplyPartialTo(derived, id); err != nil {
			return nil, err
		}
	}

	c.repairSpawnReferences(derived)
	return derived, nil
}

// ApplyPartialTo overlays one partial onto a derived zone. It fails when
// the supplied zone is the stored base definition itself (composing a zone
// onto itself is a logic error, not a valid patch) or when the partial
// does not exist.
//
// Precondition: zone must be a caller-owned clone, never the stored base.
func (c *Composer) ApplyPartialTo(zone *Zone, partialID uint32) error {
	if zone == nil || partialID == 0 {
		return fmt.Errorf("zone partial %d cannot be applied", partialID)
	}

	if base, ok := c.store.Zone(zone.ID, zone.DynamicMapID); ok && base == zone {
		return fmt.Errorf("attempted to apply partial %d to original zone definition %s", partialID, zone.Label())
	}

	partial, ok := c.store.Partial(partialID)
	if !ok {
		return fmt.Errorf("invalid zone partial ID encountered: %d", partialID)
	}

	applyPartial(zone, partial)
	return nil
}

// applyPartial merges one partial into zone, removing base NPC and object
// placements that conflict spatially or by spot with incoming entries.
func applyPartial(zone *Zone, partial *ZonePartial) {
	for id := range partial.DropSetIDs {
		zone.DropSetIDs[id] = struct{}{}
	}
	for id := range partial.SkillWhitelist {
		zone.SkillWhitelist[id] = struct{}{}
	}
	for id := range partial.SkillBlacklist {
		zone.SkillBlacklist[id] = struct{}{}
	}

	for _, npc := range partial.NPCs {
		kept := zone.NPCs[:0:0]
		for _, existing := range zone.NPCs {
			if !placementsConflict(npc.SpotID, npc.X, npc.Y, existing.SpotID, existing.X, existing.Y) {
				kept = append(kept, existing)
			}
		}
		zone.NPCs = kept
		// A zero ID is a pure deletion marker.
		if npc.ID != 0 {
			zone.NPCs = append(zone.NPCs, npc)
		}
	}

	for _, obj := range partial.Objects {
		kept := zone.Objects[:0:0]
		for _, existing := range zone.Objects {
			if !placementsConflict(obj.SpotID, obj.X, obj.Y, existing.SpotID, existing.X, existing.Y) {
				kept = append(kept, existing)
			}
		}
		zone.Objects = kept
		if obj.ID != 0 {
			zone.Objects = append(zone.Objects, obj)
		}
	}

	for id, spawn := range partial.Spawns {
		zone.Spawns[id] = spawn
	}
	for id, group := range partial.SpawnGroups {
		zone.SpawnGroups[id] = group
	}
	for id, group := range partial.SpawnLocationGroups {
		zone.SpawnLocationGroups[id] = group
	}
	for id, spot := range partial.Spots {
		zone.Spots[id] = spot
	}

	zone.Triggers = append(zone.Triggers, partial.Triggers...)
}

// placementsConflict reports whether an incoming placement collides with an
// existing one: both share the same nonzero spot ID, or both are unspotted
// and within placementConflictRange on each axis.
func placementsConflict(inSpot uint32, inX, inY float32, exSpot uint32, exX, exY float32) bool {
	if inSpot != 0 {
		return exSpot == inSpot
	}
	return exSpot == 0 &&
		math.Abs(float64(exX-inX)) < placementConflictRange &&
		math.Abs(float64(exY-inY)) < placementConflictRange
}

// repairSpawnReferences restores internal consistency of a derived zone
// after independently authored partials have been merged. Spawn groups
// referencing spawns that no longer exist are shrunk, or dropped when every
// reference is gone; spawn location groups are then repaired the same way
// against the dropped groups.
func (c *Composer) repairSpawnReferences(zone *Zone) {
	groupRemoves := make(map[uint32]struct{})
	for id, group := range zone.SpawnGroups {
		var missing []uint32
		for spawnID := range group.Spawns {
			if _, ok := zone.Spawns[spawnID]; !ok {
				missing = append(missing, spawnID)
			}
		}
		if len(missing) == 0 {
			continue
		}
		if len(missing) < len(group.Spawns) {
			shrunk := group.Clone()
			for _, spawnID := range missing {
				delete(shrunk.Spawns, spawnID)
			}
			zone.SpawnGroups[id] = shrunk
		} else {
			groupRemoves[id] = struct{}{}
		}
	}

	for id := range groupRemoves {
		c.logger.Debug("removing empty spawn group when generating zone",
			zap.Uint32("spawn_group", id),
			zap.String("zone", zone.Label()),
		)
		delete(zone.SpawnGroups, id)
	}

	var locationRemoves []uint32
	for id, group := range zone.SpawnLocationGroups {
		var missing []uint32
		for groupID := range group.GroupIDs {
			if _, ok := zone.SpawnGroups[groupID]; !ok {
				missing = append(missing, groupID)
			}
		}
		if len(missing) == 0 {
			continue
		}
		if len(missing) < len(group.GroupIDs) {
			shrunk := group.Clone()
			for _, groupID := range missing {
				delete(shrunk.GroupIDs, groupID)
			}
			zone.SpawnLocationGroups[id] = shrunk
		} else {
			locationRemoves = append(locationRemoves, id)
		}
	}

	for _, id := range locationRemoves {
		c.logger.Debug("removing empty spawn location group when generating zone",
			zap.Uint32("spawn_location_group", id),
			zap.String("zone", zone.Label()),
		)
		delete(zone.SpawnLocationGroups, id)
	}
}

package definitions

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Source abstracts hierarchical content storage. Paths are slash-separated
// and relative to the source root.
type Source interface {
	// Listing enumerates the entries under path, classified as regular
	// files, directories, and symlinks. When recursive is true the listing
	// descends into subdirectories.
	Listing(path string, recursive bool) (files, dirs, symlinks []string, err error)
	// ReadFile returns the contents of the file at path.
	ReadFile(path string) ([]byte, error)
	// Exists classifies path. Both results are false when nothing is there.
	Exists(path string) (isFile, isDir bool)
}

// Zone type codes in the schema registry.
const (
	// FieldZoneType marks open-world field zones.
	FieldZoneType uint8 = 2
	// PvPZoneType marks zones usable as PvP instance zones.
	PvPZoneType uint8 = 7
)

// SchemaRegistry resolves foreign keys into the game's static schema
// tables. It is optional: a nil registry skips the schema-dependent
// definition kinds and every foreign-key check.
type SchemaRegistry interface {
	// ZoneType returns the type code of a zone ID, or false when the zone
	// is not in the registry.
	ZoneType(zoneID uint32) (uint8, bool)
	// EnemyExists reports whether the enemy type is defined.
	EnemyExists(enemyType uint32) bool
}

// Content locations within a source, relative to its root.
const (
	aiLogicGroupLocation     = "ailogicgroup"
	demonPresentLocation     = "demonpresent"
	demonQuestRewardLocation = "demonquestreward"
	dropSetLocation          = "dropset"
	zoneLocation             = "zones"
	partialLocation          = "zones/partial"
	eventLocation            = "events"
	instanceLocation         = "data/zoneinstance"
	variantLocation          = "data/zoneinstancevariant"
	shopLocation             = "shops"
	scriptLocation           = "scripts"
)

// Loader runs the definition load pipeline against a Store. Loading is
// single-threaded and fail-fast: the first fatal error aborts the whole
// pipeline so a corrupt definition set never partially activates.
type Loader struct {
	store     *Store
	registry  SchemaRegistry
	validator *Validator
	logger    *zap.Logger
	instLimit int
}

// NewLoader creates a Loader filling store. registry may be nil; the
// schema-dependent definition kinds are then skipped rather than failed.
//
// Precondition: store and logger must be non-nil and store must be unsealed.
func NewLoader(store *Store, registry SchemaRegistry, logger *zap.Logger) *Loader {
	return &Loader{
		store:     store,
		registry:  registry,
		validator: NewValidator(logger),
		logger:    logger,
	}
}

// SetInstructionLimit caps Lua opcodes per script evaluation. Zero uses the
// scripting default.
func (l *Loader) SetInstructionLimit(n int) {
	l.instLimit = n
}

// LoadAll loads every definition kind from src in dependency order: the
// schema-dependent kinds (AI logic groups, demon presents, demon quest
// rewards, drop sets), then zones, zone partials, events, zone instances,
// instance variants, shops, and finally scripts. The order is load-bearing;
// instances validate against loaded zones and PvP variants against loaded
// instances.
//
// Postcondition: on success the store is sealed; on error the store is
// unsealed but must be discarded.
func (l *Loader) LoadAll(src Source) error {
	if l.registry != nil {
		if err := l.loadAILogicGroups(src); err != nil {
			return err
		}
		if err := l.loadDemonPresents(src); err != nil {
			return err
		}
		if err := l.loadDemonQuestRewards(src); err != nil {
			return err
		}
		if err := l.loadDropSets(src); err != nil {
			return err
		}
	} else {
		l.logger.Debug("no schema registry supplied, skipping schema-dependent definitions")
	}

	if err := l.loadZones(src); err != nil {
		return err
	}
	if err := l.loadPartials(src); err != nil {
		return err
	}
	if err := l.loadEvents(src); err != nil {
		return err
	}
	if err := l.loadInstances(src); err != nil {
		return err
	}
	if err := l.loadVariants(src); err != nil {
		return err
	}
	if err := l.loadShops(src); err != nil {
		return err
	}
	if _, err := l.loadScripts(src, scriptLocation); err != nil {
		return err
	}

	l.store.Seal()
	return nil
}

// loadDefinitions reads every definition document at location and feeds
// each object node to ingest. location may be a directory (every .yaml/.yml
// file directly inside it is read, in lexical order), a file, or a bare name
// the ".yaml" extension is appended to. A missing location or a file with no
// objects is a warning, not an error.
func (l *Loader) loadDefinitions(src Source, location, kind string, ingest func(path string, node *yaml.Node) error) error {
	files, err := l.definitionFiles(src, location, kind)
	if err != nil {
		return err
	}

	for _, path := range files {
		data, err := src.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s definitions from %s: %w", kind, path, err)
		}

		var doc struct {
			Objects []yaml.Node `yaml:"objects"`
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing %s definitions from %s: %w", kind, path, err)
		}
		if len(doc.Objects) == 0 {
			l.logger.Warn("no definitions found in file",
				zap.String("kind", kind),
				zap.String("path", path),
			)
			continue
		}

		for i := range doc.Objects {
			if err := ingest(path, &doc.Objects[i]); err != nil {
				return fmt.Errorf("loading %s definitions from %s: %w", kind, path, err)
			}
		}
		l.logger.Debug("loaded definition file",
			zap.String("kind", kind),
			zap.String("path", path),
			zap.Int("objects", len(doc.Objects)),
		)
	}
	return nil
}

// definitionFiles resolves location into the ordered list of definition
// files to read.
func (l *Loader) definitionFiles(src Source, location, kind string) ([]string, error) {
	isFile, isDir := src.Exists(location)
	switch {
	case isDir:
		files, _, symlinks, err := src.Listing(location, false)
		if err != nil {
			return nil, fmt.Errorf("listing %s definitions at %s: %w", kind, location, err)
		}
		if len(symlinks) > 0 {
			l.logger.Debug("ignoring symlinks in definition directory",
				zap.String("path", location),
				zap.Int("count", len(symlinks)),
			)
		}
		matched := files[:0:0]
		for _, f := range files {
			if hasYAMLExtension(f) {
				matched = append(matched, f)
			}
		}
		sort.Strings(matched)
		return matched, nil
	case isFile:
		return []string{location}, nil
	default:
		fallback := location + ".yaml"
		if isFile, _ := src.Exists(fallback); isFile {
			return []string{fallback}, nil
		}
		l.logger.Warn("no definitions found",
			zap.String("kind", kind),
			zap.String("path", location),
		)
		return nil, nil
	}
}

func hasYAMLExtension(path string) bool {
	return strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
}

func (l *Loader) loadAILogicGroups(src Source) error {
	return l.loadDefinitions(src, aiLogicGroupLocation, "AI logic group", func(_ string, node *yaml.Node) error {
		var raw rawAILogicGroup
		if err := node.Decode(&raw); err != nil {
			return err
		}
		return l.store.RegisterAILogicGroup(raw.convert())
	})
}

func (l *Loader) loadDemonPresents(src Source) error {
	return l.loadDefinitions(src, demonPresentLocation, "demon present", func(_ string, node *yaml.Node) error {
		var raw rawDemonPresent
		if err := node.Decode(&raw); err != nil {
			return err
		}
		return l.store.RegisterDemonPresent(raw.convert())
	})
}

func (l *Loader) loadDemonQuestRewards(src Source) error {
	return l.loadDefinitions(src, demonQuestRewardLocation, "demon quest reward", func(_ string, node *yaml.Node) error {
		var raw rawDemonQuestReward
		if err := node.Decode(&raw); err != nil {
			return err
		}
		return l.store.RegisterDemonQuestReward(raw.convert())
	})
}

func (l *Loader) loadDropSets(src Source) error {
	return l.loadDefinitions(src, dropSetLocation, "drop set", func(_ string, node *yaml.Node) error {
		var raw rawDropSet
		if err := node.Decode(&raw); err != nil {
			return err
		}
		return l.store.RegisterDropSet(raw.convert())
	})
}

func (l *Loader) loadZones(src Source) error {
	return l.loadDefinitions(src, zoneLocation, "zone", func(_ string, node *yaml.Node) error {
		var raw rawZone
		if err := node.Decode(&raw); err != nil {
			return err
		}
		z := raw.convert()
		label := fmt.Sprintf("Zone %s", z.Label())

		isField := false
		if l.registry != nil {
			zoneType, known := l.registry.ZoneType(z.ID)
			if !known {
				l.logger.Warn("skipping unknown zone", zap.String("zone", z.Label()))
				return nil
			}
			isField = zoneType == FieldZoneType
		}

		if err := l.checkSpawns(label, z.Spawns); err != nil {
			return err
		}
		for id, group := range z.SpawnGroups {
			for spawnID := range group.Spawns {
				if _, ok := z.Spawns[spawnID]; !ok {
					return fmt.Errorf("%s spawn group %d references invalid spawn %d", label, id, spawnID)
				}
			}
		}
		for id, group := range z.SpawnLocationGroups {
			for groupID := range group.GroupIDs {
				if _, ok := z.SpawnGroups[groupID]; !ok {
					return fmt.Errorf("%s spawn location group %d references invalid spawn group %d", label, id, groupID)
				}
			}
		}

		if err := l.validateZoneContent(label, z.NPCs, z.Objects, z.Spots, z.SpawnGroups, z.Triggers); err != nil {
			return err
		}
		return l.store.RegisterZone(z, isField)
	})
}

func (l *Loader) loadPartials(src Source) error {
	return l.loadDefinitions(src, partialLocation, "zone partial", func(_ string, node *yaml.Node) error {
		var raw rawPartial
		if err := node.Decode(&raw); err != nil {
			return err
		}
		p := raw.convert()
		label := fmt.Sprintf("Zone partial %d", p.ID)

		if p.ID == GlobalPartialID &&
			(len(p.NPCs) > 0 || len(p.Objects) > 0 || len(p.Spots) > 0 || len(p.DynamicMapIDs) > 0) {
			l.logger.Warn("global zone partial defines NPC, object, spot or" +
				" dynamic map content which will not be applied")
		}

		if err := l.checkSpawns(label, p.Spawns); err != nil {
			return err
		}
		if err := l.validateZoneContent(label, p.NPCs, p.Objects, p.Spots, p.SpawnGroups, p.Triggers); err != nil {
			return err
		}
		// The global partial is registered like any other and consumed on
		// demand through Store.Partial; it is never merged into stored
		// zone definitions.
		return l.store.RegisterPartial(p)
	})
}

func (l *Loader) loadEvents(src Source) error {
	return l.loadDefinitions(src, eventLocation, "event", func(_ string, node *yaml.Node) error {
		var raw rawEvent
		if err := node.Decode(&raw); err != nil {
			return err
		}
		e := raw.convert()
		if e.ID == "" {
			return fmt.Errorf("event with no ID encountered")
		}
		if !l.validator.ValidateActions(e.Actions, fmt.Sprintf("Event %s", e.ID), false, true) {
			return fmt.Errorf("event %q failed action validation", e.ID)
		}
		return l.store.RegisterEvent(e)
	})
}

func (l *Loader) loadInstances(src Source) error {
	return l.loadDefinitions(src, instanceLocation, "zone instance", func(_ string, node *yaml.Node) error {
		var raw rawInstance
		if err := node.Decode(&raw); err != nil {
			return err
		}
		inst := raw.convert()

		if len(inst.ZoneIDs) != len(inst.DynamicMapIDs) {
			return fmt.Errorf("zone instance %d defines %d zone IDs but %d dynamic map IDs",
				inst.ID, len(inst.ZoneIDs), len(inst.DynamicMapIDs))
		}
		if _, ok := l.store.Zone(inst.LobbyID, 0); !ok {
			l.logger.Warn("skipping zone instance with unknown lobby",
				zap.Uint32("instance_id", inst.ID),
				zap.Uint32("lobby_id", inst.LobbyID),
			)
			return nil
		}
		for idx, zoneID := range inst.ZoneIDs {
			if _, ok := l.store.Zone(zoneID, inst.DynamicMapIDs[idx]); !ok {
				return fmt.Errorf("zone instance %d references invalid zone %d (%d)",
					inst.ID, zoneID, inst.DynamicMapIDs[idx])
			}
		}
		return l.store.RegisterInstance(inst)
	})
}

func (l *Loader) loadVariants(src Source) error {
	return l.loadDefinitions(src, variantLocation, "zone instance variant", func(_ string, node *yaml.Node) error {
		var raw rawVariant
		if err := node.Decode(&raw); err != nil {
			return err
		}
		v := raw.convert()

		if err := checkVariantTimePoints(v); err != nil {
			return err
		}
		if v.InstanceType == InstancePentalpha && v.SubID >= 5 {
			return fmt.Errorf("invalid pentalpha zone instance variant sub ID %d on variant %d", v.SubID, v.ID)
		}
		if v.IsPvP() && v.DefaultInstanceID != 0 {
			if _, ok := l.store.Instance(v.DefaultInstanceID); !ok {
				return fmt.Errorf("PvP variant %d references invalid default instance %d",
					v.ID, v.DefaultInstanceID)
			}
			if l.registry != nil && !VerifyPvPInstance(l.store, l.registry, v.DefaultInstanceID) {
				return fmt.Errorf("PvP variant %d default instance %d contains non-PvP zones",
					v.ID, v.DefaultInstanceID)
			}
		}
		return l.store.RegisterVariant(v)
	})
}

// checkVariantTimePoints enforces the per-kind required time point counts.
func checkVariantTimePoints(v *ZoneInstanceVariant) error {
	n := len(v.TimePoints)
	ok := true
	switch v.InstanceType {
	case InstanceNormal, InstancePentalpha:
	case InstanceTimeTrial:
		ok = n == 4
	case InstancePvP:
		ok = n == 2 || n == 3
	case InstanceDemonOnly:
		ok = n == 3 || n == 4
	case InstanceDiaspora:
		ok = n == 2
	case InstanceMission:
		ok = n == 1
	default:
		return fmt.Errorf("zone instance variant %d has unknown instance type %q", v.ID, v.InstanceType)
	}
	if !ok {
		return fmt.Errorf("zone instance variant %d of type %q has invalid time point count %d",
			v.ID, v.InstanceType, n)
	}
	return nil
}

// VerifyPvPInstance reports whether every zone of the instance is a
// PvP-typed zone in the registry.
func VerifyPvPInstance(store *Store, registry SchemaRegistry, instanceID uint32) bool {
	inst, ok := store.Instance(instanceID)
	if !ok || registry == nil {
		return false
	}
	for _, zoneID := range inst.ZoneIDs {
		zoneType, known := registry.ZoneType(zoneID)
		if !known || zoneType != PvPZoneType {
			return false
		}
	}
	return true
}

func (l *Loader) loadShops(src Source) error {
	return l.loadDefinitions(src, shopLocation, "shop", func(_ string, node *yaml.Node) error {
		var raw rawShop
		if err := node.Decode(&raw); err != nil {
			return err
		}
		sh := raw.convert()
		if len(sh.Tabs) > maxShopTabs {
			return fmt.Errorf("shop %d has %d tabs, exceeding the maximum of %d",
				sh.ShopID, len(sh.Tabs), maxShopTabs)
		}
		return l.store.RegisterShop(sh)
	})
}

// checkSpawns enforces the per-spawn foreign key and category rules shared
// by zones and partials.
func (l *Loader) checkSpawns(label string, spawns map[uint32]*Spawn) error {
	for _, spawn := range spawns {
		if l.registry != nil && !l.registry.EnemyExists(spawn.EnemyType) {
			return fmt.Errorf("%s spawn %d references invalid enemy type %d",
				label, spawn.ID, spawn.EnemyType)
		}
		if spawn.BossGroup != 0 && spawn.Category != CategoryBoss {
			return fmt.Errorf("%s spawn %d is in boss group %d but is not a boss category spawn",
				label, spawn.ID, spawn.BossGroup)
		}
	}
	return nil
}

// validateZoneContent runs action validation over every action list a zone
// or partial carries. NPC, object, spot, and spawn group actions run with a
// player actor; trigger actions are classified by trigger kind.
func (l *Loader) validateZoneContent(label string, npcs []*NPC, objects []*Object, spots map[uint32]*Spot, groups map[uint32]*SpawnGroup, triggers []*Trigger) error {
	for _, npc := range npcs {
		if !l.validator.ValidateActions(npc.Actions, fmt.Sprintf("%s NPC %d", label, npc.ID), false, false) {
			return fmt.Errorf("%s NPC %d failed action validation", label, npc.ID)
		}
	}
	for _, obj := range objects {
		if !l.validator.ValidateActions(obj.Actions, fmt.Sprintf("%s object %d", label, obj.ID), false, false) {
			return fmt.Errorf("%s object %d failed action validation", label, obj.ID)
		}
	}
	for _, spot := range spots {
		if !l.validator.ValidateActions(spot.Actions, fmt.Sprintf("%s spot %d", label, spot.ID), false, false) ||
			!l.validator.ValidateActions(spot.LeaveActions, fmt.Sprintf("%s spot %d leave", label, spot.ID), false, false) {
			return fmt.Errorf("%s spot %d failed action validation", label, spot.ID)
		}
	}
	for _, group := range groups {
		if !l.validator.ValidateActions(group.SpawnActions, fmt.Sprintf("%s spawn group %d", label, group.ID), false, false) ||
			!l.validator.ValidateActions(group.DefeatActions, fmt.Sprintf("%s spawn group %d defeat", label, group.ID), false, false) {
			return fmt.Errorf("%s spawn group %d failed action validation", label, group.ID)
		}
	}
	for _, trigger := range triggers {
		auto := TriggerIsAutoContext(trigger)
		if !l.validator.ValidateActions(trigger.Actions, fmt.Sprintf("%s trigger %s", label, trigger.Trigger), auto, false) {
			return fmt.Errorf("%s trigger %s failed action validation", label, trigger.Trigger)
		}
	}
	return nil
}

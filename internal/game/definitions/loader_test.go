package definitions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eidolonmud/worlddata/internal/datastore"
)

type stubRegistry struct {
	zoneTypes map[uint32]uint8
	enemies   map[uint32]struct{}
}

func (r *stubRegistry) ZoneType(zoneID uint32) (uint8, bool) {
	t, ok := r.zoneTypes[zoneID]
	return t, ok
}

func (r *stubRegistry) EnemyExists(enemyType uint32) bool {
	_, ok := r.enemies[enemyType]
	return ok
}

func testRegistry() *stubRegistry {
	return &stubRegistry{
		zoneTypes: map[uint32]uint8{
			100: FieldZoneType,
			200: 1,
			300: PvPZoneType,
		},
		enemies: map[uint32]struct{}{500: {}, 501: {}},
	}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func openSource(t *testing.T, root string) Source {
	t.Helper()
	src, err := datastore.NewDir(root)
	require.NoError(t, err)
	return src
}

func newTestLoader(registry SchemaRegistry) (*Store, *Loader, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	store := NewStore()
	return store, NewLoader(store, registry, zap.New(core)), logs
}

const zonesYAML = `
objects:
  - id: 100
    name: "Harbor"
    npcs:
      - id: 1
        x: 10
        y: 20
        actions:
          - type: start_event
    spawns:
      - id: 1
        enemy_type: 500
      - id: 2
        enemy_type: 501
        category: boss
        boss_group: 3
    spawn_groups:
      - id: 10
        spawns:
          - spawn_id: 1
          - spawn_id: 2
            count: 2
    spawn_location_groups:
      - id: 20
        group_ids: [10]
        respawn_time: 30
    triggers:
      - trigger: on_zone_in
        actions:
          - type: display_message
  - id: 200
    dynamic_map_id: 201
    name: "Catacombs"
  - id: 300
    name: "Arena"
`

const partialsYAML = `
objects:
  - id: 0
    npcs:
      - id: 9
        x: 1
        y: 1
    spawns:
      - id: 50
        enemy_type: 500
  - id: 1
    auto_apply: true
    dynamic_map_ids: [201]
    drop_set_ids: [5]
`

const eventsYAML = `
objects:
  - id: intro
    event_type: perform_actions
    actions:
      - type: zone_change
        zone_id: 100
      - type: display_message
`

const instancesYAML = `
objects:
  - id: 1
    name: "Crypt Run"
    lobby_id: 100
    zone_ids: [200]
    dynamic_map_ids: [201]
  - id: 2
    name: "Arena Match"
    lobby_id: 100
    zone_ids: [300]
    dynamic_map_ids: [300]
`

const variantsYAML = `
objects:
  - id: 1
    instance_type: pvp
    time_points: [300, 600]
    match_type: fate
    default_instance_id: 2
  - id: 2
    instance_type: time_trial
    time_points: [60, 120, 180, 240]
`

const shopsYAML = `
objects:
  - shop_id: 1
    type: comp
    tabs:
      - name: "Supplies"
        products:
          - product_id: 9000
            base_price: 150
`

const aiScriptLua = `
function define(s)
  s.name = "patrol"
  s.type = "ai"
end

function prepare()
end
`

const customScriptLua = `
function define(s)
  s.name = "door_toggle"
  s.type = "actioncustom"
end

function run()
end
`

func writeContentTree(t *testing.T, root string) {
	t.Helper()
	// Bare-name fallback form for the schema-dependent kinds.
	writeFile(t, root, "ailogicgroup.yaml", "objects:\n  - id: 1\n    think_speed: 2000\n")
	writeFile(t, root, "demonpresent.yaml", "objects:\n  - id: 1\n    item_ids: [10, 11]\n    rarity: 2\n")
	writeFile(t, root, "demonquestreward.yaml", "objects:\n  - id: 1\n    item_ids: [12]\n    sequence_start: 5\n")
	writeFile(t, root, "dropset.yaml", "objects:\n  - id: 5\n    gift_box_id: 7\n    drops:\n      - item_type: 99\n        min_stack: 1\n        max_stack: 3\n        rate: 25.5\n")
	writeFile(t, root, "zones/zones.yaml", zonesYAML)
	writeFile(t, root, "zones/partial/partials.yaml", partialsYAML)
	writeFile(t, root, "events/events.yaml", eventsYAML)
	writeFile(t, root, "data/zoneinstance/instances.yaml", instancesYAML)
	writeFile(t, root, "data/zoneinstancevariant/variants.yaml", variantsYAML)
	writeFile(t, root, "shops/shops.yaml", shopsYAML)
	writeFile(t, root, "scripts/ai/patrol.lua", aiScriptLua)
	writeFile(t, root, "scripts/door_toggle.lua", customScriptLua)
}

func TestLoadAll_FullContentTree(t *testing.T) {
	root := t.TempDir()
	writeContentTree(t, root)

	store, loader, logs := newTestLoader(testRegistry())
	require.NoError(t, loader.LoadAll(openSource(t, root)))
	assert.True(t, store.Sealed())

	stats := store.Stats()
	assert.Equal(t, 3, stats.Zones)
	assert.Equal(t, 2, stats.Partials)
	assert.Equal(t, 2, stats.Instances)
	assert.Equal(t, 2, stats.Variants)
	assert.Equal(t, 1, stats.Events)
	assert.Equal(t, 1, stats.Shops)
	assert.Equal(t, 1, stats.AILogicGroups)
	assert.Equal(t, 1, stats.DemonPresents)
	assert.Equal(t, 1, stats.DemonQuestRewards)
	assert.Equal(t, 1, stats.DropSets)
	assert.Equal(t, 1, stats.Scripts)
	assert.Equal(t, 1, stats.AIScripts)

	// Zone 100 is a field zone; 200 keys under its dynamic map ID.
	assert.Equal(t, []ZoneRef{{ZoneID: 100, DynamicMapID: 100}}, store.FieldZoneIDs())
	_, ok := store.Zone(200, 201)
	assert.True(t, ok)

	// The partial file produced the auto-apply index. The global partial is
	// registered for on-demand lookup but never merged into stored zones.
	assert.Equal(t, []uint32{1}, store.AutoAppliedPartialIDs(201))
	z, ok := store.Zone(100, 100)
	require.True(t, ok)
	assert.NotContains(t, z.Spawns, uint32(50))
	require.Len(t, z.NPCs, 1)
	assert.Equal(t, uint32(1), z.NPCs[0].ID)
	gp, ok := store.Partial(GlobalPartialID)
	require.True(t, ok)
	assert.Contains(t, gp.Spawns, uint32(50))
	warned := false
	for _, entry := range logs.FilterLevelExact(zap.WarnLevel).All() {
		if entry.Message == "global zone partial defines NPC, object, spot or"+
			" dynamic map content which will not be applied" {
			warned = true
		}
	}
	assert.True(t, warned)

	d, ok := store.GiftDropSet(7)
	require.True(t, ok)
	assert.Equal(t, uint32(5), d.ID)

	// The event's mid-list zone change is suppressed by the event context.
	_, ok = store.Event("intro")
	assert.True(t, ok)

	assert.Equal(t, []uint32{1}, store.StandardPvPVariantIDs(MatchFate))
	assert.Equal(t, []uint32{1}, store.CompShopIDs())

	sc, ok := store.AIScript("patrol")
	require.True(t, ok)
	assert.Equal(t, "scripts/ai/patrol.lua", sc.Path)
	_, ok = store.Script("door_toggle")
	assert.True(t, ok)
}

func TestLoadAll_WithoutRegistrySkipsSchemaDependentKinds(t *testing.T) {
	root := t.TempDir()
	writeContentTree(t, root)

	store, loader, _ := newTestLoader(nil)
	require.NoError(t, loader.LoadAll(openSource(t, root)))

	stats := store.Stats()
	assert.Equal(t, 3, stats.Zones)
	assert.Zero(t, stats.AILogicGroups)
	assert.Zero(t, stats.DemonPresents)
	assert.Zero(t, stats.DemonQuestRewards)
	assert.Zero(t, stats.DropSets)
	// No registry means no field zone classification.
	assert.Empty(t, store.FieldZoneIDs())
}

func TestLoadAll_UnknownZoneSkippedWithWarning(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "zones/zones.yaml", "objects:\n  - id: 999\n    name: \"Ghost\"\n")

	store, loader, logs := newTestLoader(testRegistry())
	require.NoError(t, loader.LoadAll(openSource(t, root)))
	assert.Zero(t, store.Stats().Zones)

	found := false
	for _, entry := range logs.FilterLevelExact(zap.WarnLevel).All() {
		if entry.Message == "skipping unknown zone" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLoadAll_UnknownEnemyTypeFails(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "zones/zones.yaml", `
objects:
  - id: 100
    spawns:
      - id: 1
        enemy_type: 42
`)

	_, loader, _ := newTestLoader(testRegistry())
	err := loader.LoadAll(openSource(t, root))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid enemy type 42")
}

func TestLoadAll_BossGroupRequiresBossCategory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "zones/zones.yaml", `
objects:
  - id: 100
    spawns:
      - id: 1
        enemy_type: 500
        boss_group: 3
`)

	_, loader, _ := newTestLoader(testRegistry())
	err := loader.LoadAll(openSource(t, root))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a boss category spawn")
}

func TestLoadAll_DanglingSpawnGroupRefFails(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "zones/zones.yaml", `
objects:
  - id: 100
    spawn_groups:
      - id: 10
        spawns:
          - spawn_id: 99
`)

	_, loader, _ := newTestLoader(nil)
	err := loader.LoadAll(openSource(t, root))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "references invalid spawn 99")
}

func TestLoadAll_PlayerOnlyActionInAutoTriggerFails(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "zones/zones.yaml", `
objects:
  - id: 100
    triggers:
      - trigger: on_time
        actions:
          - type: grant_xp
            source_context: source
`)

	_, loader, _ := newTestLoader(nil)
	err := loader.LoadAll(openSource(t, root))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trigger on_time failed action validation")
}

func TestLoadAll_SpawnGroupActionsRunWithPlayerContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "zones/zones.yaml", `
objects:
  - id: 100
    spawns:
      - id: 1
        enemy_type: 500
    spawn_groups:
      - id: 10
        spawns:
          - spawn_id: 1
        defeat_actions:
          - type: grant_xp
            source_context: source
`)

	store, loader, _ := newTestLoader(testRegistry())
	require.NoError(t, loader.LoadAll(openSource(t, root)))
	assert.Equal(t, 1, store.Stats().Zones)
}

func TestLoadAll_GlobalPartialDoesNotClobberZoneGroups(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "zones/zones.yaml", `
objects:
  - id: 100
    spawns:
      - id: 1
    spawn_groups:
      - id: 5
        spawns:
          - spawn_id: 1
`)
	writeFile(t, root, "zones/partial/partials.yaml", `
objects:
  - id: 0
    spawns:
      - id: 9
    spawn_groups:
      - id: 5
        spawns:
          - spawn_id: 9
`)

	store, loader, _ := newTestLoader(nil)
	require.NoError(t, loader.LoadAll(openSource(t, root)))

	z, ok := store.Zone(100, 100)
	require.True(t, ok)
	require.Contains(t, z.SpawnGroups, uint32(5))
	assert.Equal(t, map[uint32]int{1: 1}, z.SpawnGroups[5].Spawns)
	assert.NotContains(t, z.Spawns, uint32(9))

	gp, ok := store.Partial(GlobalPartialID)
	require.True(t, ok)
	assert.Equal(t, map[uint32]int{9: 1}, gp.SpawnGroups[5].Spawns)
}

func TestLoadAll_DuplicateZoneFails(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "zones/a.yaml", "objects:\n  - id: 100\n")
	writeFile(t, root, "zones/b.yaml", "objects:\n  - id: 100\n")

	_, loader, _ := newTestLoader(nil)
	err := loader.LoadAll(openSource(t, root))
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestLoadAll_DuplicateGiftBoxFails(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "dropset.yaml", `
objects:
  - id: 1
    gift_box_id: 7
  - id: 2
    gift_box_id: 7
`)

	_, loader, _ := newTestLoader(testRegistry())
	err := loader.LoadAll(openSource(t, root))
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestLoadAll_InstanceParallelArrayMismatchFails(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "zones/zones.yaml", "objects:\n  - id: 100\n")
	writeFile(t, root, "data/zoneinstance/instances.yaml", `
objects:
  - id: 1
    lobby_id: 100
    zone_ids: [100, 100, 100]
    dynamic_map_ids: [100, 100]
`)

	_, loader, _ := newTestLoader(nil)
	err := loader.LoadAll(openSource(t, root))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 zone IDs but 2 dynamic map IDs")
}

func TestLoadAll_InstanceUnknownLobbySkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "zones/zones.yaml", "objects:\n  - id: 100\n")
	writeFile(t, root, "data/zoneinstance/instances.yaml", `
objects:
  - id: 1
    lobby_id: 9999
    zone_ids: [100]
    dynamic_map_ids: [100]
`)

	store, loader, logs := newTestLoader(nil)
	require.NoError(t, loader.LoadAll(openSource(t, root)))
	assert.Zero(t, store.Stats().Instances)
	assert.GreaterOrEqual(t, logs.FilterLevelExact(zap.WarnLevel).Len(), 1)
}

func TestLoadAll_InstanceUnknownZoneFails(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "zones/zones.yaml", "objects:\n  - id: 100\n")
	writeFile(t, root, "data/zoneinstance/instances.yaml", `
objects:
  - id: 1
    lobby_id: 100
    zone_ids: [100, 555]
    dynamic_map_ids: [100, 555]
`)

	_, loader, _ := newTestLoader(nil)
	err := loader.LoadAll(openSource(t, root))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid zone 555")
}

func TestLoadAll_VariantTimePointCounts(t *testing.T) {
	cases := map[string]string{
		"time_trial": "time_points: [1, 2, 3]",
		"pvp":        "time_points: [1]",
		"demon_only": "time_points: [1, 2]",
		"diaspora":   "time_points: [1, 2, 3]",
		"mission":    "time_points: [1, 2]",
	}
	for kind, timePoints := range cases {
		root := t.TempDir()
		writeFile(t, root, "data/zoneinstancevariant/variants.yaml",
			"objects:\n  - id: 1\n    instance_type: "+kind+"\n    "+timePoints+"\n")

		_, loader, _ := newTestLoader(nil)
		err := loader.LoadAll(openSource(t, root))
		require.Error(t, err, "kind %s", kind)
		assert.Contains(t, err.Error(), "invalid time point count", "kind %s", kind)
	}
}

func TestLoadAll_PentalphaSubIDLimit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "data/zoneinstancevariant/variants.yaml", `
objects:
  - id: 1
    instance_type: pentalpha
    sub_id: 5
`)

	_, loader, _ := newTestLoader(nil)
	err := loader.LoadAll(openSource(t, root))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pentalpha")
}

func TestLoadAll_PvPVariantNonPvPInstanceFails(t *testing.T) {
	root := t.TempDir()
	// Zone 200 is not PvP-typed in the registry.
	writeFile(t, root, "zones/zones.yaml", "objects:\n  - id: 100\n  - id: 200\n    dynamic_map_id: 201\n")
	writeFile(t, root, "data/zoneinstance/instances.yaml", `
objects:
  - id: 1
    lobby_id: 100
    zone_ids: [200]
    dynamic_map_ids: [201]
`)
	writeFile(t, root, "data/zoneinstancevariant/variants.yaml", `
objects:
  - id: 1
    instance_type: pvp
    time_points: [300, 600]
    match_type: fate
    default_instance_id: 1
`)

	_, loader, _ := newTestLoader(testRegistry())
	err := loader.LoadAll(openSource(t, root))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-PvP zones")
}

func TestLoadAll_ShopTabLimit(t *testing.T) {
	root := t.TempDir()
	content := "objects:\n  - shop_id: 1\n    tabs:\n"
	for i := 0; i < 101; i++ {
		content += "      - name: tab\n"
	}
	writeFile(t, root, "shops/shops.yaml", content)

	_, loader, _ := newTestLoader(nil)
	err := loader.LoadAll(openSource(t, root))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeding the maximum")
}

func TestLoadAll_EmptyFileWarnsAndContinues(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "zones/empty.yaml", "")
	writeFile(t, root, "zones/zones.yaml", "objects:\n  - id: 100\n")

	store, loader, logs := newTestLoader(nil)
	require.NoError(t, loader.LoadAll(openSource(t, root)))
	assert.Equal(t, 1, store.Stats().Zones)

	found := false
	for _, entry := range logs.FilterLevelExact(zap.WarnLevel).All() {
		if entry.Message == "no definitions found in file" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLoadAll_MalformedDocumentFails(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "zones/zones.yaml", "objects: [not: [valid yaml")

	_, loader, _ := newTestLoader(nil)
	assert.Error(t, loader.LoadAll(openSource(t, root)))
}

func TestLoadAll_MissingLocationsWarnOnly(t *testing.T) {
	root := t.TempDir()

	store, loader, logs := newTestLoader(nil)
	require.NoError(t, loader.LoadAll(openSource(t, root)))
	assert.Zero(t, store.Stats().Zones)
	assert.GreaterOrEqual(t, logs.FilterLevelExact(zap.WarnLevel).Len(), 1)
}

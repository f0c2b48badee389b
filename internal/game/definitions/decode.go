package definitions

// Raw YAML document shapes and their converters into domain types. Every
// definition file is a document with a repeated `objects` node under the
// root; each object node decodes through one of these shapes.

type rawAction struct {
	Type          string      `yaml:"type"`
	SourceContext string      `yaml:"source_context"`
	ZoneID        uint32      `yaml:"zone_id"`
	DynamicMapID  uint32      `yaml:"dynamic_map_id"`
	Mode          string      `yaml:"mode"`
	InstanceID    uint32      `yaml:"instance_id"`
	Actions       []rawAction `yaml:"actions"`
	DefeatActions []rawAction `yaml:"defeat_actions"`
}

func (r rawAction) convert() *Action {
	a := &Action{
		Type:          ActionType(r.Type),
		SourceContext: ContextInteracting,
		ZoneID:        r.ZoneID,
		DynamicMapID:  r.DynamicMapID,
		Mode:          InstanceJoinMode(r.Mode),
		InstanceID:    r.InstanceID,
		Actions:       convertActions(r.Actions),
		DefeatActions: convertActions(r.DefeatActions),
	}
	if r.SourceContext != "" {
		a.SourceContext = SourceContext(r.SourceContext)
	}
	return a
}

func convertActions(raw []rawAction) []*Action {
	if len(raw) == 0 {
		return nil
	}
	out := make([]*Action, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.convert())
	}
	return out
}

type rawPlacement struct {
	ID       uint32      `yaml:"id"`
	SpotID   uint32      `yaml:"spot_id"`
	X        float32     `yaml:"x"`
	Y        float32     `yaml:"y"`
	Rotation float32     `yaml:"rotation"`
	Actions  []rawAction `yaml:"actions"`
}

func (r rawPlacement) convertNPC() *NPC {
	return &NPC{
		ID:       r.ID,
		SpotID:   r.SpotID,
		X:        r.X,
		Y:        r.Y,
		Rotation: r.Rotation,
		Actions:  convertActions(r.Actions),
	}
}

func (r rawPlacement) convertObject() *Object {
	return &Object{
		ID:       r.ID,
		SpotID:   r.SpotID,
		X:        r.X,
		Y:        r.Y,
		Rotation: r.Rotation,
		Actions:  convertActions(r.Actions),
	}
}

type rawSpawn struct {
	ID        uint32 `yaml:"id"`
	EnemyType uint32 `yaml:"enemy_type"`
	Category  string `yaml:"category"`
	BossGroup uint32 `yaml:"boss_group"`
	Level     int8   `yaml:"level"`
}

func (r rawSpawn) convert() *Spawn {
	category := CategoryNormal
	if r.Category != "" {
		category = SpawnCategory(r.Category)
	}
	return &Spawn{
		ID:        r.ID,
		EnemyType: r.EnemyType,
		Category:  category,
		BossGroup: r.BossGroup,
		Level:     r.Level,
	}
}

type rawSpawnRef struct {
	SpawnID uint32 `yaml:"spawn_id"`
	Count   int    `yaml:"count"`
}

type rawSpawnGroup struct {
	ID            uint32        `yaml:"id"`
	Spawns        []rawSpawnRef `yaml:"spawns"`
	SpawnActions  []rawAction   `yaml:"spawn_actions"`
	DefeatActions []rawAction   `yaml:"defeat_actions"`
}

func (r rawSpawnGroup) convert() *SpawnGroup {
	g := &SpawnGroup{
		ID:            r.ID,
		Spawns:        make(map[uint32]int, len(r.Spawns)),
		SpawnActions:  convertActions(r.SpawnActions),
		DefeatActions: convertActions(r.DefeatActions),
	}
	for _, ref := range r.Spawns {
		count := ref.Count
		if count == 0 {
			count = 1
		}
		g.Spawns[ref.SpawnID] = count
	}
	return g
}

type rawSpawnLocationGroup struct {
	ID          uint32   `yaml:"id"`
	GroupIDs    []uint32 `yaml:"group_ids"`
	RespawnTime float32  `yaml:"respawn_time"`
}

func (r rawSpawnLocationGroup) convert() *SpawnLocationGroup {
	g := &SpawnLocationGroup{
		ID:          r.ID,
		GroupIDs:    make(map[uint32]struct{}, len(r.GroupIDs)),
		RespawnTime: r.RespawnTime,
	}
	for _, id := range r.GroupIDs {
		g.GroupIDs[id] = struct{}{}
	}
	return g
}

type rawSpot struct {
	ID           uint32      `yaml:"id"`
	Actions      []rawAction `yaml:"actions"`
	LeaveActions []rawAction `yaml:"leave_actions"`
}

func (r rawSpot) convert() *Spot {
	return &Spot{
		ID:           r.ID,
		Actions:      convertActions(r.Actions),
		LeaveActions: convertActions(r.LeaveActions),
	}
}

type rawTrigger struct {
	Trigger string      `yaml:"trigger"`
	Actions []rawAction `yaml:"actions"`
}

func (r rawTrigger) convert() *Trigger {
	return &Trigger{
		Trigger: TriggerType(r.Trigger),
		Actions: convertActions(r.Actions),
	}
}

type rawZone struct {
	ID                  uint32                  `yaml:"id"`
	DynamicMapID        uint32                  `yaml:"dynamic_map_id"`
	Name                string                  `yaml:"name"`
	NPCs                []rawPlacement          `yaml:"npcs"`
	Objects             []rawPlacement          `yaml:"objects"`
	Spawns              []rawSpawn              `yaml:"spawns"`
	SpawnGroups         []rawSpawnGroup         `yaml:"spawn_groups"`
	SpawnLocationGroups []rawSpawnLocationGroup `yaml:"spawn_location_groups"`
	Spots               []rawSpot               `yaml:"spots"`
	Triggers            []rawTrigger            `yaml:"triggers"`
	DropSetIDs          []uint32                `yaml:"drop_set_ids"`
	SkillWhitelist      []uint32                `yaml:"skill_whitelist"`
	SkillBlacklist      []uint32                `yaml:"skill_blacklist"`
}

func (r rawZone) convert() *Zone {
	z := &Zone{
		ID:                  r.ID,
		DynamicMapID:        r.DynamicMapID,
		Name:                r.Name,
		Spawns:              make(map[uint32]*Spawn, len(r.Spawns)),
		SpawnGroups:         make(map[uint32]*SpawnGroup, len(r.SpawnGroups)),
		SpawnLocationGroups: make(map[uint32]*SpawnLocationGroup, len(r.SpawnLocationGroups)),
		Spots:               make(map[uint32]*Spot, len(r.Spots)),
		DropSetIDs:          toIDSet(r.DropSetIDs),
		SkillWhitelist:      toIDSet(r.SkillWhitelist),
		SkillBlacklist:      toIDSet(r.SkillBlacklist),
	}
	// A zone with no dynamic map variant is its own dynamic map.
	if z.DynamicMapID == 0 {
		z.DynamicMapID = z.ID
	}
	for _, p := range r.NPCs {
		z.NPCs = append(z.NPCs, p.convertNPC())
	}
	for _, p := range r.Objects {
		z.Objects = append(z.Objects, p.convertObject())
	}
	for _, s := range r.Spawns {
		spawn := s.convert()
		z.Spawns[spawn.ID] = spawn
	}
	for _, g := range r.SpawnGroups {
		group := g.convert()
		z.SpawnGroups[group.ID] = group
	}
	for _, g := range r.SpawnLocationGroups {
		group := g.convert()
		z.SpawnLocationGroups[group.ID] = group
	}
	for _, s := range r.Spots {
		spot := s.convert()
		z.Spots[spot.ID] = spot
	}
	for _, t := range r.Triggers {
		z.Triggers = append(z.Triggers, t.convert())
	}
	return z
}

type rawPartial struct {
	ID                  uint32                  `yaml:"id"`
	AutoApply           bool                    `yaml:"auto_apply"`
	DynamicMapIDs       []uint32                `yaml:"dynamic_map_ids"`
	NPCs                []rawPlacement          `yaml:"npcs"`
	Objects             []rawPlacement          `yaml:"objects"`
	Spawns              []rawSpawn              `yaml:"spawns"`
	SpawnGroups         []rawSpawnGroup         `yaml:"spawn_groups"`
	SpawnLocationGroups []rawSpawnLocationGroup `yaml:"spawn_location_groups"`
	Spots               []rawSpot               `yaml:"spots"`
	Triggers            []rawTrigger            `yaml:"triggers"`
	DropSetIDs          []uint32                `yaml:"drop_set_ids"`
	SkillWhitelist      []uint32                `yaml:"skill_whitelist"`
	SkillBlacklist      []uint32                `yaml:"skill_blacklist"`
}

func (r rawPartial) convert() *ZonePartial {
	p := &ZonePartial{
		ID:                  r.ID,
		AutoApply:           r.AutoApply,
		DynamicMapIDs:       toIDSet(r.DynamicMapIDs),
		Spawns:              make(map[uint32]*Spawn, len(r.Spawns)),
		SpawnGroups:         make(map[uint32]*SpawnGroup, len(r.SpawnGroups)),
		SpawnLocationGroups: make(map[uint32]*SpawnLocationGroup, len(r.SpawnLocationGroups)),
		Spots:               make(map[uint32]*Spot, len(r.Spots)),
		DropSetIDs:          toIDSet(r.DropSetIDs),
		SkillWhitelist:      toIDSet(r.SkillWhitelist),
		SkillBlacklist:      toIDSet(r.SkillBlacklist),
	}
	for _, pl := range r.NPCs {
		p.NPCs = append(p.NPCs, pl.convertNPC())
	}
	for _, pl := range r.Objects {
		p.Objects = append(p.Objects, pl.convertObject())
	}
	for _, s := range r.Spawns {
		spawn := s.convert()
		p.Spawns[spawn.ID] = spawn
	}
	for _, g := range r.SpawnGroups {
		group := g.convert()
		p.SpawnGroups[group.ID] = group
	}
	for _, g := range r.SpawnLocationGroups {
		group := g.convert()
		p.SpawnLocationGroups[group.ID] = group
	}
	for _, s := range r.Spots {
		spot := s.convert()
		p.Spots[spot.ID] = spot
	}
	for _, t := range r.Triggers {
		p.Triggers = append(p.Triggers, t.convert())
	}
	return p
}

type rawInstance struct {
	ID            uint32   `yaml:"id"`
	Name          string   `yaml:"name"`
	LobbyID       uint32   `yaml:"lobby_id"`
	ZoneIDs       []uint32 `yaml:"zone_ids"`
	DynamicMapIDs []uint32 `yaml:"dynamic_map_ids"`
}

func (r rawInstance) convert() *ZoneInstance {
	return &ZoneInstance{
		ID:            r.ID,
		Name:          r.Name,
		LobbyID:       r.LobbyID,
		ZoneIDs:       r.ZoneIDs,
		DynamicMapIDs: r.DynamicMapIDs,
	}
}

type rawVariant struct {
	ID                uint32   `yaml:"id"`
	InstanceType      string   `yaml:"instance_type"`
	TimePoints        []uint32 `yaml:"time_points"`
	SubID             uint8    `yaml:"sub_id"`
	MatchType         string   `yaml:"match_type"`
	SpecialMode       bool     `yaml:"special_mode"`
	DefaultInstanceID uint32   `yaml:"default_instance_id"`
}

func (r rawVariant) convert() *ZoneInstanceVariant {
	v := &ZoneInstanceVariant{
		ID:                r.ID,
		InstanceType:      InstanceNormal,
		TimePoints:        r.TimePoints,
		SubID:             r.SubID,
		MatchType:         PvPMatchType(r.MatchType),
		SpecialMode:       r.SpecialMode,
		DefaultInstanceID: r.DefaultInstanceID,
	}
	if r.InstanceType != "" {
		v.InstanceType = InstanceType(r.InstanceType)
	}
	return v
}

type rawShopProduct struct {
	ProductID uint32 `yaml:"product_id"`
	BasePrice uint32 `yaml:"base_price"`
	Trend     uint8  `yaml:"trend"`
}

type rawShopTab struct {
	Name     string           `yaml:"name"`
	Products []rawShopProduct `yaml:"products"`
}

type rawShop struct {
	ShopID uint32       `yaml:"shop_id"`
	Type   string       `yaml:"type"`
	Tabs   []rawShopTab `yaml:"tabs"`
}

func (r rawShop) convert() *Shop {
	s := &Shop{
		ShopID: r.ShopID,
		Type:   ShopNormal,
	}
	if r.Type != "" {
		s.Type = ShopType(r.Type)
	}
	for _, t := range r.Tabs {
		tab := &ShopTab{Name: t.Name}
		for _, p := range t.Products {
			tab.Products = append(tab.Products, &ShopProduct{
				ProductID: p.ProductID,
				BasePrice: p.BasePrice,
				Trend:     p.Trend,
			})
		}
		s.Tabs = append(s.Tabs, tab)
	}
	return s
}

type rawEvent struct {
	ID        string      `yaml:"id"`
	EventType string      `yaml:"event_type"`
	Actions   []rawAction `yaml:"actions"`
}

func (r rawEvent) convert() *Event {
	return &Event{
		ID:        r.ID,
		EventType: EventType(r.EventType),
		Actions:   convertActions(r.Actions),
	}
}

type rawDrop struct {
	ItemType uint32  `yaml:"item_type"`
	MinStack uint16  `yaml:"min_stack"`
	MaxStack uint16  `yaml:"max_stack"`
	Rate     float32 `yaml:"rate"`
}

type rawDropSet struct {
	ID        uint32    `yaml:"id"`
	GiftBoxID uint32    `yaml:"gift_box_id"`
	Drops     []rawDrop `yaml:"drops"`
}

func (r rawDropSet) convert() *DropSet {
	d := &DropSet{
		ID:        r.ID,
		GiftBoxID: r.GiftBoxID,
	}
	for _, drop := range r.Drops {
		d.Drops = append(d.Drops, &Drop{
			ItemType: drop.ItemType,
			MinStack: drop.MinStack,
			MaxStack: drop.MaxStack,
			Rate:     drop.Rate,
		})
	}
	return d
}

type rawAILogicGroup struct {
	ID         uint16 `yaml:"id"`
	ThinkSpeed uint32 `yaml:"think_speed"`
	AggroLimit uint8  `yaml:"aggro_limit"`
	Script     string `yaml:"script"`
}

func (r rawAILogicGroup) convert() *AILogicGroup {
	return &AILogicGroup{
		ID:         r.ID,
		ThinkSpeed: r.ThinkSpeed,
		AggroLimit: r.AggroLimit,
		Script:     r.Script,
	}
}

type rawDemonPresent struct {
	ID      uint32   `yaml:"id"`
	ItemIDs []uint32 `yaml:"item_ids"`
	Rarity  uint8    `yaml:"rarity"`
}

func (r rawDemonPresent) convert() *DemonPresent {
	return &DemonPresent{ID: r.ID, ItemIDs: r.ItemIDs, Rarity: r.Rarity}
}

type rawDemonQuestReward struct {
	ID            uint32   `yaml:"id"`
	QuestType     uint8    `yaml:"quest_type"`
	ItemIDs       []uint32 `yaml:"item_ids"`
	SequenceStart uint32   `yaml:"sequence_start"`
}

func (r rawDemonQuestReward) convert() *DemonQuestReward {
	return &DemonQuestReward{
		ID:            r.ID,
		QuestType:     r.QuestType,
		ItemIDs:       r.ItemIDs,
		SequenceStart: r.SequenceStart,
	}
}

func toIDSet(ids []uint32) map[uint32]struct{} {
	set := make(map[uint32]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

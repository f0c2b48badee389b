package definitions

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for registration failures.
var (
	// ErrDuplicate marks a definition whose key is already registered.
	ErrDuplicate = errors.New("duplicate definition")
	// ErrSealed marks a registration attempted after Seal.
	ErrSealed = errors.New("definition store is sealed")
)

// ZoneRef identifies one zone definition by its compound key.
type ZoneRef struct {
	ZoneID       uint32
	DynamicMapID uint32
}

// Store holds every loaded definition kind in typed, keyed indices.
// A Store is write-only during loading and read-only after Seal; sealed
// stores are safe for concurrent readers without locking because no write
// ever follows the seal.
type Store struct {
	sealed bool

	zones        map[uint32]map[uint32]*Zone
	firstDynamic map[uint32]uint32
	fieldZones   []ZoneRef

	partials   map[uint32]*ZonePartial
	partialMap map[uint32]map[uint32]struct{}

	instances           map[uint32]*ZoneInstance
	variants            map[uint32]*ZoneInstanceVariant
	standardPvPVariants map[PvPMatchType]map[uint32]struct{}

	events      map[string]*Event
	shops       map[uint32]*Shop
	compShopIDs []uint32

	aiLogicGroups     map[uint16]*AILogicGroup
	demonPresents     map[uint32]*DemonPresent
	demonQuestRewards map[uint32]*DemonQuestReward

	dropSets     map[uint32]*DropSet
	giftDropSets map[uint32]uint32

	scripts   map[string]*ServerScript
	aiScripts map[string]*ServerScript
}

// NewStore creates an empty, unsealed Store.
func NewStore() *Store {
	return &Store{
		zones:               make(map[uint32]map[uint32]*Zone),
		firstDynamic:        make(map[uint32]uint32),
		partials:            make(map[uint32]*ZonePartial),
		partialMap:          make(map[uint32]map[uint32]struct{}),
		instances:           make(map[uint32]*ZoneInstance),
		variants:            make(map[uint32]*ZoneInstanceVariant),
		standardPvPVariants: make(map[PvPMatchType]map[uint32]struct{}),
		events:              make(map[string]*Event),
		shops:               make(map[uint32]*Shop),
		aiLogicGroups:       make(map[uint16]*AILogicGroup),
		demonPresents:       make(map[uint32]*DemonPresent),
		demonQuestRewards:   make(map[uint32]*DemonQuestReward),
		dropSets:            make(map[uint32]*DropSet),
		giftDropSets:        make(map[uint32]uint32),
		scripts:             make(map[string]*ServerScript),
		aiScripts:           make(map[string]*ServerScript),
	}
}

// Seal makes the store read-only. Registration after Seal fails with
// ErrSealed. Seal is idempotent.
func (s *Store) Seal() {
	s.sealed = true
}

// Sealed reports whether the store has been sealed.
func (s *Store) Sealed() bool {
	return s.sealed
}

// RegisterZone adds a zone under its (ID, DynamicMapID) key. isField marks
// the zone for the field-zone index.
func (s *Store) RegisterZone(z *Zone, isField bool) error {
	if s.sealed {
		return ErrSealed
	}
	byDynamic, ok := s.zones[z.ID]
	if !ok {
		byDynamic = make(map[uint32]*Zone)
		s.zones[z.ID] = byDynamic
		s.firstDynamic[z.ID] = z.DynamicMapID
	}
	if _, exists := byDynamic[z.DynamicMapID]; exists {
		return fmt.Errorf("zone %s: %w", z.Label(), ErrDuplicate)
	}
	byDynamic[z.DynamicMapID] = z
	if isField {
		s.fieldZones = append(s.fieldZones, ZoneRef{ZoneID: z.ID, DynamicMapID: z.DynamicMapID})
	}
	return nil
}

// Zone looks up a zone by ID and dynamic map ID. A zero dynamicMapID
// returns an arbitrary (first-registered) match; callers must not depend on
// which definition is returned when ambiguous.
func (s *Store) Zone(zoneID, dynamicMapID uint32) (*Zone, bool) {
	byDynamic, ok := s.zones[zoneID]
	if !ok {
		return nil, false
	}
	if dynamicMapID == 0 {
		dynamicMapID = s.firstDynamic[zoneID]
	}
	z, ok := byDynamic[dynamicMapID]
	return z, ok
}

// AllZoneIDs returns every registered zone ID with its dynamic map IDs.
func (s *Store) AllZoneIDs() map[uint32][]uint32 {
	out := make(map[uint32][]uint32, len(s.zones))
	for id, byDynamic := range s.zones {
		for dmID := range byDynamic {
			out[id] = append(out[id], dmID)
		}
		sort.Slice(out[id], func(a, b int) bool { return out[id][a] < out[id][b] })
	}
	return out
}

// FieldZoneIDs returns the (zoneID, dynamicMapID) pairs of all field zones
// in registration order.
func (s *Store) FieldZoneIDs() []ZoneRef {
	out := make([]ZoneRef, len(s.fieldZones))
	copy(out, s.fieldZones)
	return out
}

// RegisterPartial adds a zone partial. Auto-apply partials are indexed by
// every dynamic map ID in their scope; the global partial (ID 0) is never
// indexed.
func (s *Store) RegisterPartial(p *ZonePartial) error {
	if s.sealed {
		return ErrSealed
	}
	if _, exists := s.partials[p.ID]; exists {
		return fmt.Errorf("zone partial %d: %w", p.ID, ErrDuplicate)
	}
	s.partials[p.ID] = p
	if p.ID != GlobalPartialID && p.AutoApply {
		for dmID := range p.DynamicMapIDs {
			set, ok := s.partialMap[dmID]
			if !ok {
				set = make(map[uint32]struct{})
				s.partialMap[dmID] = set
			}
			set[p.ID] = struct{}{}
		}
	}
	return nil
}

// Partial looks up a zone partial by ID.
func (s *Store) Partial(id uint32) (*ZonePartial, bool) {
	p, ok := s.partials[id]
	return p, ok
}

// AutoAppliedPartialIDs returns the IDs of all auto-apply partials scoped
// to the given dynamic map ID, in ascending order.
func (s *Store) AutoAppliedPartialIDs(dynamicMapID uint32) []uint32 {
	set, ok := s.partialMap[dynamicMapID]
	if !ok {
		return nil
	}
	out := make([]uint32, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// RegisterInstance adds a zone instance.
func (s *Store) RegisterInstance(i *ZoneInstance) error {
	if s.sealed {
		return ErrSealed
	}
	if _, exists := s.instances[i.ID]; exists {
		return fmt.Errorf("zone instance %d: %w", i.ID, ErrDuplicate)
	}
	s.instances[i.ID] = i
	return nil
}

// Instance looks up a zone instance by ID.
func (s *Store) Instance(id uint32) (*ZoneInstance, bool) {
	i, ok := s.instances[id]
	return i, ok
}

// AllInstanceIDs returns every registered instance ID in ascending order.
func (s *Store) AllInstanceIDs() []uint32 {
	out := make([]uint32, 0, len(s.instances))
	for id := range s.instances {
		out = append(out, id)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// ExistsInInstance reports whether the given zone belongs to the instance.
// A zero dynamicMapID matches any dynamic map.
func (s *Store) ExistsInInstance(instanceID, zoneID, dynamicMapID uint32) bool {
	i, ok := s.instances[instanceID]
	return ok && i.Contains(zoneID, dynamicMapID)
}

// RegisterVariant adds a zone instance variant. PvP variants that are
// neither special mode nor custom match type are indexed by match type.
func (s *Store) RegisterVariant(v *ZoneInstanceVariant) error {
	if s.sealed {
		return ErrSealed
	}
	if _, exists := s.variants[v.ID]; exists {
		return fmt.Errorf("zone instance variant %d: %w", v.ID, ErrDuplicate)
	}
	s.variants[v.ID] = v
	if v.IsPvP() && !v.SpecialMode && v.MatchType != MatchCustom {
		set, ok := s.standardPvPVariants[v.MatchType]
		if !ok {
			set = make(map[uint32]struct{})
			s.standardPvPVariants[v.MatchType] = set
		}
		set[v.ID] = struct{}{}
	}
	return nil
}

// Variant looks up a zone instance variant by ID.
func (s *Store) Variant(id uint32) (*ZoneInstanceVariant, bool) {
	v, ok := s.variants[id]
	return v, ok
}

// StandardPvPVariantIDs returns all standard (non-special, non-custom) PvP
// variant IDs of the given match type, in ascending order.
func (s *Store) StandardPvPVariantIDs(matchType PvPMatchType) []uint32 {
	set, ok := s.standardPvPVariants[matchType]
	if !ok {
		return nil
	}
	out := make([]uint32, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// RegisterEvent adds an event keyed by its string ID.
func (s *Store) RegisterEvent(e *Event) error {
	if s.sealed {
		return ErrSealed
	}
	if _, exists := s.events[e.ID]; exists {
		return fmt.Errorf("event %q: %w", e.ID, ErrDuplicate)
	}
	s.events[e.ID] = e
	return nil
}

// Event looks up an event by ID.
func (s *Store) Event(id string) (*Event, bool) {
	e, ok := s.events[id]
	return e, ok
}

// RegisterShop adds a shop. COMP shops are additionally indexed.
func (s *Store) RegisterShop(sh *Shop) error {
	if s.sealed {
		return ErrSealed
	}
	if _, exists := s.shops[sh.ShopID]; exists {
		return fmt.Errorf("shop %d: %w", sh.ShopID, ErrDuplicate)
	}
	s.shops[sh.ShopID] = sh
	if sh.Type == ShopCOMP {
		s.compShopIDs = append(s.compShopIDs, sh.ShopID)
	}
	return nil
}

// Shop looks up a shop by ID.
func (s *Store) Shop(id uint32) (*Shop, bool) {
	sh, ok := s.shops[id]
	return sh, ok
}

// CompShopIDs returns all COMP shop IDs in registration order.
func (s *Store) CompShopIDs() []uint32 {
	out := make([]uint32, len(s.compShopIDs))
	copy(out, s.compShopIDs)
	return out
}

// RegisterAILogicGroup adds an AI logic group.
func (s *Store) RegisterAILogicGroup(g *AILogicGroup) error {
	if s.sealed {
		return ErrSealed
	}
	if _, exists := s.aiLogicGroups[g.ID]; exists {
		return fmt.Errorf("AI logic group %d: %w", g.ID, ErrDuplicate)
	}
	s.aiLogicGroups[g.ID] = g
	return nil
}

// AILogicGroup looks up an AI logic group by ID.
func (s *Store) AILogicGroup(id uint16) (*AILogicGroup, bool) {
	g, ok := s.aiLogicGroups[id]
	return g, ok
}

// RegisterDemonPresent adds a demon present entry.
func (s *Store) RegisterDemonPresent(p *DemonPresent) error {
	if s.sealed {
		return ErrSealed
	}
	if _, exists := s.demonPresents[p.ID]; exists {
		return fmt.Errorf("demon present %d: %w", p.ID, ErrDuplicate)
	}
	s.demonPresents[p.ID] = p
	return nil
}

// DemonPresent looks up a demon present entry by ID.
func (s *Store) DemonPresent(id uint32) (*DemonPresent, bool) {
	p, ok := s.demonPresents[id]
	return p, ok
}

// RegisterDemonQuestReward adds a demon quest reward entry.
func (s *Store) RegisterDemonQuestReward(r *DemonQuestReward) error {
	if s.sealed {
		return ErrSealed
	}
	if _, exists := s.demonQuestRewards[r.ID]; exists {
		return fmt.Errorf("demon quest reward %d: %w", r.ID, ErrDuplicate)
	}
	s.demonQuestRewards[r.ID] = r
	return nil
}

// DemonQuestRewards returns all demon quest reward entries keyed by ID.
func (s *Store) DemonQuestRewards() map[uint32]*DemonQuestReward {
	out := make(map[uint32]*DemonQuestReward, len(s.demonQuestRewards))
	for id, r := range s.demonQuestRewards {
		out[id] = r
	}
	return out
}

// RegisterDropSet adds a drop set. A nonzero gift box ID must be unique
// across all drop sets; the gift-box index is maintained here.
func (s *Store) RegisterDropSet(d *DropSet) error {
	if s.sealed {
		return ErrSealed
	}
	if _, exists := s.dropSets[d.ID]; exists {
		return fmt.Errorf("drop set %d: %w", d.ID, ErrDuplicate)
	}
	if d.GiftBoxID != 0 {
		if _, exists := s.giftDropSets[d.GiftBoxID]; exists {
			return fmt.Errorf("drop set gift box %d: %w", d.GiftBoxID, ErrDuplicate)
		}
		s.giftDropSets[d.GiftBoxID] = d.ID
	}
	s.dropSets[d.ID] = d
	return nil
}

// DropSet looks up a drop set by ID.
func (s *Store) DropSet(id uint32) (*DropSet, bool) {
	d, ok := s.dropSets[id]
	return d, ok
}

// GiftDropSet looks up the drop set claiming the given gift box ID.
func (s *Store) GiftDropSet(giftBoxID uint32) (*DropSet, bool) {
	id, ok := s.giftDropSets[giftBoxID]
	if !ok {
		return nil, false
	}
	return s.DropSet(id)
}

// RegisterScript adds a script to its namespace: "ai"-typed scripts are
// keyed separately from all other script types.
func (s *Store) RegisterScript(sc *ServerScript) error {
	if s.sealed {
		return ErrSealed
	}
	if strings.EqualFold(sc.Type, "ai") {
		if _, exists := s.aiScripts[sc.Name]; exists {
			return fmt.Errorf("AI script %q: %w", sc.Name, ErrDuplicate)
		}
		s.aiScripts[sc.Name] = sc
		return nil
	}
	if _, exists := s.scripts[sc.Name]; exists {
		return fmt.Errorf("script %q: %w", sc.Name, ErrDuplicate)
	}
	s.scripts[sc.Name] = sc
	return nil
}

// Script looks up a miscellaneous (non-AI) script by name.
func (s *Store) Script(name string) (*ServerScript, bool) {
	sc, ok := s.scripts[name]
	return sc, ok
}

// AIScript looks up an AI script by name.
func (s *Store) AIScript(name string) (*ServerScript, bool) {
	sc, ok := s.aiScripts[name]
	return sc, ok
}

// Stats summarizes store contents for startup logging.
type Stats struct {
	Zones             int
	Partials          int
	Instances         int
	Variants          int
	Events            int
	Shops             int
	AILogicGroups     int
	DemonPresents     int
	DemonQuestRewards int
	DropSets          int
	Scripts           int
	AIScripts         int
}

// Stats returns per-kind definition counts.
func (s *Store) Stats() Stats {
	zones := 0
	for _, byDynamic := range s.zones {
		zones += len(byDynamic)
	}
	return Stats{
		Zones:             zones,
		Partials:          len(s.partials),
		Instances:         len(s.instances),
		Variants:          len(s.variants),
		Events:            len(s.events),
		Shops:             len(s.shops),
		AILogicGroups:     len(s.aiLogicGroups),
		DemonPresents:     len(s.demonPresents),
		DemonQuestRewards: len(s.demonQuestRewards),
		DropSets:          len(s.dropSets),
		Scripts:           len(s.scripts),
		AIScripts:         len(s.aiScripts),
	}
}

package definitions

// ZoneInstance defines which zones compose a multi-zone instance. ZoneIDs
// and DynamicMapIDs are parallel, index-aligned sequences.
type ZoneInstance struct {
	ID   uint32
	Name string
	// LobbyID is the zone players gather in before entering.
	LobbyID       uint32
	ZoneIDs       []uint32
	DynamicMapIDs []uint32
}

// Contains reports whether the instance includes the given zone. A zero
// dynamicMapID matches any dynamic map of the zone.
func (i *ZoneInstance) Contains(zoneID, dynamicMapID uint32) bool {
	for idx, zid := range i.ZoneIDs {
		if zid == zoneID && (dynamicMapID == 0 || i.DynamicMapIDs[idx] == dynamicMapID) {
			return true
		}
	}
	return false
}

// InstanceType identifies a zone instance variant kind.
type InstanceType string

// Instance variant kinds.
const (
	InstanceNormal    InstanceType = "normal"
	InstanceTimeTrial InstanceType = "time_trial"
	InstancePvP       InstanceType = "pvp"
	InstanceDemonOnly InstanceType = "demon_only"
	InstanceDiaspora  InstanceType = "diaspora"
	InstanceMission   InstanceType = "mission"
	InstancePentalpha InstanceType = "pentalpha"
)

// PvPMatchType identifies the matchmaking pool of a PvP variant.
type PvPMatchType string

// PvP match types.
const (
	MatchFate     PvPMatchType = "fate"
	MatchValhalla PvPMatchType = "valhalla"
	MatchCustom   PvPMatchType = "custom"
)

// ZoneInstanceVariant is a per-kind parameterization of a zone instance.
// TimePoints carries the kind-specific timing values; the required count is
// fixed per kind and checked at load.
type ZoneInstanceVariant struct {
	ID           uint32
	InstanceType InstanceType
	TimePoints   []uint32
	// SubID parameterizes pentalpha variants and must be below 5.
	SubID uint8

	// PvP-only fields.
	MatchType PvPMatchType
	// SpecialMode excludes the variant from standard match pools.
	SpecialMode bool
	// DefaultInstanceID optionally names a backing instance; every zone of
	// that instance must be a PvP-typed zone.
	DefaultInstanceID uint32
}

// IsPvP reports whether the variant is a PvP kind.
func (v *ZoneInstanceVariant) IsPvP() bool {
	return v.InstanceType == InstancePvP
}

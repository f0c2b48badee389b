// Package definitions loads, indexes, and composes the static
// world-definition database consulted by the game server: zones, zone
// partials, zone instances and their variants, shops, events, AI logic
// groups, drop sets, and server scripts.
//
// Definitions are immutable once registered with a Store. The only mutation
// path is the Composer's copy-on-write zone composition, which always
// operates on caller-owned clones.
package definitions

// ActionType identifies one kind of scripted action. The set is closed;
// the validator switches over every member.
type ActionType string

// All supported action kinds.
const (
	ActionAddRemoveItems   ActionType = "add_remove_items"
	ActionAddRemoveStatus  ActionType = "add_remove_status"
	ActionCreateLoot       ActionType = "create_loot"
	ActionDelay            ActionType = "delay"
	ActionDisplayMessage   ActionType = "display_message"
	ActionGrantSkills      ActionType = "grant_skills"
	ActionGrantXP          ActionType = "grant_xp"
	ActionPlayBGM          ActionType = "play_bgm"
	ActionPlaySoundEffect  ActionType = "play_sound_effect"
	ActionRunScript        ActionType = "run_script"
	ActionSetHomepoint     ActionType = "set_homepoint"
	ActionSetNPCState      ActionType = "set_npc_state"
	ActionSpawn            ActionType = "spawn"
	ActionSpecialDirection ActionType = "special_direction"
	ActionStageEffect      ActionType = "stage_effect"
	ActionStartEvent       ActionType = "start_event"
	ActionUpdateCOMP       ActionType = "update_comp"
	ActionUpdateFlag       ActionType = "update_flag"
	ActionUpdateLNC        ActionType = "update_lnc"
	ActionUpdatePoints     ActionType = "update_points"
	ActionUpdateQuest      ActionType = "update_quest"
	ActionUpdateZoneFlags  ActionType = "update_zone_flags"
	ActionZoneChange       ActionType = "zone_change"
	ActionZoneInstance     ActionType = "zone_instance"
)

// SourceContext identifies the execution source an action declares.
type SourceContext string

// Supported source contexts. Enemies and Source mark automated actors;
// Interacting is the default player-originated context.
const (
	ContextInteracting SourceContext = "interacting"
	ContextSource      SourceContext = "source"
	ContextEnemies     SourceContext = "enemies"
	ContextAll         SourceContext = "all"
)

// InstanceJoinMode is the mode of a zone_instance action.
type InstanceJoinMode string

// Zone instance action modes. The four join modes terminate multi-channel
// routing when executed.
const (
	ModeAccess   InstanceJoinMode = "access"
	ModeJoin     InstanceJoinMode = "join"
	ModeClanJoin InstanceJoinMode = "clan_join"
	ModeTeamJoin InstanceJoinMode = "team_join"
	ModeTeamPvP  InstanceJoinMode = "team_pvp"
)

// Action is one step in a scripted sequence attached to NPCs, objects,
// spots, triggers, spawn groups, or events. Kind-specific payload this
// package inspects lives in the optional fields; anything else an action
// carries is opaque to loading and composition.
type Action struct {
	// Type is the action kind tag.
	Type ActionType
	// SourceContext is the declared execution source.
	SourceContext SourceContext
	// ZoneID is the target zone for zone_change actions. Zero means
	// "return to the previous zone" and does not terminate routing.
	ZoneID uint32
	// DynamicMapID is the target dynamic map for zone_change actions.
	DynamicMapID uint32
	// Mode applies to zone_instance actions.
	Mode InstanceJoinMode
	// InstanceID applies to zone_instance actions.
	InstanceID uint32
	// Actions is the nested list owned by delay actions.
	Actions []*Action
	// DefeatActions is the nested list owned by spawn actions.
	DefeatActions []*Action
}

// playerOnlyActions are the kinds that require a player-originated
// execution context. Encountering one in an automated context is a fatal
// load error.
var playerOnlyActions = map[ActionType]struct{}{
	ActionAddRemoveItems:   {},
	ActionDisplayMessage:   {},
	ActionGrantSkills:      {},
	ActionGrantXP:          {},
	ActionPlayBGM:          {},
	ActionPlaySoundEffect:  {},
	ActionSetHomepoint:     {},
	ActionSpecialDirection: {},
	ActionStageEffect:      {},
	ActionUpdateCOMP:       {},
	ActionUpdateFlag:       {},
	ActionUpdateLNC:        {},
	ActionUpdateQuest:      {},
	ActionZoneChange:       {},
	ActionZoneInstance:     {},
}

// PlayerOnly reports whether the action kind requires a player-originated
// execution context.
func (a *Action) PlayerOnly() bool {
	_, ok := playerOnlyActions[a.Type]
	return ok
}

// AutomatedContext reports whether the action's declared source is an
// automated (non-player) actor.
func (a *Action) AutomatedContext() bool {
	return a.SourceContext == ContextEnemies || a.SourceContext == ContextSource
}

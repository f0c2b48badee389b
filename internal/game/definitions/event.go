package definitions

// EventType identifies a scripted event kind.
type EventType string

// Event kinds. Only perform_actions events own an action list this
// package validates.
const (
	EventFork           EventType = "fork"
	EventNPCMessage     EventType = "npc_message"
	EventExNPCMessage   EventType = "ex_npc_message"
	EventMultitalk      EventType = "multitalk"
	EventPrompt         EventType = "prompt"
	EventPerformActions EventType = "perform_actions"
	EventOpenMenu       EventType = "open_menu"
	EventPlayScene      EventType = "play_scene"
	EventDirection      EventType = "direction"
)

// Event is a scripted event definition keyed by string ID.
type Event struct {
	ID        string
	EventType EventType
	// Actions is populated for perform_actions events only.
	Actions []*Action
}

// DropSet is an identified set of item drops, optionally claimable through
// a gift box. At most one drop set may claim a given gift box ID.
type DropSet struct {
	ID uint32
	// GiftBoxID is zero when the set is not gift-box backed.
	GiftBoxID uint32
	Drops     []*Drop
}

// Drop is a single item drop entry.
type Drop struct {
	ItemType uint32
	MinStack uint16
	MaxStack uint16
	// Rate is the drop chance in percent.
	Rate float32
}

// AILogicGroup tunes enemy AI behavior for the spawns that reference it.
type AILogicGroup struct {
	ID uint16
	// ThinkSpeed is the AI tick interval in milliseconds.
	ThinkSpeed uint32
	// AggroLimit caps simultaneous aggro targets. Zero means unlimited.
	AggroLimit uint8
	// Script names an AI script overriding the default logic.
	Script string
}

// DemonPresent is a demon gift table entry.
type DemonPresent struct {
	ID uint32
	// ItemIDs are the candidate present items.
	ItemIDs []uint32
	// Rarity weights the present selection.
	Rarity uint8
}

// DemonQuestReward is a demon quest reward table entry.
type DemonQuestReward struct {
	ID uint32
	// QuestType restricts the reward to one quest category. Zero means any.
	QuestType uint8
	// ItemIDs are the granted items.
	ItemIDs []uint32
	// SequenceStart is the quest-completion count the reward unlocks at.
	SequenceStart uint32
}

// ServerScript is a loaded script definition. Scripts live in two disjoint
// namespaces: "ai" scripts and miscellaneous scripts, each keyed by name.
type ServerScript struct {
	Name string
	// Type drives which callable entry points the script must define.
	Type   string
	Path   string
	Source string
}

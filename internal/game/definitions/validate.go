package definitions

import (
	"go.uber.org/zap"
)

// Validator performs the static structural and context checks over action
// sequences that the runtime engine assumes and does not re-check.
type Validator struct {
	logger *zap.Logger
}

// NewValidator creates a Validator emitting diagnostics to logger.
//
// Precondition: logger must be non-nil.
func NewValidator(logger *zap.Logger) *Validator {
	return &Validator{logger: logger}
}

// ValidateActions recursively checks an action list. source labels
// diagnostics with where the list came from. autoContext marks the list as
// executing for an automated (non-player) actor; it stays in effect for an
// action only while that action's own declared source is an automated one.
// inEvent suppresses the mid-list terminal-action warning for lists that
// are a direct subset of an event; it applies to the top-level list only
// and is never propagated into nested lists.
//
// Postcondition: Returns false only on fatal violations (a player-only
// action in an automated context, directly or in a nested list).
func (v *Validator) ValidateActions(actions []*Action, source string, autoContext, inEvent bool) bool {
	count := len(actions)
	for i, action := range actions {
		if i != count-1 && !inEvent && terminatesRouting(action) {
			v.logger.Warn("zone change action encountered mid-action set in a"+
				" context outside of an event; this can cause unexpected"+
				" behavior for multi-channel setups, move it to the end of"+
				" the set to avoid errors",
				zap.String("source", source),
				zap.String("action_type", string(action.Type)),
			)
		}

		autoCtx := autoContext && action.AutomatedContext()

		switch action.Type {
		case ActionDelay:
			if !v.ValidateActions(action.Actions,
				source+" => Delay Actions", autoCtx, false) {
				return false
			}
		case ActionSpawn:
			if !v.ValidateActions(action.DefeatActions,
				source+" => Defeat Actions", autoCtx, false) {
				return false
			}
		default:
			if autoCtx && action.PlayerOnly() {
				v.logger.Error("non-player context with player required action type encountered",
					zap.String("source", source),
					zap.String("action_type", string(action.Type)),
				)
				return false
			}
		}
	}
	return true
}

// terminatesRouting reports whether the action ends multi-channel routing
// when executed, making any later action in the same list unreachable.
func terminatesRouting(action *Action) bool {
	switch action.Type {
	case ActionZoneChange:
		return action.ZoneID != 0
	case ActionZoneInstance:
		switch action.Mode {
		case ModeJoin, ModeClanJoin, ModeTeamJoin, ModeTeamPvP:
			return true
		}
	}
	return false
}

// TriggerIsAutoContext classifies a trigger's starting execution context.
// The listed kinds run with a real player actor; every other kind starts in
// an automated context.
func TriggerIsAutoContext(t *Trigger) bool {
	switch t.Trigger {
	case TriggerOnDeath,
		TriggerOnDiasporaBaseCapture,
		TriggerOnFlagSet,
		TriggerOnPvPBaseCapture,
		TriggerOnPvPComplete,
		TriggerOnRevival,
		TriggerOnZoneIn,
		TriggerOnZoneOut:
		return false
	default:
		return true
	}
}

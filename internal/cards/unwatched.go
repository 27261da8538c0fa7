package cards

import (
	"fmt"
	"strings"
)

// UnwatchedAction controls how cards for unwatched episodes are presented.
type UnwatchedAction string

const (
	// ActionIgnore leaves every card fully spoiled regardless of watch state.
	ActionIgnore UnwatchedAction = "ignore"
	// ActionBlur blurs cards for unwatched episodes.
	ActionBlur UnwatchedAction = "blur"
	// ActionArt swaps cards for unwatched episodes to alternate art.
	ActionArt UnwatchedAction = "art"
	// ActionBlurAll blurs every card regardless of watch state.
	ActionBlurAll UnwatchedAction = "blur_all"
	// ActionArtAll swaps every card to alternate art regardless of watch state.
	ActionArtAll UnwatchedAction = "art_all"
)

var validActions = map[UnwatchedAction]struct{}{
	ActionIgnore:  {},
	ActionBlur:    {},
	ActionArt:     {},
	ActionBlurAll: {},
	ActionArtAll:  {},
}

// ParseUnwatchedAction validates a configured unwatched action. An
// unrecognized value is a configuration error; there is no silent default.
func ParseUnwatchedAction(value string) (UnwatchedAction, error) {
	action := UnwatchedAction(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := validActions[action]; !ok {
		return "", fmt.Errorf("invalid unwatched action %q (valid: ignore, blur, art, blur_all, art_all)", value)
	}
	return action, nil
}

// AllSpoilerFree reports whether the action hides spoilers for every episode.
func (a UnwatchedAction) AllSpoilerFree() bool {
	return a == ActionArtAll || a == ActionBlurAll
}

// AllSpoiler reports whether the action leaves every card spoiled.
func (a UnwatchedAction) AllSpoiler() bool {
	return a == ActionIgnore
}

// SpoilerFreeClass returns the spoiler-free class this action selects.
func (a UnwatchedAction) SpoilerFreeClass() Class {
	if strings.Contains(string(a), "art") {
		return ClassArt
	}
	return ClassBlur
}

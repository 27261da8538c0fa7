package cards

import (
	"fmt"
	"strings"
)

// Class identifies which variant of a card should be visible for an episode.
type Class string

const (
	// ClassSpoiled is the full-detail card.
	ClassSpoiled Class = "spoiled"
	// ClassBlur is the blurred spoiler-free variant.
	ClassBlur Class = "blur"
	// ClassArt is the alternate-art spoiler-free variant.
	ClassArt Class = "art"

	// ClassNoRecord marks an episode with no loaded-store entry. It is never
	// persisted; transition logic treats it like ClassSpoiled so that a card
	// which has never been tracked is replaced as soon as a spoiler-free
	// variant is required.
	ClassNoRecord Class = "no_record"
)

// ParseClass validates a persisted spoiler tag.
func ParseClass(value string) (Class, error) {
	switch Class(strings.ToLower(strings.TrimSpace(value))) {
	case ClassSpoiled:
		return ClassSpoiled, nil
	case ClassBlur:
		return ClassBlur, nil
	case ClassArt:
		return ClassArt, nil
	}
	return "", fmt.Errorf("unknown spoiler class %q", value)
}

// SpoilerFree reports whether the class hides spoilers.
func (c Class) SpoilerFree() bool {
	return c == ClassBlur || c == ClassArt
}

package components

import "strings"

// String returns the display name for a Class.
func (c Class) String() string {
	names := ClassNames()
	if int(c) < len(names) {
		return names[c]
	}
	return "Unknown"
}

// ClassNames returns the display names for all classes.
// The order matches the Class constants.
func ClassNames() []string {
	return []string{"None", "Hostile", "Obstacle", "Waypoint"}
}

// ParseClass maps a config name to a Class. Matching is case-insensitive;
// unknown names map to ClassNone.
func ParseClass(name string) Class {
	for i, n := range ClassNames() {
		if strings.EqualFold(n, name) {
			return Class(i)
		}
	}
	return ClassNone
}

package player

import "strings"

// Identity is the canonical (name, team, position) tuple. Zero values are
// valid and produce a well-formed key.
type Identity struct {
	Name     string
	Team     string
	Position Position
}

func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

func NormalizeTeam(team string) string {
	return strings.ToUpper(strings.TrimSpace(team))
}

func NormalizePosition(position string) Position {
	return Position(strings.ToUpper(strings.TrimSpace(position)))
}

func NormalizeExternalID(externalID string) string {
	return strings.TrimSpace(externalID)
}

func NormalizeIdentity(name, team, position string) Identity {
	return Identity{
		Name:     NormalizeName(name),
		Team:     NormalizeTeam(team),
		Position: NormalizePosition(position),
	}
}

// Normalized re-canonicalizes an identity that may hold raw values.
func (i Identity) Normalized() Identity {
	return NormalizeIdentity(i.Name, i.Team, string(i.Position))
}

// Key is the grouping key name|team|position. It assumes i is canonical.
func (i Identity) Key() string {
	return i.Name + "|" + i.Team + "|" + string(i.Position)
}

// IsCanonical reports whether normalization would leave i unchanged.
func (i Identity) IsCanonical() bool {
	return i == i.Normalized()
}

package models

import (
	"strconv"
	"strings"
)

// Identifier addresses one Pokemon by numeric ID or by name.
type Identifier struct {
	numeric bool
	id      int
	name    string
}

func IdentifierFromID(id int) Identifier {
	return Identifier{numeric: true, id: id}
}

// IdentifierFromName trims and lowercases name; PokeAPI names are lowercase.
func IdentifierFromName(name string) Identifier {
	return Identifier{name: strings.ToLower(strings.TrimSpace(name))}
}

// ParseIdentifier treats an optionally signed run of digits as a numeric ID
// and anything else as a name.
func ParseIdentifier(raw string) Identifier {
	raw = strings.TrimSpace(raw)
	if id, err := strconv.Atoi(raw); err == nil {
		return IdentifierFromID(id)
	}
	return IdentifierFromName(raw)
}

func (i Identifier) IsNumeric() bool { return i.numeric }
func (i Identifier) ID() int { return i.id }
func (i Identifier) Name() string { return i.name }

// String renders the identifier the way upstream paths and cache keys expect.
func (i Identifier) String() string {
	if i.numeric {
		return strconv.Itoa(i.id)
	}
	return i.name
}

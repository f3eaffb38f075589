package model

import "strings"

type Kind string

const (
	KindBirth    Kind = "Birth"
	KindDeath    Kind = "Death"
	KindMarriage Kind = "Marriage"
)

// Placeholders the register uses for values it does not know.
const (
	MissingYear  = "----"
	MissingDate  = "--/--/----"
	MissingPlace = "----"
	MissingValue = "--"
)

// IsMissing reports whether v is empty or one of the dash placeholders.
func IsMissing(v string) bool {
	return strings.Trim(strings.TrimSpace(v), "-/") == ""
}

// AllKnown reports whether none of the values is a placeholder.
func AllKnown(values []string) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if IsMissing(v) {
			return false
		}
	}
	return true
}

type NameField int

const (
	Forename NameField = iota
	Surname
	MotherForename
	MotherMaidenSurname
	FatherForename
	FatherSurname
	NumNameFields
)

// Names holds the name-bearing fields shared by every record kind.
type Names [NumNameFields]string

// IsSurname reports whether the field carries a family name, where
// patronymic suffixes appear.
func (f NameField) IsSurname() bool {
	return f == Surname || f == MotherMaidenSurname || f == FatherSurname
}

// Record is the view of a vital record the resolution engine works with.
// Implementations adapt the kind-specific register fields.
type Record interface {
	// ID is the persistent store identifier.
	ID() string
	// StandardisedID keys the record's node in the graph.
	StandardisedID() string
	Kind() Kind
	BirthDate() Date
	Place() string
	Names() *Names
	// LinkageFields are concatenated for the family distance.
	LinkageFields() []string
	// IdentityFields are compared pairwise by the date/name match rule.
	IdentityFields() []string
	Clone() Record
}

// Triple is one open triangle with its records loaded: X is the apex,
// Y the shared middle record and Z the far side.
type Triple struct {
	X, Y, Z Record
}

func (t Triple) Records() [3]Record {
	return [3]Record{t.X, t.Y, t.Z}
}

// Clone copies all three records so names can be rewritten locally.
func (t Triple) Clone() Triple {
	return Triple{X: t.X.Clone(), Y: t.Y.Clone(), Z: t.Z.Clone()}
}

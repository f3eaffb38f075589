package model

import (
	"strings"

	"github.com/spf13/cast"
)

// Birth is a birth registration. Names holds the child's and parents' names.
type Birth struct {
	RecordID string
	StdID    string

	Day, Month, Year string
	Name             Names
	BirthPlace       string

	ParentsMarriageDay   string
	ParentsMarriageMonth string
	ParentsMarriageYear  string
	ParentsMarriagePlace string
}

func (b *Birth) ID() string             { return b.RecordID }
func (b *Birth) StandardisedID() string { return b.StdID }
func (b *Birth) Kind() Kind             { return KindBirth }
func (b *Birth) BirthDate() Date        { return ParseDate(b.Day, b.Month, b.Year) }
func (b *Birth) Place() string          { return b.BirthPlace }
func (b *Birth) Names() *Names          { return &b.Name }

func (b *Birth) LinkageFields() []string {
	return []string{
		b.Name[MotherForename], b.Name[MotherMaidenSurname],
		b.Name[FatherForename], b.Name[FatherSurname],
		b.ParentsMarriagePlace,
		b.ParentsMarriageDay, b.ParentsMarriageMonth, b.ParentsMarriageYear,
	}
}

func (b *Birth) IdentityFields() []string {
	return []string{b.ParentsMarriageDay, b.ParentsMarriageMonth, b.ParentsMarriageYear}
}

func (b *Birth) Clone() Record {
	c := *b
	return &c
}

// Death is a death registration. Names holds the deceased's and parents' names.
type Death struct {
	RecordID string
	StdID    string

	DeathDay, DeathMonth, DeathYear string
	DateOfBirth                     string
	AgeAtDeath                      string
	Name                            Names
	DeathPlace                      string
}

func (d *Death) ID() string             { return d.RecordID }
func (d *Death) StandardisedID() string { return d.StdID }
func (d *Death) Kind() Kind             { return KindDeath }
func (d *Death) Place() string          { return d.DeathPlace }
func (d *Death) Names() *Names          { return &d.Name }

// BirthDate uses the recorded date of birth, falling back to the year of
// death less the age at death.
func (d *Death) BirthDate() Date {
	if dob := ParseSlashDate(d.DateOfBirth); dob.HasYear() {
		return dob
	}
	return yearFromAge(ParseDate(d.DeathDay, d.DeathMonth, d.DeathYear), d.AgeAtDeath)
}

func (d *Death) LinkageFields() []string {
	return []string{
		d.Name[MotherForename], d.Name[MotherMaidenSurname],
		d.Name[FatherForename], d.Name[FatherSurname],
	}
}

func (d *Death) IdentityFields() []string { return d.LinkageFields() }

func (d *Death) Clone() Record {
	c := *d
	return &c
}

type Side string

const (
	Bride Side = "bride"
	Groom Side = "groom"
)

// Spouse is one party's half of a marriage registration.
type Spouse struct {
	Name        Names
	Age         string
	DateOfBirth string
	Address     string
}

// Marriage is a marriage registration carrying both parties.
type Marriage struct {
	RecordID string
	StdID    string

	Day, Month, Year string
	MarriagePlace    string
	Bride, Groom     Spouse
}

// Party selects one side of a marriage so it can take part in sibling
// linkage like births and deaths do.
func (m *Marriage) Party(side Side) *Party {
	return &Party{Marriage: m, Side: side}
}

// Party is a Record view over one spouse of a marriage. Its ID is the
// marriage record ID suffixed with the side.
type Party struct {
	Marriage *Marriage
	Side     Side
}

// PartyID joins a marriage record ID and a side.
func PartyID(recordID string, side Side) string {
	return recordID + ":" + string(side)
}

// SplitPartyID is the inverse of PartyID.
func SplitPartyID(id string) (string, Side, bool) {
	i := strings.LastIndexByte(id, ':')
	if i < 0 {
		return "", "", false
	}
	side := Side(id[i+1:])
	if side != Bride && side != Groom {
		return "", "", false
	}
	return id[:i], side, true
}

func (p *Party) spouse() *Spouse {
	if p.Side == Bride {
		return &p.Marriage.Bride
	}
	return &p.Marriage.Groom
}

func (p *Party) ID() string             { return PartyID(p.Marriage.RecordID, p.Side) }
func (p *Party) StandardisedID() string { return p.Marriage.StdID }
func (p *Party) Kind() Kind             { return KindMarriage }
func (p *Party) Place() string          { return p.spouse().Address }
func (p *Party) Names() *Names          { return &p.spouse().Name }

func (p *Party) BirthDate() Date {
	s := p.spouse()
	if dob := ParseSlashDate(s.DateOfBirth); dob.HasYear() {
		return dob
	}
	m := p.Marriage
	return yearFromAge(ParseDate(m.Day, m.Month, m.Year), s.Age)
}

func (p *Party) LinkageFields() []string {
	n := p.spouse().Name
	return []string{n[MotherForename], n[MotherMaidenSurname], n[FatherForename], n[FatherSurname]}
}

func (p *Party) IdentityFields() []string { return p.LinkageFields() }

func (p *Party) Clone() Record {
	m := *p.Marriage
	return &Party{Marriage: &m, Side: p.Side}
}

func yearFromAge(event Date, age string) Date {
	if !event.HasYear() || IsMissing(age) {
		return Date{}
	}
	a, err := cast.ToIntE(strings.TrimLeft(strings.TrimSpace(age), "0"))
	if err != nil || a < 0 || a >= event.Year {
		return Date{}
	}
	return Date{Year: event.Year - a}
}

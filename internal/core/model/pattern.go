package model

// Policy carries the thresholds applied to one linkage pattern.
type Policy struct {
	// Family distance gates.
	TripleThreshold   float64
	PairThreshold     float64
	RepartitionMax    float64
	RepartitionGrowth float64

	MaxAgeDifference int
	MinBirthInterval int
	SameDayTolerance int
	MinFamilySize    int

	DateMatchCreate float64
	DateMatchReject float64
}

// PolicyOverride is a partial Policy read from configuration. A nil field
// keeps the pattern's default; an explicit zero is applied.
type PolicyOverride struct {
	TripleThreshold   *float64 `toml:"triple_threshold"`
	PairThreshold     *float64 `toml:"pair_threshold"`
	RepartitionMax    *float64 `toml:"repartition_max"`
	RepartitionGrowth *float64 `toml:"repartition_growth"`

	MaxAgeDifference *int `toml:"max_age_difference"`
	MinBirthInterval *int `toml:"min_birth_interval"`
	SameDayTolerance *int `toml:"same_day_tolerance"`
	MinFamilySize    *int `toml:"min_family_size"`

	DateMatchCreate *float64 `toml:"date_match_create"`
	DateMatchReject *float64 `toml:"date_match_reject"`
}

// Merge returns p with every field set in o applied on top.
func (p Policy) Merge(o PolicyOverride) Policy {
	set(&p.TripleThreshold, o.TripleThreshold)
	set(&p.PairThreshold, o.PairThreshold)
	set(&p.RepartitionMax, o.RepartitionMax)
	set(&p.RepartitionGrowth, o.RepartitionGrowth)
	set(&p.MaxAgeDifference, o.MaxAgeDifference)
	set(&p.MinBirthInterval, o.MinBirthInterval)
	set(&p.SameDayTolerance, o.SameDayTolerance)
	set(&p.MinFamilySize, o.MinFamilySize)
	set(&p.DateMatchCreate, o.DateMatchCreate)
	set(&p.DateMatchReject, o.DateMatchReject)
	return p
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Pattern names an open-triangle shape: apex and far side share ApexKind,
// the middle record has MiddleKind.
type Pattern struct {
	Name       string
	ApexKind   Kind
	MiddleKind Kind
	Relation   string
	Policy     Policy
}

const (
	RelationSibling = "SIBLING"
	RelationID      = "ID"
	RelationDeleted = "DELETED"
)

var siblingPolicy = Policy{
	TripleThreshold:   0.04,
	PairThreshold:     0.02,
	RepartitionMax:    0.01,
	RepartitionGrowth: 0.5,
	MaxAgeDifference:  24,
	MinBirthInterval:  270,
	SameDayTolerance:  2,
	MinFamilySize:     3,
	DateMatchCreate:   0.1,
	DateMatchReject:   0.5,
}

// BuiltinPatterns returns the reference policy for each supported pattern.
func BuiltinPatterns() []Pattern {
	deaths := siblingPolicy
	deaths.TripleThreshold = 0.03
	deaths.PairThreshold = 0.01

	mixed := siblingPolicy
	mixed.MaxAgeDifference = 23
	mixed.MinBirthInterval = 280

	return []Pattern{
		{Name: "birth-birth", ApexKind: KindBirth, MiddleKind: KindBirth, Relation: RelationSibling, Policy: siblingPolicy},
		{Name: "death-death", ApexKind: KindDeath, MiddleKind: KindDeath, Relation: RelationSibling, Policy: deaths},
		{Name: "birth-death", ApexKind: KindBirth, MiddleKind: KindDeath, Relation: RelationSibling, Policy: mixed},
		{Name: "death-birth", ApexKind: KindDeath, MiddleKind: KindBirth, Relation: RelationSibling, Policy: mixed},
	}
}

// PatternByName looks up a built-in pattern.
func PatternByName(name string) (Pattern, bool) {
	for _, p := range BuiltinPatterns() {
		if p.Name == name {
			return p, true
		}
	}
	return Pattern{}, false
}

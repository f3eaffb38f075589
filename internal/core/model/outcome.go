package model

// Rule is the provenance label written on every edge the engine touches.
type Rule string

const (
	RuleMaxAgeRange      Rule = "max-age-range"
	RuleMinBirthInterval Rule = "min-birth-interval"
	RuleBirthplaceMode   Rule = "birthplace-mode"
	RuleDateMatchCreate  Rule = "date-match-create"
	RuleDateMatchReject  Rule = "date-match-reject"
	RuleMSEDCreate       Rule = "msed-create"
	RuleMSEDReject       Rule = "msed-reject"
)

// Rules lists the full provenance vocabulary.
func Rules() []Rule {
	return []Rule{
		RuleMaxAgeRange,
		RuleMinBirthInterval,
		RuleBirthplaceMode,
		RuleDateMatchCreate,
		RuleDateMatchReject,
		RuleMSEDCreate,
		RuleMSEDReject,
	}
}

type Action string

const (
	ActionCreate Action = "create"
	ActionReject Action = "reject"
)

// Endpoint identifies a graph node by label and standardised ID.
type Endpoint struct {
	Kind Kind
	ID   string
}

// Outcome is a single edge decision between two records.
type Outcome struct {
	Action Action
	From   Endpoint
	To     Endpoint
	Rule   Rule
}

func endpoint(r Record) Endpoint {
	return Endpoint{Kind: r.Kind(), ID: r.StandardisedID()}
}

func Create(from, to Record, rule Rule) Outcome {
	return Outcome{Action: ActionCreate, From: endpoint(from), To: endpoint(to), Rule: rule}
}

func Reject(from, to Record, rule Rule) Outcome {
	return Outcome{Action: ActionReject, From: endpoint(from), To: endpoint(to), Rule: rule}
}

// Key identifies the edge an outcome touches regardless of direction.
func (o Outcome) Key() string {
	a, b := o.From.ID, o.To.ID
	if b < a {
		a, b = b, a
	}
	return string(o.Action) + "|" + a + "|" + b
}

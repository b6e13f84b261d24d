// Package risk implements the message risk classifier, the redaction step
// that sanitizes flagged content before it may re-enter the generative
// backend, and the fixed crisis-response payloads.
package risk

// Label is the closed set of classification outcomes. Declaration order is
// severity order: a lower value always takes precedence when several
// pattern groups match the same message.
type Label int

const (
	Imminent Label = iota
	HighRisk
	SelfHarmNonLethal
	ThirdPartyConcern
	Toxic
	Benign
)

func (l Label) String() string {
	switch l {
	case Imminent:
		return "imminent"
	case HighRisk:
		return "high_risk"
	case SelfHarmNonLethal:
		return "self_harm_non_lethal"
	case ThirdPartyConcern:
		return "third_party_concern"
	case Toxic:
		return "toxic"
	case Benign:
		return "benign"
	default:
		return "unknown"
	}
}

// IsCrisis reports whether the label short-circuits the dialog to a fixed
// pre-authored response instead of the generative backend.
func (l Label) IsCrisis() bool {
	switch l {
	case Imminent, HighRisk, SelfHarmNonLethal, ThirdPartyConcern:
		return true
	default:
		return false
	}
}

// describe returns the human-readable category used inside redaction
// placeholders and backend notes. Never contains user content.
func (l Label) describe() string {
	switch l {
	case Imminent:
		return "непосредственная угроза жизни"
	case HighRisk:
		return "суицидальные мысли"
	case SelfHarmNonLethal:
		return "самоповреждение"
	case ThirdPartyConcern:
		return "риск для другого человека"
	case Toxic:
		return "враждебность"
	default:
		return "без риска"
	}
}

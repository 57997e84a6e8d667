package view

import "github.com/flinketl/etldash/model"

// Variant is the visual treatment of a status badge.
type Variant string

const (
	VariantNeutral    Variant = "neutral"
	VariantPositive   Variant = "positive"
	VariantNegative   Variant = "negative"
	VariantInProgress Variant = "in-progress"
)

// Unknown is the label used for an empty status.
const Unknown = "UNKNOWN"

// StatusPresentation is how a status is drawn.
type StatusPresentation struct {
	Label   string  `json:"label"`
	Variant Variant `json:"variant"`
	Icon    string  `json:"icon"`
}

func (p StatusPresentation) String() string {
	return p.Icon + " " + p.Label
}

// PresentStatus maps a lifecycle state to its badge. Unrecognized values
// get the neutral unresolved badge.
func PresentStatus(s model.Status) StatusPresentation {
	switch s {
	case model.StatusFinished, model.StatusSuccess:
		return StatusPresentation{Label: string(s), Variant: VariantPositive, Icon: "✅"}
	case model.StatusFailed:
		return StatusPresentation{Label: string(s), Variant: VariantNegative, Icon: "❌"}
	case model.StatusRunning:
		return StatusPresentation{Label: string(s), Variant: VariantInProgress, Icon: "⏳"}
	}
	return unresolved(string(s))
}

// PresentOutcome maps a test verdict to its badge.
func PresentOutcome(o model.Outcome) StatusPresentation {
	switch o {
	case model.OutcomePassed:
		return StatusPresentation{Label: string(o), Variant: VariantPositive, Icon: "✅"}
	case model.OutcomeFailed:
		return StatusPresentation{Label: string(o), Variant: VariantNegative, Icon: "❌"}
	case model.OutcomeRunning:
		return StatusPresentation{Label: string(o), Variant: VariantInProgress, Icon: "⏳"}
	}
	return unresolved(string(o))
}

func unresolved(label string) StatusPresentation {
	if label == "" {
		label = Unknown
	}
	return StatusPresentation{Label: label, Variant: VariantNeutral, Icon: "❔"}
}

package gyeokguk

// Outcome is one of the fixed gyeokguk judgments.
type Outcome string

const (
	OutcomeSuccess          Outcome = "성"
	OutcomeFailure          Outcome = "패"
	OutcomeSuccessWithFlaw  Outcome = "성중유패"
	OutcomeFailureWithMerit Outcome = "패중유성"
	OutcomeMixed            Outcome = "성패공존"
)

// Outcomes lists the vocabulary in display order.
var Outcomes = []Outcome{
	OutcomeSuccess,
	OutcomeFailure,
	OutcomeSuccessWithFlaw,
	OutcomeFailureWithMerit,
	OutcomeMixed,
}

// ValidOutcome reports whether value belongs to the outcome vocabulary.
func ValidOutcome(value string) bool {
	for _, o := range Outcomes {
		if string(o) == value {
			return true
		}
	}
	return false
}

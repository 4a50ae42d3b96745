package policy

// RiskLevel is the coarse default-risk tier
type RiskLevel string

// Recommendation is the lending decision derived from the tier
type Recommendation string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"

	Approve Recommendation = "Approve"
	Reject  Recommendation = "Reject"
)

// Upper bounds are exclusive: a probability equal to a bound belongs to the
// tier above it.
const (
	LowUpperBound    = 0.10
	MediumUpperBound = 0.25
)

// Assess maps a default probability onto a risk tier and recommendation.
func Assess(p float64) (RiskLevel, Recommendation) {
	switch {
	case p < LowUpperBound:
		return RiskLow, Approve
	case p < MediumUpperBound:
		return RiskMedium, Approve
	default:
		return RiskHigh, Reject
	}
}

// String returns the tier name
func (r RiskLevel) String() string {
	return string(r)
}

// String returns the recommendation name
func (r Recommendation) String() string {
	return string(r)
}

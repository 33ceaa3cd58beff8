package boost

import "github.com/merchstack/rule-engine/model"

// strengthFactors maps named strength levels to their multiplier, rendered
// exactly as the scoring engine expects them.
var strengthFactors = map[model.Strength]string{
	model.StrengthMaximumDemote: "0.1",
	model.StrengthStrongDemote:  "0.2",
	model.StrengthMediumDemote:  "0.5",
	model.StrengthWeakDemote:    "0.6666667",
	model.StrengthNeutral:       "1.0",
	model.StrengthWeakBoost:     "1.5",
	model.StrengthMediumBoost:   "2.0",
	model.StrengthStrongBoost:   "5.0",
	model.StrengthMaximumBoost:  "10.0",
}

// MapStrength returns the multiplier string for a strength level. Unknown or
// empty levels fall back to the neutral factor.
func MapStrength(strength model.Strength) string {
	if factor, ok := strengthFactors[strength]; ok {
		return factor
	}
	return "1.0"
}

package sampling

import (
	"github.com/KatjaLuckLab/DMI-predictor/pkg/models"
)

// SelectInstances picks the RRS instances of one DMI type round.
//
// With M matched pairs (pairs without matches are not counted) and target T:
// if M >= T, exactly T distinct pairs are drawn uniformly; otherwise every
// matched pair is used. Each used pair contributes one uniformly drawn match.
func SelectInstances(rng Rand, matched []models.PairMatches, target int) []models.DMIMatch {
	usable := make([]models.PairMatches, 0, len(matched))
	for _, pm := range matched {
		if len(pm.Matches) > 0 {
			usable = append(usable, pm)
		}
	}
	if target < 0 {
		target = 0
	}

	if len(usable) >= target {
		// Partial Fisher-Yates: the first target slots end up a uniform sample
		for i := 0; i < target; i++ {
			j := i + rng.Intn(len(usable)-i)
			usable[i], usable[j] = usable[j], usable[i]
		}
		usable = usable[:target]
	}

	out := make([]models.DMIMatch, 0, len(usable))
	for _, pm := range usable {
		out = append(out, pm.Matches[rng.Intn(len(pm.Matches))])
	}
	return out
}

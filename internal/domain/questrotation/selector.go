package questrotation

import (
	"math"
	"math/rand"

	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/pkg/enum"
	"golang.org/x/exp/slices"
)

var difficultyWeights = map[entity.QuestDifficulty]float64{
	entity.DifficultyEasy:      3,
	entity.DifficultyMedium:    2,
	entity.DifficultyHard:      1,
	entity.DifficultyExpert:    0.5,
	entity.DifficultyLegendary: 0.25,
}

// Selector picks quests for a rotation. It is not safe for concurrent use.
type Selector struct {
	rng *rand.Rand
}

func NewSelector(rng *rand.Rand) *Selector {
	return &Selector{rng: rng}
}

// SelectBalanced picks at most n templates, spreading the picks over the
// difficulty tiers in proportion to their weights. Every tier which has a
// candidate gets at least one pick before the result is truncated to n, and
// the truncation drops the hardest tiers' picks first.
func (s *Selector) SelectBalanced(templates []entity.QuestTemplate, n int) []entity.QuestTemplate {
	if n <= 0 || len(templates) == 0 {
		return nil
	}

	if len(templates) <= n {
		result := slices.Clone(templates)
		s.shuffle(result)
		return result
	}

	tiers := map[entity.QuestDifficulty][]entity.QuestTemplate{}
	for _, t := range templates {
		tiers[t.Difficulty] = append(tiers[t.Difficulty], t)
	}

	totalWeight := 0.0
	for difficulty, tier := range tiers {
		if len(tier) > 0 {
			totalWeight += difficultyWeights[difficulty]
		}
	}

	selected := make([]entity.QuestTemplate, 0, n)
	guaranteed := []entity.QuestTemplate{}
	extra := []entity.QuestTemplate{}
	picked := map[string]bool{}
	if totalWeight > 0 {
		// Iterate in declaration order so a seeded rng gives a stable result.
		for _, difficulty := range enum.Values[entity.QuestDifficulty]() {
			tier := tiers[difficulty]
			if len(tier) == 0 {
				continue
			}

			target := int(math.Floor(float64(n) * difficultyWeights[difficulty] / totalWeight))
			if target < 1 {
				target = 1
			}

			if target > len(tier) {
				target = len(tier)
			}

			s.shuffle(tier)
			guaranteed = append(guaranteed, tier[0])
			extra = append(extra, tier[1:target]...)
			for _, t := range tier[:target] {
				picked[t.ID] = true
			}
		}
	}

	// The first pick of every tier goes before the other picks, so when the
	// per-tier minimums exceed n the easier tiers keep their pick.
	selected = append(selected, guaranteed...)
	selected = append(selected, extra...)

	if len(selected) < n {
		remaining := make([]entity.QuestTemplate, 0, len(templates)-len(selected))
		for _, t := range templates {
			if !picked[t.ID] {
				remaining = append(remaining, t)
			}
		}

		s.shuffle(remaining)
		missing := n - len(selected)
		if missing > len(remaining) {
			missing = len(remaining)
		}

		selected = append(selected, remaining[:missing]...)
	}

	if len(selected) > n {
		selected = selected[:n]
	}

	s.shuffle(selected)
	return selected
}

// PickFeatured picks one of the featurable candidates with a probability
// proportional to its featured multiplier.
func (s *Selector) PickFeatured(candidates []entity.QuestTemplate) (*entity.QuestTemplate, bool) {
	featurable := make([]entity.QuestTemplate, 0, len(candidates))
	totalWeight := 0.0
	for _, c := range candidates {
		if c.CanBeFeatured && c.FeaturedMultiplier > 0 {
			featurable = append(featurable, c)
			totalWeight += c.FeaturedMultiplier
		}
	}

	if len(featurable) == 0 || totalWeight <= 0 {
		return nil, false
	}

	point := s.rng.Float64() * totalWeight
	for i := range featurable {
		point -= featurable[i].FeaturedMultiplier
		if point < 0 {
			return &featurable[i], true
		}
	}

	// Floating point rounding can leave a tiny remainder.
	return &featurable[len(featurable)-1], true
}

func (s *Selector) shuffle(templates []entity.QuestTemplate) {
	s.rng.Shuffle(len(templates), func(i, j int) {
		templates[i], templates[j] = templates[j], templates[i]
	})
}

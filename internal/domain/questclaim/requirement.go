package questclaim

import (
	"context"

	"github.com/mitchellh/mapstructure"
	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/pkg/errorx"
	"github.com/questx-lab/questengine/pkg/xcontext"
)

type requirementTarget struct {
	target int
}

func (r requirementTarget) Target() int {
	return r.target
}

type DoCommandRequirement struct {
	Command string `mapstructure:"command" structs:"command"`
	requirementTarget
}

func (*DoCommandRequirement) Type() entity.RequirementType {
	return entity.RequirementDoCommand
}

type SpendCurrencyRequirement struct {
	CurrencyID string `mapstructure:"currency_id" structs:"currency_id"`
	requirementTarget
}

func (*SpendCurrencyRequirement) Type() entity.RequirementType {
	return entity.RequirementSpendCurrency
}

type CraftItemRequirement struct {
	RecipeID string `mapstructure:"recipe_id" structs:"recipe_id"`
	requirementTarget
}

func (*CraftItemRequirement) Type() entity.RequirementType {
	return entity.RequirementCraftItem
}

type WinMinigameRequirement struct {
	Minigame string `mapstructure:"minigame" structs:"minigame"`
	requirementTarget
}

func (*WinMinigameRequirement) Type() entity.RequirementType {
	return entity.RequirementWinMinigame
}

type CastVoteRequirement struct {
	VoteType string `mapstructure:"vote_type" structs:"vote_type"`
	requirementTarget
}

func (*CastVoteRequirement) Type() entity.RequirementType {
	return entity.RequirementCastVote
}

// Match reports whether the event advances the requirement. Both the kind and
// the discriminating value must agree.
func Match(requirement Requirement, event Event) bool {
	switch r := requirement.(type) {
	case *DoCommandRequirement:
		e, ok := event.(CommandEvent)
		return ok && matchValue(r.Command, e.Command)

	case *SpendCurrencyRequirement:
		e, ok := event.(CurrencySpentEvent)
		return ok && matchValue(r.CurrencyID, e.CurrencyID)

	case *CraftItemRequirement:
		e, ok := event.(ItemCraftedEvent)
		return ok && matchValue(r.RecipeID, e.RecipeID)

	case *WinMinigameRequirement:
		e, ok := event.(MinigameWonEvent)
		return ok && matchValue(r.Minigame, e.Minigame)

	case *CastVoteRequirement:
		e, ok := event.(VoteCastEvent)
		return ok && matchValue(r.VoteType, e.VoteType)
	}

	return false
}

// MatchRequirement returns the index of the first requirement the event
// advances, or -1.
func MatchRequirement(requirements []Requirement, event Event) int {
	for i, r := range requirements {
		if Match(r, event) {
			return i
		}
	}

	return -1
}

// matchValue treats an empty discriminator as a wildcard.
func matchValue(want, got string) bool {
	return want == "" || want == got
}

// Requirement Factory
func NewRequirement(ctx context.Context, data entity.Requirement) (Requirement, error) {
	if data.Target < 1 {
		return nil, errorx.New(errorx.InvalidTemplate, "Requirement target must be at least 1")
	}

	target := requirementTarget{target: data.Target}

	var requirement Requirement
	var err error
	switch data.Type {
	case entity.RequirementDoCommand:
		r := &DoCommandRequirement{requirementTarget: target}
		err = mapstructure.Decode(data.Data, r)
		requirement = r

	case entity.RequirementSpendCurrency:
		r := &SpendCurrencyRequirement{requirementTarget: target}
		err = mapstructure.Decode(data.Data, r)
		requirement = r

	case entity.RequirementCraftItem:
		r := &CraftItemRequirement{requirementTarget: target}
		err = mapstructure.Decode(data.Data, r)
		requirement = r

	case entity.RequirementWinMinigame:
		r := &WinMinigameRequirement{requirementTarget: target}
		err = mapstructure.Decode(data.Data, r)
		requirement = r

	case entity.RequirementCastVote:
		r := &CastVoteRequirement{requirementTarget: target}
		err = mapstructure.Decode(data.Data, r)
		requirement = r

	default:
		return nil, errorx.New(errorx.InvalidTemplate, "Invalid requirement type %s", data.Type)
	}

	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot decode requirement data: %v", err)
		return nil, errorx.New(errorx.InvalidTemplate, "Invalid data of %s requirement", data.Type)
	}

	return requirement, nil
}

// NewRequirements parses every requirement of a template in order.
func NewRequirements(ctx context.Context, data []entity.Requirement) ([]Requirement, error) {
	requirements := make([]Requirement, 0, len(data))
	for _, d := range data {
		r, err := NewRequirement(ctx, d)
		if err != nil {
			return nil, err
		}

		requirements = append(requirements, r)
	}

	return requirements, nil
}

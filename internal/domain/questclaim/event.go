package questclaim

import (
	"github.com/mitchellh/mapstructure"
	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/pkg/enum"
	"github.com/questx-lab/questengine/pkg/errorx"
)

type CommandEvent struct {
	Command string `mapstructure:"command"`
}

func (CommandEvent) RequirementType() entity.RequirementType {
	return entity.RequirementDoCommand
}

func (CommandEvent) Increment() int {
	return 1
}

type CurrencySpentEvent struct {
	CurrencyID string `mapstructure:"currency_id"`
	Amount     int    `mapstructure:"amount"`
}

func (CurrencySpentEvent) RequirementType() entity.RequirementType {
	return entity.RequirementSpendCurrency
}

// Increment is zero for a non-positive amount, such an event advances nothing.
func (e CurrencySpentEvent) Increment() int {
	if e.Amount < 1 {
		return 0
	}

	return e.Amount
}

type ItemCraftedEvent struct {
	RecipeID string `mapstructure:"recipe_id"`
	Quantity int    `mapstructure:"quantity"`
}

func (ItemCraftedEvent) RequirementType() entity.RequirementType {
	return entity.RequirementCraftItem
}

func (e ItemCraftedEvent) Increment() int {
	return atLeastOne(e.Quantity)
}

type MinigameWonEvent struct {
	Minigame string `mapstructure:"minigame"`
}

func (MinigameWonEvent) RequirementType() entity.RequirementType {
	return entity.RequirementWinMinigame
}

func (MinigameWonEvent) Increment() int {
	return 1
}

type VoteCastEvent struct {
	VoteType string `mapstructure:"vote_type"`
}

func (VoteCastEvent) RequirementType() entity.RequirementType {
	return entity.RequirementCastVote
}

func (VoteCastEvent) Increment() int {
	return 1
}

// NewEvent builds a typed event from a requirement type and its metadata.
func NewEvent(requirementType string, metadata map[string]any) (Event, error) {
	t, err := enum.ToEnum[entity.RequirementType](requirementType)
	if err != nil {
		return nil, errorx.New(errorx.InvalidTemplate, "Invalid requirement type %s", requirementType)
	}

	var event Event
	switch t {
	case entity.RequirementDoCommand:
		e := CommandEvent{}
		err = decodeWeak(metadata, &e)
		event = e
	case entity.RequirementSpendCurrency:
		e := CurrencySpentEvent{}
		err = decodeWeak(metadata, &e)
		event = e
	case entity.RequirementCraftItem:
		e := ItemCraftedEvent{}
		err = decodeWeak(metadata, &e)
		event = e
	case entity.RequirementWinMinigame:
		e := MinigameWonEvent{}
		err = decodeWeak(metadata, &e)
		event = e
	case entity.RequirementCastVote:
		e := VoteCastEvent{}
		err = decodeWeak(metadata, &e)
		event = e
	default:
		return nil, errorx.New(errorx.InvalidTemplate, "Unsupported requirement type %s", t)
	}

	if err != nil {
		return nil, errorx.Wrap(errorx.InvalidTemplate, err, "Invalid metadata of %s event", t)
	}

	return event, nil
}

func decodeWeak(input map[string]any, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           output,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}

	return n
}

package questclaim

import (
	"context"

	"github.com/questx-lab/questengine/internal/entity"
)

// Requirement is a single objective of a quest. The concrete types are
// DoCommandRequirement, SpendCurrencyRequirement, CraftItemRequirement,
// WinMinigameRequirement and CastVoteRequirement.
type Requirement interface {
	Type() entity.RequirementType
	Target() int
}

// Event is something a user did which may advance a requirement. The concrete
// types are CommandEvent, CurrencySpentEvent, ItemCraftedEvent,
// MinigameWonEvent and VoteCastEvent.
type Event interface {
	RequirementType() entity.RequirementType

	// Increment is how much progress the event is worth.
	Increment() int
}

// Recipient identifies who receives a reward and why.
type Recipient struct {
	GuildID       string
	UserID        string
	RotationID    string
	QuestID       string
	CorrelationID string
}

// Reward gives something to user through one of the ledgers.
type Reward interface {
	Type() entity.RewardType

	// Amount is the scalar value which the featured multiplier scales.
	Amount() int64

	// Scale returns a copy of this reward with the amount multiplied and
	// floored.
	Scale(multiplier float64) Reward

	// Always return errorx in this method.
	Give(ctx context.Context, recipient Recipient) error

	// Data returns the normalized data of the reward.
	Data() entity.Map
}

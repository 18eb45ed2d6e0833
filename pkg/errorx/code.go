package errorx

import "fmt"

type Code int

const (
	// Catalog codes
	QuestNotFound    Code = 100001
	QuestDisabled    Code = 100002
	InvalidTemplate  Code = 100003
	DuplicateQuestID Code = 100004
	CapacityExceeded Code = 100005

	// Rotation codes
	RotationNotFound Code = 200001

	// Progress codes
	QuestAlreadyCompleted Code = 300001
	QuestNotCompleted     Code = 300002
	MaxCompletionsReached Code = 300003
	InsufficientLevel     Code = 300004

	// Claim codes
	RewardsAlreadyClaimed Code = 400001

	// Storage and dispatch failures
	UpdateFailed Code = 500001
)

var codeNames = map[Code]string{
	QuestNotFound:         "QUEST_NOT_FOUND",
	QuestDisabled:         "QUEST_DISABLED",
	InvalidTemplate:       "INVALID_TEMPLATE",
	DuplicateQuestID:      "DUPLICATE_QUEST_ID",
	CapacityExceeded:      "CAPACITY_EXCEEDED",
	RotationNotFound:      "ROTATION_NOT_FOUND",
	QuestAlreadyCompleted: "QUEST_ALREADY_COMPLETED",
	QuestNotCompleted:     "QUEST_NOT_COMPLETED",
	MaxCompletionsReached: "MAX_COMPLETIONS_REACHED",
	InsufficientLevel:     "INSUFFICIENT_LEVEL",
	RewardsAlreadyClaimed: "REWARDS_ALREADY_CLAIMED",
	UpdateFailed:          "UPDATE_FAILED",
}

// String returns the error kind name, e.g. QUEST_NOT_FOUND.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}

	return fmt.Sprintf("UNKNOWN_%d", int(c))
}

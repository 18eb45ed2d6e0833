package entity

import (
	"time"

	"github.com/questx-lab/questengine/pkg/enum"
)

type RewardGrantStatus string

var (
	RewardGrantPending = enum.New(RewardGrantStatus("pending"))
	RewardGrantApplied = enum.New(RewardGrantStatus("applied"))
)

// RewardGrant records the dispatch of one reward of a claim. The pair
// (CorrelationID, RewardIndex) identifies the dispatch across retries.
type RewardGrant struct {
	CorrelationID string `gorm:"primaryKey;size:64"`
	RewardIndex   int    `gorm:"primaryKey;autoIncrement:false"`

	GuildID    string            `gorm:"size:64"`
	UserID     string            `gorm:"size:64"`
	RotationID string            `gorm:"size:64"`
	QuestID    string            `gorm:"size:64"`
	RewardType RewardType        `gorm:"size:32"`
	Status     RewardGrantStatus `gorm:"size:16"`
	Amount     int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (RewardGrant) TableName() string {
	return "quest_reward_grants"
}

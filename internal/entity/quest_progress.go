package entity

import (
	"database/sql"
	"time"
)

type QuestProgress struct {
	UserID     string `gorm:"primaryKey;size:64"`
	RotationID string `gorm:"primaryKey;size:64;index"`
	QuestID    string `gorm:"primaryKey;size:64"`
	GuildID    string `gorm:"size:64;index"`

	Completed       bool
	CompletedAt     sql.NullTime
	CompletionCount int

	// RewardsReservedAt is set when a claim starts dispatching and
	// RewardsClaimedAt once every reward was given.
	RewardsClaimed    bool
	RewardsReservedAt sql.NullTime
	RewardsClaimedAt  sql.NullTime

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (QuestProgress) TableName() string {
	return "quest_progress"
}

// QuestProgressCounter holds the counter of a single requirement. Counters
// live in their own rows so each one can be bumped by a single statement.
type QuestProgressCounter struct {
	UserID           string `gorm:"primaryKey;size:64"`
	RotationID       string `gorm:"primaryKey;size:64"`
	QuestID          string `gorm:"primaryKey;size:64"`
	RequirementIndex int    `gorm:"primaryKey;autoIncrement:false"`

	Progress int
}

func (QuestProgressCounter) TableName() string {
	return "quest_progress_counters"
}

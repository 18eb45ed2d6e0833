package entity

import (
	"database/sql"
	"time"

	"github.com/questx-lab/questengine/pkg/enum"
)

type RotationType string

var (
	DailyRotation    = enum.New(RotationType("daily"))
	WeeklyRotation   = enum.New(RotationType("weekly"))
	FeaturedRotation = enum.New(RotationType("featured"))
)

type QuestRotation struct {
	ID string `gorm:"primaryKey;size:64"`

	GuildID  string       `gorm:"size:64;uniqueIndex:idx_quest_rotations_window,priority:1"`
	Type     RotationType `gorm:"size:16;uniqueIndex:idx_quest_rotations_window,priority:2"`
	StartsAt time.Time    `gorm:"uniqueIndex:idx_quest_rotations_window,priority:3"`
	EndsAt   time.Time    `gorm:"index"`

	QuestIDs        Array[string]
	FeaturedQuestID sql.NullString `gorm:"size:64"`

	CreatedAt time.Time
}

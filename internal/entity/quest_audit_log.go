package entity

import "time"

type QuestAuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement:false"`

	OperationType string `gorm:"size:32"`
	ActorID       string `gorm:"size:64"`
	TargetID      string `gorm:"size:64;index"`
	GuildID       string `gorm:"size:64;index"`
	CorrelationID string `gorm:"size:64;index"`
	Source        string
	Reason        string
	Metadata      Map

	CreatedAt time.Time
}

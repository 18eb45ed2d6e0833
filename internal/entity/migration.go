package entity

import "time"

// Migration keeps the versions of migrators which were applied to the
// database.
type Migration struct {
	Version   int `gorm:"primaryKey;autoIncrement:false"`
	AppliedAt time.Time
}

package migration

import (
	"context"

	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/pkg/xcontext"
)

// When this migrator is called, no need to call other migrators.
func AutoMigrate(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&entity.QuestTemplate{},
		&entity.QuestRotation{},
		&entity.QuestProgress{},
		&entity.QuestProgressCounter{},
		&entity.RewardGrant{},
		&entity.QuestAuditLog{},
		&entity.Migration{},
	)
}

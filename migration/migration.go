package migration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/pkg/xcontext"
	"gorm.io/gorm"
)

// migrators is append-only. The index of a migrator is its version.
var migrators = []func(context.Context) error{
	migrate0000,
}

// Migrate applies every migrator newer than the latest applied version. A
// fresh database only runs migrate0000, which already creates the latest
// schema.
func Migrate(ctx context.Context) error {
	if err := xcontext.DB(ctx).AutoMigrate(&entity.Migration{}); err != nil {
		return err
	}

	var latest entity.Migration
	err := xcontext.DB(ctx).Order("version DESC").Take(&latest).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := migrate0000(ctx); err != nil {
			return fmt.Errorf("migrate0000: %w", err)
		}

		return markApplied(ctx, len(migrators)-1)
	}

	for version := latest.Version + 1; version < len(migrators); version++ {
		xcontext.Logger(ctx).Infof("Applying migration %04d", version)
		if err := migrators[version](ctx); err != nil {
			return fmt.Errorf("migrate%04d: %w", version, err)
		}

		if err := markApplied(ctx, version); err != nil {
			return err
		}
	}

	return nil
}

func markApplied(ctx context.Context, version int) error {
	return xcontext.DB(ctx).Create(&entity.Migration{
		Version:   version,
		AppliedAt: time.Now().UTC(),
	}).Error
}

package migration

import "context"

// migrate0000 will create the database with the latest version.
func migrate0000(ctx context.Context) error {
	return AutoMigrate(ctx)
}

package main

import (
	"github.com/questx-lab/questengine/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(*cli.Context) error {
	s.loadDatabase()
	s.migrateDB()

	xcontext.Logger(s.ctx).Infof("Migrated database")
	return nil
}

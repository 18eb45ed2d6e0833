package main

import (
	"time"

	"github.com/questx-lab/questengine/internal/domain/cron"
	"github.com/questx-lab/questengine/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

const rotationRetentionInterval = time.Hour

func (s *srv) startCron(*cli.Context) error {
	s.loadDatabase()
	s.migrateDB()
	s.loadRepos()
	s.loadDomains()

	ctx, stop := signalContext(s.ctx)
	defer stop()

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(
		cron.NewEnsureRotationsCronJob(s.templateRepo, s.rotationDomain, xcontext.Configs(s.ctx).Quest),
		cron.NewRotationRetentionCronJob(s.rotationDomain, rotationRetentionInterval),
	)
	cronJobManager.Start(ctx)

	return nil
}

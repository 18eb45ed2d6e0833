package cron

import (
	"context"
	"time"

	"github.com/questx-lab/questengine/config"
	"github.com/questx-lab/questengine/internal/domain"
	"github.com/questx-lab/questengine/internal/model"
	"github.com/questx-lab/questengine/internal/repository"
	"github.com/questx-lab/questengine/pkg/dateutil"
	"github.com/questx-lab/questengine/pkg/xcontext"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentGuilds = 8

// EnsureRotationsCronJob makes sure every guild which has quest templates owns
// its current rotations right after each reset.
type EnsureRotationsCronJob struct {
	templateRepo   repository.QuestTemplateRepository
	rotationDomain domain.QuestRotationDomain
	cfg            config.QuestConfigs
}

func NewEnsureRotationsCronJob(
	templateRepo repository.QuestTemplateRepository,
	rotationDomain domain.QuestRotationDomain,
	cfg config.QuestConfigs,
) *EnsureRotationsCronJob {
	return &EnsureRotationsCronJob{
		templateRepo:   templateRepo,
		rotationDomain: rotationDomain,
		cfg:            cfg,
	}
}

func (job *EnsureRotationsCronJob) Do(ctx context.Context) {
	guildIDs, err := job.templateRepo.GetGuildIDs(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get guilds having quests: %v", err)
		return
	}

	eg := errgroup.Group{}
	eg.SetLimit(maxConcurrentGuilds)
	for _, guildID := range guildIDs {
		guildID := guildID
		eg.Go(func() error {
			_, err := job.rotationDomain.EnsureCurrentRotations(ctx,
				&model.EnsureCurrentRotationsRequest{GuildID: guildID})
			if err != nil {
				xcontext.Logger(ctx).Warnf("Cannot ensure rotations of guild %s: %v", guildID, err)
			}

			// One guild failing must not stop the others.
			return nil
		})
	}

	_ = eg.Wait()
}

func (job *EnsureRotationsCronJob) RunNow() bool {
	return true
}

func (job *EnsureRotationsCronJob) Next() time.Time {
	now := time.Now()
	daily := dateutil.NextDailyReset(now, job.cfg.DailyResetHour)
	weekly := dateutil.NextWeeklyReset(now, job.cfg.WeeklyResetWeekday, job.cfg.WeeklyResetHour)
	if weekly.Before(daily) {
		return weekly
	}

	return daily
}

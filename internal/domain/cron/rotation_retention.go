package cron

import (
	"context"
	"time"

	"github.com/questx-lab/questengine/internal/domain"
	"github.com/questx-lab/questengine/pkg/xcontext"
)

type RotationRetentionCronJob struct {
	rotationDomain domain.QuestRotationDomain
	interval       time.Duration
}

func NewRotationRetentionCronJob(rotationDomain domain.QuestRotationDomain, interval time.Duration) *RotationRetentionCronJob {
	return &RotationRetentionCronJob{rotationDomain: rotationDomain, interval: interval}
}

func (job *RotationRetentionCronJob) Do(ctx context.Context) {
	deleted, err := job.rotationDomain.DeleteExpiredRotations(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete expired rotations: %v", err)
		return
	}

	if deleted > 0 {
		xcontext.Logger(ctx).Infof("Deleted %d expired rotations", deleted)
	}
}

func (job *RotationRetentionCronJob) RunNow() bool {
	return false
}

func (job *RotationRetentionCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}

package domain

import (
	"context"
	"errors"
	"time"

	"github.com/questx-lab/questengine/internal/common"
	"github.com/questx-lab/questengine/internal/domain/questclaim"
	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/internal/model"
	"github.com/questx-lab/questengine/internal/repository"
	"github.com/questx-lab/questengine/pkg/errorx"
	"github.com/questx-lab/questengine/pkg/xcontext"
	"gorm.io/gorm"
)

type QuestProgressDomain interface {
	// GetOrCreate returns the progress of the key, creating a fresh one with
	// requirementCount zero counters if it does not exist yet.
	GetOrCreate(ctx context.Context, guildID string, key repository.QuestProgressKey, requirementCount int) (*model.QuestProgress, error)

	// UpdateProgress adds increment to the counter at index without ever going
	// above cap. It returns the current state, which is left untouched if the
	// progress is already completed.
	UpdateProgress(ctx context.Context, key repository.QuestProgressKey, index, increment, cap int) (*model.QuestProgress, error)

	// CheckAndComplete completes the progress if every counter reached the
	// target of its requirement.
	CheckAndComplete(ctx context.Context, key repository.QuestProgressKey, requirements []questclaim.Requirement, maxCompletions int) (*model.QuestProgress, error)

	GetUserProgress(context.Context, *model.GetUserProgressRequest) (*model.GetUserProgressResponse, error)
}

type questProgressDomain struct {
	progressRepo repository.QuestProgressRepository
}

func NewQuestProgressDomain(progressRepo repository.QuestProgressRepository) *questProgressDomain {
	return &questProgressDomain{progressRepo: progressRepo}
}

func (d *questProgressDomain) GetOrCreate(
	ctx context.Context, guildID string, key repository.QuestProgressKey, requirementCount int,
) (*model.QuestProgress, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	err := d.progressRepo.CreateIfAbsent(ctx, &entity.QuestProgress{
		UserID:     key.UserID,
		RotationID: key.RotationID,
		QuestID:    key.QuestID,
		GuildID:    guildID,
	}, requirementCount)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create quest progress: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot create progress")
	}

	ctx, err = xcontext.WithCommitDBTransaction(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot create progress")
	}

	return d.get(ctx, key)
}

func (d *questProgressDomain) UpdateProgress(
	ctx context.Context, key repository.QuestProgressKey, index, increment, cap int,
) (*model.QuestProgress, error) {
	if increment < 1 {
		return d.get(ctx, key)
	}

	_, err := d.progressRepo.IncreaseCounter(ctx, key, index, increment, cap)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot increase progress counter: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot update progress")
	}

	return d.get(ctx, key)
}

func (d *questProgressDomain) CheckAndComplete(
	ctx context.Context,
	key repository.QuestProgressKey,
	requirements []questclaim.Requirement,
	maxCompletions int,
) (*model.QuestProgress, error) {
	progress, err := d.get(ctx, key)
	if err != nil {
		return nil, err
	}

	if progress.Completed {
		return nil, errorx.New(errorx.QuestAlreadyCompleted, "Quest %s is already completed", key.QuestID)
	}

	if len(progress.Counters) != len(requirements) {
		xcontext.Logger(ctx).Errorf("Progress of quest %s has %d counters but %d requirements",
			key.QuestID, len(progress.Counters), len(requirements))
		return nil, errorx.New(errorx.QuestNotCompleted, "Quest %s is not completed", key.QuestID)
	}

	for i, r := range requirements {
		if progress.Counters[i] < r.Target() {
			return nil, errorx.New(errorx.QuestNotCompleted, "Quest %s is not completed", key.QuestID)
		}
	}

	completed, err := d.progressRepo.Complete(ctx, key, maxCompletions, time.Now())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot complete quest progress: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot complete quest")
	}

	if !completed {
		// Find out which condition of the conditional write failed.
		current, err := d.get(ctx, key)
		if err != nil {
			return nil, err
		}

		if current.Completed {
			return nil, errorx.New(errorx.QuestAlreadyCompleted, "Quest %s is already completed", key.QuestID)
		}

		return nil, errorx.New(errorx.MaxCompletionsReached, "Quest %s reached its max completions", key.QuestID)
	}

	common.PromCounters[common.QuestCompletedTotal].WithLabelValues(progress.GuildID).Inc()
	return d.get(ctx, key)
}

func (d *questProgressDomain) GetUserProgress(
	ctx context.Context, req *model.GetUserProgressRequest,
) (*model.GetUserProgressResponse, error) {
	progresses, err := d.progressRepo.GetListByRotation(ctx, req.UserID, req.RotationID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get progress list: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot get progress")
	}

	counters, err := d.progressRepo.GetCountersByRotation(ctx, req.UserID, req.RotationID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get progress counters: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot get progress")
	}

	countersByQuest := map[string][]entity.QuestProgressCounter{}
	for _, c := range counters {
		countersByQuest[c.QuestID] = append(countersByQuest[c.QuestID], c)
	}

	result := []model.QuestProgress{}
	for i := range progresses {
		result = append(result, convertQuestProgress(&progresses[i], countersByQuest[progresses[i].QuestID]))
	}

	return &model.GetUserProgressResponse{Progress: result}, nil
}

func (d *questProgressDomain) get(ctx context.Context, key repository.QuestProgressKey) (*model.QuestProgress, error) {
	progress, err := d.progressRepo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.QuestNotFound, "Not found progress of quest %s", key.QuestID)
		}

		xcontext.Logger(ctx).Errorf("Cannot get quest progress: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot get progress")
	}

	counters, err := d.progressRepo.GetCounters(ctx, key)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get progress counters: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot get progress")
	}

	result := convertQuestProgress(progress, counters)
	return &result, nil
}

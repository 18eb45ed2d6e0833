package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/questx-lab/questengine/internal/client"
	"github.com/questx-lab/questengine/internal/common"
	"github.com/questx-lab/questengine/internal/domain/questclaim"
	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/internal/model"
	"github.com/questx-lab/questengine/internal/repository"
	"github.com/questx-lab/questengine/pkg/errorx"
	"github.com/questx-lab/questengine/pkg/xcontext"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// claimNamespace scopes the correlation ids of reward claims.
var claimNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("questengine:quest_claim"))

type QuestClaimDomain interface {
	Claim(context.Context, *model.ClaimQuestRewardRequest) (*model.ClaimQuestRewardResponse, error)
}

type questClaimDomain struct {
	templateRepo  repository.QuestTemplateRepository
	rotationRepo  repository.QuestRotationRepository
	progressRepo  repository.QuestProgressRepository
	grantRepo     repository.RewardGrantRepository
	rewardFactory questclaim.Factory
	auditSink     client.AuditSink
}

func NewQuestClaimDomain(
	templateRepo repository.QuestTemplateRepository,
	rotationRepo repository.QuestRotationRepository,
	progressRepo repository.QuestProgressRepository,
	grantRepo repository.RewardGrantRepository,
	rewardFactory questclaim.Factory,
	auditSink client.AuditSink,
) *questClaimDomain {
	return &questClaimDomain{
		templateRepo:  templateRepo,
		rotationRepo:  rotationRepo,
		progressRepo:  progressRepo,
		grantRepo:     grantRepo,
		rewardFactory: rewardFactory,
		auditSink:     auditSink,
	}
}

// ClaimCorrelationID is the id shared by every dispatch and retry of a claim.
func ClaimCorrelationID(rotationID, questID, userID string) string {
	name := fmt.Sprintf("%s|%s|%s", rotationID, questID, userID)
	return uuid.NewSHA1(claimNamespace, []byte(name)).String()
}

func (d *questClaimDomain) Claim(
	ctx context.Context, req *model.ClaimQuestRewardRequest,
) (*model.ClaimQuestRewardResponse, error) {
	resp, err := d.claim(ctx, req)
	if err != nil {
		common.PromCounters[common.QuestClaimTotal].WithLabelValues(errorx.CodeOf(err).String()).Inc()
		return nil, err
	}

	common.PromCounters[common.QuestClaimTotal].WithLabelValues("ok").Inc()
	return resp, nil
}

func (d *questClaimDomain) claim(
	ctx context.Context, req *model.ClaimQuestRewardRequest,
) (*model.ClaimQuestRewardResponse, error) {
	rotation, err := d.rotationRepo.GetByID(ctx, req.RotationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.RotationNotFound, "Not found rotation %s", req.RotationID)
		}

		xcontext.Logger(ctx).Errorf("Cannot get rotation: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot claim rewards")
	}

	if rotation.GuildID != req.GuildID {
		return nil, errorx.New(errorx.RotationNotFound, "Not found rotation %s", req.RotationID)
	}

	if !slices.Contains(rotation.QuestIDs, req.QuestID) {
		return nil, errorx.New(errorx.QuestNotFound, "Quest %s is not in rotation %s", req.QuestID, req.RotationID)
	}

	template, err := d.templateRepo.Get(ctx, req.GuildID, req.QuestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.QuestNotFound, "Not found quest %s", req.QuestID)
		}

		xcontext.Logger(ctx).Errorf("Cannot get quest template: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot claim rewards")
	}

	key := repository.QuestProgressKey{UserID: req.UserID, RotationID: req.RotationID, QuestID: req.QuestID}
	progress, err := d.progressRepo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.QuestNotCompleted, "Quest %s is not completed", req.QuestID)
		}

		xcontext.Logger(ctx).Errorf("Cannot get quest progress: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot claim rewards")
	}

	if !progress.Completed {
		return nil, errorx.New(errorx.QuestNotCompleted, "Quest %s is not completed", req.QuestID)
	}

	if progress.RewardsClaimedAt.Valid {
		return nil, errorx.New(errorx.RewardsAlreadyClaimed, "Rewards of quest %s were already claimed", req.QuestID)
	}

	rewards, err := d.rewardFactory.NewRewards(ctx, template.Rewards)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Invalid rewards of quest %s: %v", template.ID, err)
		return nil, err
	}

	featured := rotation.FeaturedQuestID.Valid && rotation.FeaturedQuestID.String == req.QuestID
	if featured {
		for i := range rewards {
			rewards[i] = rewards[i].Scale(template.FeaturedMultiplier)
		}
	}

	// A reservation left by a crashed claim is resumed after the lease, the
	// grant ledger skips rewards which were already given.
	lease := xcontext.Configs(ctx).Quest.ClaimLease.Duration
	reserved, err := d.progressRepo.ReserveClaim(ctx, key, time.Now(), lease)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reserve the claim: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot claim rewards")
	}

	if !reserved {
		return nil, errorx.New(errorx.RewardsAlreadyClaimed, "Rewards of quest %s were already claimed", req.QuestID)
	}

	recipient := questclaim.Recipient{
		GuildID:       req.GuildID,
		UserID:        req.UserID,
		RotationID:    req.RotationID,
		QuestID:       req.QuestID,
		CorrelationID: ClaimCorrelationID(req.RotationID, req.QuestID, req.UserID),
	}

	if err := d.dispatch(ctx, recipient, rewards); err != nil {
		if releaseErr := d.progressRepo.ReleaseClaim(ctx, key); releaseErr != nil {
			xcontext.Logger(ctx).Errorf("Cannot release the claim of %s: %v", recipient.CorrelationID, releaseErr)
		}

		return nil, err
	}

	if err := d.progressRepo.StampClaimed(ctx, key, time.Now()); err != nil {
		// The reservation still holds, the claim stays claimed.
		xcontext.Logger(ctx).Warnf("Cannot stamp the claim of %s: %v", recipient.CorrelationID, err)
	}

	appliedRewards := []model.AppliedReward{}
	for _, r := range rewards {
		appliedRewards = append(appliedRewards, model.AppliedReward{
			Type:   string(r.Type()),
			Amount: r.Amount(),
			Data:   r.Data(),
		})
	}

	err = d.auditSink.Record(ctx, client.AuditRecord{
		OperationType: questclaim.QuestCompleteOperation,
		ActorID:       req.UserID,
		TargetID:      req.UserID,
		GuildID:       req.GuildID,
		Source:        "quest",
		Reason:        fmt.Sprintf("Completed quest %s", template.Name),
		CorrelationID: recipient.CorrelationID,
		Metadata: map[string]any{
			"quest_id":    req.QuestID,
			"rotation_id": req.RotationID,
			"featured":    featured,
			"rewards":     appliedRewards,
		},
	})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot record audit of %s: %v", recipient.CorrelationID, err)
	}

	return &model.ClaimQuestRewardResponse{
		Rewards:       appliedRewards,
		CorrelationID: recipient.CorrelationID,
		Featured:      featured,
	}, nil
}

// dispatch gives every reward which has not been applied by a previous
// attempt of the same claim.
func (d *questClaimDomain) dispatch(ctx context.Context, recipient questclaim.Recipient, rewards []questclaim.Reward) error {
	grants, err := d.grantRepo.GetByCorrelationID(ctx, recipient.CorrelationID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get reward grants: %v", err)
		return errorx.Wrap(errorx.UpdateFailed, err, "Cannot claim rewards")
	}

	applied := map[int]bool{}
	for _, g := range grants {
		if g.Status == entity.RewardGrantApplied {
			applied[g.RewardIndex] = true
		}
	}

	for i, reward := range rewards {
		if applied[i] {
			xcontext.Logger(ctx).Debugf("Reward %d of %s was already applied", i, recipient.CorrelationID)
			continue
		}

		err := d.grantRepo.CreateIfAbsent(ctx, &entity.RewardGrant{
			CorrelationID: recipient.CorrelationID,
			RewardIndex:   i,
			GuildID:       recipient.GuildID,
			UserID:        recipient.UserID,
			RotationID:    recipient.RotationID,
			QuestID:       recipient.QuestID,
			RewardType:    reward.Type(),
			Status:        entity.RewardGrantPending,
			Amount:        reward.Amount(),
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot record reward grant: %v", err)
			return errorx.Wrap(errorx.UpdateFailed, err, "Cannot claim rewards")
		}

		start := time.Now()
		err = reward.Give(ctx, recipient)
		common.PromHistograms[common.RewardDispatchSeconds].
			WithLabelValues(string(reward.Type())).
			Observe(time.Since(start).Seconds())
		if err != nil {
			common.PromCounters[common.RewardDispatchFailureTotal].WithLabelValues(string(reward.Type())).Inc()
			return err
		}

		if err := d.grantRepo.MarkApplied(ctx, recipient.CorrelationID, i); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot mark reward grant as applied: %v", err)
			return errorx.Wrap(errorx.UpdateFailed, err, "Cannot claim rewards")
		}
	}

	return nil
}

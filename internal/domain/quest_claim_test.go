package domain

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/questx-lab/questengine/internal/client"
	"github.com/questx-lab/questengine/internal/domain/questclaim"
	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/internal/model"
	"github.com/questx-lab/questengine/internal/repository"
	"github.com/questx-lab/questengine/pkg/errorx"
	"github.com/questx-lab/questengine/pkg/testutil"
	"github.com/questx-lab/questengine/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newTestQuestClaimDomain(
	currencyLedger client.CurrencyLedgerCaller,
	xpLedger client.XPLedgerCaller,
	auditSink client.AuditSink,
) *questClaimDomain {
	return NewQuestClaimDomain(
		repository.NewQuestTemplateRepository(),
		repository.NewQuestRotationRepository(),
		repository.NewQuestProgressRepository(),
		repository.NewRewardGrantRepository(),
		questclaim.NewFactory(currencyLedger, xpLedger, &testutil.MockItemLedgerCaller{}),
		auditSink,
	)
}

// insertCompletedProgress stores a completed progress of user1 on quest_a of
// rotation1.
func insertCompletedProgress(t *testing.T, ctx context.Context) {
	progressRepo := repository.NewQuestProgressRepository()
	err := progressRepo.CreateIfAbsent(ctx, &entity.QuestProgress{
		UserID:     "user1",
		RotationID: "rotation1",
		QuestID:    "quest_a",
		GuildID:    "guild1",
	}, 1)
	require.NoError(t, err)

	ok, err := progressRepo.Complete(ctx, testProgressKey, 1, time.Now())
	require.NoError(t, err)
	require.True(t, ok)
}

func newClaimRequest() *model.ClaimQuestRewardRequest {
	return &model.ClaimQuestRewardRequest{
		GuildID:    "guild1",
		UserID:     "user1",
		RotationID: "rotation1",
		QuestID:    "quest_a",
	}
}

func Test_questClaimDomain_Claim_Preconditions(t *testing.T) {
	ctx := testutil.MockContext()
	domain := newTestQuestClaimDomain(&testutil.MockCurrencyLedgerCaller{}, &testutil.MockXPLedgerCaller{}, &testutil.MockAuditSink{})

	_, err := domain.Claim(ctx, newClaimRequest())
	require.True(t, errorx.Is(err, errorx.RotationNotFound))

	testutil.InsertQuestRotation(ctx, "rotation1", "guild1", entity.DailyRotation, time.Now(), "", "quest_a", "quest_b")

	otherGuild := newClaimRequest()
	otherGuild.GuildID = "guild2"
	_, err = domain.Claim(ctx, otherGuild)
	require.True(t, errorx.Is(err, errorx.RotationNotFound))

	notInRotation := newClaimRequest()
	notInRotation.QuestID = "quest_z"
	_, err = domain.Claim(ctx, notInRotation)
	require.True(t, errorx.Is(err, errorx.QuestNotFound))

	_, err = domain.Claim(ctx, newClaimRequest())
	require.True(t, errorx.Is(err, errorx.QuestNotFound))

	testutil.InsertQuestTemplates(ctx, testutil.NewQuestTemplate("guild1", "quest_a", entity.DifficultyEasy))

	_, err = domain.Claim(ctx, newClaimRequest())
	require.True(t, errorx.Is(err, errorx.QuestNotCompleted))

	err = repository.NewQuestProgressRepository().CreateIfAbsent(ctx, &entity.QuestProgress{
		UserID:     "user1",
		RotationID: "rotation1",
		QuestID:    "quest_a",
		GuildID:    "guild1",
	}, 1)
	require.NoError(t, err)

	_, err = domain.Claim(ctx, newClaimRequest())
	require.True(t, errorx.Is(err, errorx.QuestNotCompleted))
}

func Test_questClaimDomain_Claim(t *testing.T) {
	tests := []struct {
		name         string
		featuredID   string
		wantXP       int64
		wantFeatured bool
	}{
		{name: "normal quest", featuredID: "quest_b", wantXP: 100},
		{name: "featured quest", featuredID: "quest_a", wantXP: 200, wantFeatured: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.MockContext()

			template := testutil.NewQuestTemplate("guild1", "quest_a", entity.DifficultyEasy)
			template.CanBeFeatured = true
			template.FeaturedMultiplier = 2
			testutil.InsertQuestTemplates(ctx, template)
			testutil.InsertQuestRotation(ctx, "rotation1", "guild1", entity.DailyRotation, time.Now(),
				tt.featuredID, "quest_a", "quest_b")
			insertCompletedProgress(t, ctx)

			var xp int64
			var audits []client.AuditRecord
			domain := newTestQuestClaimDomain(
				&testutil.MockCurrencyLedgerCaller{},
				&testutil.MockXPLedgerCaller{
					AddXPFunc: func(
						_ context.Context, guildID, userID, sourceOp string, amount int64, correlationID string, _ map[string]any,
					) (*client.XPResult, error) {
						require.Equal(t, "guild1", guildID)
						require.Equal(t, "user1", userID)
						require.Equal(t, ClaimCorrelationID("rotation1", "quest_a", "user1"), correlationID)
						xp += amount
						return &client.XPResult{}, nil
					},
				},
				&testutil.MockAuditSink{
					RecordFunc: func(_ context.Context, record client.AuditRecord) error {
						audits = append(audits, record)
						return nil
					},
				},
			)

			resp, err := domain.Claim(ctx, newClaimRequest())
			require.NoError(t, err)
			require.Equal(t, tt.wantXP, xp)
			require.Equal(t, tt.wantFeatured, resp.Featured)
			require.Equal(t, []model.AppliedReward{
				{Type: "xp", Amount: tt.wantXP, Data: map[string]any{"amount": tt.wantXP}},
			}, resp.Rewards)

			require.Len(t, audits, 1)
			require.Equal(t, "quest_complete", audits[0].OperationType)
			require.Equal(t, resp.CorrelationID, audits[0].CorrelationID)

			progress, err := repository.NewQuestProgressRepository().Get(ctx, testProgressKey)
			require.NoError(t, err)
			require.True(t, progress.RewardsClaimed)
			require.True(t, progress.RewardsClaimedAt.Valid)

			_, err = domain.Claim(ctx, newClaimRequest())
			require.True(t, errorx.Is(err, errorx.RewardsAlreadyClaimed))
			require.Equal(t, tt.wantXP, xp)
		})
	}
}

func Test_questClaimDomain_Claim_Concurrent(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.InsertQuestTemplates(ctx, testutil.NewQuestTemplate("guild1", "quest_a", entity.DifficultyEasy))
	testutil.InsertQuestRotation(ctx, "rotation1", "guild1", entity.DailyRotation, time.Now(), "", "quest_a")
	insertCompletedProgress(t, ctx)

	var grants int32
	domain := newTestQuestClaimDomain(
		&testutil.MockCurrencyLedgerCaller{},
		&testutil.MockXPLedgerCaller{
			AddXPFunc: func(context.Context, string, string, string, int64, string, map[string]any) (*client.XPResult, error) {
				atomic.AddInt32(&grants, 1)
				return &client.XPResult{}, nil
			},
		},
		&testutil.MockAuditSink{},
	)

	var wg sync.WaitGroup
	var succeeded, rejected int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := domain.Claim(ctx, newClaimRequest())
			if err == nil {
				atomic.AddInt32(&succeeded, 1)
			} else if errorx.Is(err, errorx.RewardsAlreadyClaimed) {
				atomic.AddInt32(&rejected, 1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), succeeded)
	require.Equal(t, int32(9), rejected)
	require.Equal(t, int32(1), grants)
}

func Test_questClaimDomain_Claim_RetryAfterFailure(t *testing.T) {
	ctx := testutil.MockContext()

	template := testutil.NewQuestTemplate("guild1", "quest_a", entity.DifficultyEasy)
	template.Rewards = entity.Array[entity.Reward]{
		{Type: entity.CurrencyReward, Data: entity.Map{"currency_id": "gold", "amount": 50}},
		{Type: entity.XPReward, Data: entity.Map{"amount": 100}},
	}
	testutil.InsertQuestTemplates(ctx, template)
	testutil.InsertQuestRotation(ctx, "rotation1", "guild1", entity.DailyRotation, time.Now(), "", "quest_a")
	insertCompletedProgress(t, ctx)

	var currencyGrants, xpGrants int
	xpFailing := true
	domain := newTestQuestClaimDomain(
		&testutil.MockCurrencyLedgerCaller{
			GrantFunc: func(context.Context, string, string, string, string, int64, string) error {
				currencyGrants++
				return nil
			},
		},
		&testutil.MockXPLedgerCaller{
			AddXPFunc: func(context.Context, string, string, string, int64, string, map[string]any) (*client.XPResult, error) {
				if xpFailing {
					return nil, errors.New("xp ledger is down")
				}

				xpGrants++
				return &client.XPResult{}, nil
			},
		},
		&testutil.MockAuditSink{
			RecordFunc: func(context.Context, client.AuditRecord) error {
				return errors.New("audit sink is down")
			},
		},
	)

	_, err := domain.Claim(ctx, newClaimRequest())
	require.True(t, errorx.Is(err, errorx.UpdateFailed))
	require.Equal(t, 1, currencyGrants)
	require.Zero(t, xpGrants)

	// The reservation was released.
	progress, err := repository.NewQuestProgressRepository().Get(ctx, testProgressKey)
	require.NoError(t, err)
	require.False(t, progress.RewardsClaimed)

	xpFailing = false
	resp, err := domain.Claim(ctx, newClaimRequest())
	require.NoError(t, err)
	require.Len(t, resp.Rewards, 2)

	// Only the reward which was not applied is dispatched again.
	require.Equal(t, 1, currencyGrants)
	require.Equal(t, 1, xpGrants)

	grants, err := repository.NewRewardGrantRepository().GetByCorrelationID(ctx, resp.CorrelationID)
	require.NoError(t, err)
	require.Len(t, grants, 2)
	for _, g := range grants {
		require.Equal(t, entity.RewardGrantApplied, g.Status)
	}
}

func Test_questClaimDomain_Claim_ResumeStaleReservation(t *testing.T) {
	ctx := testutil.MockContext()

	testutil.InsertQuestTemplates(ctx, testutil.NewQuestTemplate("guild1", "quest_a", entity.DifficultyEasy))
	testutil.InsertQuestRotation(ctx, "rotation1", "guild1", entity.DailyRotation, time.Now(), "", "quest_a")
	insertCompletedProgress(t, ctx)

	var xpGrants int
	domain := newTestQuestClaimDomain(
		&testutil.MockCurrencyLedgerCaller{},
		&testutil.MockXPLedgerCaller{
			AddXPFunc: func(context.Context, string, string, string, int64, string, map[string]any) (*client.XPResult, error) {
				xpGrants++
				return &client.XPResult{}, nil
			},
		},
		&testutil.MockAuditSink{},
	)

	// A claim which reserved the rewards and never finished.
	progressRepo := repository.NewQuestProgressRepository()
	lease := xcontext.Configs(ctx).Quest.ClaimLease.Duration
	ok, err := progressRepo.ReserveClaim(ctx, testProgressKey, time.Now(), lease)
	require.NoError(t, err)
	require.True(t, ok)

	// It still holds while the lease is running.
	_, err = domain.Claim(ctx, newClaimRequest())
	require.True(t, errorx.Is(err, errorx.RewardsAlreadyClaimed))
	require.Zero(t, xpGrants)

	// Age the reservation past the lease.
	err = xcontext.DB(ctx).Model(&entity.QuestProgress{}).
		Where("user_id=? AND rotation_id=? AND quest_id=?", "user1", "rotation1", "quest_a").
		Update("rewards_reserved_at", time.Now().Add(-2*lease).UTC()).Error
	require.NoError(t, err)

	resp, err := domain.Claim(ctx, newClaimRequest())
	require.NoError(t, err)
	require.Len(t, resp.Rewards, 1)
	require.Equal(t, 1, xpGrants)

	progress, err := progressRepo.Get(ctx, testProgressKey)
	require.NoError(t, err)
	require.True(t, progress.RewardsClaimed)
	require.True(t, progress.RewardsClaimedAt.Valid)

	_, err = domain.Claim(ctx, newClaimRequest())
	require.True(t, errorx.Is(err, errorx.RewardsAlreadyClaimed))
	require.Equal(t, 1, xpGrants)
}

package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/questx-lab/questengine/internal/client"
	"github.com/questx-lab/questengine/internal/common"
	"github.com/questx-lab/questengine/internal/domain/questclaim"
	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/internal/model"
	"github.com/questx-lab/questengine/internal/repository"
	"github.com/questx-lab/questengine/pkg/errorx"
	"github.com/questx-lab/questengine/pkg/pubsub"
	"github.com/questx-lab/questengine/pkg/xcontext"
	"github.com/questx-lab/questengine/pkg/xredis"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type QuestHookDomain interface {
	TrackProgress(context.Context, *model.TrackProgressRequest) (*model.TrackProgressResponse, error)
	TrackCommand(ctx context.Context, guildID, userID, command string) (*model.TrackProgressResponse, error)
	TrackCurrencySpent(ctx context.Context, guildID, userID, currencyID string, amount int) (*model.TrackProgressResponse, error)
	TrackItemCrafted(ctx context.Context, guildID, userID, recipeID string, quantity int) (*model.TrackProgressResponse, error)
	TrackMinigameWon(ctx context.Context, guildID, userID, minigame string) (*model.TrackProgressResponse, error)
	TrackVoteCast(ctx context.Context, guildID, userID, voteType string) (*model.TrackProgressResponse, error)

	// TrackQuest targets one quest and reports why it cannot progress instead
	// of skipping it.
	TrackQuest(context.Context, *model.TrackQuestRequest) (*model.TrackProgressResponse, error)

	// HandleHookEvent consumes a hook event from the message bus.
	HandleHookEvent(ctx context.Context, pack *pubsub.Pack, t time.Time)
}

type questHookDomain struct {
	templateRepo   repository.QuestTemplateRepository
	rotationRepo   repository.QuestRotationRepository
	progressDomain QuestProgressDomain
	xpLedger       client.XPLedgerCaller
	redisClient    xredis.Client
	publisher      pubsub.Publisher
}

func NewQuestHookDomain(
	templateRepo repository.QuestTemplateRepository,
	rotationRepo repository.QuestRotationRepository,
	progressDomain QuestProgressDomain,
	xpLedger client.XPLedgerCaller,
	redisClient xredis.Client,
	publisher pubsub.Publisher,
) *questHookDomain {
	return &questHookDomain{
		templateRepo:   templateRepo,
		rotationRepo:   rotationRepo,
		progressDomain: progressDomain,
		xpLedger:       xpLedger,
		redisClient:    redisClient,
		publisher:      publisher,
	}
}

func (d *questHookDomain) TrackProgress(
	ctx context.Context, req *model.TrackProgressRequest,
) (*model.TrackProgressResponse, error) {
	event, err := questclaim.NewEvent(req.RequirementType, req.Metadata)
	if err != nil {
		return nil, err
	}

	return d.track(ctx, req.GuildID, req.UserID, event)
}

func (d *questHookDomain) TrackCommand(
	ctx context.Context, guildID, userID, command string,
) (*model.TrackProgressResponse, error) {
	return d.track(ctx, guildID, userID, questclaim.CommandEvent{Command: command})
}

func (d *questHookDomain) TrackCurrencySpent(
	ctx context.Context, guildID, userID, currencyID string, amount int,
) (*model.TrackProgressResponse, error) {
	return d.track(ctx, guildID, userID, questclaim.CurrencySpentEvent{CurrencyID: currencyID, Amount: amount})
}

func (d *questHookDomain) TrackItemCrafted(
	ctx context.Context, guildID, userID, recipeID string, quantity int,
) (*model.TrackProgressResponse, error) {
	return d.track(ctx, guildID, userID, questclaim.ItemCraftedEvent{RecipeID: recipeID, Quantity: quantity})
}

func (d *questHookDomain) TrackMinigameWon(
	ctx context.Context, guildID, userID, minigame string,
) (*model.TrackProgressResponse, error) {
	return d.track(ctx, guildID, userID, questclaim.MinigameWonEvent{Minigame: minigame})
}

func (d *questHookDomain) TrackVoteCast(
	ctx context.Context, guildID, userID, voteType string,
) (*model.TrackProgressResponse, error) {
	return d.track(ctx, guildID, userID, questclaim.VoteCastEvent{VoteType: voteType})
}

func (d *questHookDomain) HandleHookEvent(ctx context.Context, pack *pubsub.Pack, t time.Time) {
	var event model.HookEvent
	if err := json.Unmarshal(pack.Msg, &event); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot unmarshal hook event: %v", err)
		return
	}

	if event.EventID != "" {
		ttl := xcontext.Configs(ctx).Quest.EventDedupeTTL.Duration
		first, err := d.redisClient.SetNX(ctx, common.RedisKeyHookEvent(event.EventID), t.UTC().Format(time.RFC3339), ttl)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot dedupe hook event %s: %v", event.EventID, err)
		} else if !first {
			xcontext.Logger(ctx).Debugf("Skip duplicated hook event %s", event.EventID)
			return
		}
	}

	common.PromCounters[common.HookEventTotal].WithLabelValues(event.RequirementType).Inc()

	_, err := d.TrackProgress(ctx, &model.TrackProgressRequest{
		UserID:          event.UserID,
		GuildID:         event.GuildID,
		RequirementType: event.RequirementType,
		Metadata:        event.Metadata,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot track hook event %s: %v", event.EventID, err)
	}
}

func (d *questHookDomain) track(
	ctx context.Context, guildID, userID string, event questclaim.Event,
) (*model.TrackProgressResponse, error) {
	result := &model.TrackProgressResponse{Progress: []model.QuestProgress{}}

	rotations, err := d.rotationRepo.GetActive(ctx, guildID, time.Now())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get active rotations: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot track progress")
	}

	if len(rotations) == 0 {
		return result, nil
	}

	questIDs := map[string]bool{}
	for _, r := range rotations {
		for _, id := range r.QuestIDs {
			questIDs[id] = true
		}
	}

	templates, err := d.templateRepo.GetByIDs(ctx, guildID, maps.Keys(questIDs))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get quest templates: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot track progress")
	}

	templateByID := map[string]*entity.QuestTemplate{}
	for i := range templates {
		templateByID[templates[i].ID] = &templates[i]
	}

	level := newLevelReader(d.xpLedger, guildID, userID)
	for _, rotation := range rotations {
		for _, questID := range rotation.QuestIDs {
			template, ok := templateByID[questID]
			if !ok || !template.Enabled {
				continue
			}

			progress, err := d.trackQuest(ctx, rotation, template, level, userID, event)
			if err != nil {
				return nil, err
			}

			if progress != nil {
				result.Progress = append(result.Progress, *progress)
			}
		}
	}

	return result, nil
}

func (d *questHookDomain) TrackQuest(
	ctx context.Context, req *model.TrackQuestRequest,
) (*model.TrackProgressResponse, error) {
	event, err := questclaim.NewEvent(req.RequirementType, req.Metadata)
	if err != nil {
		return nil, err
	}

	rotation, err := d.rotationRepo.GetByID(ctx, req.RotationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.RotationNotFound, "Not found rotation %s", req.RotationID)
		}

		xcontext.Logger(ctx).Errorf("Cannot get rotation: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot track quest")
	}

	now := time.Now()
	if rotation.GuildID != req.GuildID || now.Before(rotation.StartsAt) || !now.Before(rotation.EndsAt) {
		return nil, errorx.New(errorx.RotationNotFound, "Rotation %s is not active", req.RotationID)
	}

	if !slices.Contains(rotation.QuestIDs, req.QuestID) {
		return nil, errorx.New(errorx.QuestNotFound, "Quest %s is not in rotation %s", req.QuestID, rotation.ID)
	}

	template, err := getEnabledTemplate(ctx, d.templateRepo, req.GuildID, req.QuestID)
	if err != nil {
		return nil, err
	}

	level := newLevelReader(d.xpLedger, req.GuildID, req.UserID)
	if err := level.check(ctx, template.MinLevel); err != nil {
		return nil, err
	}

	result := &model.TrackProgressResponse{Progress: []model.QuestProgress{}}
	progress, err := d.trackQuest(ctx, *rotation, template, level, req.UserID, event)
	if err != nil {
		return nil, err
	}

	if progress != nil {
		result.Progress = append(result.Progress, *progress)
	}

	return result, nil
}

// trackQuest applies the event to a single quest of a rotation. It returns nil
// if the quest is not affected by the event.
func (d *questHookDomain) trackQuest(
	ctx context.Context,
	rotation entity.QuestRotation,
	template *entity.QuestTemplate,
	level *levelReader,
	userID string,
	event questclaim.Event,
) (*model.QuestProgress, error) {
	requirements, err := questclaim.NewRequirements(ctx, template.Requirements)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Invalid requirements of quest %s: %v", template.ID, err)
		return nil, nil
	}

	index := questclaim.MatchRequirement(requirements, event)
	if index < 0 || event.Increment() < 1 {
		return nil, nil
	}

	if err := level.check(ctx, template.MinLevel); err != nil {
		if errorx.Is(err, errorx.InsufficientLevel) {
			return nil, nil
		}

		return nil, err
	}

	key := repository.QuestProgressKey{UserID: userID, RotationID: rotation.ID, QuestID: template.ID}
	progress, err := d.progressDomain.GetOrCreate(ctx, rotation.GuildID, key, len(requirements))
	if err != nil {
		return nil, err
	}

	if progress.Completed {
		return nil, nil
	}

	progress, err = d.progressDomain.UpdateProgress(ctx, key, index, event.Increment(), requirements[index].Target())
	if err != nil {
		return nil, err
	}

	if progress.Completed {
		return nil, nil
	}

	completed, err := d.progressDomain.CheckAndComplete(ctx, key, requirements, template.MaxCompletions)
	switch {
	case err == nil:
		d.publishCompleted(ctx, rotation, template.ID, userID)
		return completed, nil

	case errorx.Is(err, errorx.QuestNotCompleted):
		return progress, nil

	case errorx.Is(err, errorx.QuestAlreadyCompleted), errorx.Is(err, errorx.MaxCompletionsReached):
		return nil, nil

	default:
		return nil, err
	}
}

func (d *questHookDomain) publishCompleted(
	ctx context.Context, rotation entity.QuestRotation, questID, userID string,
) {
	b, err := json.Marshal(model.QuestCompletedEvent{
		GuildID:    rotation.GuildID,
		UserID:     userID,
		RotationID: rotation.ID,
		QuestID:    questID,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal quest completed event: %v", err)
		return
	}

	err = d.publisher.Publish(ctx, xcontext.Configs(ctx).Kafka.EventTopic, &pubsub.Pack{
		Key: []byte(rotation.GuildID),
		Msg: b,
	})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot publish quest completed event: %v", err)
	}
}

// levelReader reads the level of a user at most once per hook event.
type levelReader struct {
	xpLedger client.XPLedgerCaller
	guildID  string
	userID   string

	level  int
	loaded bool
}

func newLevelReader(xpLedger client.XPLedgerCaller, guildID, userID string) *levelReader {
	return &levelReader{xpLedger: xpLedger, guildID: guildID, userID: userID}
}

func (r *levelReader) check(ctx context.Context, minLevel int) error {
	if minLevel <= 0 {
		return nil
	}

	if !r.loaded {
		level, err := r.xpLedger.GetLevel(ctx, r.guildID, r.userID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get level of user %s: %v", r.userID, err)
			return errorx.Wrap(errorx.UpdateFailed, err, "Cannot read user level")
		}

		r.level = level
		r.loaded = true
	}

	if r.level < minLevel {
		return errorx.New(errorx.InsufficientLevel, "Quest requires level %d", minLevel)
	}

	return nil
}

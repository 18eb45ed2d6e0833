package domain

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync"
	"github.com/questx-lab/questengine/internal/common"
	"github.com/questx-lab/questengine/internal/domain/questrotation"
	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/internal/model"
	"github.com/questx-lab/questengine/internal/repository"
	"github.com/questx-lab/questengine/pkg/errorx"
	"github.com/questx-lab/questengine/pkg/xcontext"
)

var rotationTypes = []entity.RotationType{
	entity.DailyRotation,
	entity.WeeklyRotation,
	entity.FeaturedRotation,
}

type QuestRotationDomain interface {
	EnsureCurrentRotations(context.Context, *model.EnsureCurrentRotationsRequest) (*model.EnsureCurrentRotationsResponse, error)
	GetCurrentRotations(context.Context, *model.GetCurrentRotationsRequest) (*model.GetCurrentRotationsResponse, error)
	DeleteExpiredRotations(context.Context) (int64, error)
}

type questRotationDomain struct {
	templateRepo repository.QuestTemplateRepository
	rotationRepo repository.QuestRotationRepository

	// ensureMutexes serializes rotation generation of the same guild and
	// rotation type inside this process. The unique window index covers the
	// other processes.
	ensureMutexes *xsync.MapOf[string, *sync.Mutex]
	newRand       func() *rand.Rand
}

func NewQuestRotationDomain(
	templateRepo repository.QuestTemplateRepository,
	rotationRepo repository.QuestRotationRepository,
) *questRotationDomain {
	return &questRotationDomain{
		templateRepo:  templateRepo,
		rotationRepo:  rotationRepo,
		ensureMutexes: xsync.NewMapOf[*sync.Mutex](),
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

func (d *questRotationDomain) EnsureCurrentRotations(
	ctx context.Context, req *model.EnsureCurrentRotationsRequest,
) (*model.EnsureCurrentRotationsResponse, error) {
	templates, err := d.templateRepo.GetEnabled(ctx, req.GuildID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get enabled quest templates: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot generate rotations")
	}

	if len(templates) == 0 {
		return nil, errorx.New(errorx.InvalidTemplate, "Guild %s has no enabled quest templates", req.GuildID)
	}

	now := time.Now().UTC()
	result := []model.QuestRotation{}
	for _, rotationType := range rotationTypes {
		rotation, err := d.ensureRotation(ctx, req.GuildID, rotationType, templates, now)
		if err != nil {
			return nil, err
		}

		if rotation != nil {
			result = append(result, convertQuestRotation(rotation))
		}
	}

	return &model.EnsureCurrentRotationsResponse{Rotations: result}, nil
}

func (d *questRotationDomain) GetCurrentRotations(
	ctx context.Context, req *model.GetCurrentRotationsRequest,
) (*model.GetCurrentRotationsResponse, error) {
	rotations, err := d.rotationRepo.GetActive(ctx, req.GuildID, time.Now())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get active rotations: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot get rotations")
	}

	result := []model.QuestRotation{}
	for i := range rotations {
		result = append(result, convertQuestRotation(&rotations[i]))
	}

	return &model.GetCurrentRotationsResponse{Rotations: result}, nil
}

// DeleteExpiredRotations purges rotations which ended before the retention
// period. Progress rows of those rotations are kept.
func (d *questRotationDomain) DeleteExpiredRotations(ctx context.Context) (int64, error) {
	retention := xcontext.Configs(ctx).Quest.RotationRetention.Duration
	deleted, err := d.rotationRepo.DeleteEndedBefore(ctx, time.Now().Add(-retention))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete expired rotations: %v", err)
		return 0, errorx.Wrap(errorx.UpdateFailed, err, "Cannot delete expired rotations")
	}

	return deleted, nil
}

// ensureRotation returns the active rotation of the given type, creating it
// if needed. It returns nil when a featured rotation cannot be created
// because no template can be featured.
func (d *questRotationDomain) ensureRotation(
	ctx context.Context,
	guildID string,
	rotationType entity.RotationType,
	templates []entity.QuestTemplate,
	now time.Time,
) (*entity.QuestRotation, error) {
	mutex, _ := d.ensureMutexes.LoadOrCompute(
		fmt.Sprintf("%s|%s", guildID, rotationType),
		func() *sync.Mutex { return &sync.Mutex{} },
	)
	mutex.Lock()
	defer mutex.Unlock()

	active, err := d.rotationRepo.GetActive(ctx, guildID, now)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get active rotations: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot generate rotations")
	}

	for i := range active {
		if active[i].Type == rotationType {
			return &active[i], nil
		}
	}

	candidates, err := d.excludeCoolingDown(ctx, guildID, rotationType, templates, now)
	if err != nil {
		return nil, err
	}

	cfg := xcontext.Configs(ctx).Quest
	window := questrotation.CurrentWindow(cfg, rotationType, now)
	selector := questrotation.NewSelector(d.newRand())

	rotation := &entity.QuestRotation{
		ID:       uuid.NewString(),
		GuildID:  guildID,
		Type:     rotationType,
		StartsAt: window.StartsAt,
		EndsAt:   window.EndsAt,
	}

	if rotationType == entity.FeaturedRotation {
		featured, ok := selector.PickFeatured(candidates)
		if !ok {
			xcontext.Logger(ctx).Infof("Guild %s has no quest which can be featured", guildID)
			return nil, nil
		}

		rotation.QuestIDs = entity.Array[string]{featured.ID}
		rotation.FeaturedQuestID.Valid = true
		rotation.FeaturedQuestID.String = featured.ID
	} else {
		selected := selector.SelectBalanced(candidates, questrotation.QuestCount(cfg, rotationType))
		rotation.QuestIDs = entity.Array[string]{}
		for _, t := range selected {
			rotation.QuestIDs = append(rotation.QuestIDs, t.ID)
		}

		if featured, ok := selector.PickFeatured(selected); ok {
			rotation.FeaturedQuestID.Valid = true
			rotation.FeaturedQuestID.String = featured.ID
		}
	}

	inserted, err := d.rotationRepo.CreateIfAbsent(ctx, rotation)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create rotation: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot generate rotations")
	}

	if !inserted {
		// Another process created the rotation of this window first.
		existing, err := d.rotationRepo.GetByWindow(ctx, guildID, rotationType, window.StartsAt)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get the existing rotation: %v", err)
			return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot generate rotations")
		}

		return existing, nil
	}

	common.PromCounters[common.RotationCreatedTotal].WithLabelValues(string(rotationType)).Inc()
	xcontext.Logger(ctx).Infof("Created %s rotation %s for guild %s with %d quests",
		rotationType, rotation.ID, guildID, len(rotation.QuestIDs))

	return rotation, nil
}

// excludeCoolingDown drops templates which appeared in a rotation of the same
// type that ended less than their cooldown ago. If nothing is left, the
// exclusion is ignored.
func (d *questRotationDomain) excludeCoolingDown(
	ctx context.Context,
	guildID string,
	rotationType entity.RotationType,
	templates []entity.QuestTemplate,
	now time.Time,
) ([]entity.QuestTemplate, error) {
	maxCooldown := 0
	for _, t := range templates {
		if t.CooldownHours > maxCooldown {
			maxCooldown = t.CooldownHours
		}
	}

	if maxCooldown == 0 {
		return templates, nil
	}

	ended, err := d.rotationRepo.GetEndedBetween(ctx, guildID, rotationType,
		now.Add(-time.Duration(maxCooldown)*time.Hour), now)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get recently ended rotations: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot generate rotations")
	}

	lastEndedAt := map[string]time.Time{}
	for _, r := range ended {
		for _, id := range r.QuestIDs {
			if r.EndsAt.After(lastEndedAt[id]) {
				lastEndedAt[id] = r.EndsAt
			}
		}
	}

	candidates := make([]entity.QuestTemplate, 0, len(templates))
	for _, t := range templates {
		endedAt, ok := lastEndedAt[t.ID]
		if ok && endedAt.After(now.Add(-time.Duration(t.CooldownHours)*time.Hour)) {
			continue
		}

		candidates = append(candidates, t)
	}

	if len(candidates) == 0 {
		xcontext.Logger(ctx).Debugf("Every quest of guild %s is cooling down, ignore cooldown", guildID)
		return templates, nil
	}

	return candidates, nil
}

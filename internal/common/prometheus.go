package common

import "github.com/prometheus/client_golang/prometheus"

const (
	QuestCompletedTotal        = "quest_completed_total"
	QuestClaimTotal            = "quest_claim_total"
	RewardDispatchFailureTotal = "quest_reward_dispatch_failure_total"
	RotationCreatedTotal       = "quest_rotation_created_total"
	HookEventTotal             = "quest_hook_event_total"
	RewardDispatchSeconds      = "quest_reward_dispatch_seconds"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		QuestCompletedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: QuestCompletedTotal,
			Help: "Count of quest completions",
		}, []string{"guild_id"}),
		QuestClaimTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: QuestClaimTotal,
			Help: "Count of reward claims by result",
		}, []string{"result"}),
		RewardDispatchFailureTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RewardDispatchFailureTotal,
			Help: "Count of failed reward dispatches",
		}, []string{"reward_type"}),
		RotationCreatedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RotationCreatedTotal,
			Help: "Count of rotations created",
		}, []string{"type"}),
		HookEventTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HookEventTotal,
			Help: "Count of hook events consumed",
		}, []string{"requirement_type"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		RewardDispatchSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: RewardDispatchSeconds,
			Help: "Duration of a single reward dispatch",
		}, []string{"reward_type"}),
	}
)

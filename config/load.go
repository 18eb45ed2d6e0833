package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

func Default() Configs {
	return Configs{
		Env:      "local",
		LogLevel: "INFO",
		Database: DatabaseConfigs{
			Driver:     "sqlite",
			SQLitePath: "questengine.db",
		},
		Redis: RedisConfigs{Addr: "localhost:6379"},
		Kafka: KafkaConfigs{
			Addr:       "localhost:9092",
			GroupID:    "questengine",
			HookTopic:  "quest_hook",
			AuditTopic: "quest_audit",
			EventTopic: "quest_event",
		},
		Ledger: LedgerConfigs{
			Currency: RPCServerConfigs{Endpoint: "http://localhost:8081", RPCName: "currencyLedger"},
			XP:       RPCServerConfigs{Endpoint: "http://localhost:8082", RPCName: "xpLedger"},
			Item:     RPCServerConfigs{Endpoint: "http://localhost:8083", RPCName: "itemLedger"},
		},
		Engine:  EngineConfigs{Addr: ":8080"},
		Metrics: MetricsConfigs{Addr: ":9100"},
		Quest: QuestConfigs{
			DailyResetHour:       0,
			WeeklyResetWeekday:   1,
			WeeklyResetHour:      0,
			FeaturedPeriod:       "daily",
			DailyQuestCount:      3,
			WeeklyQuestCount:     5,
			RotationRetention:    Duration{30 * 24 * time.Hour},
			MaxTemplatesPerGuild: 200,
			EventDedupeTTL:       Duration{24 * time.Hour},
			ClaimLease:           Duration{5 * time.Minute},
			TreasurySector:       "quests",
		},
	}
}

// Load reads a toml file on top of the default configs.
func Load(path string) (Configs, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Configs{}, fmt.Errorf("cannot decode config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Configs{}, err
	}

	return cfg, nil
}

func (c Configs) Validate() error {
	q := c.Quest
	if q.DailyResetHour < 0 || q.DailyResetHour > 23 {
		return fmt.Errorf("daily_reset_hour must be in [0, 23], got %d", q.DailyResetHour)
	}

	if q.WeeklyResetHour < 0 || q.WeeklyResetHour > 23 {
		return fmt.Errorf("weekly_reset_hour must be in [0, 23], got %d", q.WeeklyResetHour)
	}

	if q.WeeklyResetWeekday < 0 || q.WeeklyResetWeekday > 6 {
		return fmt.Errorf("weekly_reset_weekday must be in [0, 6], got %d", q.WeeklyResetWeekday)
	}

	if q.FeaturedPeriod != "daily" && q.FeaturedPeriod != "weekly" {
		return fmt.Errorf("featured_period must be daily or weekly, got %s", q.FeaturedPeriod)
	}

	if q.DailyQuestCount <= 0 || q.WeeklyQuestCount <= 0 {
		return fmt.Errorf("quest counts must be positive")
	}

	if q.ClaimLease.Duration <= 0 {
		return fmt.Errorf("claim_lease must be positive")
	}

	if c.Database.Driver != "mysql" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("unsupported database driver %s", c.Database.Driver)
	}

	return nil
}

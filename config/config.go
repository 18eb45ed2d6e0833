package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`

	Database DatabaseConfigs `toml:"database"`
	Redis    RedisConfigs    `toml:"redis"`
	Kafka    KafkaConfigs    `toml:"kafka"`
	Ledger   LedgerConfigs   `toml:"ledger"`
	Engine   EngineConfigs   `toml:"engine"`
	Metrics  MetricsConfigs  `toml:"metrics"`
	Quest    QuestConfigs    `toml:"quest"`
}

type DatabaseConfigs struct {
	// Driver is mysql or sqlite.
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`

	// SQLitePath is only used by the sqlite driver.
	SQLitePath string `toml:"sqlite_path"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type RedisConfigs struct {
	Addr string `toml:"addr"`
}

type KafkaConfigs struct {
	Addr       string `toml:"addr"`
	GroupID    string `toml:"group_id"`
	HookTopic  string `toml:"hook_topic"`
	AuditTopic string `toml:"audit_topic"`
	EventTopic string `toml:"event_topic"`
}

type RPCServerConfigs struct {
	Endpoint string `toml:"endpoint"`
	RPCName  string `toml:"rpc_name"`
}

type LedgerConfigs struct {
	Currency RPCServerConfigs `toml:"currency"`
	XP       RPCServerConfigs `toml:"xp"`
	Item     RPCServerConfigs `toml:"item"`
}

type EngineConfigs struct {
	Addr string `toml:"addr"`
}

type MetricsConfigs struct {
	Addr string `toml:"addr"`
}

type QuestConfigs struct {
	// Rotations reset at these UTC times.
	DailyResetHour     int          `toml:"daily_reset_hour"`
	WeeklyResetWeekday time.Weekday `toml:"weekly_reset_weekday"`
	WeeklyResetHour    int          `toml:"weekly_reset_hour"`

	// FeaturedPeriod is daily or weekly.
	FeaturedPeriod string `toml:"featured_period"`

	DailyQuestCount  int `toml:"daily_quest_count"`
	WeeklyQuestCount int `toml:"weekly_quest_count"`

	RotationRetention    Duration `toml:"rotation_retention"`
	MaxTemplatesPerGuild int      `toml:"max_templates_per_guild"`
	EventDedupeTTL       Duration `toml:"event_dedupe_ttl"`

	// ClaimLease is how long an unfinished claim blocks its retries.
	ClaimLease Duration `toml:"claim_lease"`

	// TreasurySector is the guild treasury sector used by rewards whose
	// source is "treasury" and which do not name a sector.
	TreasurySector string `toml:"treasury_sector"`
}

// Duration lets toml files use strings like "720h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}

	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

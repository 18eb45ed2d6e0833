package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/questx-lab/questengine/config"
	"github.com/questx-lab/questengine/internal/client"
	"github.com/questx-lab/questengine/internal/domain"
	"github.com/questx-lab/questengine/internal/domain/questclaim"
	"github.com/questx-lab/questengine/internal/repository"
	"github.com/questx-lab/questengine/migration"
	"github.com/questx-lab/questengine/pkg/kafka"
	"github.com/questx-lab/questengine/pkg/logger"
	"github.com/questx-lab/questengine/pkg/pubsub"
	"github.com/questx-lab/questengine/pkg/xcontext"
	"github.com/questx-lab/questengine/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type srv struct {
	app *cli.App
	ctx context.Context

	redisClient xredis.Client
	publisher   pubsub.Publisher

	currencyLedger client.CurrencyLedgerCaller
	xpLedger       client.XPLedgerCaller
	itemLedger     client.ItemLedgerCaller

	templateRepo repository.QuestTemplateRepository
	rotationRepo repository.QuestRotationRepository
	progressRepo repository.QuestProgressRepository
	grantRepo    repository.RewardGrantRepository
	auditLogRepo repository.QuestAuditLogRepository

	templateDomain domain.QuestTemplateDomain
	rotationDomain domain.QuestRotationDomain
	progressDomain domain.QuestProgressDomain
	claimDomain    domain.QuestClaimDomain
	hookDomain     domain.QuestHookDomain
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	return nil
}

func (s *srv) loadLogger() {
	cfg := xcontext.Configs(s.ctx)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewZapLogger(cfg.LogLevel, cfg.Env != "local"))
}

func (s *srv) loadSnowflake() error {
	node, err := snowflake.NewNode(time.Now().UnixNano() % 1024)
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithSnowFlake(s.ctx, node)
	return nil
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(), // data source name
			DefaultStringSize:         256,                    // default size for string fields
			DisableDatetimePrecision:  true,                   // disable datetime precision, which not supported before MySQL 5.6
			DontSupportRenameIndex:    true,                   // drop & create when rename index, rename index not supported before MySQL 5.7, MariaDB
			DontSupportRenameColumn:   true,                   // `change` when rename column, rename column not supported before MySQL 8, MariaDB
			SkipInitializeWithVersion: false,                  // auto configure based on currently MySQL version
		})
	default:
		dialector = sqlite.Open(cfg.SQLitePath)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		panic(err)
	}

	if cfg.Driver != "mysql" {
		// sqlite allows a single writer.
		sqlDB, err := db.DB()
		if err != nil {
			panic(err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db
}

func (s *srv) loadDatabase() {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
}

func (s *srv) migrateDB() {
	if err := migration.Migrate(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRedisClient() {
	var err error
	s.redisClient, err = xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadPublisher(clientID string) {
	var err error
	s.publisher, err = kafka.NewPublisher(clientID, []string{xcontext.Configs(s.ctx).Kafka.Addr})
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadLedgers() error {
	cfg := xcontext.Configs(s.ctx).Ledger

	currencyClient, err := rpc.DialContext(s.ctx, cfg.Currency.Endpoint)
	if err != nil {
		return fmt.Errorf("cannot dial currency ledger: %w", err)
	}

	xpClient, err := rpc.DialContext(s.ctx, cfg.XP.Endpoint)
	if err != nil {
		return fmt.Errorf("cannot dial xp ledger: %w", err)
	}

	itemClient, err := rpc.DialContext(s.ctx, cfg.Item.Endpoint)
	if err != nil {
		return fmt.Errorf("cannot dial item ledger: %w", err)
	}

	s.currencyLedger = client.NewCurrencyLedgerCaller(currencyClient)
	s.xpLedger = client.NewXPLedgerCaller(xpClient)
	s.itemLedger = client.NewItemLedgerCaller(itemClient)
	return nil
}

func (s *srv) closeLedgers() {
	if s.currencyLedger != nil {
		s.currencyLedger.Close()
	}

	if s.xpLedger != nil {
		s.xpLedger.Close()
	}

	if s.itemLedger != nil {
		s.itemLedger.Close()
	}
}

func (s *srv) loadRepos() {
	s.templateRepo = repository.NewQuestTemplateRepository()
	s.rotationRepo = repository.NewQuestRotationRepository()
	s.progressRepo = repository.NewQuestProgressRepository()
	s.grantRepo = repository.NewRewardGrantRepository()
	s.auditLogRepo = repository.NewQuestAuditLogRepository()
}

// loadDomains needs the ledgers for every domain which builds rewards, and
// the redis client and publisher for the hook and claim domains.
func (s *srv) loadDomains() {
	rewardFactory := questclaim.NewFactory(s.currencyLedger, s.xpLedger, s.itemLedger)

	var auditSink client.AuditSink = client.NewDBAuditSink(s.auditLogRepo)
	if s.publisher != nil {
		auditSink = client.NewMultiAuditSink(auditSink, client.NewKafkaAuditSink(s.publisher))
	}

	s.templateDomain = domain.NewQuestTemplateDomain(s.templateRepo, s.rotationRepo, rewardFactory)
	s.rotationDomain = domain.NewQuestRotationDomain(s.templateRepo, s.rotationRepo)
	s.progressDomain = domain.NewQuestProgressDomain(s.progressRepo)
	s.claimDomain = domain.NewQuestClaimDomain(s.templateRepo, s.rotationRepo, s.progressRepo,
		s.grantRepo, rewardFactory, auditSink)
	s.hookDomain = domain.NewQuestHookDomain(s.templateRepo, s.rotationRepo, s.progressDomain,
		s.xpLedger, s.redisClient, s.publisher)
}

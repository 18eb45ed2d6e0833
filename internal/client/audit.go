package client

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/internal/repository"
	"github.com/questx-lab/questengine/pkg/pubsub"
	"github.com/questx-lab/questengine/pkg/xcontext"
)

type AuditRecord struct {
	OperationType string         `json:"operation_type"`
	ActorID       string         `json:"actor_id"`
	TargetID      string         `json:"target_id"`
	GuildID       string         `json:"guild_id"`
	Source        string         `json:"source"`
	Reason        string         `json:"reason"`
	CorrelationID string         `json:"correlation_id"`
	Metadata      map[string]any `json:"metadata"`
}

type AuditSink interface {
	Record(ctx context.Context, record AuditRecord) error
}

type dbAuditSink struct {
	auditLogRepo repository.QuestAuditLogRepository
}

func NewDBAuditSink(auditLogRepo repository.QuestAuditLogRepository) *dbAuditSink {
	return &dbAuditSink{auditLogRepo: auditLogRepo}
}

func (s *dbAuditSink) Record(ctx context.Context, record AuditRecord) error {
	return s.auditLogRepo.Create(ctx, &entity.QuestAuditLog{
		ID:            xcontext.SnowFlake(ctx).Generate().Int64(),
		OperationType: record.OperationType,
		ActorID:       record.ActorID,
		TargetID:      record.TargetID,
		GuildID:       record.GuildID,
		CorrelationID: record.CorrelationID,
		Source:        record.Source,
		Reason:        record.Reason,
		Metadata:      record.Metadata,
	})
}

type kafkaAuditSink struct {
	publisher pubsub.Publisher
}

func NewKafkaAuditSink(publisher pubsub.Publisher) *kafkaAuditSink {
	return &kafkaAuditSink{publisher: publisher}
}

func (s *kafkaAuditSink) Record(ctx context.Context, record AuditRecord) error {
	b, err := json.Marshal(record)
	if err != nil {
		return err
	}

	return s.publisher.Publish(ctx, xcontext.Configs(ctx).Kafka.AuditTopic, &pubsub.Pack{
		Key: []byte(record.GuildID),
		Msg: b,
	})
}

type multiAuditSink struct {
	sinks []AuditSink
}

// NewMultiAuditSink records to every sink and joins their errors.
func NewMultiAuditSink(sinks ...AuditSink) *multiAuditSink {
	return &multiAuditSink{sinks: sinks}
}

func (s *multiAuditSink) Record(ctx context.Context, record AuditRecord) error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Record(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

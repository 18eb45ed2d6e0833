package testutil

import (
	"context"

	"github.com/questx-lab/questengine/internal/client"
)

type MockCurrencyLedgerCaller struct {
	GrantFunc func(ctx context.Context, actorID, targetID, guildID, currencyID string, delta int64, reason string) error
}

func (m *MockCurrencyLedgerCaller) Grant(
	ctx context.Context, actorID, targetID, guildID, currencyID string, delta int64, reason string,
) error {
	if m.GrantFunc != nil {
		return m.GrantFunc(ctx, actorID, targetID, guildID, currencyID, delta, reason)
	}

	return nil
}

func (m *MockCurrencyLedgerCaller) Close() {}

type MockXPLedgerCaller struct {
	AddXPFunc func(
		ctx context.Context,
		guildID, userID, sourceOp string,
		amount int64,
		correlationID string,
		metadata map[string]any,
	) (*client.XPResult, error)
	GetLevelFunc func(ctx context.Context, guildID, userID string) (int, error)
}

func (m *MockXPLedgerCaller) AddXP(
	ctx context.Context,
	guildID, userID, sourceOp string,
	amount int64,
	correlationID string,
	metadata map[string]any,
) (*client.XPResult, error) {
	if m.AddXPFunc != nil {
		return m.AddXPFunc(ctx, guildID, userID, sourceOp, amount, correlationID, metadata)
	}

	return &client.XPResult{}, nil
}

func (m *MockXPLedgerCaller) GetLevel(ctx context.Context, guildID, userID string) (int, error) {
	if m.GetLevelFunc != nil {
		return m.GetLevelFunc(ctx, guildID, userID)
	}

	return 0, nil
}

func (m *MockXPLedgerCaller) Close() {}

type MockItemLedgerCaller struct {
	AdjustQuantityFunc func(ctx context.Context, actorID, targetID, guildID, itemID string, delta int64, reason string) error
}

func (m *MockItemLedgerCaller) AdjustQuantity(
	ctx context.Context, actorID, targetID, guildID, itemID string, delta int64, reason string,
) error {
	if m.AdjustQuantityFunc != nil {
		return m.AdjustQuantityFunc(ctx, actorID, targetID, guildID, itemID, delta, reason)
	}

	return nil
}

func (m *MockItemLedgerCaller) Close() {}

type MockAuditSink struct {
	RecordFunc func(ctx context.Context, record client.AuditRecord) error
}

func (m *MockAuditSink) Record(ctx context.Context, record client.AuditRecord) error {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, record)
	}

	return nil
}

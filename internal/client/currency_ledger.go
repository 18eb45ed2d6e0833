package client

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/questx-lab/questengine/pkg/xcontext"
)

// CurrencyLedgerCaller moves currency between accounts. Negative delta takes
// currency from the target.
type CurrencyLedgerCaller interface {
	Grant(ctx context.Context, actorID, targetID, guildID, currencyID string, delta int64, reason string) error
	Close()
}

type currencyLedgerCaller struct {
	client *rpc.Client
}

func NewCurrencyLedgerCaller(client *rpc.Client) *currencyLedgerCaller {
	return &currencyLedgerCaller{client: client}
}

func (c *currencyLedgerCaller) Grant(
	ctx context.Context, actorID, targetID, guildID, currencyID string, delta int64, reason string,
) error {
	return c.client.CallContext(ctx, nil, c.fname(ctx, "grant"),
		actorID, targetID, guildID, currencyID, delta, reason)
}

func (c *currencyLedgerCaller) Close() {
	c.client.Close()
}

func (c *currencyLedgerCaller) fname(ctx context.Context, funcName string) string {
	return fmt.Sprintf("%s_%s", xcontext.Configs(ctx).Ledger.Currency.RPCName, funcName)
}

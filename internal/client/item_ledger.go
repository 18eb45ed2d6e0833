package client

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/questx-lab/questengine/pkg/xcontext"
)

type ItemLedgerCaller interface {
	AdjustQuantity(ctx context.Context, actorID, targetID, guildID, itemID string, delta int64, reason string) error
	Close()
}

type itemLedgerCaller struct {
	client *rpc.Client
}

func NewItemLedgerCaller(client *rpc.Client) *itemLedgerCaller {
	return &itemLedgerCaller{client: client}
}

func (c *itemLedgerCaller) AdjustQuantity(
	ctx context.Context, actorID, targetID, guildID, itemID string, delta int64, reason string,
) error {
	return c.client.CallContext(ctx, nil, c.fname(ctx, "adjustQuantity"),
		actorID, targetID, guildID, itemID, delta, reason)
}

func (c *itemLedgerCaller) Close() {
	c.client.Close()
}

func (c *itemLedgerCaller) fname(ctx context.Context, funcName string) string {
	return fmt.Sprintf("%s_%s", xcontext.Configs(ctx).Ledger.Item.RPCName, funcName)
}

package client

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/questx-lab/questengine/pkg/xcontext"
)

type XPResult struct {
	BeforeLevel int `json:"before_level"`
	AfterLevel  int `json:"after_level"`
}

type XPLedgerCaller interface {
	AddXP(
		ctx context.Context,
		guildID, userID, sourceOp string,
		amount int64,
		correlationID string,
		metadata map[string]any,
	) (*XPResult, error)
	GetLevel(ctx context.Context, guildID, userID string) (int, error)
	Close()
}

type xpLedgerCaller struct {
	client *rpc.Client
}

func NewXPLedgerCaller(client *rpc.Client) *xpLedgerCaller {
	return &xpLedgerCaller{client: client}
}

func (c *xpLedgerCaller) AddXP(
	ctx context.Context,
	guildID, userID, sourceOp string,
	amount int64,
	correlationID string,
	metadata map[string]any,
) (*XPResult, error) {
	result := &XPResult{}
	err := c.client.CallContext(ctx, result, c.fname(ctx, "addXP"),
		guildID, userID, sourceOp, amount, correlationID, metadata)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (c *xpLedgerCaller) GetLevel(ctx context.Context, guildID, userID string) (int, error) {
	var level int
	if err := c.client.CallContext(ctx, &level, c.fname(ctx, "getLevel"), guildID, userID); err != nil {
		return 0, err
	}

	return level, nil
}

func (c *xpLedgerCaller) Close() {
	c.client.Close()
}

func (c *xpLedgerCaller) fname(ctx context.Context, funcName string) string {
	return fmt.Sprintf("%s_%s", xcontext.Configs(ctx).Ledger.XP.RPCName, funcName)
}

package client

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/mezonai/token/errors"
	"github.com/mezonai/token/jsonx"
	"github.com/mezonai/token/transaction"
	"github.com/mezonai/token/types"
	"github.com/mezonai/token/utils"
)

const (
	methodTokenInfo        = "token.info"
	methodTokenBalanceOf   = "token.balanceof"
	methodTokenTotalSupply = "token.totalsupply"
	methodTokenTransfer    = "token.transfer"
	methodGetCurrentNonce  = "account.getcurrentnonce"
	methodHealthCheck      = "health.check"
)

type Config struct {
	// Endpoint is the node's JSON-RPC URL, e.g. http://localhost:8545
	Endpoint string
}

// TokenClient talks to a node over JSON-RPC
type TokenClient struct {
	cfg Config
	rpc *jrpc2.Client
}

func NewClient(cfg Config) (*TokenClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint cannot be empty")
	}
	ch := jhttp.NewChannel(cfg.Endpoint, nil)
	return &TokenClient{
		cfg: cfg,
		rpc: jrpc2.NewClient(ch, nil),
	}, nil
}

func (c *TokenClient) CheckHealth(ctx context.Context) (*Health, error) {
	var res Health
	if err := c.call(ctx, methodHealthCheck, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *TokenClient) Info(ctx context.Context) (*TokenInfo, error) {
	var res TokenInfo
	if err := c.call(ctx, methodTokenInfo, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *TokenClient) BalanceOf(ctx context.Context, addr types.Address) (*Balance, error) {
	var res Balance
	if err := c.call(ctx, methodTokenBalanceOf, addressParams{Address: string(addr)}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *TokenClient) TotalSupply(ctx context.Context) (string, error) {
	var res struct {
		TotalSupply string `json:"total_supply"`
	}
	if err := c.call(ctx, methodTokenTotalSupply, nil, &res); err != nil {
		return "", err
	}
	return res.TotalSupply, nil
}

// CurrentNonce returns the last nonce the node accepted for addr
func (c *TokenClient) CurrentNonce(ctx context.Context, addr types.Address) (uint64, error) {
	var res nonceResult
	if err := c.call(ctx, methodGetCurrentNonce, addressParams{Address: string(addr), Tag: "latest"}, &res); err != nil {
		return 0, err
	}
	return res.Nonce, nil
}

// Transfer submits a signed transfer
func (c *TokenClient) Transfer(ctx context.Context, tx *transaction.Transfer) (*TransferResult, error) {
	params := transferParams{
		Sender:    string(tx.Sender),
		Recipient: string(tx.Recipient),
		Amount:    utils.Uint256ToString(tx.Amount),
		Nonce:     tx.Nonce,
		Signature: tx.Signature,
	}
	var res TransferResult
	if err := c.call(ctx, methodTokenTransfer, params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Close closes the underlying JSON-RPC channel
func (c *TokenClient) Close() error {
	return c.rpc.Close()
}

// call unwraps NetworkError data attached by the node so callers can match on codes
func (c *TokenClient) call(ctx context.Context, method string, params, result interface{}) error {
	err := c.rpc.CallResult(ctx, method, params, result)
	if err == nil {
		return nil
	}
	var rpcErr *jrpc2.Error
	if stderrors.As(err, &rpcErr) && len(rpcErr.Data) > 0 {
		var netErr errors.NetworkError
		if jsonx.Unmarshal(rpcErr.Data, &netErr) == nil && netErr.Code != "" {
			return &netErr
		}
	}
	return fmt.Errorf("%s: %w", method, err)
}

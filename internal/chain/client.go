package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Client is a thin read-only wrapper over the chain JSON-RPC endpoints: best
// effort block height and get_dy quote calls against the pool, with an
// optional fallback endpoint tried after any primary failure.
type Client struct {
	primary  *ethclient.Client
	fallback *ethclient.Client
	pool     common.Address
	log      *slog.Logger
}

func NewClient(rpcURL, fallbackURL, poolAddress string, log *slog.Logger) (*Client, error) {
	primary, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial primary rpc: %w", err)
	}

	c := &Client{
		primary: primary,
		pool:    common.HexToAddress(poolAddress),
		log:     log,
	}

	if fallbackURL != "" {
		fb, err := ethclient.Dial(fallbackURL)
		if err != nil {
			log.Warn("failed to dial fallback rpc, continuing without it", "err", err)
		} else {
			c.fallback = fb
		}
	}

	return c, nil
}

// BlockNumber returns the current chain height, trying the fallback endpoint
// if the primary fails.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	n, err := c.primary.BlockNumber(ctx)
	if err == nil {
		return n, nil
	}
	if c.fallback == nil {
		return 0, err
	}
	c.log.Warn("primary rpc BlockNumber failed, using fallback", "err", err)
	return c.fallback.BlockNumber(ctx)
}

// QuoteUSDC quotes amountIn of the token at tokenInIndex against the USD
// reference asset via the pool's get_dy view function. The call may revert.
func (c *Client) QuoteUSDC(ctx context.Context, tokenInIndex int, amountIn *big.Int) (*big.Int, error) {
	data, err := poolABI.Pack("get_dy", big.NewInt(int64(tokenInIndex)), big.NewInt(USDCIndex), amountIn)
	if err != nil {
		return nil, fmt.Errorf("pack get_dy: %w", err)
	}

	msg := ethereum.CallMsg{To: &c.pool, Data: data}

	out, err := c.primary.CallContract(ctx, msg, nil)
	if err != nil && c.fallback != nil {
		c.log.Warn("primary rpc get_dy failed, using fallback", "err", err)
		out, err = c.fallback.CallContract(ctx, msg, nil)
	}
	if err != nil {
		return nil, err
	}

	res, err := poolABI.Unpack("get_dy", out)
	if err != nil {
		return nil, fmt.Errorf("unpack get_dy: %w", err)
	}
	if len(res) != 1 {
		return nil, fmt.Errorf("unexpected get_dy result arity %d", len(res))
	}
	dy, ok := res[0].(*big.Int)
	if !ok || dy == nil {
		return nil, fmt.Errorf("unexpected get_dy result type %T", res[0])
	}
	return dy, nil
}

// Close releases the underlying RPC connections.
func (c *Client) Close() {
	c.primary.Close()
	if c.fallback != nil {
		c.fallback.Close()
	}
}

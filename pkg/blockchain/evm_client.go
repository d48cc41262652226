package blockchain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"wallet_aggregator/internal/domain/entity"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// EVMClient wraps one dialed JSON-RPC connection to an EVM chain.
type EVMClient struct {
	ethClient *ethclient.Client
	chain     entity.ChainConfig
}

// NewEVMClient dials the chain's primary RPC endpoint, falling back to the
// configured alternates in order.
func NewEVMClient(chain entity.ChainConfig, connectionTimeout time.Duration) (*EVMClient, error) {
	rpcURLs := append([]string{chain.PrimaryRPCURL}, chain.FallbackRPCURLs...)
	var lastErr error

	for _, rpcURL := range rpcURLs {
		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		client, err := ethclient.DialContext(ctx, rpcURL)
		cancel()

		if err == nil {
			return &EVMClient{ethClient: client, chain: chain}, nil
		}
		lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}

	return nil, fmt.Errorf("all RPC connection attempts failed for chain %s: %w", chain.Name, lastErr)
}

// GetNativeBalance fetches the native-currency balance at the latest block.
func (c *EVMClient) GetNativeBalance(ctx context.Context, walletAddress string) (*big.Int, error) {
	balance, err := c.ethClient.BalanceAt(ctx, common.HexToAddress(walletAddress), nil)
	if err != nil {
		return nil, fmt.Errorf("eth_getBalance failed on %s: %w", c.chain.Name, err)
	}
	return balance, nil
}

// CallContract executes a read-only eth_call against a contract.
func (c *EVMClient) CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	return c.ethClient.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
}

// Chain returns the static chain configuration this client serves.
func (c *EVMClient) Chain() entity.ChainConfig {
	return c.chain
}

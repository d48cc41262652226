package blockchain

import (
	"fmt"
	"sync"
	"time"

	"wallet_aggregator/internal/domain/entity"

	"go.uber.org/zap"
)

const defaultConnectionTimeout = 10 * time.Second

// EVMClientProvider hands out one cached EVMClient per chain, dialing lazily
// on first use.
type EVMClientProvider struct {
	clients map[string]*EVMClient
	mu      sync.Mutex
	logger  *zap.Logger
}

// NewEVMClientProvider creates an empty client provider.
func NewEVMClientProvider(logger *zap.Logger) *EVMClientProvider {
	return &EVMClientProvider{
		clients: make(map[string]*EVMClient),
		logger:  logger.Named("EVMClientProvider"),
	}
}

// GetClient returns the cached client for a chain, dialing it if needed.
func (p *EVMClientProvider) GetClient(chain entity.ChainConfig) (*EVMClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, exists := p.clients[chain.Identifier]; exists {
		return client, nil
	}

	p.logger.Info("Creating new EVM client",
		zap.String("chain", chain.Name),
		zap.String("rpc_primary", chain.PrimaryRPCURL))

	client, err := NewEVMClient(chain, defaultConnectionTimeout)
	if err != nil {
		p.logger.Error("Failed to create EVM client", zap.String("chain", chain.Name), zap.Error(err))
		return nil, fmt.Errorf("failed to create EVM client for %s: %w", chain.Name, err)
	}

	p.clients[chain.Identifier] = client
	return client, nil
}

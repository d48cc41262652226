package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wallet_aggregator/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// NameResolver abstracts the on-chain name-service lookup.
type NameResolver interface {
	ResolveName(ctx context.Context, name string) (common.Address, error)
}

// AddressResolver turns a raw address or ENS name into a canonical
// lowercased address. Resolution failures are the only errors the whole
// pipeline surfaces to callers.
type AddressResolver struct {
	resolver NameResolver
	suffix   string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewAddressResolver creates an AddressResolver for the given name-service suffix.
func NewAddressResolver(resolver NameResolver, suffix string, timeout time.Duration, logger *zap.Logger) *AddressResolver {
	return &AddressResolver{
		resolver: resolver,
		suffix:   suffix,
		timeout:  timeout,
		logger:   logger.Named("AddressResolver"),
	}
}

// Resolve validates a raw address, or resolves an ENS name under a bounded
// timeout. Returns the canonical address and, for ENS inputs, the name used.
func (r *AddressResolver) Resolve(ctx context.Context, input string) (string, string, error) {
	trimmed := strings.TrimSpace(input)
	name := strings.ToLower(trimmed)

	if !strings.HasSuffix(name, r.suffix) {
		if !common.IsHexAddress(trimmed) {
			return "", "", fmt.Errorf("%w: %q", entity.ErrInvalidAddress, trimmed)
		}
		return strings.ToLower(common.HexToAddress(trimmed).Hex()), "", nil
	}

	resolveCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resolved, err := r.resolver.ResolveName(resolveCtx, name)
	if err != nil {
		r.logger.Warn("ENS resolution failed", zap.String("name", name), zap.Error(err))
		return "", "", fmt.Errorf("%w: %s", entity.ErrResolutionFailed, name)
	}
	if resolved == (common.Address{}) {
		return "", "", fmt.Errorf("%w: %s", entity.ErrNameNotFound, name)
	}

	return strings.ToLower(resolved.Hex()), name, nil
}

package blockchain

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// 4-byte selectors of ENS registry resolver(bytes32) and resolver addr(bytes32).
var (
	resolverSelector = []byte{0x01, 0x78, 0xb8, 0xbf}
	addrSelector     = []byte{0x3b, 0x3b, 0x57, 0xde}
)

// ENSResolver resolves ENS names against the on-chain registry via eth_call.
type ENSResolver struct {
	client   *EVMClient
	registry common.Address
	logger   *zap.Logger
}

// NewENSResolver creates a resolver bound to the registry on the given client's chain.
func NewENSResolver(client *EVMClient, registryAddress string, logger *zap.Logger) *ENSResolver {
	return &ENSResolver{
		client:   client,
		registry: common.HexToAddress(registryAddress),
		logger:   logger.Named("ENSResolver"),
	}
}

// Namehash computes the ENS namehash of a name per EIP-137.
func Namehash(name string) common.Hash {
	node := make([]byte, 32)
	if name == "" {
		return common.BytesToHash(node)
	}

	labels := strings.Split(strings.ToLower(name), ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256([]byte(labels[i]))
		node = crypto.Keccak256(node, labelHash)
	}
	return common.BytesToHash(node)
}

// ResolveName resolves an ENS name to an address. The zero address means the
// name has no address record.
func (r *ENSResolver) ResolveName(ctx context.Context, name string) (common.Address, error) {
	node := Namehash(name)

	resolverAddr, err := r.callForAddress(ctx, r.registry, resolverSelector, node)
	if err != nil {
		return common.Address{}, fmt.Errorf("ENS registry lookup for %s failed: %w", name, err)
	}
	if resolverAddr == (common.Address{}) {
		return common.Address{}, nil
	}

	resolved, err := r.callForAddress(ctx, resolverAddr, addrSelector, node)
	if err != nil {
		return common.Address{}, fmt.Errorf("ENS resolver lookup for %s failed: %w", name, err)
	}

	r.logger.Debug("ENS name resolved",
		zap.String("name", name),
		zap.String("address", resolved.Hex()))
	return resolved, nil
}

// callForAddress makes an eth_call whose single argument and return value are
// both 32-byte words, decoding the result as an address.
func (r *ENSResolver) callForAddress(ctx context.Context, to common.Address, selector []byte, node common.Hash) (common.Address, error) {
	data := append(append([]byte{}, selector...), node.Bytes()...)
	output, err := r.client.CallContract(ctx, to, data)
	if err != nil {
		return common.Address{}, err
	}
	if len(output) < 32 {
		return common.Address{}, nil
	}
	return common.BytesToAddress(output[12:32]), nil
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"wallet_aggregator/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeNameResolver struct {
	resolved common.Address
	err      error
	calls    int
}

func (f *fakeNameResolver) ResolveName(_ context.Context, _ string) (common.Address, error) {
	f.calls++
	return f.resolved, f.err
}

func newTestAddressResolver(resolver NameResolver) *AddressResolver {
	return NewAddressResolver(resolver, ".eth", 500*time.Millisecond, zap.NewNop())
}

func TestResolveRawAddress(t *testing.T) {
	resolver := &fakeNameResolver{}
	r := newTestAddressResolver(resolver)

	address, ensName, err := r.Resolve(context.Background(), "  0x00000000219AB540356CBB839CBE05303D7705FA ")
	require.NoError(t, err)
	assert.Equal(t, "0x00000000219ab540356cbb839cbe05303d7705fa", address)
	assert.Empty(t, ensName)
	assert.Zero(t, resolver.calls)
}

func TestResolveRejectsInvalidInput(t *testing.T) {
	r := newTestAddressResolver(&fakeNameResolver{})

	for _, input := range []string{"", "hello", "0x1234", "0xZZ000000219ab540356cbb839cbe05303d7705fa"} {
		_, _, err := r.Resolve(context.Background(), input)
		assert.ErrorIs(t, err, entity.ErrInvalidAddress, "input %q", input)
	}
}

func TestResolveENSName(t *testing.T) {
	resolver := &fakeNameResolver{
		resolved: common.HexToAddress("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"),
	}
	r := newTestAddressResolver(resolver)

	address, ensName, err := r.Resolve(context.Background(), "Vitalik.ETH")
	require.NoError(t, err)
	assert.Equal(t, "0xd8da6bf26964af9d7eed9e03e53415d37aa96045", address)
	assert.Equal(t, "vitalik.eth", ensName)
	assert.Equal(t, 1, resolver.calls)
}

func TestResolveENSNameWithoutRecord(t *testing.T) {
	r := newTestAddressResolver(&fakeNameResolver{})

	_, _, err := r.Resolve(context.Background(), "nobody.eth")
	assert.ErrorIs(t, err, entity.ErrNameNotFound)
}

func TestResolveENSLookupFailure(t *testing.T) {
	r := newTestAddressResolver(&fakeNameResolver{err: errors.New("rpc unreachable")})

	_, _, err := r.Resolve(context.Background(), "vitalik.eth")
	assert.ErrorIs(t, err, entity.ErrResolutionFailed)
}

package service

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"wallet_aggregator/internal/domain/entity"
	upstream "wallet_aggregator/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeNativeClient struct {
	balance *big.Int
	err     error
}

func (f *fakeNativeClient) GetNativeBalance(_ context.Context, _ string) (*big.Int, error) {
	return f.balance, f.err
}

type fakeChainProvider struct {
	client NativeBalanceFetcher
	err    error
}

func (f *fakeChainProvider) GetClient(_ entity.ChainConfig) (NativeBalanceFetcher, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

type fakeBalanceLister struct {
	listing  *upstream.TokenBalancesResult
	listErr  error
	metadata map[string]*upstream.TokenMetadata
	metaErrs map[string]error
}

func (f *fakeBalanceLister) GetTokenBalances(_ context.Context, _, _ string) (*upstream.TokenBalancesResult, error) {
	return f.listing, f.listErr
}

func (f *fakeBalanceLister) GetTokenMetadata(_ context.Context, _, contractAddress string) (*upstream.TokenMetadata, error) {
	if err := f.metaErrs[contractAddress]; err != nil {
		return nil, err
	}
	return f.metadata[contractAddress], nil
}

func intPtr(v int) *int { return &v }

func newTestTokenService(provider ChainClientProvider, lister TokenBalanceLister) *TokenService {
	return NewTokenService(provider, lister, testConfig(), zap.NewNop())
}

func TestFetchTokensCombinesNativeAndERC20(t *testing.T) {
	oneEther, _ := new(big.Int).SetString("1000000000000000000", 10)
	provider := &fakeChainProvider{client: &fakeNativeClient{balance: oneEther}}
	lister := &fakeBalanceLister{
		listing: &upstream.TokenBalancesResult{
			TokenBalances: []upstream.TokenBalance{
				{ContractAddress: "0xlink", TokenBalance: "0x8ac7230489e80000"}, // 10 * 1e18
				{ContractAddress: "0xzero", TokenBalance: "0x0"},
				{ContractAddress: "0xbroken", TokenBalance: "0xff", Error: "execution reverted"},
			},
		},
		metadata: map[string]*upstream.TokenMetadata{
			"0xlink": {Name: "ChainLink Token", Symbol: "LINK", Decimals: intPtr(18)},
		},
	}

	svc := newTestTokenService(provider, lister)
	chain := testConfig().Chains[0]

	holdings, err := svc.FetchTokens(context.Background(), testAddress, chain)
	require.NoError(t, err)
	require.Len(t, holdings, 2)

	native := holdings[0]
	assert.True(t, native.IsNative)
	assert.Equal(t, "ETH", native.Symbol)
	assert.InDelta(t, 1.0, native.Balance, 1e-12)
	assert.Equal(t, "1", native.BalanceFormatted)
	assert.Equal(t, uint64(1), native.ChainID)

	link := holdings[1]
	assert.False(t, link.IsNative)
	assert.Equal(t, "LINK", link.Symbol)
	assert.Equal(t, "0xlink", link.ContractAddress)
	assert.InDelta(t, 10.0, link.Balance, 1e-12)
	assert.Equal(t, "10", link.BalanceFormatted)
	assert.Equal(t, uint8(18), link.Decimals)
}

func TestFetchTokensDropsUnreadableMetadata(t *testing.T) {
	provider := &fakeChainProvider{client: &fakeNativeClient{balance: big.NewInt(0)}}
	lister := &fakeBalanceLister{
		listing: &upstream.TokenBalancesResult{
			TokenBalances: []upstream.TokenBalance{
				{ContractAddress: "0xfails", TokenBalance: "0xff"},
				{ContractAddress: "0xnosymbol", TokenBalance: "0xff"},
				{ContractAddress: "0xnodecimals", TokenBalance: "0xff"},
			},
		},
		metadata: map[string]*upstream.TokenMetadata{
			"0xnosymbol":   {Name: "Mystery", Decimals: intPtr(18)},
			"0xnodecimals": {Name: "Broken", Symbol: "BRK"},
		},
		metaErrs: map[string]error{"0xfails": errors.New("rate limited")},
	}

	svc := newTestTokenService(provider, lister)

	holdings, err := svc.FetchTokens(context.Background(), testAddress, testConfig().Chains[0])
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

func TestFetchTokensDropsDust(t *testing.T) {
	provider := &fakeChainProvider{client: &fakeNativeClient{balance: big.NewInt(100)}} // 1e-16 ETH
	lister := &fakeBalanceLister{
		listing: &upstream.TokenBalancesResult{
			TokenBalances: []upstream.TokenBalance{
				{ContractAddress: "0xdust", TokenBalance: "0x1"}, // 1e-18 tokens
			},
		},
		metadata: map[string]*upstream.TokenMetadata{
			"0xdust": {Name: "Dust", Symbol: "DST", Decimals: intPtr(18)},
		},
	}

	svc := newTestTokenService(provider, lister)

	holdings, err := svc.FetchTokens(context.Background(), testAddress, testConfig().Chains[0])
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

func TestFetchTokensListingFailureReturnsPartialResult(t *testing.T) {
	oneEther, _ := new(big.Int).SetString("1000000000000000000", 10)
	provider := &fakeChainProvider{client: &fakeNativeClient{balance: oneEther}}
	lister := &fakeBalanceLister{listErr: errors.New("upstream 503")}

	svc := newTestTokenService(provider, lister)

	holdings, err := svc.FetchTokens(context.Background(), testAddress, testConfig().Chains[0])
	require.Error(t, err)
	require.Len(t, holdings, 1)
	assert.True(t, holdings[0].IsNative)
}

func TestFetchTokensNativeFailureDegradesSilently(t *testing.T) {
	provider := &fakeChainProvider{client: &fakeNativeClient{err: errors.New("rpc down")}}
	lister := &fakeBalanceLister{
		listing: &upstream.TokenBalancesResult{
			TokenBalances: []upstream.TokenBalance{
				{ContractAddress: "0xlink", TokenBalance: "0x8ac7230489e80000"},
			},
		},
		metadata: map[string]*upstream.TokenMetadata{
			"0xlink": {Name: "ChainLink Token", Symbol: "LINK", Decimals: intPtr(18)},
		},
	}

	svc := newTestTokenService(provider, lister)

	holdings, err := svc.FetchTokens(context.Background(), testAddress, testConfig().Chains[0])
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "LINK", holdings[0].Symbol)
}

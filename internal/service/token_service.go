package service

import (
	"context"
	"math/big"
	"time"

	"wallet_aggregator/internal/config"
	"wallet_aggregator/internal/domain/entity"
	upstream "wallet_aggregator/internal/entity"
	"wallet_aggregator/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// NativeBalanceFetcher fetches the native-currency balance on one chain.
type NativeBalanceFetcher interface {
	GetNativeBalance(ctx context.Context, walletAddress string) (*big.Int, error)
}

// ChainClientProvider hands out a native-balance client for a chain.
type ChainClientProvider interface {
	GetClient(chain entity.ChainConfig) (NativeBalanceFetcher, error)
}

// TokenBalanceLister abstracts the bulk balance listing + metadata provider.
type TokenBalanceLister interface {
	GetTokenBalances(ctx context.Context, network, address string) (*upstream.TokenBalancesResult, error)
	GetTokenMetadata(ctx context.Context, network, contractAddress string) (*upstream.TokenMetadata, error)
}

// TokenService fetches the native balance and all non-zero fungible token
// balances for an address on one chain. A failed sub-call degrades that
// sub-result to empty; only a failed bulk listing is reported upward, and
// even then whatever was fetched is returned alongside the error.
type TokenService struct {
	chains              ChainClientProvider
	lister              TokenBalanceLister
	logger              *zap.Logger
	nativeTimeout       time.Duration
	listTimeout         time.Duration
	maxMetadataRoutines int
	nativeDust          float64
	tokenDust           float64
}

// NewTokenService creates a TokenService from configuration.
func NewTokenService(chains ChainClientProvider, lister TokenBalanceLister, cfg *config.Config, logger *zap.Logger) *TokenService {
	return &TokenService{
		chains:              chains,
		lister:              lister,
		logger:              logger.Named("TokenService"),
		nativeTimeout:       time.Duration(cfg.Timeouts.NativeBalanceMillis) * time.Millisecond,
		listTimeout:         time.Duration(cfg.Timeouts.TokenListMillis) * time.Millisecond,
		maxMetadataRoutines: cfg.Alchemy.MaxMetadataRoutines,
		nativeDust:          cfg.Thresholds.NativeDust,
		tokenDust:           cfg.Thresholds.TokenDust,
	}
}

// FetchTokens returns all non-dust fungible holdings of an address on one chain.
func (s *TokenService) FetchTokens(ctx context.Context, address string, chain entity.ChainConfig) ([]entity.TokenHolding, error) {
	holdings := make([]entity.TokenHolding, 0, 16)

	if native := s.fetchNative(ctx, address, chain); native != nil {
		holdings = append(holdings, *native)
	}

	listCtx, cancel := context.WithTimeout(ctx, s.listTimeout)
	defer cancel()

	listing, err := s.lister.GetTokenBalances(listCtx, chain.AlchemyNetwork, address)
	if err != nil {
		return holdings, err
	}

	tokens := s.enrichTokenBalances(listCtx, listing.TokenBalances, address, chain)
	return append(holdings, tokens...), nil
}

// fetchNative fetches the native balance, returning nil when the balance is
// dust or the call degraded.
func (s *TokenService) fetchNative(ctx context.Context, address string, chain entity.ChainConfig) *entity.TokenHolding {
	client, err := s.chains.GetClient(chain)
	if err != nil {
		s.logger.Warn("No RPC client for chain", zap.String("chain", chain.Name), zap.Error(err))
		return nil
	}

	balance, err := fetchWithTimeout(ctx, s.nativeTimeout, (*big.Int)(nil), func(callCtx context.Context) (*big.Int, error) {
		return client.GetNativeBalance(callCtx, address)
	})
	if err != nil {
		s.logger.Warn("Native balance fetch degraded",
			zap.String("chain", chain.Name),
			zap.String("address", address),
			zap.Error(err))
		return nil
	}
	if balance == nil || balance.Sign() == 0 {
		return nil
	}

	formatted := utils.BigIntToFloat(balance, chain.NativeDecimals)
	if formatted < s.nativeDust {
		return nil
	}

	return &entity.TokenHolding{
		ChainID:          chain.ChainID,
		NetworkName:      chain.Name,
		Symbol:           chain.NativeSymbol,
		Name:             chain.NativeSymbol,
		Decimals:         chain.NativeDecimals,
		RawBalance:       balance,
		Balance:          formatted,
		BalanceFormatted: utils.FormatBigInt(balance, chain.NativeDecimals),
		IsNative:         true,
	}
}

// enrichTokenBalances resolves metadata for every non-zero balance entry with
// bounded concurrency, converting survivors into TokenHoldings. Entries whose
// metadata call fails or comes back without a symbol are noise, not errors.
func (s *TokenService) enrichTokenBalances(ctx context.Context, balances []upstream.TokenBalance, address string, chain entity.ChainConfig) []entity.TokenHolding {
	type candidate struct {
		contract string
		raw      *big.Int
	}

	candidates := make([]candidate, 0, len(balances))
	for _, tb := range balances {
		if tb.Error != "" {
			continue
		}
		raw := utils.ParseHexBig(tb.TokenBalance)
		if raw.Sign() == 0 {
			continue
		}
		candidates = append(candidates, candidate{contract: tb.ContractAddress, raw: raw})
	}
	if len(candidates) == 0 {
		return nil
	}

	results := make([]*entity.TokenHolding, len(candidates))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.maxMetadataRoutines)

	for i, cand := range candidates {
		group.Go(func() error {
			metadata, err := s.lister.GetTokenMetadata(groupCtx, chain.AlchemyNetwork, cand.contract)
			if err != nil {
				s.logger.Debug("Token metadata fetch failed, dropping entry",
					zap.String("chain", chain.Name),
					zap.String("contract", cand.contract),
					zap.Error(err))
				return nil
			}
			if metadata.Symbol == "" || metadata.Decimals == nil {
				return nil
			}

			decimals := uint8(*metadata.Decimals)
			formatted := utils.BigIntToFloat(cand.raw, decimals)
			if formatted < s.tokenDust {
				return nil
			}

			results[i] = &entity.TokenHolding{
				ChainID:          chain.ChainID,
				NetworkName:      chain.Name,
				ContractAddress:  cand.contract,
				Symbol:           metadata.Symbol,
				Name:             metadata.Name,
				Decimals:         decimals,
				RawBalance:       cand.raw,
				Balance:          formatted,
				BalanceFormatted: utils.FormatBigInt(cand.raw, decimals),
				LogoURI:          metadata.Logo,
			}
			return nil
		})
	}
	_ = group.Wait()

	holdings := make([]entity.TokenHolding, 0, len(candidates))
	for _, holding := range results {
		if holding != nil {
			holdings = append(holdings, *holding)
		}
	}

	s.logger.Debug("Token balances enriched",
		zap.String("chain", chain.Name),
		zap.String("address", address),
		zap.Int("candidates", len(candidates)),
		zap.Int("kept", len(holdings)))
	return holdings
}

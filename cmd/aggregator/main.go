package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"wallet_aggregator/api"
	"wallet_aggregator/internal/cache"
	"wallet_aggregator/internal/client"
	"wallet_aggregator/internal/config"
	"wallet_aggregator/internal/domain/entity"
	"wallet_aggregator/internal/service"
	"wallet_aggregator/internal/utils"
	"wallet_aggregator/pkg/blockchain"
	"wallet_aggregator/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
)

// evmClientAdapter narrows the blockchain provider to the native-balance
// interface the token service consumes.
type evmClientAdapter struct {
	provider *blockchain.EVMClientProvider
}

func (a *evmClientAdapter) GetClient(chain entity.ChainConfig) (service.NativeBalanceFetcher, error) {
	return a.provider.GetClient(chain)
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	slogHandler := zapslog.NewHandler(zapLogger.Core(), &zapslog.HandlerOptions{})
	slog.SetDefault(slog.New(slogHandler))

	cfgPath := utils.GetEnv("CONFIG_PATH", "config/config.yaml")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Warnf("Invalid log level in config: %s. Defaulting to Info.", cfg.Logging.Level)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath))

	metrics.MustRegisterMetrics()

	store := cache.NewStore(
		time.Duration(cfg.Cache.ResponseTTLSeconds)*time.Second,
		time.Duration(cfg.Cache.PriceTTLSeconds)*time.Second,
	)

	provider := blockchain.NewEVMClientProvider(zapLogger)

	// The primary chain carries ENS, NFTs and activity; tokens span all chains.
	primaryChain := cfg.Chains[0]

	primaryClient, err := provider.GetClient(primaryChain)
	if err != nil {
		zapLogger.Fatal("Failed to connect to primary chain RPC",
			zap.String("chain", primaryChain.Name), zap.Error(err))
	}
	ensResolver := blockchain.NewENSResolver(primaryClient, cfg.ENS.RegistryAddress, zapLogger)

	alchemyClient := client.NewAlchemyClient(cfg.Alchemy.APIKey, cfg.AlchemyTimeout(), cfg.Alchemy.RatePerSecond, zapLogger)
	etherscanClient := client.NewEtherscanClient(primaryChain.ExplorerAPIURL, cfg.Etherscan.APIKey, cfg.EtherscanTimeout(), cfg.Etherscan.RatePerSecond, zapLogger)
	coinGeckoClient := client.NewCoinGeckoClient(cfg.CoinGecko.BaseURL, cfg.CoinGecko.APIKey, cfg.CoinGeckoTimeout(), zapLogger)
	dexScreenerClient := client.NewDEXScreenerClient(cfg.DEXScreener.BaseURL, cfg.DEXScreenerTimeout(), zapLogger, cfg.DEXScreener.MaxTokensPerBatchRequest)
	zapLogger.Info("Upstream clients initialized")

	priceService := service.NewPriceService(coinGeckoClient, dexScreenerClient, store, cfg, zapLogger)
	tokenService := service.NewTokenService(&evmClientAdapter{provider: provider}, alchemyClient, cfg, zapLogger)
	nftService := service.NewNFTService(alchemyClient, priceService, primaryChain, cfg, zapLogger)
	activityService := service.NewActivityService(etherscanClient, cfg, zapLogger)
	addressResolver := service.NewAddressResolver(
		ensResolver,
		cfg.ENS.Suffix,
		time.Duration(cfg.Timeouts.ResolveMillis)*time.Millisecond,
		zapLogger,
	)
	spamFilter := service.NewSpamFilter(cfg)

	portfolioService := service.NewPortfolioService(
		addressResolver,
		tokenService,
		nftService,
		activityService,
		priceService,
		spamFilter,
		store,
		cfg,
		zapLogger,
	)
	zapLogger.Info("PortfolioService initialized")

	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.Use(utils.ZapLoggerMiddleware(zapLogger))
	router.Use(gin.Recovery())

	handler := api.NewPortfolioHandler(portfolioService, store, zapLogger)
	api.RegisterRoutes(router, handler)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	zapLogger.Info("Prometheus metrics endpoint enabled", zap.String("path", "/metrics"))

	pprofRouter := router.Group("/debug/pprof")
	{
		pprofRouter.GET("/", gin.WrapF(pprof.Index))
		pprofRouter.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		pprofRouter.GET("/profile", gin.WrapF(pprof.Profile))
		pprofRouter.GET("/symbol", gin.WrapF(pprof.Symbol))
		pprofRouter.GET("/trace", gin.WrapF(pprof.Trace))
		pprofRouter.GET("/allocs", gin.WrapH(pprof.Handler("allocs")))
		pprofRouter.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
		pprofRouter.GET("/heap", gin.WrapH(pprof.Handler("heap")))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info(fmt.Sprintf("Server starting on port %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}

package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mezonai/token/config"
	"github.com/mezonai/token/events"
	"github.com/mezonai/token/exception"
	"github.com/mezonai/token/jsonrpc"
	"github.com/mezonai/token/logx"
	"github.com/mezonai/token/monitoring"
	"github.com/mezonai/token/ratelimit"
	"github.com/mezonai/token/service"
	"github.com/mezonai/token/utils"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var (
	serveGenesisPath string
	serveRPCAddr     string
	serveMetricsAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ledger over JSON-RPC",
	Long: `Opens the store, starts the JSON-RPC server and the Prometheus metrics
endpoint, and runs until SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serveNode(ctx, currentNodeOptions(), serveGenesisPath)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveGenesisPath, "genesis", "config/genesis.yml", "Genesis file to read token metadata from")
	serveCmd.Flags().StringVar(&serveRPCAddr, "rpc-addr", "", "Override [rpc] listen_addr")
	serveCmd.Flags().StringVar(&serveMetricsAddr, "metrics-addr", "", "Override [metrics] listen_addr")
}

// subscribeMonitoring feeds applied transfers into metrics and the log
func subscribeMonitoring(bus *events.EventBus) events.SubscriberID {
	return bus.Subscribe(func(ev *events.TransferApplied) {
		monitoring.IncreaseAppliedTransferCount()
		logx.Info("TRANSFER", fmt.Sprintf("#%d %s", ev.Sequence(), ev.Record()))
	})
}

func serveNode(ctx context.Context, opts nodeOptions, genesisPath string) error {
	monitoring.InitMetrics()

	genesis, err := config.LoadGenesisConfig(genesisPath)
	if err != nil {
		return err
	}

	node, err := openLocalNode(opts)
	if err != nil {
		return err
	}
	defer node.Close()

	bus := events.NewEventBus()
	subscribeMonitoring(bus)

	ld, err := node.openLedger(bus)
	if err != nil {
		return err
	}
	if err := ld.Audit(); err != nil {
		return fmt.Errorf("refusing to serve an inconsistent ledger: %w", err)
	}

	tokenSvc := service.NewTokenService(ld, node.nonceStore, service.TokenInfo{
		Name:     genesis.Token.Name,
		Symbol:   genesis.Token.Symbol,
		Decimals: genesis.Token.Decimals,
	})
	healthSvc := service.NewHealthService(ld, Version)

	rpcAddr := node.cfg.RPC.ListenAddr
	if serveRPCAddr != "" {
		rpcAddr = serveRPCAddr
	}
	rpcServer := jsonrpc.NewServer(rpcAddr, tokenSvc, healthSvc)
	if corsCfg, ok := jsonrpc.CORSFromEnv(); ok {
		rpcServer.SetCORSConfig(corsCfg)
	} else {
		rpcServer.SetCORSConfig(jsonrpc.CORSFromOrigins(node.cfg.RPC.CORSOriginList()))
	}
	rl := ratelimit.NewGlobalRateLimiter(&ratelimit.GlobalRateLimiterConfig{
		IPConfig:     &ratelimit.RateLimiterConfig{MaxRequests: node.cfg.RateLimit.IPMaxRequests, WindowSize: node.cfg.RateLimit.Window},
		WalletConfig: &ratelimit.RateLimiterConfig{MaxRequests: node.cfg.RateLimit.WalletMaxRequests, WindowSize: node.cfg.RateLimit.Window},
	})
	defer rl.Stop()
	rpcServer.SetRateLimiter(rl)
	if err := rpcServer.Start(); err != nil {
		return err
	}

	metricsAddr := node.cfg.Metrics.ListenAddr
	if serveMetricsAddr != "" {
		metricsAddr = serveMetricsAddr
	}
	metricsLn, err := net.Listen("tcp", metricsAddr)
	if err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = rpcServer.Shutdown(shutdownCtx)
		return fmt.Errorf("metrics listen %s: %w", metricsAddr, err)
	}
	mux := http.NewServeMux()
	monitoring.RegisterMetrics(mux)
	metricsServer := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	exception.SafeGo("metrics", func() {
		logx.Info("MONITORING", "Metrics listening on ", metricsLn.Addr().String())
		if err := metricsServer.Serve(metricsLn); err != nil && err != http.ErrServerClosed {
			logx.Error("MONITORING", "Metrics server stopped: ", err)
		}
	})

	logx.Info("NODE", fmt.Sprintf("Serving %s with %d holders, total supply %s %s",
		genesis.Token.Name, ld.HolderCount(), utils.FormatAmount(ld.TotalSupply(), genesis.Token.Decimals), genesis.Token.Symbol))
	<-ctx.Done()
	logx.Info("NODE", "Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := rpcServer.Shutdown(shutdownCtx); err != nil {
		logx.Error("NODE", "JSON-RPC shutdown: ", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logx.Error("NODE", "Metrics shutdown: ", err)
	}
	return nil
}

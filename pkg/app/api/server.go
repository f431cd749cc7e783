// Package api implements app.Runner for the ledger server process.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chainsafe/erc20-ledger/internal/metrics"
	apphttp "github.com/chainsafe/erc20-ledger/pkg/app/http"
	"github.com/chainsafe/erc20-ledger/pkg/auth"
	"github.com/chainsafe/erc20-ledger/pkg/config"
	"github.com/chainsafe/erc20-ledger/pkg/ethrpc"
	"github.com/chainsafe/erc20-ledger/pkg/eventstore"
	"github.com/chainsafe/erc20-ledger/pkg/pgutil"
	"github.com/chainsafe/erc20-ledger/pkg/token"
	tokenservice "github.com/chainsafe/erc20-ledger/pkg/token/service"
)

// Server holds cfg to init the ledger server.
type Server struct {
	cfg *config.Config
}

// NewServer initializes new ledger server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

// Run builds the ledger from configuration, restores it from the journal and
// serves REST, JSON-RPC and metrics until an OS shutdown signal arrives.
func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("ledger server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting ERC-20 ledger server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("journal", cfg.Journal.Driver),
	)

	journal, closeJournal, err := s.openJournal(ctx, logger)
	if err != nil {
		return err
	}
	defer closeJournal()

	ledger, err := newLedger(&cfg.Token, logger)
	if err != nil {
		return err
	}
	if _, err := tokenservice.Replay(ctx, ledger, journal, logger); err != nil {
		return fmt.Errorf("restore ledger from journal: %w", err)
	}
	if err := ledger.CheckConservation(); err != nil {
		return fmt.Errorf("restored ledger is inconsistent: %w", err)
	}

	tokenAddress := common.HexToAddress(cfg.Token.Address)
	svc := tokenservice.NewLog(tokenservice.NewService(ledger, journal, tokenAddress, logger), logger)

	router, err := s.setupRouter(svc, tokenAddress, logger)
	if err != nil {
		return err
	}

	return apphttp.ServeAndWait(ctx, router, logger, &cfg.Server, cfg.Shutdown.Timeout)
}

// openJournal returns the configured journal and a func releasing it.
func (s *Server) openJournal(ctx context.Context, logger *zap.Logger) (eventstore.Store, func(), error) {
	chainID := s.cfg.EthRPC.ChainID
	if s.cfg.Journal.Driver != config.JournalPostgres {
		logger.Warn("Using in-memory journal, history is lost on restart")
		return eventstore.NewMemoryStore(chainID), func() {}, nil
	}

	db, err := pgutil.ConnectDB(ctx, &s.cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect journal db: %w", err)
	}
	logger.Info("Connected to database",
		zap.String("host", s.cfg.Database.Host),
		zap.String("database", s.cfg.Database.Database),
	)
	return eventstore.NewPGStore(db, chainID), func() { _ = db.Close() }, nil
}

// newLedger creates the ledger from the token section, counting every
// emitted event.
func newLedger(cfg *config.TokenConfig, logger *zap.Logger) (*token.Ledger, error) {
	supply, err := token.ParseAmount(cfg.TotalSupply)
	if err != nil {
		return nil, fmt.Errorf("invalid token.total_supply: %w", err)
	}

	ledger, err := token.NewLedger(token.Metadata{
		Name:        cfg.Name,
		Symbol:      cfg.Symbol,
		Decimals:    cfg.Decimals,
		TotalSupply: supply,
	}, common.HexToAddress(cfg.Creator), token.WithListener(func(e token.Event) {
		metrics.EventsEmitted.WithLabelValues(e.Kind.String()).Inc()
		logger.Debug("Ledger event", zap.Stringer("event", e))
	}))
	if err != nil {
		return nil, fmt.Errorf("create ledger: %w", err)
	}

	logger.Info("Token ledger created",
		zap.String("name", cfg.Name),
		zap.String("symbol", cfg.Symbol),
		zap.Uint8("decimals", cfg.Decimals),
		zap.String("total_supply", supply.Dec()),
		zap.String("creator", cfg.Creator),
	)
	return ledger, nil
}

func (s *Server) setupRouter(svc tokenservice.Service, tokenAddress common.Address, logger *zap.Logger) (chi.Router, error) {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if s.cfg.Metrics.Enabled {
		r.Handle(s.cfg.Metrics.Path, promhttp.Handler())
		logger.Info("Metrics enabled", zap.String("path", s.cfg.Metrics.Path))
	}

	var jwtValidator *auth.JWTValidator
	if s.cfg.Auth.JWKSURL != "" {
		jwtValidator = auth.NewJWTValidator(s.cfg.Auth.JWKSURL, s.cfg.Auth.Issuer, s.cfg.Auth.AddressClaim)
		logger.Info("Bearer token authentication enabled", zap.String("jwks_url", s.cfg.Auth.JWKSURL))
	}
	authn := auth.NewAuthenticator(jwtValidator, logger)

	r.Route("/api/v1", func(r chi.Router) {
		tokenservice.RegisterRoutes(r, svc, tokenAddress, authn, logger)
	})

	// Ethereum JSON-RPC endpoints (if enabled)
	if s.cfg.EthRPC.Enabled {
		ethSrv, err := ethrpc.NewServer(&s.cfg.EthRPC, tokenAddress, svc, logger)
		if err != nil {
			return nil, fmt.Errorf("create eth json-rpc server: %w", err)
		}
		r.Mount("/eth", ethSrv)
		logger.Info("Ethereum JSON-RPC endpoint enabled",
			zap.String("path", "/eth"),
			zap.Uint64("chain_id", s.cfg.EthRPC.ChainID),
			zap.String("token_address", tokenAddress.Hex()),
		)
	}

	return r, nil
}

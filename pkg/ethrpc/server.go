// Package ethrpc serves the token ledger over the Ethereum JSON-RPC API, so
// wallets and tooling can use it as if it were an ERC-20 contract on a chain.
package ethrpc

import (
	"context"
	"fmt"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/chainsafe/erc20-ledger/pkg/config"
	"github.com/chainsafe/erc20-ledger/pkg/eventstore"
	"github.com/chainsafe/erc20-ledger/pkg/token/service"
)

// blockHashLookback bounds the search for a block by its hash.
const blockHashLookback = 8192

// Server handles Ethereum JSON-RPC requests
type Server struct {
	cfg     *config.EthRPCConfig
	service service.Service
	logger  *zap.Logger

	chainID       *big.Int
	signer        types.Signer
	tokenAddress  common.Address
	gasPrice      *big.Int
	nativeBalance *big.Int
	rpcServer     *rpc.Server
}

// NewServer creates a new Ethereum JSON-RPC server for the token served at
// tokenAddress.
func NewServer(
	cfg *config.EthRPCConfig,
	tokenAddress common.Address,
	svc service.Service,
	logger *zap.Logger,
) (*Server, error) {
	if tokenAddress == (common.Address{}) {
		return nil, fmt.Errorf("token address is required")
	}
	gasPrice, ok := new(big.Int).SetString(cfg.GasPriceWei, 10)
	if !ok {
		return nil, fmt.Errorf("invalid eth_rpc.gas_price_wei: %q", cfg.GasPriceWei)
	}
	nativeBalance, ok := new(big.Int).SetString(cfg.NativeBalanceWei, 10)
	if !ok {
		return nil, fmt.Errorf("invalid eth_rpc.native_balance_wei: %q", cfg.NativeBalanceWei)
	}

	chainID := new(big.Int).SetUint64(cfg.ChainID)
	s := &Server{
		cfg:           cfg,
		service:       svc,
		logger:        logger,
		chainID:       chainID,
		signer:        types.LatestSignerForChainID(chainID),
		tokenAddress:  tokenAddress,
		gasPrice:      gasPrice,
		nativeBalance: nativeBalance,
		rpcServer:     rpc.NewServer(),
	}

	for name, api := range s.namespaces() {
		if err := s.rpcServer.RegisterName(name, api); err != nil {
			return nil, fmt.Errorf("register %s namespace: %w", name, err)
		}
	}

	logger.Info("Ethereum JSON-RPC server initialized",
		zap.Uint64("chain_id", cfg.ChainID),
		zap.String("token_address", tokenAddress.Hex()))

	return s, nil
}

// ServeHTTP handles HTTP requests
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.rpcServer.ServeHTTP(w, r)
}

// Stop stops serving requests and closes open subscriptions.
func (s *Server) Stop() {
	s.rpcServer.Stop()
}

func (s *Server) blockHash(n uint64) common.Hash {
	return eventstore.BlockHash(s.cfg.ChainID, n)
}

// blockNumberByHash finds the synthetic block with the given hash among the
// most recent blocks.
func (s *Server) blockNumberByHash(ctx context.Context, hash common.Hash) (uint64, bool, error) {
	latest, err := s.service.LatestBlockNumber(ctx)
	if err != nil {
		return 0, false, err
	}
	for n, i := latest, 0; i <= blockHashLookback; n, i = n-1, i+1 {
		if s.blockHash(n) == hash {
			return n, true, nil
		}
		if n == 0 {
			break
		}
	}
	return 0, false, nil
}

package ethrpc

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/chainsafe/erc20-ledger/internal/metrics"
	apperrors "github.com/chainsafe/erc20-ledger/pkg/app/errors"
	"github.com/chainsafe/erc20-ledger/pkg/eventstore"
	"github.com/chainsafe/erc20-ledger/pkg/token"
	"github.com/chainsafe/erc20-ledger/pkg/token/service"
)

// stubCode is served as the token's bytecode so wallets treat the address as a contract.
var stubCode = hexutil.Bytes{0x60, 0x80}

// EthAPI implements the eth_* JSON-RPC namespace
type EthAPI struct {
	server *Server
}

// NewEthAPI creates a new EthAPI instance
func NewEthAPI(server *Server) *EthAPI {
	return &EthAPI{server: server}
}

// ChainId returns the chain ID (EIP-155)
func (api *EthAPI) ChainId() hexutil.Uint64 {
	return hexutil.Uint64(api.server.cfg.ChainID)
}

// BlockNumber returns the latest synthetic block number
func (api *EthAPI) BlockNumber(ctx context.Context) (hexutil.Uint64, error) {
	n, err := api.server.service.LatestBlockNumber(ctx)
	if err != nil {
		api.server.logger.Error("Failed to get block number", zap.Error(err))
		return 0, toRPCError(err)
	}
	return hexutil.Uint64(n), nil
}

// GasPrice returns the configured gas price
func (api *EthAPI) GasPrice() *hexutil.Big {
	return (*hexutil.Big)(new(big.Int).Set(api.server.gasPrice))
}

// MaxPriorityFeePerGas returns the suggested priority fee (EIP-1559)
func (api *EthAPI) MaxPriorityFeePerGas() *hexutil.Big {
	return api.GasPrice()
}

// EstimateGas returns the configured gas limit, or the revert reason when a
// call to the token would fail.
func (api *EthAPI) EstimateGas(ctx context.Context, args CallArgs, _ *rpc.BlockNumberOrHash) (hexutil.Uint64, error) {
	if args.To != nil && *args.To == api.server.tokenAddress {
		call, err := decodeCall(args.GetData())
		if err != nil {
			return 0, err
		}
		if call.mutates() {
			if err := simulate(ctx, api.server.service, call.name(), call.request(args.from())); err != nil {
				return 0, err
			}
		}
	}
	return hexutil.Uint64(api.server.cfg.GasLimit), nil
}

// GetBalance returns the configured native balance for every account
func (api *EthAPI) GetBalance(_ context.Context, _ common.Address, _ *rpc.BlockNumberOrHash) *hexutil.Big {
	return (*hexutil.Big)(new(big.Int).Set(api.server.nativeBalance))
}

// GetTransactionCount returns the nonce for an address, the number of
// transactions it has journaled
func (api *EthAPI) GetTransactionCount(ctx context.Context, address common.Address, _ *rpc.BlockNumberOrHash) (hexutil.Uint64, error) {
	count, err := api.server.service.TransactionCount(ctx, address)
	if err != nil {
		api.server.logger.Warn("Failed to get transaction count", zap.Error(err))
		return 0, toRPCError(err)
	}
	return hexutil.Uint64(count), nil
}

// GetCode returns stub bytecode at the token address and nothing elsewhere
func (api *EthAPI) GetCode(_ context.Context, address common.Address, _ *rpc.BlockNumberOrHash) hexutil.Bytes {
	if address == api.server.tokenAddress {
		return stubCode
	}
	return hexutil.Bytes{}
}

// Syncing returns false (always synced)
func (api *EthAPI) Syncing() bool {
	return false
}

// Accounts returns no accounts; keys never leave the wallet
func (api *EthAPI) Accounts() []common.Address {
	return []common.Address{}
}

// SendRawTransaction applies a signed call to the token and returns its hash.
// A rejected call is reported as a revert and nothing is journaled.
func (api *EthAPI) SendRawTransaction(ctx context.Context, data hexutil.Bytes) (common.Hash, error) {
	method := "unknown"
	status := metrics.StatusFailure
	defer func() {
		metrics.RPCRequestsTotal.WithLabelValues(method, status).Inc()
	}()

	var tx types.Transaction
	if err := tx.UnmarshalBinary(data); err != nil {
		api.server.logger.Warn("Failed to decode transaction", zap.Error(err))
		return common.Hash{}, invalidInput("invalid transaction: %v", err)
	}
	switch tx.Type() {
	case types.LegacyTxType, types.AccessListTxType, types.DynamicFeeTxType:
	default:
		return common.Hash{}, invalidInput("transaction type %d not supported", tx.Type())
	}

	from, err := types.Sender(api.server.signer, &tx)
	if err != nil {
		return common.Hash{}, invalidInput("invalid sender: %v", err)
	}
	if tx.To() == nil || *tx.To() != api.server.tokenAddress {
		return common.Hash{}, invalidInput("unsupported contract: only %s is served", api.server.tokenAddress.Hex())
	}
	if tx.Value().Sign() != 0 {
		return common.Hash{}, invalidInput("native value transfers are not supported")
	}

	call, err := decodeCall(tx.Data())
	if err != nil {
		return common.Hash{}, err
	}
	method = call.name()
	if !call.mutates() {
		return common.Hash{}, invalidInput("%s is not a state-changing function", method)
	}

	req := call.request(from)
	nonce := tx.Nonce()
	req.TxHash = tx.Hash()
	req.Nonce = &nonce
	req.Input = tx.Data()
	req.Raw = data

	receipt, err := dispatch(ctx, api.server.service, method, req)
	if err != nil {
		api.server.logger.Info("Transaction rejected",
			zap.String("method", method),
			zap.String("hash", tx.Hash().Hex()),
			zap.String("from", from.Hex()),
			zap.Error(err))
		return common.Hash{}, toRPCError(err)
	}

	status = metrics.StatusSuccess
	api.server.logger.Info("Transaction applied",
		zap.String("method", method),
		zap.String("hash", receipt.Transaction.Hash.Hex()),
		zap.String("from", from.Hex()),
		zap.Uint64("block_number", receipt.Transaction.BlockNumber))

	return receipt.Transaction.Hash, nil
}

// GetTransactionReceipt returns the receipt for a transaction, or null when
// it is unknown
func (api *EthAPI) GetTransactionReceipt(ctx context.Context, hash common.Hash) (*RPCReceipt, error) {
	receipt, err := api.receipt(ctx, hash)
	if err != nil || receipt == nil {
		return nil, err
	}

	tx := receipt.Transaction
	logs := receipt.Logs
	if logs == nil {
		// Marshal as [] rather than null.
		logs = []*types.Log{}
	}
	to := tx.To
	return &RPCReceipt{
		TransactionHash:   tx.Hash,
		TransactionIndex:  hexutil.Uint(tx.TxIndex),
		BlockHash:         tx.BlockHash,
		BlockNumber:       hexutil.Uint64(tx.BlockNumber),
		From:              tx.From,
		To:                &to,
		CumulativeGasUsed: hexutil.Uint64(tx.GasUsed),
		GasUsed:           hexutil.Uint64(tx.GasUsed),
		Logs:              logs,
		LogsBloom:         types.CreateBloom(&types.Receipt{Logs: logs}),
		Status:            hexutil.Uint64(tx.Status),
		EffectiveGasPrice: api.GasPrice(),
		Type:              hexutil.Uint64(txType(tx)),
	}, nil
}

// GetTransactionByHash returns a transaction by hash, or null when it is unknown
func (api *EthAPI) GetTransactionByHash(ctx context.Context, hash common.Hash) (*RPCTransaction, error) {
	receipt, err := api.receipt(ctx, hash)
	if err != nil || receipt == nil {
		return nil, err
	}
	return api.server.newRPCTransaction(receipt.Transaction), nil
}

func (api *EthAPI) receipt(ctx context.Context, hash common.Hash) (*service.Receipt, error) {
	receipt, err := api.server.service.Receipt(ctx, hash)
	if err != nil {
		if apperrors.Is(err, apperrors.CategoryResourceNotFound) {
			return nil, nil
		}
		api.server.logger.Error("Failed to load receipt", zap.String("hash", hash.Hex()), zap.Error(err))
		return nil, toRPCError(err)
	}
	return receipt, nil
}

// Call executes a read-only call against the token. State-changing
// functions are simulated and return true when they would succeed.
func (api *EthAPI) Call(
	ctx context.Context,
	args CallArgs,
	_ *rpc.BlockNumberOrHash,
	_ *map[common.Address]any,
) (hexutil.Bytes, error) {
	if args.To == nil || *args.To != api.server.tokenAddress {
		return nil, invalidInput("unsupported contract")
	}
	call, err := decodeCall(args.GetData())
	if err != nil {
		return nil, err
	}

	svc := api.server.service
	switch call.name() {
	case token.MethodName:
		return call.pack(svc.Metadata(ctx).Name)
	case token.MethodSymbol:
		return call.pack(svc.Metadata(ctx).Symbol)
	case token.MethodDecimals:
		return call.pack(svc.Metadata(ctx).Decimals)
	case token.MethodTotalSupply:
		return call.pack(svc.Metadata(ctx).TotalSupply.ToBig())
	case token.MethodBalanceOf:
		return call.pack(svc.BalanceOf(ctx, call.address(0)).ToBig())
	case token.MethodAllowance:
		return call.pack(svc.Allowance(ctx, call.address(0), call.address(1)).ToBig())
	default:
		if err := simulate(ctx, svc, call.name(), call.request(args.from())); err != nil {
			return nil, err
		}
		return call.pack(true)
	}
}

// GetLogs returns logs matching the filter criteria
func (api *EthAPI) GetLogs(ctx context.Context, query FilterQuery) ([]*types.Log, error) {
	filter := eventstore.LogFilter{
		Addresses: query.Addresses,
		Topics:    query.Topics,
	}

	if query.BlockHash != nil {
		n, found, err := api.server.blockNumberByHash(ctx, *query.BlockHash)
		if err != nil {
			return nil, toRPCError(err)
		}
		if !found {
			return []*types.Log{}, nil
		}
		filter.FromBlock, filter.ToBlock = &n, &n
	} else {
		latest, err := api.server.service.LatestBlockNumber(ctx)
		if err != nil {
			return nil, toRPCError(err)
		}
		from := resolveBlockNumber(query.FromBlock, latest)
		to := resolveBlockNumber(query.ToBlock, latest)
		if from > to {
			return nil, invalidParams("invalid block range: fromBlock %d is after toBlock %d", from, to)
		}
		filter.FromBlock, filter.ToBlock = &from, &to
	}

	logs, err := api.server.service.Logs(ctx, filter)
	if err != nil {
		return nil, toRPCError(err)
	}
	if logs == nil {
		logs = []*types.Log{}
	}
	return logs, nil
}

// GetBlockByNumber returns a synthetic block by number
func (api *EthAPI) GetBlockByNumber(ctx context.Context, number rpc.BlockNumber, fullTx bool) (*RPCBlock, error) {
	latest, err := api.server.service.LatestBlockNumber(ctx)
	if err != nil {
		return nil, toRPCError(err)
	}
	n := resolveBlockNumber(&number, latest)
	if n > latest {
		return nil, nil
	}
	return api.server.block(ctx, n, fullTx)
}

// GetBlockByHash returns a synthetic block by hash
func (api *EthAPI) GetBlockByHash(ctx context.Context, hash common.Hash, fullTx bool) (*RPCBlock, error) {
	n, found, err := api.server.blockNumberByHash(ctx, hash)
	if err != nil {
		return nil, toRPCError(err)
	}
	if !found {
		return nil, nil
	}
	return api.server.block(ctx, n, fullTx)
}

// block assembles block n from the transactions journaled in it.
func (s *Server) block(ctx context.Context, n uint64, fullTx bool) (*RPCBlock, error) {
	logs, err := s.service.Logs(ctx, eventstore.LogFilter{FromBlock: &n, ToBlock: &n})
	if err != nil {
		return nil, toRPCError(err)
	}

	blk := &RPCBlock{
		Number:           hexutil.Uint64(n),
		Hash:             s.blockHash(n),
		Sha3Uncles:       types.EmptyUncleHash,
		TransactionsRoot: types.EmptyTxsHash,
		ReceiptsRoot:     types.EmptyReceiptsHash,
		StateRoot:        types.EmptyRootHash,
		Difficulty:       (*hexutil.Big)(big.NewInt(0)),
		TotalDifficulty:  (*hexutil.Big)(big.NewInt(0)),
		ExtraData:        []byte{},
		GasLimit:         hexutil.Uint64(s.cfg.GasLimit),
		Transactions:     []any{},
		Uncles:           []common.Hash{},
		BaseFeePerGas:    (*hexutil.Big)(big.NewInt(0)),
	}
	if n > 0 {
		blk.ParentHash = s.blockHash(n - 1)
	}

	var seen []common.Hash
	for _, l := range logs {
		if len(seen) == 0 || seen[len(seen)-1] != l.TxHash {
			seen = append(seen, l.TxHash)
		}
	}
	if len(seen) == 0 {
		return blk, nil
	}

	blk.LogsBloom = types.CreateBloom(&types.Receipt{Logs: logs})
	for _, hash := range seen {
		receipt, err := s.service.Receipt(ctx, hash)
		if err != nil {
			return nil, toRPCError(err)
		}
		tx := receipt.Transaction
		blk.GasUsed += hexutil.Uint64(tx.GasUsed)
		blk.Timestamp = hexutil.Uint64(tx.CreatedAt.Unix())
		if fullTx {
			blk.Transactions = append(blk.Transactions, s.newRPCTransaction(tx))
		} else {
			blk.Transactions = append(blk.Transactions, tx.Hash)
		}
	}
	// Non-empty roots so clients do not expect an empty body.
	blk.TransactionsRoot = seen[0]
	blk.ReceiptsRoot = seen[0]
	return blk, nil
}

// newRPCTransaction renders a journaled transaction. Transactions submitted
// as signed envelopes are rendered from the envelope; the rest are rendered
// as unsigned legacy transactions.
func (s *Server) newRPCTransaction(stored *eventstore.Transaction) *RPCTransaction {
	blockHash := stored.BlockHash
	blockNumber := hexutil.Uint64(stored.BlockNumber)
	index := hexutil.Uint(stored.TxIndex)
	to := stored.To

	result := &RPCTransaction{
		Hash:             stored.Hash,
		Nonce:            hexutil.Uint64(stored.Nonce),
		BlockHash:        &blockHash,
		BlockNumber:      &blockNumber,
		TransactionIndex: &index,
		From:             stored.From,
		To:               &to,
		Value:            (*hexutil.Big)(big.NewInt(0)),
		GasPrice:         (*hexutil.Big)(new(big.Int).Set(s.gasPrice)),
		Gas:              hexutil.Uint64(s.cfg.GasLimit),
		Input:            stored.Input,
		V:                (*hexutil.Big)(big.NewInt(0)),
		R:                (*hexutil.Big)(big.NewInt(0)),
		S:                (*hexutil.Big)(big.NewInt(0)),
		Type:             hexutil.Uint64(types.LegacyTxType),
	}

	var tx types.Transaction
	if len(stored.Raw) == 0 || tx.UnmarshalBinary(stored.Raw) != nil {
		return result
	}

	v, r, sig := tx.RawSignatureValues()
	result.Type = hexutil.Uint64(tx.Type())
	result.Gas = hexutil.Uint64(tx.Gas())
	result.Value = (*hexutil.Big)(tx.Value())
	result.V, result.R, result.S = (*hexutil.Big)(v), (*hexutil.Big)(r), (*hexutil.Big)(sig)

	switch tx.Type() {
	case types.LegacyTxType:
		result.GasPrice = (*hexutil.Big)(tx.GasPrice())
		if tx.Protected() {
			result.ChainID = (*hexutil.Big)(tx.ChainId())
		}
	default:
		al := tx.AccessList()
		yparity := hexutil.Uint64(v.Sign())
		result.Accesses = &al
		result.ChainID = (*hexutil.Big)(tx.ChainId())
		result.YParity = &yparity
		result.GasPrice = (*hexutil.Big)(tx.GasPrice())
		if tx.Type() == types.DynamicFeeTxType {
			result.GasFeeCap = (*hexutil.Big)(tx.GasFeeCap())
			result.GasTipCap = (*hexutil.Big)(tx.GasTipCap())
		}
	}
	return result
}

func txType(tx *eventstore.Transaction) uint8 {
	if len(tx.Raw) > 0 {
		var decoded types.Transaction
		if err := decoded.UnmarshalBinary(tx.Raw); err == nil {
			return decoded.Type()
		}
	}
	return types.LegacyTxType
}

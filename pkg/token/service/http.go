package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-chi/chi/v5"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/erc20-ledger/pkg/app/errors"
	apphttp "github.com/chainsafe/erc20-ledger/pkg/app/http"
	"github.com/chainsafe/erc20-ledger/pkg/auth"
	"github.com/chainsafe/erc20-ledger/pkg/token"
)

const maxBodyBytes = 1 << 20

// TokenResponse describes the token served by the ledger
type TokenResponse struct {
	Address              string `json:"address"`
	Name                 string `json:"name"`
	Symbol               string `json:"symbol"`
	Decimals             uint8  `json:"decimals"`
	TotalSupply          string `json:"total_supply"`
	TotalSupplyFormatted string `json:"total_supply_formatted"`
}

// AmountResponse is returned for balance and allowance queries
type AmountResponse struct {
	Owner     string `json:"owner"`
	Spender   string `json:"spender,omitempty"`
	Amount    string `json:"amount"`
	Formatted string `json:"formatted"`
}

// MutationRequest is the body of every POST route. Fields that a route does
// not use are ignored: Spender is read by the allowance routes, From by
// transfer-from and To by the transfers.
type MutationRequest struct {
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	Spender string `json:"spender,omitempty"`
	Amount  string `json:"amount"`
	// Nonce makes otherwise identical signed bodies distinct. A replayed
	// signed body maps to the same transaction and returns its receipt.
	Nonce string `json:"nonce,omitempty"`
}

// EventResponse is one Transfer or Approval event of a receipt
type EventResponse struct {
	Event          string `json:"event"`
	From           string `json:"from"`
	To             string `json:"to"`
	Value          string `json:"value"`
	ValueFormatted string `json:"value_formatted"`
}

// ReceiptResponse is returned by every mutation and by the receipt lookup
type ReceiptResponse struct {
	TxHash      string          `json:"tx_hash"`
	BlockNumber uint64          `json:"block_number"`
	BlockHash   string          `json:"block_hash"`
	From        string          `json:"from"`
	Nonce       uint64          `json:"nonce"`
	Status      uint64          `json:"status"`
	Journaled   bool            `json:"journaled"`
	Events      []EventResponse `json:"events"`
}

// HTTP wraps the Service to provide REST endpoints
type HTTP struct {
	service  Service
	contract common.Address
	logger   *zap.Logger
}

// RegisterRoutes registers the token REST endpoints on the given chi router.
// Mutating routes run behind authn, which puts the caller in the context.
func RegisterRoutes(r chi.Router, service Service, contract common.Address, authn *auth.Authenticator, logger *zap.Logger) {
	h := &HTTP{
		service:  service,
		contract: contract,
		logger:   logger,
	}

	r.Get("/token", apphttp.HandleError(h.getToken))
	r.Get("/balances/{account}", apphttp.HandleError(h.getBalance))
	r.Get("/allowances/{owner}/{spender}", apphttp.HandleError(h.getAllowance))
	r.Get("/receipts/{hash}", apphttp.HandleError(h.getReceipt))

	r.Group(func(r chi.Router) {
		r.Use(authn.Middleware)
		r.Post("/transfer", apphttp.HandleError(h.mutation(OpTransfer, service.Transfer)))
		r.Post("/approve", apphttp.HandleError(h.mutation(OpApprove, service.Approve)))
		r.Post("/transfer-from", apphttp.HandleError(h.mutation(OpTransferFrom, service.TransferFrom)))
		r.Post("/increase-allowance", apphttp.HandleError(h.mutation(OpIncreaseAllowance, service.IncreaseAllowance)))
		r.Post("/decrease-allowance", apphttp.HandleError(h.mutation(OpDecreaseAllowance, service.DecreaseAllowance)))
	})
}

func (h *HTTP) getToken(w http.ResponseWriter, r *http.Request) error {
	meta := h.service.Metadata(r.Context())
	apphttp.WriteJSON(w, http.StatusOK, &TokenResponse{
		Address:              h.contract.Hex(),
		Name:                 meta.Name,
		Symbol:               meta.Symbol,
		Decimals:             meta.Decimals,
		TotalSupply:          meta.TotalSupply.Dec(),
		TotalSupplyFormatted: token.FormatUnits(meta.TotalSupply, meta.Decimals),
	})
	return nil
}

func (h *HTTP) getBalance(w http.ResponseWriter, r *http.Request) error {
	account, err := pathAddress(r, "account")
	if err != nil {
		return err
	}
	balance := h.service.BalanceOf(r.Context(), account)
	apphttp.WriteJSON(w, http.StatusOK, &AmountResponse{
		Owner:     account.Hex(),
		Amount:    balance.Dec(),
		Formatted: h.format(r, balance),
	})
	return nil
}

func (h *HTTP) getAllowance(w http.ResponseWriter, r *http.Request) error {
	owner, err := pathAddress(r, "owner")
	if err != nil {
		return err
	}
	spender, err := pathAddress(r, "spender")
	if err != nil {
		return err
	}
	allowance := h.service.Allowance(r.Context(), owner, spender)
	apphttp.WriteJSON(w, http.StatusOK, &AmountResponse{
		Owner:     owner.Hex(),
		Spender:   spender.Hex(),
		Amount:    allowance.Dec(),
		Formatted: h.format(r, allowance),
	})
	return nil
}

func (h *HTTP) getReceipt(w http.ResponseWriter, r *http.Request) error {
	hash, err := decodeHash(chi.URLParam(r, "hash"))
	if err != nil {
		return apperrors.BadRequestError(err, "invalid transaction hash")
	}
	receipt, err := h.service.Receipt(r.Context(), hash)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, h.toReceiptResponse(r, receipt))
	return nil
}

func (h *HTTP) mutation(op string, call func(context.Context, *Request) (*Receipt, error)) apphttp.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		caller, ok := auth.CallerFromContext(r.Context())
		if !ok {
			return apperrors.UnAuthorizedError(nil, "caller not authenticated")
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			return apperrors.BadRequestError(err, "failed to read request")
		}
		var in MutationRequest
		if err := json.Unmarshal(body, &in); err != nil {
			return apperrors.BadRequestError(err, "invalid JSON")
		}

		req, err := toRequest(op, caller, &in)
		if err != nil {
			return err
		}
		if auth.MethodFromContext(r.Context()) == auth.MethodSignature {
			req.TxHash = signedBodyHash(body, caller)
		}
		receipt, err := call(r.Context(), req)
		if err != nil {
			return err
		}
		apphttp.WriteJSON(w, http.StatusOK, h.toReceiptResponse(r, receipt))
		return nil
	}
}

// signedBodyHash identifies a signed REST mutation. It covers the body and the
// recovered signer only, so every encoding of the same signature maps to the
// same hash.
func signedBodyHash(body []byte, signer common.Address) common.Hash {
	return crypto.Keccak256Hash(body, signer.Bytes())
}

func toRequest(op string, caller common.Address, in *MutationRequest) (*Request, error) {
	amount, err := token.ParseAmount(in.Amount)
	if err != nil {
		return nil, apperrors.BadRequestError(err, "amount must be a base-unit decimal string")
	}
	req := &Request{Caller: caller, Amount: amount}

	switch op {
	case OpTransfer:
		req.To, err = bodyAddress(in.To, "to")
	case OpTransferFrom:
		if req.Owner, err = bodyAddress(in.From, "from"); err == nil {
			req.To, err = bodyAddress(in.To, "to")
		}
	default:
		req.To, err = bodyAddress(in.Spender, "spender")
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (h *HTTP) toReceiptResponse(r *http.Request, receipt *Receipt) *ReceiptResponse {
	tx := receipt.Transaction
	resp := &ReceiptResponse{
		TxHash:      tx.Hash.Hex(),
		BlockNumber: tx.BlockNumber,
		BlockHash:   tx.BlockHash.Hex(),
		From:        tx.From.Hex(),
		Nonce:       tx.Nonce,
		Status:      tx.Status,
		Journaled:   receipt.Journaled,
		Events:      make([]EventResponse, len(receipt.Events)),
	}
	for i, e := range receipt.Events {
		resp.Events[i] = EventResponse{
			Event:          e.Kind.String(),
			From:           e.From.Hex(),
			To:             e.To.Hex(),
			Value:          e.Value.Dec(),
			ValueFormatted: h.format(r, e.Value),
		}
	}
	return resp
}

func (h *HTTP) format(r *http.Request, amount *uint256.Int) string {
	return token.FormatUnits(amount, h.service.Metadata(r.Context()).Decimals)
}

func pathAddress(r *http.Request, param string) (common.Address, error) {
	addr, err := auth.ParseAddress(chi.URLParam(r, param))
	if err != nil {
		return common.Address{}, apperrors.BadRequestError(err, "invalid "+param+" address")
	}
	return addr, nil
}

func bodyAddress(s, field string) (common.Address, error) {
	if s == "" {
		return common.Address{}, apperrors.BadRequestError(nil, field+" is required")
	}
	addr, err := auth.ParseAddress(s)
	if err != nil {
		return common.Address{}, apperrors.BadRequestError(err, "invalid "+field+" address")
	}
	return addr, nil
}

func decodeHash(s string) (common.Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return common.Hash{}, err
	}
	if len(b) != common.HashLength {
		return common.Hash{}, errors.New("transaction hash must be 32 bytes")
	}
	return common.BytesToHash(b), nil
}

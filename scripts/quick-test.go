//go:build ignore

// quick-test.go - Send a signed transfer to a local erc20d and print the receipt
//
// Usage:
//   go run scripts/quick-test.go -key <hex private key> -to 0x... -amount 1.5

package main

import (
	"context"
	"flag"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/chainsafe/erc20-ledger/pkg/token"
)

var (
	rpcURL    = flag.String("rpc", "http://localhost:8081/eth", "JSON-RPC endpoint")
	tokenAddr = flag.String("token", "0x00000000000000000000000000000000000e2c20", "Token address")
	keyHex    = flag.String("key", "", "Sender private key (hex)")
	to        = flag.String("to", "", "Recipient address")
	amount    = flag.String("amount", "1", "Amount in whole tokens")
	decimals  = flag.Uint("decimals", 18, "Token decimals")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	key, err := crypto.HexToECDSA(*keyHex)
	if err != nil {
		fail("invalid key: %v", err)
	}
	if !common.IsHexAddress(*to) {
		fail("invalid recipient %q", *to)
	}
	value, err := token.ParseUnits(*amount, uint8(*decimals))
	if err != nil {
		fail("invalid amount: %v", err)
	}

	client, err := ethclient.DialContext(ctx, *rpcURL)
	if err != nil {
		fail("dial %s: %v", *rpcURL, err)
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		fail("chain id: %v", err)
	}
	from := crypto.PubkeyToAddress(key.PublicKey)
	nonce, err := client.NonceAt(ctx, from, nil)
	if err != nil {
		fail("nonce: %v", err)
	}
	data, err := token.PackCall(token.MethodTransfer, common.HexToAddress(*to), value.ToBig())
	if err != nil {
		fail("pack: %v", err)
	}

	tokenAddress := common.HexToAddress(*tokenAddr)
	tx, err := types.SignTx(types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(1000000000),
		Gas:       100000,
		To:        &tokenAddress,
		Value:     big.NewInt(0),
		Data:      data,
	}), types.LatestSignerForChainID(chainID), key)
	if err != nil {
		fail("sign: %v", err)
	}

	fmt.Printf("=== Transfer %s from %s to %s ===\n", *amount, from.Hex(), common.HexToAddress(*to).Hex())
	if err := client.SendTransaction(ctx, tx); err != nil {
		fail("✗ transfer failed: %v", err)
	}

	receipt, err := client.TransactionReceipt(ctx, tx.Hash())
	if err != nil {
		fail("receipt: %v", err)
	}
	fmt.Printf("✓ tx %s in block %d, %d log(s)\n", tx.Hash().Hex(), receipt.BlockNumber.Uint64(), len(receipt.Logs))
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

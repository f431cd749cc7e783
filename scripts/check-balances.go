//go:build ignore

// check-balances.go - Print token balances through the JSON-RPC facade
//
// Usage:
//   go run scripts/check-balances.go -rpc http://localhost:8081/eth -token 0x...e2c20 0xabc... 0xdef...

package main

import (
	"context"
	"flag"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/holiman/uint256"

	"github.com/chainsafe/erc20-ledger/pkg/token"
)

var (
	rpcURL    = flag.String("rpc", "http://localhost:8081/eth", "JSON-RPC endpoint")
	tokenAddr = flag.String("token", "0x00000000000000000000000000000000000e2c20", "Token address")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	client, err := ethclient.DialContext(ctx, *rpcURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial %s: %v\n", *rpcURL, err)
		os.Exit(1)
	}
	defer client.Close()

	tokenAddress := common.HexToAddress(*tokenAddr)
	erc20 := token.ABI()

	call := func(method string, args ...any) []any {
		data, err := token.PackCall(method, args...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pack %s: %v\n", method, err)
			os.Exit(1)
		}
		out, err := client.CallContract(ctx, ethereum.CallMsg{To: &tokenAddress, Data: data}, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", method, err)
			os.Exit(1)
		}
		values, err := erc20.Unpack(method, out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "unpack %s: %v\n", method, err)
			os.Exit(1)
		}
		return values
	}

	symbol := call(token.MethodSymbol)[0].(string)
	decimals := call(token.MethodDecimals)[0].(uint8)
	block, _ := client.BlockNumber(ctx)

	fmt.Printf("=== %s balances at block %d ===\n", symbol, block)
	for _, arg := range flag.Args() {
		if !common.IsHexAddress(arg) {
			fmt.Printf("✗ %s: not an address\n", arg)
			continue
		}
		bal, _ := uint256.FromBig(call(token.MethodBalanceOf, common.HexToAddress(arg))[0].(*big.Int))
		fmt.Printf("✓ %s: %s %s\n", common.HexToAddress(arg).Hex(), token.FormatUnits(bal, decimals), symbol)
	}
}

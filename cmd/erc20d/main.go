// Command erc20d serves the ERC-20 ledger over REST and Ethereum JSON-RPC.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chainsafe/erc20-ledger/pkg/app"
	"github.com/chainsafe/erc20-ledger/pkg/app/api"
	"github.com/chainsafe/erc20-ledger/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "erc20d: load configuration: %v\n", err)
		os.Exit(2)
	}

	os.Exit(app.Exit("erc20d", api.NewServer(cfg)))
}

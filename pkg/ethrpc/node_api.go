package ethrpc

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// clientVersion is reported by web3_clientVersion.
const clientVersion = "erc20-ledger/v1.0.0"

// netAPI serves net_*. The ledger is a single node with no peers, the
// network id equals the chain id.
type netAPI struct {
	networkID string
}

func (api *netAPI) Version() string { return api.networkID }
func (api *netAPI) Listening() bool { return true }
func (api *netAPI) PeerCount() hexutil.Uint { return 0 }

// web3API serves web3_*.
type web3API struct{}

func (web3API) ClientVersion() string { return clientVersion }

func (web3API) Sha3(input hexutil.Bytes) hexutil.Bytes {
	return crypto.Keccak256(input)
}

// namespaces lists every JSON-RPC namespace the server answers.
func (s *Server) namespaces() map[string]any {
	return map[string]any{
		"eth":  NewEthAPI(s),
		"net":  &netAPI{networkID: strconv.FormatUint(s.cfg.ChainID, 10)},
		"web3": web3API{},
	}
}

package eventstore

import (
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// MaxTopics is the number of indexed topic positions a log can carry.
const MaxTopics = 4

// LogFilter selects logs the way eth_getLogs does. Nil block bounds are open.
// Topics is positional: an empty set at a position matches anything, a
// non-empty set matches any of its members.
type LogFilter struct {
	FromBlock *uint64
	ToBlock   *uint64
	Addresses []common.Address
	Topics    [][]common.Hash
}

// Matches reports whether l is selected by the filter.
func (f LogFilter) Matches(l *types.Log) bool {
	if f.FromBlock != nil && l.BlockNumber < *f.FromBlock {
		return false
	}
	if f.ToBlock != nil && l.BlockNumber > *f.ToBlock {
		return false
	}
	if len(f.Addresses) > 0 && !slices.Contains(f.Addresses, l.Address) {
		return false
	}
	for i, set := range f.Topics {
		if len(set) == 0 {
			continue
		}
		if i >= len(l.Topics) || !slices.Contains(set, l.Topics[i]) {
			return false
		}
	}
	return true
}

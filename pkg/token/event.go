package token

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// EventKind identifies which ERC-20 event a record represents.
type EventKind uint8

const (
	EventTransfer EventKind = iota + 1
	EventApproval
)

var (
	// TransferTopic is keccak256("Transfer(address,address,uint256)").
	TransferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))
	// ApprovalTopic is keccak256("Approval(address,address,uint256)").
	ApprovalTopic = crypto.Keccak256Hash([]byte("Approval(address,address,uint256)"))

	errNotTokenLog = errors.New("not an erc20 event log")
)

func (k EventKind) String() string {
	switch k {
	case EventTransfer:
		return "Transfer"
	case EventApproval:
		return "Approval"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Topic returns topic0 of logs of this kind.
func (k EventKind) Topic() common.Hash {
	if k == EventApproval {
		return ApprovalTopic
	}
	return TransferTopic
}

// Event is an immutable record emitted by a successful mutation.
// For Approval events From is the owner and To is the spender.
type Event struct {
	Kind  EventKind
	From  common.Address
	To    common.Address
	Value *uint256.Int
}

func newTransfer(from, to common.Address, value *uint256.Int) Event {
	return Event{Kind: EventTransfer, From: from, To: to, Value: value.Clone()}
}

func newApproval(owner, spender common.Address, value *uint256.Int) Event {
	return Event{Kind: EventApproval, From: owner, To: spender, Value: value.Clone()}
}

// Owner returns the owner of an Approval event.
func (e Event) Owner() common.Address { return e.From }

// Spender returns the spender of an Approval event.
func (e Event) Spender() common.Address { return e.To }

func (e Event) String() string {
	return fmt.Sprintf("%s(%s, %s, %s)", e.Kind, e.From.Hex(), e.To.Hex(), e.Value.Dec())
}

// Log encodes the event the way an ERC-20 contract at address would log it.
// Block and transaction fields are left for the journal to fill.
func (e Event) Log(address common.Address) *types.Log {
	data := e.Value.Bytes32()
	return &types.Log{
		Address: address,
		Topics: []common.Hash{
			e.Kind.Topic(),
			common.BytesToHash(e.From.Bytes()),
			common.BytesToHash(e.To.Bytes()),
		},
		Data: data[:],
	}
}

// EventFromLog decodes a Transfer or Approval log.
func EventFromLog(l *types.Log) (Event, error) {
	if l == nil || len(l.Topics) != 3 || len(l.Data) != 32 {
		return Event{}, errNotTokenLog
	}
	var kind EventKind
	switch l.Topics[0] {
	case TransferTopic:
		kind = EventTransfer
	case ApprovalTopic:
		kind = EventApproval
	default:
		return Event{}, errNotTokenLog
	}
	return Event{
		Kind:  kind,
		From:  common.BytesToAddress(l.Topics[1].Bytes()),
		To:    common.BytesToAddress(l.Topics[2].Bytes()),
		Value: new(uint256.Int).SetBytes(l.Data),
	}, nil
}

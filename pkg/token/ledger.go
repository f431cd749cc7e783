package token

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Listener receives every event emitted by the ledger, in emission order,
// after the mutation that produced it has been applied. Listeners run one
// event at a time and without any ledger lock held, so they may query or
// even mutate the ledger; events of a mutation made from a listener are
// queued behind the current one.
type Listener func(Event)

// Option configures a Ledger.
type Option func(*Ledger)

// WithListener registers a listener for emitted events. Events may be
// delivered on the goroutine of a later mutation than the one that emitted
// them.
func WithListener(l Listener) Option {
	return func(ledger *Ledger) {
		if l != nil {
			ledger.listeners = append(ledger.listeners, l)
		}
	}
}

type allowanceKey struct {
	owner   common.Address
	spender common.Address
}

// Ledger holds the balances and allowances of a single token.
//
// Every mutation runs to completion under the write lock, so queries (which
// share the read lock) never see a half-applied transfer.
type Ledger struct {
	meta Metadata

	mu         sync.RWMutex
	balances   map[common.Address]*uint256.Int
	allowances map[allowanceKey]*uint256.Int

	listeners []Listener
	// pending and delivering are guarded by mu. The goroutine that sets
	// delivering drains pending until it is empty.
	pending    []Event
	delivering bool
}

// NewLedger creates a ledger and credits the whole supply to creator.
func NewLedger(meta Metadata, creator common.Address, opts ...Option) (*Ledger, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	if creator == (common.Address{}) {
		return nil, fmt.Errorf("%w: creator is the zero address", ErrInvalidConfig)
	}

	l := &Ledger{
		meta:       meta.clone(),
		balances:   map[common.Address]*uint256.Int{creator: meta.TotalSupply.Clone()},
		allowances: make(map[allowanceKey]*uint256.Int),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Name returns the token name.
func (l *Ledger) Name() string { return l.meta.Name }

// Symbol returns the token symbol.
func (l *Ledger) Symbol() string { return l.meta.Symbol }

// Decimals returns the number of decimals used for display.
func (l *Ledger) Decimals() uint8 { return l.meta.Decimals }

// TotalSupply returns the fixed total supply.
func (l *Ledger) TotalSupply() *uint256.Int { return l.meta.TotalSupply.Clone() }

// Metadata returns a copy of the token metadata.
func (l *Ledger) Metadata() Metadata { return l.meta.clone() }

// BalanceOf returns the balance of account, zero if it never held tokens.
func (l *Ledger) BalanceOf(account common.Address) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balanceLocked(account)
}

// Allowance returns how much spender may still move out of owner's balance.
func (l *Ledger) Allowance(owner, spender common.Address) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.allowanceLocked(owner, spender)
}

// Transfer moves amount from sender to recipient.
func (l *Ledger) Transfer(sender, recipient common.Address, amount *uint256.Int) ([]Event, error) {
	if amount == nil {
		return nil, ErrInvalidAmount
	}
	if recipient == (common.Address{}) {
		return nil, ErrInvalidRecipient
	}

	return l.apply(func() ([]Event, error) {
		if err := l.moveLocked(sender, recipient, amount); err != nil {
			return nil, err
		}
		return []Event{newTransfer(sender, recipient, amount)}, nil
	})
}

// Approve sets the allowance of spender over owner's balance to amount,
// replacing any previous value.
func (l *Ledger) Approve(owner, spender common.Address, amount *uint256.Int) ([]Event, error) {
	if amount == nil {
		return nil, ErrInvalidAmount
	}
	if spender == (common.Address{}) {
		return nil, ErrInvalidSpender
	}

	return l.apply(func() ([]Event, error) {
		l.allowances[allowanceKey{owner, spender}] = amount.Clone()
		return []Event{newApproval(owner, spender, amount)}, nil
	})
}

// TransferFrom moves amount from owner to recipient on behalf of spender,
// consuming spender's allowance.
//
// Checks run in a fixed order: recipient, then allowance, then balance. When
// both the allowance and the balance are short, ErrInsufficientAllowance wins.
// Only a Transfer event is emitted; the allowance change is silent.
func (l *Ledger) TransferFrom(spender, owner, recipient common.Address, amount *uint256.Int) ([]Event, error) {
	if amount == nil {
		return nil, ErrInvalidAmount
	}
	if recipient == (common.Address{}) {
		return nil, ErrInvalidRecipient
	}

	return l.apply(func() ([]Event, error) {
		allowed := l.allowanceLocked(owner, spender)
		if allowed.Lt(amount) {
			return nil, ErrInsufficientAllowance
		}
		if err := l.moveLocked(owner, recipient, amount); err != nil {
			return nil, err
		}
		l.allowances[allowanceKey{owner, spender}] = allowed.Sub(allowed, amount)
		return []Event{newTransfer(owner, recipient, amount)}, nil
	})
}

// IncreaseAllowance adds added to the allowance of spender over owner's balance.
func (l *Ledger) IncreaseAllowance(owner, spender common.Address, added *uint256.Int) ([]Event, error) {
	if added == nil {
		return nil, ErrInvalidAmount
	}
	if spender == (common.Address{}) {
		return nil, ErrInvalidSpender
	}

	return l.apply(func() ([]Event, error) {
		current := l.allowanceLocked(owner, spender)
		if _, overflow := current.AddOverflow(current, added); overflow {
			return nil, ErrOverflow
		}
		l.allowances[allowanceKey{owner, spender}] = current
		return []Event{newApproval(owner, spender, current)}, nil
	})
}

// DecreaseAllowance subtracts subtracted from the allowance of spender over
// owner's balance. The allowance never goes below zero.
func (l *Ledger) DecreaseAllowance(owner, spender common.Address, subtracted *uint256.Int) ([]Event, error) {
	if subtracted == nil {
		return nil, ErrInvalidAmount
	}
	if spender == (common.Address{}) {
		return nil, ErrInvalidSpender
	}

	return l.apply(func() ([]Event, error) {
		current := l.allowanceLocked(owner, spender)
		if _, underflow := current.SubOverflow(current, subtracted); underflow {
			return nil, ErrInsufficientAllowance
		}
		l.allowances[allowanceKey{owner, spender}] = current
		return []Event{newApproval(owner, spender, current)}, nil
	})
}

// apply runs mutate under the write lock and queues its events for the
// listeners. Events are queued under the same lock that applied them, so they
// are delivered in the order mutations were applied.
func (l *Ledger) apply(mutate func() ([]Event, error)) ([]Event, error) {
	l.mu.Lock()
	events, err := mutate()
	if err != nil {
		l.mu.Unlock()
		return nil, err
	}
	if len(l.listeners) == 0 {
		l.mu.Unlock()
		return events, nil
	}
	l.pending = append(l.pending, events...)
	if l.delivering {
		l.mu.Unlock()
		return events, nil
	}
	l.delivering = true
	for len(l.pending) > 0 {
		batch := l.pending
		l.pending = nil
		l.mu.Unlock()
		l.deliver(batch)
		l.mu.Lock()
	}
	l.delivering = false
	l.mu.Unlock()
	return events, nil
}

// deliver hands batch to every listener. A panicking listener drops the
// queue so later mutations can deliver again.
func (l *Ledger) deliver(batch []Event) {
	done := false
	defer func() {
		if !done {
			l.mu.Lock()
			l.pending = nil
			l.delivering = false
			l.mu.Unlock()
		}
	}()
	for _, e := range batch {
		for _, listener := range l.listeners {
			listener(e)
		}
	}
	done = true
}

// Holders returns every account with a recorded balance, zeroed ones
// included, sorted by address.
func (l *Ledger) Holders() []common.Address {
	l.mu.RLock()
	holders := make([]common.Address, 0, len(l.balances))
	for a := range l.balances {
		holders = append(holders, a)
	}
	l.mu.RUnlock()

	sort.Slice(holders, func(i, j int) bool {
		return bytes.Compare(holders[i].Bytes(), holders[j].Bytes()) < 0
	})
	return holders
}

// CheckConservation verifies that the balances add up to the total supply.
func (l *Ledger) CheckConservation() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	sum := new(uint256.Int)
	for _, bal := range l.balances {
		if _, overflow := sum.AddOverflow(sum, bal); overflow {
			return fmt.Errorf("%w: sum overflows", ErrConservation)
		}
	}
	if !sum.Eq(l.meta.TotalSupply) {
		return fmt.Errorf("%w: sum %s, supply %s", ErrConservation, sum.Dec(), l.meta.TotalSupply.Dec())
	}
	return nil
}

// moveLocked debits from and credits to. All checks happen before any write.
func (l *Ledger) moveLocked(from, to common.Address, amount *uint256.Int) error {
	fromBal := l.balanceLocked(from)
	if fromBal.Lt(amount) {
		return ErrInsufficientBalance
	}
	l.balances[from] = fromBal.Sub(fromBal, amount)

	// Cannot overflow: every balance is bounded by the total supply.
	toBal := l.balanceLocked(to)
	l.balances[to] = toBal.Add(toBal, amount)
	return nil
}

func (l *Ledger) balanceLocked(account common.Address) *uint256.Int {
	if bal, ok := l.balances[account]; ok {
		return bal.Clone()
	}
	return new(uint256.Int)
}

func (l *Ledger) allowanceLocked(owner, spender common.Address) *uint256.Int {
	if v, ok := l.allowances[allowanceKey{owner, spender}]; ok {
		return v.Clone()
	}
	return new(uint256.Int)
}

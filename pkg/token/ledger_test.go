package token

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	creator    = common.HexToAddress("0x1000000000000000000000000000000000000001")
	recipient1 = common.HexToAddress("0x2000000000000000000000000000000000000002")
	spender    = common.HexToAddress("0x3000000000000000000000000000000000000003")
	recipient2 = common.HexToAddress("0x4000000000000000000000000000000000000004")
)

func amount(s string) *uint256.Int {
	return uint256.MustFromDecimal(s)
}

func newTestLedger(t *testing.T, opts ...Option) *Ledger {
	t.Helper()
	l, err := NewLedger(Metadata{
		Name:        "GBC Token",
		Symbol:      "GBC",
		Decimals:    DefaultDecimals,
		TotalSupply: amount("10000000000000000000"),
	}, creator, opts...)
	require.NoError(t, err)
	return l
}

func requireAmount(t *testing.T, want string, got *uint256.Int) {
	t.Helper()
	require.Equal(t, want, got.Dec())
}

func TestNewLedger_Metadata(t *testing.T) {
	l := newTestLedger(t)

	assert.Equal(t, "GBC Token", l.Name())
	assert.Equal(t, "GBC", l.Symbol())
	assert.Equal(t, uint8(18), l.Decimals())
	requireAmount(t, "10000000000000000000", l.TotalSupply())
	requireAmount(t, "10000000000000000000", l.BalanceOf(creator))
	requireAmount(t, "0", l.BalanceOf(recipient1))
	require.NoError(t, l.CheckConservation())
}

func TestNewLedger_InvalidConfig(t *testing.T) {
	supply := amount("1000")
	tests := []struct {
		name    string
		meta    Metadata
		creator common.Address
	}{
		{"empty name", Metadata{Symbol: "GBC", TotalSupply: supply}, creator},
		{"empty symbol", Metadata{Name: "GBC Token", TotalSupply: supply}, creator},
		{"nil supply", Metadata{Name: "GBC Token", Symbol: "GBC"}, creator},
		{"zero supply", Metadata{Name: "GBC Token", Symbol: "GBC", TotalSupply: new(uint256.Int)}, creator},
		{"zero creator", Metadata{Name: "GBC Token", Symbol: "GBC", TotalSupply: supply}, common.Address{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLedger(tc.meta, tc.creator)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestNewLedger_MetadataIsCopied(t *testing.T) {
	supply := amount("1000")
	l, err := NewLedger(Metadata{Name: "N", Symbol: "S", TotalSupply: supply}, creator)
	require.NoError(t, err)

	supply.SetUint64(1)
	l.TotalSupply().SetUint64(2)

	requireAmount(t, "1000", l.TotalSupply())
	require.NoError(t, l.CheckConservation())
}

// TestLedger_StandardScenario walks the transfer / approve / transferFrom flow
// with the canonical amounts of the token's acceptance test.
func TestLedger_StandardScenario(t *testing.T) {
	l := newTestLedger(t)

	events, err := l.Transfer(creator, recipient1, amount("500000000000000000"))
	require.NoError(t, err)
	require.Equal(t, []Event{{Kind: EventTransfer, From: creator, To: recipient1, Value: amount("500000000000000000")}}, events)
	requireAmount(t, "9500000000000000000", l.BalanceOf(creator))
	requireAmount(t, "500000000000000000", l.BalanceOf(recipient1))

	events, err = l.Approve(recipient1, spender, amount("300000000000000000"))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventApproval, events[0].Kind)
	assert.Equal(t, recipient1, events[0].Owner())
	assert.Equal(t, spender, events[0].Spender())
	requireAmount(t, "300000000000000000", events[0].Value)
	requireAmount(t, "300000000000000000", l.Allowance(recipient1, spender))

	events, err = l.TransferFrom(spender, recipient1, recipient2, amount("300000000000000000"))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventTransfer, events[0].Kind)
	assert.Equal(t, recipient1, events[0].From)
	assert.Equal(t, recipient2, events[0].To)
	requireAmount(t, "300000000000000000", events[0].Value)

	requireAmount(t, "200000000000000000", l.BalanceOf(recipient1))
	requireAmount(t, "300000000000000000", l.BalanceOf(recipient2))
	requireAmount(t, "0", l.Allowance(recipient1, spender))
	require.NoError(t, l.CheckConservation())
}

func TestLedger_Transfer_InsufficientBalance(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.Transfer(recipient1, recipient2, amount("1"))
	require.ErrorIs(t, err, ErrInsufficientBalance)

	_, err = l.Transfer(creator, recipient1, amount("10000000000000000001"))
	require.ErrorIs(t, err, ErrInsufficientBalance)

	requireAmount(t, "10000000000000000000", l.BalanceOf(creator))
	requireAmount(t, "0", l.BalanceOf(recipient1))
	require.NoError(t, l.CheckConservation())
}

func TestLedger_Transfer_InvalidRecipient(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.Transfer(creator, common.Address{}, amount("1"))
	require.ErrorIs(t, err, ErrInvalidRecipient)
	requireAmount(t, "10000000000000000000", l.BalanceOf(creator))
}

func TestLedger_Transfer_NilAmount(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.Transfer(creator, recipient1, nil)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestLedger_Transfer_SelfAndZero(t *testing.T) {
	l := newTestLedger(t)

	events, err := l.Transfer(creator, creator, amount("42"))
	require.NoError(t, err)
	require.Len(t, events, 1)
	requireAmount(t, "10000000000000000000", l.BalanceOf(creator))

	events, err = l.Transfer(recipient1, recipient2, new(uint256.Int))
	require.NoError(t, err)
	require.Len(t, events, 1)
	requireAmount(t, "0", events[0].Value)
	require.NoError(t, l.CheckConservation())
}

func TestLedger_Approve_Overwrites(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.Approve(creator, spender, amount("100"))
	require.NoError(t, err)
	events, err := l.Approve(creator, spender, amount("7"))
	require.NoError(t, err)

	requireAmount(t, "7", l.Allowance(creator, spender))
	requireAmount(t, "7", events[0].Value)
	requireAmount(t, "0", l.Allowance(spender, creator))
}

func TestLedger_Approve_InvalidSpender(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.Approve(creator, common.Address{}, amount("1"))
	require.ErrorIs(t, err, ErrInvalidSpender)
}

func TestLedger_TransferFrom_Failures(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.Transfer(creator, recipient1, amount("100"))
	require.NoError(t, err)

	t.Run("no allowance", func(t *testing.T) {
		_, err := l.TransferFrom(spender, recipient1, recipient2, amount("1"))
		require.ErrorIs(t, err, ErrInsufficientAllowance)
	})

	_, err = l.Approve(recipient1, spender, amount("500"))
	require.NoError(t, err)

	t.Run("allowance ok, balance short", func(t *testing.T) {
		_, err := l.TransferFrom(spender, recipient1, recipient2, amount("101"))
		require.ErrorIs(t, err, ErrInsufficientBalance)
		requireAmount(t, "500", l.Allowance(recipient1, spender))
	})

	t.Run("both short reports allowance", func(t *testing.T) {
		_, err := l.TransferFrom(spender, recipient1, recipient2, amount("501"))
		require.ErrorIs(t, err, ErrInsufficientAllowance)
	})

	t.Run("zero recipient", func(t *testing.T) {
		_, err := l.TransferFrom(spender, recipient1, common.Address{}, amount("1"))
		require.ErrorIs(t, err, ErrInvalidRecipient)
	})

	requireAmount(t, "100", l.BalanceOf(recipient1))
	requireAmount(t, "0", l.BalanceOf(recipient2))
	require.NoError(t, l.CheckConservation())
}

func TestLedger_IncreaseDecreaseAllowance(t *testing.T) {
	l := newTestLedger(t)
	step := amount("300000000000000000")

	before := l.Allowance(creator, spender)
	events, err := l.IncreaseAllowance(creator, spender, step)
	require.NoError(t, err)

	after := l.Allowance(creator, spender)
	require.True(t, after.Gt(before))
	want := new(uint256.Int).Add(before, step)
	require.True(t, after.Eq(want))
	require.Equal(t, Event{Kind: EventApproval, From: creator, To: spender, Value: want}, events[0])

	events, err = l.IncreaseAllowance(creator, spender, amount("5"))
	require.NoError(t, err)
	requireAmount(t, "300000000000000005", events[0].Value)

	events, err = l.DecreaseAllowance(creator, spender, step)
	require.NoError(t, err)
	requireAmount(t, "5", events[0].Value)
	requireAmount(t, "5", l.Allowance(creator, spender))
	assert.Equal(t, EventApproval, events[0].Kind)
}

func TestLedger_DecreaseAllowance_BelowZero(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.Approve(creator, spender, amount("10"))
	require.NoError(t, err)

	_, err = l.DecreaseAllowance(creator, spender, amount("11"))
	require.ErrorIs(t, err, ErrInsufficientAllowance)
	requireAmount(t, "10", l.Allowance(creator, spender))

	_, err = l.DecreaseAllowance(creator, common.Address{}, amount("1"))
	require.ErrorIs(t, err, ErrInvalidSpender)
}

func TestLedger_IncreaseAllowance_Overflow(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.Approve(creator, spender, MaxAmount())
	require.NoError(t, err)

	_, err = l.IncreaseAllowance(creator, spender, amount("1"))
	require.ErrorIs(t, err, ErrOverflow)
	require.True(t, l.Allowance(creator, spender).Eq(MaxAmount()))

	_, err = l.IncreaseAllowance(creator, common.Address{}, amount("1"))
	require.ErrorIs(t, err, ErrInvalidSpender)
}

func TestLedger_MaxAllowanceIsNotInfinite(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.Approve(creator, spender, MaxAmount())
	require.NoError(t, err)

	_, err = l.TransferFrom(spender, creator, recipient1, amount("1"))
	require.NoError(t, err)

	want := new(uint256.Int).Sub(MaxAmount(), amount("1"))
	require.True(t, l.Allowance(creator, spender).Eq(want))
}

func TestLedger_Listener(t *testing.T) {
	var got []Event
	l := newTestLedger(t, WithListener(func(e Event) { got = append(got, e) }))

	_, err := l.Transfer(creator, recipient1, amount("10"))
	require.NoError(t, err)
	_, err = l.Transfer(recipient1, recipient2, amount("11"))
	require.Error(t, err)
	_, err = l.Approve(recipient1, spender, amount("3"))
	require.NoError(t, err)
	_, err = l.TransferFrom(spender, recipient1, recipient2, amount("3"))
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, EventTransfer, got[0].Kind)
	assert.Equal(t, EventApproval, got[1].Kind)
	assert.Equal(t, EventTransfer, got[2].Kind)
	assert.Equal(t, recipient2, got[2].To)
}

func TestLedger_ListenerCanQuery(t *testing.T) {
	var seen *uint256.Int
	var l *Ledger
	l = newTestLedger(t, WithListener(func(e Event) { seen = l.BalanceOf(e.To) }))

	_, err := l.Transfer(creator, recipient1, amount("10"))
	require.NoError(t, err)
	requireAmount(t, "10", seen)
}

func TestLedger_ListenerCanMutate(t *testing.T) {
	var got []Event
	var l *Ledger
	l = newTestLedger(t, WithListener(func(e Event) {
		got = append(got, e)
		if e.Kind == EventTransfer && e.To == recipient1 {
			_, err := l.Approve(recipient1, spender, amount("4"))
			assert.NoError(t, err)
		}
	}))

	done := make(chan error, 1)
	go func() {
		_, err := l.Transfer(creator, recipient1, amount("10"))
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("mutation from a listener did not return")
	}

	require.Len(t, got, 2)
	assert.Equal(t, EventTransfer, got[0].Kind)
	assert.Equal(t, EventApproval, got[1].Kind)
	requireAmount(t, "4", l.Allowance(recipient1, spender))
}

func TestLedger_PanickingListenerDoesNotStallDelivery(t *testing.T) {
	calls := 0
	l := newTestLedger(t, WithListener(func(Event) {
		calls++
		if calls == 1 {
			panic("listener failed")
		}
	}))

	assert.Panics(t, func() { _, _ = l.Transfer(creator, recipient1, amount("1")) })
	requireAmount(t, "1", l.BalanceOf(recipient1))

	_, err := l.Transfer(creator, recipient1, amount("1"))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestLedger_Holders(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.Transfer(creator, recipient2, amount("1"))
	require.NoError(t, err)
	_, err = l.Transfer(creator, recipient1, amount("1"))
	require.NoError(t, err)

	require.Equal(t, []common.Address{creator, recipient1, recipient2}, l.Holders())
}

func TestLedger_ConcurrentTransfersConserveSupply(t *testing.T) {
	l := newTestLedger(t)
	accounts := []common.Address{creator, recipient1, spender, recipient2}

	for _, a := range accounts[1:] {
		_, err := l.Transfer(creator, a, amount("1000000"))
		require.NoError(t, err)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures int
	)
	for i := 0; i < 200; i++ {
		wg.Add(2)
		from, to := accounts[i%4], accounts[(i+1)%4]
		go func() {
			defer wg.Done()
			if _, err := l.Transfer(from, to, amount("7919")); err != nil {
				if !errors.Is(err, ErrInsufficientBalance) {
					t.Errorf("unexpected error: %v", err)
				}
				mu.Lock()
				failures++
				mu.Unlock()
			}
		}()
		go func() {
			defer wg.Done()
			if err := l.CheckConservation(); err != nil {
				t.Errorf("conservation broken mid-flight: %v", err)
			}
		}()
	}
	wg.Wait()

	require.NoError(t, l.CheckConservation())
	t.Logf("%d transfers rejected", failures)
}

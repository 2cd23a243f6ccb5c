// Package wallettest provides an in-memory toolbox for tests
package wallettest

import (
	"context"
	"sync"

	"github.com/yourorg/swapkit-go/internal/model"
	"github.com/yourorg/swapkit-go/internal/wallet"
)

// Toolbox implements wallet.Toolbox with canned results and records calls.
// Optional capabilities are exposed through Full.
type Toolbox struct {
	Balance     []model.AssetValue
	BalanceErr  error
	TransferTx  string
	TransferErr error

	mu        sync.Mutex
	Transfers []wallet.TransferParams
	Calls     int
}

// GetBalance returns the canned balance
func (t *Toolbox) GetBalance(ctx context.Context, address string, scamFilter bool) ([]model.AssetValue, error) {
	t.mu.Lock()
	t.Calls++
	t.mu.Unlock()
	if t.BalanceErr != nil {
		return nil, t.BalanceErr
	}
	return t.Balance, nil
}

// Transfer records params and returns the canned hash
func (t *Toolbox) Transfer(ctx context.Context, params wallet.TransferParams) (string, error) {
	t.mu.Lock()
	t.Transfers = append(t.Transfers, params)
	t.mu.Unlock()
	return t.TransferTx, t.TransferErr
}

// CallCount returns how many balance fetches were made
func (t *Toolbox) CallCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Calls
}

// Full is a Toolbox exposing every optional capability
type Full struct {
	Toolbox

	ApproveTx    string
	ApproveErr   error
	Approved     bool
	ApprovedErr  error
	CallTx       string
	CallErr      error
	DepositTx    string
	DepositErr   error
	ValidAddress func(string) bool

	Approvals     []wallet.ApproveParams
	Checks        []wallet.ApproveParams
	ContractCalls []wallet.ContractCallParams
	Deposits      []wallet.DepositParams
}

// Approve records params and returns the canned hash
func (f *Full) Approve(ctx context.Context, params wallet.ApproveParams) (string, error) {
	f.mu.Lock()
	f.Approvals = append(f.Approvals, params)
	f.mu.Unlock()
	return f.ApproveTx, f.ApproveErr
}

// IsApproved records params and returns the canned answer
func (f *Full) IsApproved(ctx context.Context, params wallet.ApproveParams) (bool, error) {
	f.mu.Lock()
	f.Checks = append(f.Checks, params)
	f.mu.Unlock()
	return f.Approved, f.ApprovedErr
}

// Call records params and returns the canned hash
func (f *Full) Call(ctx context.Context, params wallet.ContractCallParams) (string, error) {
	f.mu.Lock()
	f.ContractCalls = append(f.ContractCalls, params)
	f.mu.Unlock()
	return f.CallTx, f.CallErr
}

// Deposit records params and returns the canned hash
func (f *Full) Deposit(ctx context.Context, params wallet.DepositParams) (string, error) {
	f.mu.Lock()
	f.Deposits = append(f.Deposits, params)
	f.mu.Unlock()
	return f.DepositTx, f.DepositErr
}

// ValidateAddress delegates to ValidAddress, accepting everything when unset
func (f *Full) ValidateAddress(address string) bool {
	if f.ValidAddress == nil {
		return true
	}
	return f.ValidAddress(address)
}

// Package stub provides fake Solana clients for testing.
package stub

import (
	"context"
	"errors"

	"solana-token-qualifier/internal/solana"
)

// ErrUnavailable simulates a provider outage.
var ErrUnavailable = errors.New("provider unavailable")

// RPCClient implements solana.RPCClient for testing. Zero value maps mean
// "no data"; setting Fail* simulates provider failures per call family.
type RPCClient struct {
	Signatures      map[string][]solana.SignatureInfo
	Transactions    map[string]*solana.Transaction
	ProgramAccounts map[string][]solana.ProgramAccount
	Accounts        map[string]*solana.AccountInfo
	LargestAccounts map[string][]solana.TokenAccountBalance
	Supplies        map[string]*solana.TokenSupply

	FailSignatures      bool
	FailTransactions    bool
	FailProgramAccounts bool
	FailAccounts        bool
	FailLargestAccounts bool
	FailSupplies        bool

	// SignatureCalls counts GetSignaturesForAddress invocations, for
	// asserting retry behavior.
	SignatureCalls int
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Signatures:      make(map[string][]solana.SignatureInfo),
		Transactions:    make(map[string]*solana.Transaction),
		ProgramAccounts: make(map[string][]solana.ProgramAccount),
		Accounts:        make(map[string]*solana.AccountInfo),
		LargestAccounts: make(map[string][]solana.TokenAccountBalance),
		Supplies:        make(map[string]*solana.TokenSupply),
	}
}

// Compile-time interface check.
var _ solana.RPCClient = (*RPCClient)(nil)

// GetSignaturesForAddress returns stubbed signatures for an address.
func (c *RPCClient) GetSignaturesForAddress(_ context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	c.SignatureCalls++
	if c.FailSignatures {
		return nil, ErrUnavailable
	}

	sigs := c.Signatures[address]
	if opts != nil && opts.Limit > 0 && opts.Limit < len(sigs) {
		return sigs[:opts.Limit], nil
	}
	return sigs, nil
}

// GetTransaction returns a stubbed transaction, nil if absent.
func (c *RPCClient) GetTransaction(_ context.Context, signature string) (*solana.Transaction, error) {
	if c.FailTransactions {
		return nil, ErrUnavailable
	}
	return c.Transactions[signature], nil
}

// GetProgramAccounts returns stubbed program accounts.
func (c *RPCClient) GetProgramAccounts(_ context.Context, programID string, _ *solana.ProgramAccountsFilter) ([]solana.ProgramAccount, error) {
	if c.FailProgramAccounts {
		return nil, ErrUnavailable
	}
	return c.ProgramAccounts[programID], nil
}

// GetAccountInfo returns stubbed account info, nil if absent.
func (c *RPCClient) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	if c.FailAccounts {
		return nil, ErrUnavailable
	}
	return c.Accounts[pubkey], nil
}

// GetTokenLargestAccounts returns stubbed balances.
func (c *RPCClient) GetTokenLargestAccounts(_ context.Context, mint string) ([]solana.TokenAccountBalance, error) {
	if c.FailLargestAccounts {
		return nil, ErrUnavailable
	}
	return c.LargestAccounts[mint], nil
}

// GetTokenSupply returns a stubbed supply.
func (c *RPCClient) GetTokenSupply(_ context.Context, mint string) (*solana.TokenSupply, error) {
	if c.FailSupplies {
		return nil, ErrUnavailable
	}
	s, ok := c.Supplies[mint]
	if !ok {
		return nil, ErrUnavailable
	}
	return s, nil
}

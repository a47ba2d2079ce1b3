package solana

import "context"

// RPCClient defines the Solana RPC HTTP interface consumed by the engine.
// All calls are assumed unreliable; callers apply their own timeout/retry on
// top of the client's transport-level retries.
type RPCClient interface {
	// GetSignaturesForAddress retrieves signatures for an address with pagination.
	GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error)

	// GetTransaction retrieves a transaction by signature. Returns nil if not found.
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)

	// GetProgramAccounts retrieves accounts owned by a program, optionally
	// filtered by a memcmp match on account data.
	GetProgramAccounts(ctx context.Context, programID string, filter *ProgramAccountsFilter) ([]ProgramAccount, error)

	// GetAccountInfo retrieves account info by public key. Returns nil if not found.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)

	// GetTokenLargestAccounts retrieves the 20 largest token accounts for a mint.
	GetTokenLargestAccounts(ctx context.Context, mint string) ([]TokenAccountBalance, error)

	// GetTokenSupply retrieves the total supply of a token mint.
	GetTokenSupply(ctx context.Context, mint string) (*TokenSupply, error)
}

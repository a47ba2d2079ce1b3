package solana

// SignatureInfo from getSignaturesForAddress.
type SignatureInfo struct {
	Signature string
	Slot      int64
	BlockTime *int64 // Unix timestamp (seconds)
	Err       interface{}
}

// SignaturesOpts defines optional pagination parameters for getSignaturesForAddress.
type SignaturesOpts struct {
	Before string // Start searching backwards from this signature
	Until  string // Search until this signature
	Limit  int    // Maximum number of signatures to return
}

// Transaction represents a Solana transaction.
type Transaction struct {
	Slot      int64
	Signature string
	BlockTime int64 // Unix timestamp (seconds)
	Meta      *TransactionMeta
	Message   *TransactionMessage
}

// TransactionMeta contains transaction metadata, including the lamport
// balance snapshots used to derive transfer notionals.
type TransactionMeta struct {
	Err          interface{}
	Fee          uint64
	PreBalances  []uint64 // lamports per account, before
	PostBalances []uint64 // lamports per account, after
	LogMessages  []string
}

// TransactionMessage contains the parsed transaction message.
type TransactionMessage struct {
	AccountKeys []string
}

// ProgramAccountsFilter narrows a getProgramAccounts scan.
type ProgramAccountsFilter struct {
	DataSize     int    // filter by exact account data size, 0 to skip
	MemcmpOffset int    // offset for the memcmp filter
	MemcmpBytes  string // base58-encoded bytes to match, empty to skip
}

// ProgramAccount is one account returned by getProgramAccounts.
type ProgramAccount struct {
	Pubkey  string
	Account AccountInfo
}

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64
	Owner      string
	Data       string // base64 encoded
	Executable bool
	RentEpoch  uint64
}

// TokenAccountBalance is one entry from getTokenLargestAccounts.
type TokenAccountBalance struct {
	Address  string
	Amount   float64 // ui amount
	Decimals int
}

// TokenSupply is the result of getTokenSupply.
type TokenSupply struct {
	Amount   float64 // ui amount
	Decimals int
}

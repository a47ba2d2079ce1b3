package domain

// LiquidityEvent represents a liquidity-pool creation event observed on-chain.
type LiquidityEvent struct {
	TokenAddress string  // token mint address
	PoolValueUSD float64 // initial pool value estimate
	QuoteSymbol  string  // SOL | USDC | ...
	Timestamp    int64   // Unix timestamp in seconds
	Deployer     string  // pool creator address
	InitialBuys  bool    // buys observed in the creation transaction
	DEX          string  // DEX identifier (raydium, pumpfun)
	TxSignature  string
}

// CachedLiquidityEvent wraps a LiquidityEvent with cache bookkeeping.
type CachedLiquidityEvent struct {
	Event      LiquidityEvent
	StoredAt   int64 // ms
	Retrievals int
}

package discovery

// Known DEX program IDs and account-layout offsets.
const (
	// RaydiumAMMV4 is the Raydium AMM v4 program ID.
	RaydiumAMMV4 = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	// PumpFun is the pump.fun program ID.
	PumpFun = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"

	// RaydiumBaseMintOffset is the byte offset of the base mint in a
	// Raydium AMM v4 pool account.
	RaydiumBaseMintOffset = 400
	// PumpFunMintOffset is the byte offset of the mint in a pump.fun
	// bonding curve account.
	PumpFunMintOffset = 8
)

// WSOL is the wrapped SOL mint address.
const WSOL = "So11111111111111111111111111111111111111112"

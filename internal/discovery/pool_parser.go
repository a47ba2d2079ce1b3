// Package discovery turns DEX program logs into liquidity-pool creation
// events for the evaluation engine.
package discovery

import (
	"regexp"
	"strconv"
	"strings"

	"solana-token-qualifier/internal/domain"
)

// PoolCreationParser extracts pool-initialization events from transaction
// logs of the known DEX programs.
type PoolCreationParser struct {
	raydiumInit *regexp.Regexp
	pumpCreate  *regexp.Regexp
	mintPattern *regexp.Regexp
	solPattern  *regexp.Regexp
	solPriceUSD float64
}

// NewPoolCreationParser creates a parser. solPriceUSD converts the quote
// side into a pool USD value estimate.
func NewPoolCreationParser(solPriceUSD float64) *PoolCreationParser {
	return &PoolCreationParser{
		raydiumInit: regexp.MustCompile(`Program log: (?:Instruction: )?[Ii]nitialize2?`),
		pumpCreate:  regexp.MustCompile(`Program log: Instruction: Create`),
		mintPattern: regexp.MustCompile(`mint[=:]\s*([1-9A-HJ-NP-Za-km-z]{32,44})`),
		solPattern:  regexp.MustCompile(`(?:init_pc_amount|sol_amount)[=:]\s*(\d+)`),
		solPriceUSD: solPriceUSD,
	}
}

// Parse inspects one log notification and returns a liquidity event when a
// pool initialization for a non-WSOL mint is found.
func (p *PoolCreationParser) Parse(logs []string, txSig string, timestamp int64, accountKeys []string) (*domain.LiquidityEvent, bool) {
	dex := detectDEX(logs)
	if dex == "" {
		return nil, false
	}

	initSeen := false
	var mint string
	var quoteLamports uint64
	hasBuys := false

	for _, line := range logs {
		switch dex {
		case "raydium":
			if p.raydiumInit.MatchString(line) {
				initSeen = true
			}
		case "pumpfun":
			if p.pumpCreate.MatchString(line) {
				initSeen = true
			}
			if strings.Contains(line, "Instruction: Buy") {
				hasBuys = true
			}
		}

		if m := p.mintPattern.FindStringSubmatch(line); m != nil && m[1] != WSOL {
			mint = m[1]
		}
		if m := p.solPattern.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseUint(m[1], 10, 64); err == nil {
				quoteLamports = v
			}
		}
	}

	if !initSeen {
		return nil, false
	}

	if mint == "" {
		mint = inferMintFromAccounts(accountKeys)
	}
	if mint == "" {
		return nil, false
	}

	event := &domain.LiquidityEvent{
		TokenAddress: mint,
		QuoteSymbol:  "SOL",
		Timestamp:    timestamp,
		InitialBuys:  hasBuys,
		DEX:          dex,
		TxSignature:  txSig,
	}
	if len(accountKeys) > 0 {
		event.Deployer = accountKeys[0]
	}
	if quoteLamports > 0 {
		// Both sides of the pair count toward pool value.
		event.PoolValueUSD = 2 * float64(quoteLamports) / 1e9 * p.solPriceUSD
	}

	return event, true
}

// detectDEX identifies which known DEX program produced the logs.
func detectDEX(logs []string) string {
	for _, line := range logs {
		if strings.Contains(line, RaydiumAMMV4) {
			return "raydium"
		}
		if strings.Contains(line, PumpFun) {
			return "pumpfun"
		}
	}
	return ""
}

// inferMintFromAccounts picks the first plausible mint key that is neither
// WSOL nor a known program.
func inferMintFromAccounts(accountKeys []string) string {
	for i, key := range accountKeys {
		if i == 0 {
			continue // fee payer
		}
		if key == WSOL || key == RaydiumAMMV4 || key == PumpFun {
			continue
		}
		if len(key) >= 32 && len(key) <= 44 {
			return key
		}
	}
	return ""
}

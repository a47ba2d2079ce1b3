package risk

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// MetaplexMetadataProgram is the Metaplex token metadata program ID.
const MetaplexMetadataProgram = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"

// checkMintDisabled reads the SPL mint account and reports whether the mint
// authority has been revoked. A parse failure reports false (mint assumed
// still enabled, which is the conservative answer for risk scoring).
func (g *Gate) checkMintDisabled(ctx context.Context, address string) bool {
	info, err := g.provider.GetAccountInfo(ctx, address)
	if err != nil || info == nil || info.Data == "" {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(info.Data)
	if err != nil || len(decoded) < 4 {
		return false
	}

	// Mint layout: mintAuthorityOption(4) | mintAuthority(32) | ...
	// Option value 0 means the authority was revoked.
	return binary.LittleEndian.Uint32(decoded[:4]) == 0
}

// verifyMetadata derives the Metaplex metadata PDA for the mint and checks
// that the metadata account exists.
func (g *Gate) verifyMetadata(ctx context.Context, address string) bool {
	mintBytes, err := base58.Decode(address)
	if err != nil || len(mintBytes) != 32 {
		return false
	}
	programBytes, err := base58.Decode(MetaplexMetadataProgram)
	if err != nil {
		return false
	}

	pda := derivePDA([][]byte{
		[]byte("metadata"),
		programBytes,
		mintBytes,
	}, programBytes)
	if pda == "" {
		return false
	}

	info, err := g.provider.GetAccountInfo(ctx, pda)
	return err == nil && info != nil
}

// derivePDA derives a Program Derived Address: seeds + bump + program ID +
// marker hashed with SHA256, taking the first bump that lands off-curve.
func derivePDA(seeds [][]byte, programID []byte) string {
	for bump := byte(255); bump > 0; bump-- {
		data := make([]byte, 0, 128)
		for _, seed := range seeds {
			data = append(data, seed...)
		}
		data = append(data, bump)
		data = append(data, programID...)
		data = append(data, []byte("ProgramDerivedAddress")...)

		hash := sha256.Sum256(data)
		if !isOnCurve(hash[:]) {
			return base58.Encode(hash[:])
		}
	}
	return ""
}

// isOnCurve reports whether the 32-byte point decodes on the ed25519 curve.
func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}

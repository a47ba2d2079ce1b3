package signals

import (
	"context"

	"solana-token-qualifier/internal/registry"
)

// SocialModule proxies off-chain attention. No social APIs are wired, so it
// works from on-chain visibility signals: whether the mint account carries
// data at all and a deterministic seeded baseline so repeated runs agree.
// Supplementary category, never scored directly.
type SocialModule struct{}

// NewSocialModule creates the module.
func NewSocialModule() *SocialModule { return &SocialModule{} }

// Name implements registry.Module.
func (m *SocialModule) Name() string { return NameSocial }

// Execute implements registry.Module.
func (m *SocialModule) Execute(ctx context.Context, ec *registry.EvaluationContext) (*registry.Result, error) {
	confidence := seededConfidence(ec.TokenAddress, "social", 15, 45)
	visible := false

	if info, err := ec.Provider.GetAccountInfo(ctx, ec.TokenAddress); err == nil && info != nil && len(info.Data) > 0 {
		visible = true
		confidence += 15
	}

	return &registry.Result{
		Confidence: clampConfidence(confidence),
		Payload: map[string]any{
			"estimated":    true,
			"mint_visible": visible,
		},
	}, nil
}

package hashing

import (
	"github.com/poiesic/secondbrain/ai"
)

// Provider implements ai.AIProvider around a hashing Embedder.
type Provider struct {
	embedder *Embedder
}

// NewProvider creates a provider from config. Only Dimensions is used.
//
// Returns ai.AIProvider interface (not *Provider) to match the other providers.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	dims := config.Dimensions
	if dims == 0 {
		dims = DefaultDimensions
	}
	embedder, err := NewEmbedder(WithDimensions(dims))
	if err != nil {
		return nil, err
	}
	return &Provider{embedder: embedder}, nil
}

// Embedder returns the hashing embedder.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Close is a no-op.
func (p *Provider) Close() error {
	return nil
}

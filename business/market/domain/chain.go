// Package domain contains the core domain types for the market context.
package domain

import (
	"fmt"

	"github.com/arbizirq/arbizirq/internal/asset"
)

// Chain identifies a supported network by its canonical name.
type Chain string

const (
	ChainEthereum Chain = "ethereum"
	ChainPolygon  Chain = "polygon"
	ChainZircuit  Chain = "zircuit"
	ChainArbitrum Chain = "arbitrum"
	ChainOptimism Chain = "optimism"
)

// SupportedChains returns all chains the pipeline can scan.
func SupportedChains() []Chain {
	return []Chain{ChainEthereum, ChainPolygon, ChainZircuit, ChainArbitrum, ChainOptimism}
}

// ParseChain validates a chain name.
func ParseChain(name string) (Chain, error) {
	c := Chain(name)
	if !c.IsSupported() {
		return "", fmt.Errorf("unsupported chain: %q", name)
	}
	return c, nil
}

// IsSupported reports whether the chain is part of the supported set.
func (c Chain) IsSupported() bool {
	_, ok := asset.ChainIDByName(string(c))
	return ok
}

// ChainID returns the numeric chain ID.
func (c Chain) ChainID() uint64 {
	id, _ := asset.ChainIDByName(string(c))
	return id
}

// String returns the canonical chain name.
func (c Chain) String() string {
	return string(c)
}

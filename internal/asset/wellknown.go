package asset

import "github.com/ethereum/go-ethereum/common"

// Chain IDs
const (
	ChainIDEthereum = 1
	ChainIDPolygon  = 137
	ChainIDZircuit  = 48900
	ChainIDArbitrum = 42161
	ChainIDOptimism = 10
	ChainIDFiat     = 0 // Off-chain / fiat
)

// chainIDsByName maps the chain names used on the wire to chain IDs.
var chainIDsByName = map[string]uint64{
	"ethereum": ChainIDEthereum,
	"polygon":  ChainIDPolygon,
	"zircuit":  ChainIDZircuit,
	"arbitrum": ChainIDArbitrum,
	"optimism": ChainIDOptimism,
}

var chainNamesByID = map[uint64]string{
	ChainIDEthereum: "ethereum",
	ChainIDPolygon:  "polygon",
	ChainIDZircuit:  "zircuit",
	ChainIDArbitrum: "arbitrum",
	ChainIDOptimism: "optimism",
}

// ChainIDByName resolves a chain name to its numeric chain ID.
func ChainIDByName(name string) (uint64, bool) {
	id, ok := chainIDsByName[name]
	return id, ok
}

// ChainNameByID resolves a numeric chain ID to its name.
func ChainNameByID(id uint64) (string, bool) {
	name, ok := chainNamesByID[id]
	return name, ok
}

// Well-known token addresses
var (
	// Ethereum Mainnet
	AddrUSDCEthereum = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	AddrUSDTEthereum = common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	AddrWETHEthereum = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	AddrWBTCEthereum = common.HexToAddress("0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599")

	// Polygon
	AddrUSDCPolygon = common.HexToAddress("0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359")
	AddrWETHPolygon = common.HexToAddress("0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619")

	// Zircuit
	AddrUSDCZircuit = common.HexToAddress("0x3b952c8C9C44e8Fe201e2b26F6B2200203214cFf")
	AddrWETHZircuit = common.HexToAddress("0x4200000000000000000000000000000000000006")

	// Arbitrum One
	AddrUSDCArbitrum = common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831")
	AddrWETHArbitrum = common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1")

	// Optimism
	AddrUSDCOptimism = common.HexToAddress("0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85")
	AddrWETHOptimism = common.HexToAddress("0x4200000000000000000000000000000000000006")
)

// Well-known AssetIDs
var (
	IDEthereumETH  = NewNativeAssetID(ChainIDEthereum)
	IDEthereumUSDC = NewTokenAssetID(ChainIDEthereum, AddrUSDCEthereum)
	IDEthereumUSDT = NewTokenAssetID(ChainIDEthereum, AddrUSDTEthereum)
	IDEthereumWETH = NewTokenAssetID(ChainIDEthereum, AddrWETHEthereum)
	IDEthereumWBTC = NewTokenAssetID(ChainIDEthereum, AddrWBTCEthereum)

	IDPolygonUSDC = NewTokenAssetID(ChainIDPolygon, AddrUSDCPolygon)
	IDPolygonWETH = NewTokenAssetID(ChainIDPolygon, AddrWETHPolygon)

	IDZircuitUSDC = NewTokenAssetID(ChainIDZircuit, AddrUSDCZircuit)
	IDZircuitWETH = NewTokenAssetID(ChainIDZircuit, AddrWETHZircuit)

	IDArbitrumUSDC = NewTokenAssetID(ChainIDArbitrum, AddrUSDCArbitrum)
	IDArbitrumWETH = NewTokenAssetID(ChainIDArbitrum, AddrWETHArbitrum)

	IDOptimismUSDC = NewTokenAssetID(ChainIDOptimism, AddrUSDCOptimism)
	IDOptimismWETH = NewTokenAssetID(ChainIDOptimism, AddrWETHOptimism)

	// Fiat
	IDUSD = NewFiatAssetID("USD")
)

// Well-known Assets (pre-created instances)
var (
	ETH  = NewAssetWithName(IDEthereumETH, "ETH", "Ethereum", 18)
	USDC = NewAssetWithName(IDEthereumUSDC, "USDC", "USD Coin", 6)
	USDT = NewAssetWithName(IDEthereumUSDT, "USDT", "Tether USD", 6)
	WETH = NewAssetWithName(IDEthereumWETH, "WETH", "Wrapped Ether", 18)
	WBTC = NewAssetWithName(IDEthereumWBTC, "WBTC", "Wrapped Bitcoin", 8)

	USDCPolygon = NewAssetWithName(IDPolygonUSDC, "USDC", "USD Coin", 6)
	WETHPolygon = NewAssetWithName(IDPolygonWETH, "WETH", "Wrapped Ether", 18)

	USDCZircuit = NewAssetWithName(IDZircuitUSDC, "USDC", "USD Coin", 6)
	WETHZircuit = NewAssetWithName(IDZircuitWETH, "WETH", "Wrapped Ether", 18)

	USDCArbitrum = NewAssetWithName(IDArbitrumUSDC, "USDC", "USD Coin", 6)
	WETHArbitrum = NewAssetWithName(IDArbitrumWETH, "WETH", "Wrapped Ether", 18)

	USDCOptimism = NewAssetWithName(IDOptimismUSDC, "USDC", "USD Coin", 6)
	WETHOptimism = NewAssetWithName(IDOptimismWETH, "WETH", "Wrapped Ether", 18)

	USD = NewAssetWithName(IDUSD, "USD", "US Dollar", 2)
)

// DefaultRegistry returns a registry pre-populated with well-known assets
// across the supported chains.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(ETH)
	r.Register(USDC)
	r.Register(USDT)
	r.Register(WETH)
	r.Register(WBTC)

	r.Register(USDCPolygon)
	r.Register(WETHPolygon)

	r.Register(USDCZircuit)
	r.Register(WETHZircuit)

	r.Register(USDCArbitrum)
	r.Register(WETHArbitrum)

	r.Register(USDCOptimism)
	r.Register(WETHOptimism)

	r.Register(USD)

	return r
}

// MustNewToken creates a new ERC20 token asset with the given parameters.
// This is a convenience function for registering custom tokens.
func MustNewToken(chainID uint64, address common.Address, symbol, name string, decimals uint8) *Asset {
	id := NewTokenAssetID(chainID, address)
	return NewAssetWithName(id, symbol, name, decimals)
}

// MustNewNative creates a new native coin asset.
func MustNewNative(chainID uint64, symbol, name string, decimals uint8) *Asset {
	id := NewNativeAssetID(chainID)
	return NewAssetWithName(id, symbol, name, decimals)
}

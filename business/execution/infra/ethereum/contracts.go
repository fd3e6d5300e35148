// Package ethereum implements the ChainLedger port over go-ethereum
// RPC clients, one per supported chain.
package ethereum

import (
	"github.com/ethereum/go-ethereum/common"

	marketDomain "github.com/arbizirq/arbizirq/business/market/domain"
)

// ERC20ABI covers the subset of the token interface the ledger needs.
const ERC20ABI = `[
	{
		"inputs": [{"internalType": "address", "name": "account", "type": "address"}],
		"name": "balanceOf",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "owner", "type": "address"},
			{"internalType": "address", "name": "spender", "type": "address"}
		],
		"name": "allowance",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "spender", "type": "address"},
			{"internalType": "uint256", "name": "amount", "type": "uint256"}
		],
		"name": "approve",
		"outputs": [{"internalType": "bool", "name": "", "type": "bool"}],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// RouterABI is the minimal V2-style swap router interface. The per-venue
// routers on every supported chain expose this entry point.
const RouterABI = `[
	{
		"inputs": [
			{"internalType": "uint256", "name": "amountIn", "type": "uint256"},
			{"internalType": "uint256", "name": "amountOutMin", "type": "uint256"},
			{"internalType": "address[]", "name": "path", "type": "address[]"},
			{"internalType": "address", "name": "to", "type": "address"},
			{"internalType": "uint256", "name": "deadline", "type": "uint256"}
		],
		"name": "swapExactTokensForTokens",
		"outputs": [{"internalType": "uint256[]", "name": "amounts", "type": "uint256[]"}],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// BridgeABI is the canonical bridge deposit entry point.
const BridgeABI = `[
	{
		"inputs": [
			{"internalType": "address", "name": "token", "type": "address"},
			{"internalType": "uint256", "name": "amount", "type": "uint256"},
			{"internalType": "uint256", "name": "destinationChainId", "type": "uint256"},
			{"internalType": "address", "name": "recipient", "type": "address"}
		],
		"name": "deposit",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// Router addresses per chain for the default venue router.
var routerAddresses = map[marketDomain.Chain]common.Address{
	marketDomain.ChainEthereum: common.HexToAddress("0x68b3465833fb72A70ecDF485E0e4C7bD8665Fc45"),
	marketDomain.ChainPolygon:  common.HexToAddress("0x68b3465833fb72A70ecDF485E0e4C7bD8665Fc45"),
	marketDomain.ChainZircuit:  common.HexToAddress("0x2Ca8C0cD2c1A2bdb58A6E2a356bCe59bC87a47A0"),
	marketDomain.ChainArbitrum: common.HexToAddress("0x68b3465833fb72A70ecDF485E0e4C7bD8665Fc45"),
	marketDomain.ChainOptimism: common.HexToAddress("0x68b3465833fb72A70ecDF485E0e4C7bD8665Fc45"),
}

// Canonical bridge addresses per source chain.
var bridgeAddresses = map[marketDomain.Chain]common.Address{
	marketDomain.ChainEthereum: common.HexToAddress("0x3B95bC951EE0f553ba487327278cAc44f29715E5"),
	marketDomain.ChainPolygon:  common.HexToAddress("0xA0c68C638235ee32657e8f720a23ceC1bFc77C77"),
	marketDomain.ChainZircuit:  common.HexToAddress("0x17bfAfA932d2e23Bd9B909Fd5B4D2e2a27043fb1"),
	marketDomain.ChainArbitrum: common.HexToAddress("0x72Ce9c846789fdB6fC1f34aC4AD25Dd9ef7031ef"),
	marketDomain.ChainOptimism: common.HexToAddress("0x99C9fc46f92E8a1c0deC1b1747d010903E884bE1"),
}

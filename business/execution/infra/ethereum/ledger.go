package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/arbizirq/arbizirq/business/execution/app"
	"github.com/arbizirq/arbizirq/business/execution/domain"
	marketDomain "github.com/arbizirq/arbizirq/business/market/domain"
	"github.com/arbizirq/arbizirq/internal/apperror"
	"github.com/arbizirq/arbizirq/internal/asset"
	"github.com/arbizirq/arbizirq/internal/circuitbreaker"
	"github.com/arbizirq/arbizirq/internal/logger"
)

const (
	tracerName = "business/execution/infra/ethereum"

	swapDeadline  = 5 * time.Minute
	receiptWindow = 2 * time.Minute
	defaultGas    = 350000
)

// Ensure Ledger implements ChainLedger.
var _ app.ChainLedger = (*Ledger)(nil)

// Config holds ledger configuration.
type Config struct {
	RPCURLs      map[string]string // chain name -> RPC endpoint
	WalletKeyHex string
}

// Ledger talks to each supported chain through its own RPC client.
// Clients are dialed lazily and guarded by a per-chain circuit breaker.
type Ledger struct {
	config   Config
	registry *asset.Registry
	logger   logger.LoggerInterface
	tracer   trace.Tracer

	key        *ecdsa.PrivateKey
	walletAddr common.Address

	erc20ABI  abi.ABI
	routerABI abi.ABI
	bridgeABI abi.ABI

	mu       sync.Mutex
	clients  map[marketDomain.Chain]*ethclient.Client
	breakers map[marketDomain.Chain]*circuitbreaker.CircuitBreaker[[]byte]
}

// NewLedger creates a Ledger. The wallet key is required; a ledger
// without a wallet cannot sign anything and should not exist.
func NewLedger(cfg Config, registry *asset.Registry, log logger.LoggerInterface) (*Ledger, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.WalletKeyHex, "0x"))
	if err != nil {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithCause(err),
			apperror.WithContext("parsing wallet key"))
	}

	erc20ABI, err := abi.JSON(strings.NewReader(ERC20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}
	routerABI, err := abi.JSON(strings.NewReader(RouterABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse router ABI: %w", err)
	}
	bridgeABI, err := abi.JSON(strings.NewReader(BridgeABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse bridge ABI: %w", err)
	}

	return &Ledger{
		config:     cfg,
		registry:   registry,
		logger:     log,
		tracer:     otel.Tracer(tracerName),
		key:        key,
		walletAddr: crypto.PubkeyToAddress(key.PublicKey),
		erc20ABI:   erc20ABI,
		routerABI:  routerABI,
		bridgeABI:  bridgeABI,
		clients:    make(map[marketDomain.Chain]*ethclient.Client),
		breakers:   make(map[marketDomain.Chain]*circuitbreaker.CircuitBreaker[[]byte]),
	}, nil
}

// WalletAddress returns the executing wallet.
func (l *Ledger) WalletAddress() common.Address {
	return l.walletAddr
}

// Close releases all dialed RPC clients.
func (l *Ledger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, client := range l.clients {
		client.Close()
	}
	l.clients = make(map[marketDomain.Chain]*ethclient.Client)
}

// client returns the RPC client for chain, dialing on first use.
func (l *Ledger) client(chain marketDomain.Chain) (*ethclient.Client, *circuitbreaker.CircuitBreaker[[]byte], error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if c, ok := l.clients[chain]; ok {
		return c, l.breakers[chain], nil
	}

	url := l.config.RPCURLs[string(chain)]
	if url == "" {
		return nil, nil, apperror.New(apperror.CodeChainUnsupported,
			apperror.WithContext("no RPC endpoint for chain "+string(chain)))
	}

	c, err := ethclient.Dial(url)
	if err != nil {
		return nil, nil, apperror.External(apperror.CodeChainConnectionFailed,
			"dialing "+string(chain), err)
	}

	cb := circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("ledger-" + string(chain)))

	l.clients[chain] = c
	l.breakers[chain] = cb
	return c, cb, nil
}

// token resolves a symbol to its asset on chain.
func (l *Ledger) token(chain marketDomain.Chain, symbol string) (*asset.Asset, error) {
	a, ok := l.registry.GetBySymbolAndChainName(symbol, string(chain))
	if !ok {
		return nil, apperror.NotFound(apperror.CodeNotFound,
			fmt.Sprintf("token %s on chain %s", symbol, chain))
	}
	return a, nil
}

// call runs a read-only contract call through the chain's breaker.
func (l *Ledger) call(ctx context.Context, chain marketDomain.Chain, to common.Address, data []byte) ([]byte, error) {
	client, cb, err := l.client(chain)
	if err != nil {
		return nil, err
	}

	out, err := cb.Execute(func() ([]byte, error) {
		return client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	})
	if err != nil {
		return nil, apperror.External(apperror.CodeChainRPCError,
			fmt.Sprintf("call on %s", chain), err)
	}
	return out, nil
}

// Balance returns the wallet balance of symbol on chain, in token units.
func (l *Ledger) Balance(ctx context.Context, chain marketDomain.Chain, symbol string) (decimal.Decimal, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.balance",
		trace.WithAttributes(
			attribute.String("chain", chain.String()),
			attribute.String("symbol", symbol),
		),
	)
	defer span.End()

	tok, err := l.token(chain, symbol)
	if err != nil {
		return decimal.Zero, err
	}

	data, err := l.erc20ABI.Pack("balanceOf", l.walletAddr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to pack balanceOf: %w", err)
	}

	out, err := l.call(ctx, chain, tok.Address(), data)
	if err != nil {
		span.RecordError(err)
		return decimal.Zero, err
	}

	var raw *big.Int
	if err := l.erc20ABI.UnpackIntoInterface(&raw, "balanceOf", out); err != nil {
		return decimal.Zero, apperror.External(apperror.CodeChainRPCError, "decoding balanceOf", err)
	}

	return asset.NewAmount(tok, raw).ToDecimal(), nil
}

// EnsureAllowance approves the venue router when the current allowance
// is below amount.
func (l *Ledger) EnsureAllowance(ctx context.Context, chain marketDomain.Chain, symbol string, amount decimal.Decimal) error {
	ctx, span := l.tracer.Start(ctx, "ledger.ensure_allowance",
		trace.WithAttributes(
			attribute.String("chain", chain.String()),
			attribute.String("symbol", symbol),
		),
	)
	defer span.End()

	tok, err := l.token(chain, symbol)
	if err != nil {
		return err
	}
	router, ok := routerAddresses[chain]
	if !ok {
		return apperror.New(apperror.CodeChainUnsupported,
			apperror.WithContext("no router for chain "+string(chain)))
	}

	data, err := l.erc20ABI.Pack("allowance", l.walletAddr, router)
	if err != nil {
		return fmt.Errorf("failed to pack allowance: %w", err)
	}
	out, err := l.call(ctx, chain, tok.Address(), data)
	if err != nil {
		span.RecordError(err)
		return err
	}

	var current *big.Int
	if err := l.erc20ABI.UnpackIntoInterface(&current, "allowance", out); err != nil {
		return apperror.External(apperror.CodeChainRPCError, "decoding allowance", err)
	}

	needed, err := amountOf(tok, amount)
	if err != nil {
		return err
	}
	if current.Cmp(needed.Raw()) >= 0 {
		return nil
	}

	l.logger.Info(ctx, "approving router allowance",
		"chain", chain.String(), "symbol", symbol, "amount", amount.String())

	approveData, err := l.erc20ABI.Pack("approve", router, needed.Raw())
	if err != nil {
		return fmt.Errorf("failed to pack approve: %w", err)
	}

	receipt, err := l.sendTx(ctx, chain, tok.Address(), approveData, "approve")
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInsufficientAllowance, "approving router")
	}
	if receipt.Status != domain.ReceiptConfirmed {
		return apperror.New(apperror.CodeInsufficientAllowance,
			apperror.WithContext("approve tx reverted: "+receipt.TxHash))
	}
	return nil
}

// ExecuteSwap submits the swap for order and waits for its receipt.
func (l *Ledger) ExecuteSwap(ctx context.Context, chain marketDomain.Chain, order app.SwapOrder) (domain.Receipt, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.execute_swap",
		trace.WithAttributes(
			attribute.String("chain", chain.String()),
			attribute.String("venue", order.Venue),
			attribute.String("pair", order.Pair.String()),
			attribute.String("side", order.Side),
		),
	)
	defer span.End()

	router, ok := routerAddresses[chain]
	if !ok {
		return domain.Receipt{}, apperror.New(apperror.CodeChainUnsupported,
			apperror.WithContext("no router for chain "+string(chain)))
	}

	base, err := l.token(chain, order.Pair.Base)
	if err != nil {
		return domain.Receipt{}, err
	}
	quote, err := l.token(chain, order.Pair.Quote)
	if err != nil {
		return domain.Receipt{}, err
	}

	// A buy spends the quote token for the base token, a sell the reverse.
	var tokenIn, tokenOut *asset.Asset
	if order.Side == "buy" {
		tokenIn, tokenOut = quote, base
	} else {
		tokenIn, tokenOut = base, quote
	}

	amountIn, amountOutMin, err := swapAmounts(base, quote, order)
	if err != nil {
		return domain.Receipt{}, err
	}
	deadline := big.NewInt(time.Now().Add(swapDeadline).Unix())

	data, err := l.routerABI.Pack("swapExactTokensForTokens",
		amountIn,
		amountOutMin,
		[]common.Address{tokenIn.Address(), tokenOut.Address()},
		l.walletAddr,
		deadline,
	)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("failed to pack swap: %w", err)
	}

	receipt, err := l.sendTx(ctx, chain, router, data, fmt.Sprintf("%s %s on %s", order.Side, order.Pair, order.Venue))
	if err != nil {
		span.RecordError(err)
		return domain.Receipt{}, err
	}
	if receipt.Status != domain.ReceiptConfirmed {
		return receipt, apperror.New(apperror.CodeTransactionFailed,
			apperror.WithContext("swap tx reverted: "+receipt.TxHash))
	}
	return receipt, nil
}

// Bridge deposits amount of symbol into the canonical bridge toward the
// destination chain and waits for the source-side receipt.
func (l *Ledger) Bridge(ctx context.Context, from, to marketDomain.Chain, symbol string, amount decimal.Decimal) (domain.Receipt, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.bridge",
		trace.WithAttributes(
			attribute.String("from", from.String()),
			attribute.String("to", to.String()),
			attribute.String("symbol", symbol),
		),
	)
	defer span.End()

	bridge, ok := bridgeAddresses[from]
	if !ok {
		return domain.Receipt{}, apperror.New(apperror.CodeChainUnsupported,
			apperror.WithContext("no bridge for chain "+string(from)))
	}

	tok, err := l.token(from, symbol)
	if err != nil {
		return domain.Receipt{}, err
	}
	deposit, err := amountOf(tok, amount)
	if err != nil {
		return domain.Receipt{}, err
	}

	data, err := l.bridgeABI.Pack("deposit",
		tok.Address(),
		deposit.Raw(),
		new(big.Int).SetUint64(to.ChainID()),
		l.walletAddr,
	)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("failed to pack bridge deposit: %w", err)
	}

	receipt, err := l.sendTx(ctx, from, bridge, data, fmt.Sprintf("bridge %s to %s", symbol, to))
	if err != nil {
		span.RecordError(err)
		return domain.Receipt{}, err
	}
	if receipt.Status != domain.ReceiptConfirmed {
		return receipt, apperror.New(apperror.CodeTransactionFailed,
			apperror.WithContext("bridge tx reverted: "+receipt.TxHash))
	}
	return receipt, nil
}

// sendTx signs, submits and waits for one transaction.
func (l *Ledger) sendTx(ctx context.Context, chain marketDomain.Chain, to common.Address, data []byte, description string) (domain.Receipt, error) {
	client, _, err := l.client(chain)
	if err != nil {
		return domain.Receipt{}, err
	}

	nonce, err := client.PendingNonceAt(ctx, l.walletAddr)
	if err != nil {
		return domain.Receipt{}, apperror.External(apperror.CodeChainRPCError, "fetching nonce", err)
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return domain.Receipt{}, apperror.External(apperror.CodeGasEstimationFailed, "suggesting gas price", err)
	}

	gasLimit, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From: l.walletAddr,
		To:   &to,
		Data: data,
	})
	if err != nil {
		gasLimit = defaultGas
		l.logger.Debug(ctx, "gas estimation failed, using default",
			"chain", chain.String(), "error", err)
	}

	tx := types.NewTransaction(nonce, to, big.NewInt(0), gasLimit, gasPrice, data)

	signer := types.LatestSignerForChainID(new(big.Int).SetUint64(chain.ChainID()))
	signed, err := types.SignTx(tx, signer, l.key)
	if err != nil {
		return domain.Receipt{}, apperror.Internal(apperror.CodeTransactionFailed, "signing tx", err)
	}

	if err := client.SendTransaction(ctx, signed); err != nil {
		return domain.Receipt{}, apperror.External(apperror.CodeTransactionFailed, "submitting tx", err)
	}

	l.logger.Info(ctx, "transaction submitted",
		"chain", chain.String(),
		"tx", signed.Hash().Hex(),
		"description", description)

	waitCtx, cancel := context.WithTimeout(ctx, receiptWindow)
	defer cancel()

	mined, err := bind.WaitMined(waitCtx, client, signed)
	if err != nil {
		return domain.Receipt{}, apperror.External(apperror.CodeTransactionFailed, "waiting for receipt", err)
	}

	status := domain.ReceiptConfirmed
	if mined.Status != types.ReceiptStatusSuccessful {
		status = domain.ReceiptFailed
	}

	return domain.Receipt{
		Chain:       chain,
		Description: description,
		TxHash:      signed.Hash().Hex(),
		Status:      status,
		GasUsed:     mined.GasUsed,
	}, nil
}

var bpsDenominator = big.NewInt(10000)

// amountOf converts a decimal token quantity into a typed amount,
// discarding precision below what the token can represent.
func amountOf(tok *asset.Asset, quantity decimal.Decimal) (asset.Amount, error) {
	amt, err := asset.ParseDecimal(tok, quantity.Truncate(int32(tok.Decimals())))
	if err != nil {
		return asset.Amount{}, apperror.Validation(apperror.CodeValidationError,
			fmt.Sprintf("%s amount %s: %v", tok.Symbol(), quantity, err))
	}
	return amt, nil
}

// swapAmounts derives the router input and minimum output for order.
// The notional is denominated in the quote token; the base leg comes
// from the limit price, and the minimum output leaves the slippage
// cap's worth of headroom below the expected fill.
func swapAmounts(base, quote *asset.Asset, order app.SwapOrder) (amountIn, amountOutMin *big.Int, err error) {
	if !order.LimitPrice.IsPositive() {
		return nil, nil, apperror.Validation(apperror.CodeValidationError,
			fmt.Sprintf("swap order for %s needs a positive limit price, got %s",
				order.Pair, order.LimitPrice))
	}

	quoteAmt, err := amountOf(quote, order.NotionalUSD)
	if err != nil {
		return nil, nil, err
	}
	price := asset.NewPriceNow(base, quote, order.LimitPrice)
	baseAmt, err := price.Invert().Convert(quoteAmt)
	if err != nil {
		return nil, nil, apperror.Validation(apperror.CodeValidationError,
			fmt.Sprintf("converting %s notional at %s: %v", order.Pair, order.LimitPrice, err))
	}

	if order.Side == "buy" {
		return quoteAmt.Raw(), minimumOut(baseAmt, order.MaxSlippageBps), nil
	}
	return baseAmt.Raw(), minimumOut(quoteAmt, order.MaxSlippageBps), nil
}

// minimumOut discounts the expected output by the slippage cap.
func minimumOut(expected asset.Amount, slippageBps decimal.Decimal) *big.Int {
	bps := slippageBps.Round(0).BigInt()
	if bps.Sign() <= 0 {
		return expected.Raw()
	}
	if bps.Cmp(bpsDenominator) >= 0 {
		return big.NewInt(0)
	}
	kept := new(big.Int).Sub(bpsDenominator, bps)
	floor, err := expected.MulBig(kept).DivBig(bpsDenominator)
	if err != nil {
		return expected.Raw()
	}
	return floor.Raw()
}

// Package ethledger implements the integrity ledger against an Ethereum
// compatible chain. A digest is anchored by sending a zero-value transaction
// carrying the digest bytes as calldata; the transaction hash is the external
// reference and receipt inclusion is confirmation.
package ethledger

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/ManvendraPSdev/NTA-FIX-Backend/interfaces"
)

// Config selects the chain endpoint and the anchoring account.
type Config struct {
	// RPCURL is the JSON-RPC endpoint of the chain node.
	RPCURL string
	// PrivateKeyHex signs anchoring transactions.
	PrivateKeyHex string
	// AnchorAddress receives the zero-value anchoring transactions. Typically
	// the registry contract or a well-known sink address.
	AnchorAddress string
	// GasLimit for the anchoring transaction.
	GasLimit uint64
}

// Client submits digests to the chain and polls for inclusion.
type Client struct {
	eth     *ethclient.Client
	key     *ecdsa.PrivateKey
	from    ethcommon.Address
	to      ethcommon.Address
	chainID *big.Int
	gas     uint64
	log     *slog.Logger
}

// NewClient dials the chain node and prepares the signing account.
func NewClient(ctx context.Context, cfg Config, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}

	eth, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial ledger node %s: %w", cfg.RPCURL, err)
	}

	key, err := crypto.HexToECDSA(cfg.PrivateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid anchoring key: %w", err)
	}

	if !ethcommon.IsHexAddress(cfg.AnchorAddress) {
		return nil, fmt.Errorf("invalid anchor address %q", cfg.AnchorAddress)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query chain id: %w", err)
	}

	gas := cfg.GasLimit
	if gas == 0 {
		gas = 100_000
	}

	return &Client{
		eth:     eth,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		to:      ethcommon.HexToAddress(cfg.AnchorAddress),
		chainID: chainID,
		gas:     gas,
		log:     log,
	}, nil
}

// Submit sends a transaction carrying the digest and returns its hash.
func (c *Client) Submit(ctx context.Context, digest interfaces.Digest) (interfaces.TxRef, error) {
	nonce, err := c.eth.PendingNonceAt(ctx, c.from)
	if err != nil {
		return "", fmt.Errorf("failed to fetch nonce: %w", err)
	}

	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch gas price: %w", err)
	}

	tx, err := types.SignNewTx(c.key, types.LatestSignerForChainID(c.chainID), &types.LegacyTx{
		Nonce:    nonce,
		To:       &c.to,
		Value:    big.NewInt(0),
		Gas:      c.gas,
		GasPrice: gasPrice,
		Data:     digest.Bytes(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign anchoring transaction: %w", err)
	}

	if err := c.eth.SendTransaction(ctx, tx); err != nil {
		return "", fmt.Errorf("failed to send anchoring transaction: %w", err)
	}

	c.log.Debug("Anchoring transaction sent",
		slog.String("tx", tx.Hash().Hex()),
		slog.String("digest", digest.String()))

	return interfaces.TxRef(tx.Hash().Hex()), nil
}

// Poll reports the inclusion status of a previously submitted transaction.
func (c *Client) Poll(ctx context.Context, ref interfaces.TxRef) (interfaces.LedgerStatus, error) {
	hash := ethcommon.HexToHash(ref.String())

	receipt, err := c.eth.TransactionReceipt(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			// Not mined yet; make sure the node still knows the transaction.
			// A dropped transaction reports failed so the caller resubmits.
			_, _, terr := c.eth.TransactionByHash(ctx, hash)
			if terr != nil {
				if errors.Is(terr, ethereum.NotFound) {
					return interfaces.LedgerFailed, nil
				}
				return 0, fmt.Errorf("failed to look up transaction %s: %w", ref, terr)
			}
			return interfaces.LedgerPending, nil
		}
		return 0, fmt.Errorf("failed to fetch receipt for %s: %w", ref, err)
	}

	if receipt.Status == types.ReceiptStatusSuccessful {
		return interfaces.LedgerConfirmed, nil
	}
	return interfaces.LedgerFailed, nil
}

// Name identifies the backend in logs and config.
func (c *Client) Name() string { return "ethereum" }

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}

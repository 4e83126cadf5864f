// Package ethereum provides a read-only chain binding over an Ethereum
// JSON-RPC endpoint. It serves contract-existence and token-metadata
// probes against live chain state; it carries no signing key, so value
// movement is rejected.
package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/sproutfund/protocol-core/internal/adapter"
	"github.com/sproutfund/protocol-core/internal/chain"
)

// ErrNoTransactor is returned by mutating token operations on the
// read-only backend.
var ErrNoTransactor = errors.New("read-only backend: no transactor configured")

const erc20ViewABI = `[
	{"constant":true,"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"payable":false,"stateMutability":"view","type":"function"}
]`

// Backend implements chain.TokenBackend against an Ethereum node.
type Backend struct {
	client adapter.EthClient
	abi    abi.ABI
}

// NewBackend wraps client as a token backend.
func NewBackend(client adapter.EthClient) (*Backend, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ViewABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}
	return &Backend{client: client, abi: parsed}, nil
}

// HasCode reports whether address carries deployed bytecode at the latest
// block.
func (b *Backend) HasCode(ctx context.Context, address common.Address) (bool, error) {
	code, err := b.client.CodeAt(ctx, address, nil)
	if err != nil {
		return false, fmt.Errorf("failed to get code at %s: %w", address.Hex(), err)
	}
	return len(code) > 0, nil
}

// Token returns a read-only ERC20 binding for address.
func (b *Backend) Token(address common.Address) (chain.ERC20, error) {
	return &erc20{backend: b, address: address}, nil
}

// Close releases the underlying client connection.
func (b *Backend) Close() {
	b.client.Close()
}

type erc20 struct {
	backend *Backend
	address common.Address
}

func (t *erc20) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := t.backend.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	result, err := t.backend.client.CallContract(ctx, goethereum.CallMsg{
		To:   &t.address,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s on %s: %w", method, t.address.Hex(), err)
	}

	out, err := t.backend.abi.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	return out, nil
}

func (t *erc20) BalanceOf(ctx context.Context, owner common.Address) (*uint256.Int, error) {
	out, err := t.call(ctx, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	raw, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf result type %T", out[0])
	}
	balance, overflow := uint256.FromBig(raw)
	if overflow {
		return nil, fmt.Errorf("balanceOf result overflows uint256")
	}
	return balance, nil
}

func (t *erc20) Decimals(ctx context.Context) (uint8, error) {
	out, err := t.call(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	decimals, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected decimals result type %T", out[0])
	}
	return decimals, nil
}

func (t *erc20) Transfer(ctx context.Context, from, to common.Address, amount *uint256.Int) error {
	return ErrNoTransactor
}

func (t *erc20) TransferFrom(ctx context.Context, spender, from, to common.Address, amount *uint256.Int) error {
	return ErrNoTransactor
}

func (t *erc20) Approve(ctx context.Context, owner, spender common.Address, amount *uint256.Int) error {
	return ErrNoTransactor
}

package memory_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"

	"github.com/sproutfund/protocol-core/internal/domain"
	"github.com/sproutfund/protocol-core/internal/providers/memory"
)

var (
	tokenAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")
	alice     = common.HexToAddress("0x2222222222222222222222222222222222222222")
	bob       = common.HexToAddress("0x3333333333333333333333333333333333333333")
	spender   = common.HexToAddress("0x4444444444444444444444444444444444444444")
	poolAddr  = common.HexToAddress("0x5555555555555555555555555555555555555555")
	vaultAddr = common.HexToAddress("0x6666666666666666666666666666666666666666")
)

func balance(t *testing.T, tok *memory.Token, addr common.Address) *uint256.Int {
	bal, err := tok.BalanceOf(context.Background(), addr)
	assert.NoError(t, err)
	return bal
}

func TestBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateToken is idempotent", func(t *testing.T) {
		backend := memory.NewBackend()
		first := backend.CreateToken(tokenAddr, 6)
		first.Mint(alice, uint256.NewInt(10))

		second := backend.CreateToken(tokenAddr, 18)
		assert.Same(t, first, second)
		assert.Equal(t, uint256.NewInt(10), balance(t, second, alice))
	})

	t.Run("HasCode tracks registered ledgers", func(t *testing.T) {
		backend := memory.NewBackend()
		backend.CreateToken(tokenAddr, 6)

		ok, err := backend.HasCode(ctx, tokenAddr)
		assert.NoError(t, err)
		assert.True(t, ok)

		ok, err = backend.HasCode(ctx, alice)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown token address rejected", func(t *testing.T) {
		backend := memory.NewBackend()
		_, err := backend.Token(tokenAddr)
		assert.True(t, domain.IsCode(err, domain.ErrCodeNotAContract))
	})
}

func TestTokenTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("moves balance between accounts", func(t *testing.T) {
		tok := memory.NewBackend().CreateToken(tokenAddr, 6)
		tok.Mint(alice, uint256.NewInt(100))

		assert.NoError(t, tok.Transfer(ctx, alice, bob, uint256.NewInt(40)))
		assert.Equal(t, uint256.NewInt(60), balance(t, tok, alice))
		assert.Equal(t, uint256.NewInt(40), balance(t, tok, bob))
	})

	t.Run("insufficient balance rejected", func(t *testing.T) {
		tok := memory.NewBackend().CreateToken(tokenAddr, 6)
		tok.Mint(alice, uint256.NewInt(10))

		err := tok.Transfer(ctx, alice, bob, uint256.NewInt(11))
		assert.True(t, domain.IsCode(err, domain.ErrCodeTokenTransferFailed))
		assert.Equal(t, uint256.NewInt(10), balance(t, tok, alice))
	})

	t.Run("burn clamps at zero", func(t *testing.T) {
		tok := memory.NewBackend().CreateToken(tokenAddr, 6)
		tok.Mint(alice, uint256.NewInt(10))
		tok.Burn(alice, uint256.NewInt(100))
		assert.True(t, balance(t, tok, alice).IsZero())
	})

	t.Run("decimals", func(t *testing.T) {
		tok := memory.NewBackend().CreateToken(tokenAddr, 6)
		decimals, err := tok.Decimals(ctx)
		assert.NoError(t, err)
		assert.Equal(t, uint8(6), decimals)
	})
}

func TestTokenAllowance(t *testing.T) {
	ctx := context.Background()

	t.Run("spender draws down the approved amount", func(t *testing.T) {
		tok := memory.NewBackend().CreateToken(tokenAddr, 6)
		tok.Mint(alice, uint256.NewInt(100))
		assert.NoError(t, tok.Approve(ctx, alice, spender, uint256.NewInt(50)))

		assert.NoError(t, tok.TransferFrom(ctx, spender, alice, bob, uint256.NewInt(30)))
		assert.NoError(t, tok.TransferFrom(ctx, spender, alice, bob, uint256.NewInt(20)))

		// Allowance exhausted.
		err := tok.TransferFrom(ctx, spender, alice, bob, uint256.NewInt(1))
		assert.True(t, domain.IsCode(err, domain.ErrCodeTokenTransferFailed))
		assert.Equal(t, uint256.NewInt(50), balance(t, tok, bob))
	})

	t.Run("no allowance rejected", func(t *testing.T) {
		tok := memory.NewBackend().CreateToken(tokenAddr, 6)
		tok.Mint(alice, uint256.NewInt(100))

		err := tok.TransferFrom(ctx, spender, alice, bob, uint256.NewInt(1))
		assert.True(t, domain.IsCode(err, domain.ErrCodeTokenTransferFailed))
	})

	t.Run("owner spends own balance without allowance", func(t *testing.T) {
		tok := memory.NewBackend().CreateToken(tokenAddr, 6)
		tok.Mint(alice, uint256.NewInt(100))

		assert.NoError(t, tok.TransferFrom(ctx, alice, alice, bob, uint256.NewInt(100)))
		assert.Equal(t, uint256.NewInt(100), balance(t, tok, bob))
	})

	t.Run("max allowance is infinite", func(t *testing.T) {
		tok := memory.NewBackend().CreateToken(tokenAddr, 6)
		tok.Mint(alice, uint256.NewInt(100))
		maxAllowance := new(uint256.Int).Not(new(uint256.Int))
		assert.NoError(t, tok.Approve(ctx, alice, spender, maxAllowance))

		assert.NoError(t, tok.TransferFrom(ctx, spender, alice, bob, uint256.NewInt(60)))
		assert.NoError(t, tok.TransferFrom(ctx, spender, alice, bob, uint256.NewInt(40)))
		assert.Equal(t, uint256.NewInt(100), balance(t, tok, bob))
	})
}

func TestLendingPool(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*memory.Backend, *memory.Token, *memory.LendingPool, common.Address) {
		backend := memory.NewBackend()
		tok := backend.CreateToken(tokenAddr, 6)
		pool := memory.NewLendingPool(backend, poolAddr)
		pool.BindSupplier(vaultAddr)
		receiptAddr, err := pool.CreateReserve(ctx, tokenAddr)
		assert.NoError(t, err)
		return backend, tok, pool, receiptAddr
	}

	t.Run("CreateReserve derives a receipt mirroring the asset decimals", func(t *testing.T) {
		backend, _, pool, receiptAddr := setup(t)

		assert.NotEqual(t, common.Address{}, receiptAddr)
		receipt, err := backend.Token(receiptAddr)
		assert.NoError(t, err)
		decimals, err := receipt.Decimals(ctx)
		assert.NoError(t, err)
		assert.Equal(t, uint8(6), decimals)

		// Idempotent for the same asset.
		again, err := pool.CreateReserve(ctx, tokenAddr)
		assert.NoError(t, err)
		assert.Equal(t, receiptAddr, again)
	})

	t.Run("CreateReserve for an unknown asset rejected", func(t *testing.T) {
		backend := memory.NewBackend()
		pool := memory.NewLendingPool(backend, poolAddr)
		_, err := pool.CreateReserve(ctx, tokenAddr)
		assert.True(t, domain.IsCode(err, domain.ErrCodeNotAContract))
	})

	t.Run("Supply moves liquidity and mints receipts to the beneficiary", func(t *testing.T) {
		backend, tok, pool, receiptAddr := setup(t)
		tok.Mint(vaultAddr, uint256.NewInt(500))

		assert.NoError(t, pool.Supply(ctx, tokenAddr, uint256.NewInt(500), alice, 0))

		assert.True(t, balance(t, tok, vaultAddr).IsZero())
		assert.Equal(t, uint256.NewInt(500), balance(t, tok, poolAddr))
		receipt, err := backend.Token(receiptAddr)
		assert.NoError(t, err)
		got, err := receipt.BalanceOf(ctx, alice)
		assert.NoError(t, err)
		assert.Equal(t, uint256.NewInt(500), got)
	})

	t.Run("Supply without reserve rejected", func(t *testing.T) {
		backend := memory.NewBackend()
		backend.CreateToken(tokenAddr, 6)
		pool := memory.NewLendingPool(backend, poolAddr)

		err := pool.Supply(ctx, tokenAddr, uint256.NewInt(1), alice, 0)
		assert.True(t, domain.IsCode(err, domain.ErrCodePoolOperationFailed))
	})

	t.Run("Supply beyond the supplier balance rejected", func(t *testing.T) {
		_, tok, pool, _ := setup(t)
		tok.Mint(vaultAddr, uint256.NewInt(10))

		err := pool.Supply(ctx, tokenAddr, uint256.NewInt(11), alice, 0)
		assert.True(t, domain.IsCode(err, domain.ErrCodePoolOperationFailed))
	})

	t.Run("Withdraw burns supplier receipts and releases liquidity", func(t *testing.T) {
		backend, tok, pool, receiptAddr := setup(t)
		tok.Mint(vaultAddr, uint256.NewInt(500))
		assert.NoError(t, pool.Supply(ctx, tokenAddr, uint256.NewInt(500), vaultAddr, 0))

		withdrawn, err := pool.Withdraw(ctx, tokenAddr, uint256.NewInt(200), bob)
		assert.NoError(t, err)
		assert.Equal(t, uint256.NewInt(200), withdrawn)
		assert.Equal(t, uint256.NewInt(200), balance(t, tok, bob))
		assert.Equal(t, uint256.NewInt(300), balance(t, tok, poolAddr))

		receipt, err := backend.Token(receiptAddr)
		assert.NoError(t, err)
		held, err := receipt.BalanceOf(ctx, vaultAddr)
		assert.NoError(t, err)
		assert.Equal(t, uint256.NewInt(300), held)
	})

	t.Run("Withdraw beyond the supplier receipts rejected", func(t *testing.T) {
		_, tok, pool, _ := setup(t)
		tok.Mint(vaultAddr, uint256.NewInt(100))
		assert.NoError(t, pool.Supply(ctx, tokenAddr, uint256.NewInt(100), vaultAddr, 0))

		_, err := pool.Withdraw(ctx, tokenAddr, uint256.NewInt(101), bob)
		assert.True(t, domain.IsCode(err, domain.ErrCodePoolOperationFailed))
		assert.True(t, balance(t, tok, bob).IsZero())
	})

	t.Run("AccrueYield mints backed receipts", func(t *testing.T) {
		backend, tok, pool, receiptAddr := setup(t)
		tok.Mint(vaultAddr, uint256.NewInt(100))
		assert.NoError(t, pool.Supply(ctx, tokenAddr, uint256.NewInt(100), vaultAddr, 0))

		assert.NoError(t, pool.AccrueYield(ctx, tokenAddr, vaultAddr, uint256.NewInt(7)))

		receipt, err := backend.Token(receiptAddr)
		assert.NoError(t, err)
		held, err := receipt.BalanceOf(ctx, vaultAddr)
		assert.NoError(t, err)
		assert.Equal(t, uint256.NewInt(107), held)
		assert.Equal(t, uint256.NewInt(107), balance(t, tok, poolAddr))

		// The accrued receipts are fully redeemable.
		withdrawn, err := pool.Withdraw(ctx, tokenAddr, uint256.NewInt(107), bob)
		assert.NoError(t, err)
		assert.Equal(t, uint256.NewInt(107), withdrawn)
	})

	t.Run("GetReserveData", func(t *testing.T) {
		_, _, pool, receiptAddr := setup(t)

		data, err := pool.GetReserveData(ctx, tokenAddr)
		assert.NoError(t, err)
		assert.Equal(t, receiptAddr, data.ReceiptTokenAddress)

		_, err = pool.GetReserveData(ctx, alice)
		assert.True(t, domain.IsCode(err, domain.ErrCodePoolOperationFailed))
	})
}

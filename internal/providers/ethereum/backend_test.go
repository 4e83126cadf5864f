package ethereum_test

import (
	"context"
	"math/big"
	"testing"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/mock/gomock"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"

	"github.com/sproutfund/protocol-core/internal/mocks"
	"github.com/sproutfund/protocol-core/internal/providers/ethereum"
)

var (
	tokenAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")
	holder    = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

// word ABI-encodes v as a single 32-byte return word.
func word(v uint64) []byte {
	return common.LeftPadBytes(new(big.Int).SetUint64(v).Bytes(), 32)
}

func setupTestBackend(t *testing.T) (*mocks.MockEthClient, *ethereum.Backend) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockEthClient(ctrl)
	backend, err := ethereum.NewBackend(client)
	assert.NoError(t, err)
	return client, backend
}

func TestHasCode(t *testing.T) {
	ctx := context.Background()

	t.Run("deployed contract", func(t *testing.T) {
		client, backend := setupTestBackend(t)
		client.EXPECT().CodeAt(gomock.Any(), tokenAddr, gomock.Nil()).Return([]byte{0x60, 0x80}, nil)

		ok, err := backend.HasCode(ctx, tokenAddr)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("externally owned account", func(t *testing.T) {
		client, backend := setupTestBackend(t)
		client.EXPECT().CodeAt(gomock.Any(), holder, gomock.Nil()).Return([]byte{}, nil)

		ok, err := backend.HasCode(ctx, holder)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("rpc failure", func(t *testing.T) {
		client, backend := setupTestBackend(t)
		client.EXPECT().CodeAt(gomock.Any(), tokenAddr, gomock.Nil()).Return(nil, assert.AnError)

		_, err := backend.HasCode(ctx, tokenAddr)
		assert.ErrorContains(t, err, "failed to get code at")
	})
}

func TestERC20Views(t *testing.T) {
	ctx := context.Background()

	t.Run("decimals", func(t *testing.T) {
		client, backend := setupTestBackend(t)
		client.EXPECT().
			CallContract(gomock.Any(), gomock.Any(), gomock.Nil()).
			DoAndReturn(func(_ context.Context, msg goethereum.CallMsg, _ *big.Int) ([]byte, error) {
				assert.Equal(t, tokenAddr, *msg.To)
				return word(6), nil
			})

		tok, err := backend.Token(tokenAddr)
		assert.NoError(t, err)
		decimals, err := tok.Decimals(ctx)
		assert.NoError(t, err)
		assert.Equal(t, uint8(6), decimals)
	})

	t.Run("balanceOf", func(t *testing.T) {
		client, backend := setupTestBackend(t)
		client.EXPECT().
			CallContract(gomock.Any(), gomock.Any(), gomock.Nil()).
			Return(word(25_000_000), nil)

		tok, err := backend.Token(tokenAddr)
		assert.NoError(t, err)
		bal, err := tok.BalanceOf(ctx, holder)
		assert.NoError(t, err)
		assert.Equal(t, uint256.NewInt(25_000_000), bal)
	})

	t.Run("call failure", func(t *testing.T) {
		client, backend := setupTestBackend(t)
		client.EXPECT().
			CallContract(gomock.Any(), gomock.Any(), gomock.Nil()).
			Return(nil, assert.AnError)

		tok, err := backend.Token(tokenAddr)
		assert.NoError(t, err)
		_, err = tok.BalanceOf(ctx, holder)
		assert.ErrorContains(t, err, "failed to call balanceOf")
	})

	t.Run("malformed return data", func(t *testing.T) {
		client, backend := setupTestBackend(t)
		client.EXPECT().
			CallContract(gomock.Any(), gomock.Any(), gomock.Nil()).
			Return([]byte{0x01}, nil)

		tok, err := backend.Token(tokenAddr)
		assert.NoError(t, err)
		_, err = tok.BalanceOf(ctx, holder)
		assert.ErrorContains(t, err, "failed to unpack balanceOf result")
	})
}

func TestMutatingOpsRejected(t *testing.T) {
	ctx := context.Background()
	_, backend := setupTestBackend(t)

	tok, err := backend.Token(tokenAddr)
	assert.NoError(t, err)

	one := uint256.NewInt(1)
	assert.ErrorIs(t, tok.Transfer(ctx, holder, tokenAddr, one), ethereum.ErrNoTransactor)
	assert.ErrorIs(t, tok.TransferFrom(ctx, holder, holder, tokenAddr, one), ethereum.ErrNoTransactor)
	assert.ErrorIs(t, tok.Approve(ctx, holder, tokenAddr, one), ethereum.ErrNoTransactor)
}

func TestClose(t *testing.T) {
	client, backend := setupTestBackend(t)
	client.EXPECT().Close()
	backend.Close()
}

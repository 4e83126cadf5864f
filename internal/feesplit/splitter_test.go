package feesplit_test

import (
	"context"
	"os"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/mock/gomock"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"

	"github.com/sproutfund/protocol-core/internal/authority"
	"github.com/sproutfund/protocol-core/internal/domain"
	"github.com/sproutfund/protocol-core/internal/feesplit"
	"github.com/sproutfund/protocol-core/internal/logger"
	"github.com/sproutfund/protocol-core/internal/mocks"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

var (
	admin     = common.HexToAddress("0x1111111111111111111111111111111111111111")
	outsider  = common.HexToAddress("0x2222222222222222222222222222222222222222")
	treasury  = common.HexToAddress("0x3333333333333333333333333333333333333333")
	treasury2 = common.HexToAddress("0x4444444444444444444444444444444444444444")
)

func newSplitter(t *testing.T, shareBps uint64) *feesplit.Splitter {
	ctrl := gomock.NewController(t)
	clock := mocks.NewMockClock(ctrl)

	auth, err := authority.New(admin, 30, clock, nil)
	assert.NoError(t, err)

	splitter, err := feesplit.New(auth, shareBps, treasury, clock, nil)
	assert.NoError(t, err)
	return splitter
}

func TestNew(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := mocks.NewMockClock(ctrl)
	auth, err := authority.New(admin, 30, clock, nil)
	assert.NoError(t, err)

	tests := []struct {
		name         string
		shareBps     uint64
		treasury     common.Address
		expectedCode domain.ErrorCode
	}{
		{name: "valid", shareBps: 100, treasury: treasury},
		{name: "zero share valid", shareBps: 0, treasury: treasury},
		{name: "cap is inclusive", shareBps: 500, treasury: treasury},
		{name: "zero treasury rejected", shareBps: 100, treasury: common.Address{}, expectedCode: domain.ErrCodeInvalidAddress},
		{name: "above cap rejected", shareBps: 501, treasury: treasury, expectedCode: domain.ErrCodeExceedsMaximum},
		{name: "beyond reserved width rejected", shareBps: 70_000, treasury: treasury, expectedCode: domain.ErrCodeInvalidShare},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splitter, err := feesplit.New(auth, tt.shareBps, tt.treasury, clock, nil)
			if tt.expectedCode != 0 {
				assert.True(t, domain.IsCode(err, tt.expectedCode))
				assert.Nil(t, splitter)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, uint16(tt.shareBps), splitter.FeeShareBps())
			assert.Equal(t, tt.treasury, splitter.Treasury())
		})
	}
}

func TestCalculateShares(t *testing.T) {
	tests := []struct {
		name            string
		shareBps        uint64
		total           *uint256.Int
		expectedPrimary *uint256.Int
		expectedFee     *uint256.Int
	}{
		{
			name:            "one percent of 500 USDC",
			shareBps:        100,
			total:           uint256.NewInt(500_000_000),
			expectedPrimary: uint256.NewInt(495_000_000),
			expectedFee:     uint256.NewInt(5_000_000),
		},
		{
			name:            "zero share sends everything to primary",
			shareBps:        0,
			total:           uint256.NewInt(500_000_000),
			expectedPrimary: uint256.NewInt(500_000_000),
			expectedFee:     uint256.NewInt(0),
		},
		{
			name:            "rounding dust stays with primary",
			shareBps:        100,
			total:           uint256.NewInt(99),
			expectedPrimary: uint256.NewInt(99),
			expectedFee:     uint256.NewInt(0),
		},
		{
			name:            "maximum share",
			shareBps:        500,
			total:           uint256.NewInt(1_000_000),
			expectedPrimary: uint256.NewInt(950_000),
			expectedFee:     uint256.NewInt(50_000),
		},
		{
			name:            "zero total",
			shareBps:        100,
			total:           uint256.NewInt(0),
			expectedPrimary: uint256.NewInt(0),
			expectedFee:     uint256.NewInt(0),
		},
		{
			name:            "nil total treated as zero",
			shareBps:        100,
			total:           nil,
			expectedPrimary: uint256.NewInt(0),
			expectedFee:     uint256.NewInt(0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splitter := newSplitter(t, tt.shareBps)

			primary, fee, err := splitter.CalculateShares(tt.total)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedPrimary, primary)
			assert.Equal(t, tt.expectedFee, fee)

			// Conservation: the two shares always recompose the total.
			if tt.total != nil {
				assert.Equal(t, tt.total, new(uint256.Int).Add(primary, fee))
			}
		})
	}
}

func TestCalculateShares_Overflow(t *testing.T) {
	splitter := newSplitter(t, 100)

	nearMax := new(uint256.Int).Not(new(uint256.Int))
	_, _, err := splitter.CalculateShares(nearMax)
	assert.True(t, domain.IsCode(err, domain.ErrCodeOverflow))
}

func TestUpdateFeeShare(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		caller       common.Address
		newShareBps  uint64
		expectedCode domain.ErrorCode
	}{
		{name: "admin updates", caller: admin, newShareBps: 250},
		{name: "zero allowed", caller: admin, newShareBps: 0},
		{name: "non-admin rejected", caller: outsider, newShareBps: 250, expectedCode: domain.ErrCodeNotAuthorizedAdmin},
		{name: "above cap rejected", caller: admin, newShareBps: 501, expectedCode: domain.ErrCodeExceedsMaximum},
		{name: "beyond reserved width rejected", caller: admin, newShareBps: 70_000, expectedCode: domain.ErrCodeInvalidShare},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splitter := newSplitter(t, 100)

			err := splitter.UpdateFeeShare(ctx, tt.caller, tt.newShareBps)
			if tt.expectedCode != 0 {
				assert.True(t, domain.IsCode(err, tt.expectedCode))
				assert.Equal(t, uint16(100), splitter.FeeShareBps())
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, uint16(tt.newShareBps), splitter.FeeShareBps())
		})
	}
}

func TestUpdateTreasury(t *testing.T) {
	ctx := context.Background()

	t.Run("admin updates", func(t *testing.T) {
		splitter := newSplitter(t, 100)
		assert.NoError(t, splitter.UpdateTreasury(ctx, admin, treasury2))
		assert.Equal(t, treasury2, splitter.Treasury())
	})

	t.Run("zero address rejected", func(t *testing.T) {
		splitter := newSplitter(t, 100)
		err := splitter.UpdateTreasury(ctx, admin, common.Address{})
		assert.True(t, domain.IsCode(err, domain.ErrCodeInvalidAddress))
	})

	t.Run("non-admin rejected", func(t *testing.T) {
		splitter := newSplitter(t, 100)
		err := splitter.UpdateTreasury(ctx, outsider, treasury2)
		assert.True(t, domain.IsCode(err, domain.ErrCodeNotAuthorizedAdmin))
		assert.Equal(t, treasury, splitter.Treasury())
	})
}

package domain

import (
	"encoding/binary"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// CampaignStatus represents the derived lifecycle state of a campaign.
// Statuses are never stored; they are computed from the campaign's ledger
// and the current logical time.
type CampaignStatus string

const (
	// StatusActive means the funding window is open and the goal has not been reached
	StatusActive CampaignStatus = "active"
	// StatusGoalReached means the goal was met; the funding window is closed regardless of remaining time
	StatusGoalReached CampaignStatus = "goal_reached"
	// StatusEndedUnsuccessful means the funding window elapsed without reaching the goal
	StatusEndedUnsuccessful CampaignStatus = "ended_unsuccessful"
	// StatusClaimed means the creator has withdrawn the funds of a successful campaign
	StatusClaimed CampaignStatus = "claimed"
)

// Campaign duration bounds, in days.
const (
	MinCampaignDurationDays = 1
	MaxCampaignDurationDays = 365
)

// BasisPointsDenominator is the fee share denominator (10000 = 100%).
const BasisPointsDenominator = 10000

// MaxFeeShareBps is the hard cap on the platform fee share (5%).
const MaxFeeShareBps = 500

// ZeroAddress is the all-zero address used to detect unset address inputs.
var ZeroAddress = common.Address{}

// CampaignID is the deterministic content-derived identifier of a campaign,
// distinct from the campaign's address.
type CampaignID = common.Hash

// NewCampaignID derives a campaign identifier from the campaign's creation
// parameters and deployment time. Two campaigns by the same creator with
// identical parameters deployed at different times get distinct ids.
func NewCampaignID(creator, token common.Address, goal *uint256.Int, durationDays uint64, startTime time.Time) CampaignID {
	buf := make([]byte, 0, 2*common.AddressLength+32+8+8)
	buf = append(buf, creator.Bytes()...)
	buf = append(buf, token.Bytes()...)
	goalBytes := goal.Bytes32()
	buf = append(buf, goalBytes[:]...)
	buf = binary.BigEndian.AppendUint64(buf, durationDays)
	buf = binary.BigEndian.AppendUint64(buf, uint64(startTime.Unix()))
	return crypto.Keccak256Hash(buf)
}

// AmountString renders an amount as its decimal smallest-unit string for
// event payloads and journal rows. Nil renders as "0".
func AmountString(amount *uint256.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.Dec()
}

// IsZeroAmount reports whether an amount is absent or zero.
func IsZeroAmount(amount *uint256.Int) bool {
	return amount == nil || amount.IsZero()
}

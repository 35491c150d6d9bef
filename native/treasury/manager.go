package treasury

import (
	"errors"

	"github.com/holiman/uint256"

	"gigchain/core/events"
	"gigchain/crypto"
)

var (
	ErrInvalidRewardSplit  = errors.New("treasury: invalid reward split")
	ErrNoVerifiersAssigned = errors.New("treasury: no verifiers assigned to claim")
)

// distributorTreasury is the narrow view of Treasury the reward split
// depends on for moving funds.
type distributorTreasury interface {
	Transfer(recipient crypto.Address, amount *uint256.Int) error
}

// Manager implements the treasury_manager.distribute reward split: a
// developer fee off the top, then a miner/verifier split of the remainder.
// All arithmetic uses overflow-checked uint256 operations — grounded on the
// same saturating-arithmetic discipline the teacher's lending engine uses
// for fee and interest accrual.
type Manager struct {
	treasury                distributorTreasury
	emitter                 events.Emitter
	feeSplitTreasuryPercent uint64
	minerRewardPercent      uint64
	verifierRewardPercent   uint64
	devAccount              crypto.Address
}

// NewManager constructs a treasury manager. feeSplitTreasury is the
// treasury's percentage share of the total reward (the complement, paid to
// devAccount, is 100-feeSplitTreasury); minerRewardPercent and
// verifierRewardPercent must sum to 100 and split the remainder after the
// developer fee.
func NewManager(treasury distributorTreasury, devAccount crypto.Address, feeSplitTreasury, minerRewardPercent, verifierRewardPercent uint64) (*Manager, error) {
	if minerRewardPercent+verifierRewardPercent != 100 {
		return nil, errors.New("treasury: MinerRewardPercentage + VerifierRewardPercentage must equal 100")
	}
	return &Manager{
		treasury:                treasury,
		emitter:                 events.NoopEmitter{},
		feeSplitTreasuryPercent: feeSplitTreasury,
		minerRewardPercent:      minerRewardPercent,
		verifierRewardPercent:   verifierRewardPercent,
		devAccount:              devAccount,
	}, nil
}

// SetEmitter configures the event emitter used by the manager.
func (m *Manager) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		m.emitter = events.NoopEmitter{}
		return
	}
	m.emitter = emitter
}

func (m *Manager) emit(event events.Event) {
	if m == nil || m.emitter == nil {
		return
	}
	m.emitter.Emit(event)
}

func percentOf(amount *uint256.Int, percent uint64) (*uint256.Int, error) {
	product, overflow := new(uint256.Int).MulOverflow(amount, uint256.NewInt(percent))
	if overflow {
		return nil, ErrInvalidRewardSplit
	}
	return new(uint256.Int).Div(product, uint256.NewInt(100)), nil
}

// Distribute implements treasury_manager.distribute (root-only). It computes
// the developer fee, transfers it, splits the remainder between the miner
// and the verifier committee, and fails atomically: any inner transfer
// failure leaves the caller to discard the whole extrinsic's state
// mutations (see core/chain's snapshot-on-error discipline), so no partial
// payout is ever observable.
func (m *Manager) Distribute(miner crypto.Address, committee []crypto.Address, totalReward *uint256.Int) error {
	if totalReward == nil || totalReward.IsZero() {
		return ErrInvalidRewardSplit
	}
	if len(committee) == 0 {
		return ErrNoVerifiersAssigned
	}

	devFeePercent := 100 - m.feeSplitTreasuryPercent
	devFee, err := percentOf(totalReward, devFeePercent)
	if err != nil {
		return err
	}

	remaining, underflow := new(uint256.Int).SubOverflow(totalReward, devFee)
	if underflow {
		return ErrInvalidRewardSplit
	}

	if err := m.treasury.Transfer(m.devAccount, devFee); err != nil {
		return err
	}

	minerReward, err := percentOf(remaining, m.minerRewardPercent)
	if err != nil {
		return err
	}

	verifierPool, underflow := new(uint256.Int).SubOverflow(remaining, minerReward)
	if underflow {
		return ErrInvalidRewardSplit
	}

	committeeSize := uint256.NewInt(uint64(len(committee)))
	per := new(uint256.Int).Div(verifierPool, committeeSize)
	rem := new(uint256.Int).Mod(verifierPool, committeeSize)

	if err := m.treasury.Transfer(miner, minerReward); err != nil {
		return err
	}

	for i, verifier := range committee {
		share := per
		if i == 0 {
			sum, overflow := new(uint256.Int).AddOverflow(per, rem)
			if overflow {
				return ErrInvalidRewardSplit
			}
			share = sum
		}
		if err := m.treasury.Transfer(verifier, share); err != nil {
			return err
		}
	}

	m.emit(events.RewardsDistributed{Miner: miner, Committee: committee, MinerReward: minerReward, VerifierReward: per})
	m.emit(events.FeesAllocated{RewardAmount: totalReward, TreasuryAmount: remaining, DeveloperAmount: devFee})
	return nil
}

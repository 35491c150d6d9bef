package events

import (
	"encoding/hex"
	"strconv"

	"github.com/holiman/uint256"

	"gigchain/core/types"
	"gigchain/crypto"
)

const (
	TypeUrlAdded             = "whitelist.url_added"
	TypeUrlRemoved           = "whitelist.url_removed"
	TypeMinerRegistered      = "miner.registered"
	TypeVerifierRegistered   = "verifier.registered"
	TypeVerifierDeregistered = "verifier.deregistered"
	TypeSubmissionReceived   = "submission.received"
	TypeSubmissionAssigned   = "submission.assigned"
	TypeValidationCompleted  = "aggregator.validation_completed"
	TypeSubmissionValidated  = "aggregator.submission_validated"
	TypeSubmissionExpired    = "aggregator.submission_expired"
	TypeFundsDeposited       = "treasury.funds_deposited"
	TypeFundsTransferred     = "treasury.funds_transferred"
	TypeRewardsDistributed   = "treasury_manager.rewards_distributed"
	TypeFeesAllocated        = "treasury_manager.fees_allocated"
)

func hexHash(h types.Hash) string { return hex.EncodeToString(h[:]) }

func amount(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}

type UrlAdded struct{ URL []byte }

func (UrlAdded) EventType() string { return TypeUrlAdded }
func (e UrlAdded) Event() *types.Event {
	return &types.Event{Type: TypeUrlAdded, Attributes: map[string]string{"url": string(e.URL)}}
}

type UrlRemoved struct{ URL []byte }

func (UrlRemoved) EventType() string { return TypeUrlRemoved }
func (e UrlRemoved) Event() *types.Event {
	return &types.Event{Type: TypeUrlRemoved, Attributes: map[string]string{"url": string(e.URL)}}
}

type MinerRegistered struct {
	Miner   crypto.Address
	Deposit *uint256.Int
}

func (MinerRegistered) EventType() string { return TypeMinerRegistered }
func (e MinerRegistered) Event() *types.Event {
	return &types.Event{Type: TypeMinerRegistered, Attributes: map[string]string{
		"miner":   e.Miner.String(),
		"deposit": amount(e.Deposit),
	}}
}

type VerifierRegistered struct {
	Verifier crypto.Address
	Deposit  *uint256.Int
}

func (VerifierRegistered) EventType() string { return TypeVerifierRegistered }
func (e VerifierRegistered) Event() *types.Event {
	return &types.Event{Type: TypeVerifierRegistered, Attributes: map[string]string{
		"verifier": e.Verifier.String(),
		"deposit":  amount(e.Deposit),
	}}
}

type VerifierDeregistered struct{ Verifier crypto.Address }

func (VerifierDeregistered) EventType() string { return TypeVerifierDeregistered }
func (e VerifierDeregistered) Event() *types.Event {
	return &types.Event{Type: TypeVerifierDeregistered, Attributes: map[string]string{
		"verifier": e.Verifier.String(),
	}}
}

type SubmissionReceived struct {
	Miner crypto.Address
	Hash  types.Hash
	URL   []byte
}

func (SubmissionReceived) EventType() string { return TypeSubmissionReceived }
func (e SubmissionReceived) Event() *types.Event {
	return &types.Event{Type: TypeSubmissionReceived, Attributes: map[string]string{
		"miner": e.Miner.String(),
		"hash":  hexHash(e.Hash),
		"url":   string(e.URL),
	}}
}

type SubmissionAssigned struct {
	Hash     types.Hash
	Verifier crypto.Address
}

func (SubmissionAssigned) EventType() string { return TypeSubmissionAssigned }
func (e SubmissionAssigned) Event() *types.Event {
	return &types.Event{Type: TypeSubmissionAssigned, Attributes: map[string]string{
		"hash":     hexHash(e.Hash),
		"verifier": e.Verifier.String(),
	}}
}

type ValidationCompleted struct {
	Verifier crypto.Address
	Hash     types.Hash
	IsValid  bool
}

func (ValidationCompleted) EventType() string { return TypeValidationCompleted }
func (e ValidationCompleted) Event() *types.Event {
	return &types.Event{Type: TypeValidationCompleted, Attributes: map[string]string{
		"verifier": e.Verifier.String(),
		"hash":     hexHash(e.Hash),
		"isValid":  strconv.FormatBool(e.IsValid),
	}}
}

type SubmissionValidated struct {
	Miner crypto.Address
	Hash  types.Hash
	Valid bool
}

func (SubmissionValidated) EventType() string { return TypeSubmissionValidated }
func (e SubmissionValidated) Event() *types.Event {
	return &types.Event{Type: TypeSubmissionValidated, Attributes: map[string]string{
		"miner": e.Miner.String(),
		"hash":  hexHash(e.Hash),
		"valid": strconv.FormatBool(e.Valid),
	}}
}

type SubmissionExpired struct{ Hash types.Hash }

func (SubmissionExpired) EventType() string { return TypeSubmissionExpired }
func (e SubmissionExpired) Event() *types.Event {
	return &types.Event{Type: TypeSubmissionExpired, Attributes: map[string]string{"hash": hexHash(e.Hash)}}
}

type FundsDeposited struct {
	From   crypto.Address
	Amount *uint256.Int
}

func (FundsDeposited) EventType() string { return TypeFundsDeposited }
func (e FundsDeposited) Event() *types.Event {
	return &types.Event{Type: TypeFundsDeposited, Attributes: map[string]string{
		"from":   e.From.String(),
		"amount": amount(e.Amount),
	}}
}

type FundsTransferred struct {
	Recipient crypto.Address
	Amount    *uint256.Int
}

func (FundsTransferred) EventType() string { return TypeFundsTransferred }
func (e FundsTransferred) Event() *types.Event {
	return &types.Event{Type: TypeFundsTransferred, Attributes: map[string]string{
		"recipient": e.Recipient.String(),
		"amount":    amount(e.Amount),
	}}
}

type RewardsDistributed struct {
	Miner          crypto.Address
	Committee      []crypto.Address
	MinerReward    *uint256.Int
	VerifierReward *uint256.Int
}

func (RewardsDistributed) EventType() string { return TypeRewardsDistributed }
func (e RewardsDistributed) Event() *types.Event {
	return &types.Event{Type: TypeRewardsDistributed, Attributes: map[string]string{
		"miner":          e.Miner.String(),
		"committeeSize":  strconv.Itoa(len(e.Committee)),
		"minerReward":    amount(e.MinerReward),
		"verifierReward": amount(e.VerifierReward),
	}}
}

type FeesAllocated struct {
	RewardAmount    *uint256.Int
	TreasuryAmount  *uint256.Int
	DeveloperAmount *uint256.Int
}

func (FeesAllocated) EventType() string { return TypeFeesAllocated }
func (e FeesAllocated) Event() *types.Event {
	return &types.Event{Type: TypeFeesAllocated, Attributes: map[string]string{
		"rewardAmount":    amount(e.RewardAmount),
		"treasuryAmount":  amount(e.TreasuryAmount),
		"developerAmount": amount(e.DeveloperAmount),
	}}
}

package game

import (
	"errors"
	"math"
)

const MicrosPerLira = int64(1_000_000)

var (
	ErrInvalidDecision      = errors.New("invalid decision")
	ErrInvalidPlayerName    = errors.New("player name must be 2-32 letters, digits, spaces or underscores")
	ErrUnknownPlayer        = errors.New("unknown player")
	ErrUnknownBank          = errors.New("unknown bank")
	ErrAssetLocked          = errors.New("asset class not unlocked yet")
	ErrLoansNotActive       = errors.New("loans are not active yet")
	ErrGameOver             = errors.New("game is over for this player")
	ErrDuplicateIdempotency = errors.New("duplicate idempotency key")
	ErrInvariant            = errors.New("invariant violation")
)

// AssetKind names a risky instrument class a player can hold.
type AssetKind string

const (
	AssetEquity AssetKind = "equity"
	AssetCrypto AssetKind = "crypto"
	AssetGold   AssetKind = "gold"
	AssetFX     AssetKind = "fx"
)

// assetOrder fixes iteration order wherever per-asset random draws happen, so
// a (seed, player, month) triple always produces the same turn.
var assetOrder = []AssetKind{AssetEquity, AssetCrypto, AssetGold, AssetFX}

// AllocTarget is a destination for savings allocation: a risky asset class or
// a deposit account at the selected bank.
type AllocTarget string

const (
	TargetEquity = AllocTarget(AssetEquity)
	TargetCrypto = AllocTarget(AssetCrypto)
	TargetGold   = AllocTarget(AssetGold)
	TargetFX     = AllocTarget(AssetFX)

	TargetDemand AllocTarget = "demand"
	TargetTerm   AllocTarget = "term"
)

var allocOrder = []AllocTarget{TargetDemand, TargetTerm, TargetEquity, TargetCrypto, TargetGold, TargetFX}

func (t AllocTarget) asset() (AssetKind, bool) {
	switch t {
	case TargetEquity, TargetCrypto, TargetGold, TargetFX:
		return AssetKind(t), true
	}
	return "", false
}

func LiraToMicros(v float64) int64 {
	return int64(math.Round(v * float64(MicrosPerLira)))
}

func MicrosToLira(v int64) float64 {
	return float64(v) / float64(MicrosPerLira)
}

// mulMicros applies a float rate to a micro amount, rounding to the nearest
// micro. Every flow in the engine goes through this so logged deltas match
// balances exactly.
func mulMicros(amount int64, rate float64) int64 {
	return int64(math.Round(float64(amount) * rate))
}

func minMicros(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

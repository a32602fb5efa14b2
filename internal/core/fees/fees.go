// Package fees implements the escrow fee arithmetic.
//
// All settlement math is integer multiply/divide with truncation; asset
// balances are always integral base units. Multiplications are
// overflow-checked the way the ledger environment checks them: an overflow
// fails the enclosing operation rather than wrapping.
package fees

import "errors"

// BasisPointsDenominator is the number of basis points in the whole.
const BasisPointsDenominator = 10_000

// ErrArithmeticOverflow is returned when a fee computation exceeds uint64.
var ErrArithmeticOverflow = errors.New("arithmetic overflow")

// ErrInsufficientVault is returned when the vault balance cannot cover the
// termination fee reserve during a payout computation.
var ErrInsufficientVault = errors.New("vault balance below termination fee reserve")

// pow10 returns 10^n, or an overflow error for n beyond uint64 range.
func pow10(n uint8) (uint64, error) {
	if n > 19 {
		return 0, ErrArithmeticOverflow
	}
	result := uint64(1)
	for i := uint8(0); i < n; i++ {
		result *= 10
	}
	return result, nil
}

func mulChecked(a, b uint64) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	product := a * b
	if product/a != b {
		return 0, ErrArithmeticOverflow
	}
	return product, nil
}

// ScaledCostPerTeam converts a human-scale entry cost into asset base units.
func ScaledCostPerTeam(entryCostPerTeam uint64, assetDecimals uint8) (uint64, error) {
	scale, err := pow10(assetDecimals)
	if err != nil {
		return 0, err
	}
	return mulChecked(entryCostPerTeam, scale)
}

// EntryCostPerPlayer derives the per-player deposit from the per-team cost.
// Division truncates; the remainder is retained by the vault.
func EntryCostPerPlayer(entryCostPerTeam uint64, assetDecimals, playersPerTeam uint8) (uint64, error) {
	if playersPerTeam == 0 {
		return 0, ErrArithmeticOverflow
	}
	scaled, err := ScaledCostPerTeam(entryCostPerTeam, assetDecimals)
	if err != nil {
		return 0, err
	}
	return scaled / uint64(playersPerTeam), nil
}

// TerminationFee derives the upfront platform reserve:
//
//	entryCostPerTeam * amountOfTeams * feeBasisPoints * 10^(assetDecimals-4)
//
// The -4 accounts for basis points being parts per ten thousand. For assets
// with fewer than four decimals the basis-points division truncates.
func TerminationFee(entryCostPerTeam uint64, assetDecimals, amountOfTeams uint8, feeBasisPoints uint64) (uint64, error) {
	fee, err := mulChecked(entryCostPerTeam, uint64(amountOfTeams))
	if err != nil {
		return 0, err
	}
	fee, err = mulChecked(fee, feeBasisPoints)
	if err != nil {
		return 0, err
	}
	if assetDecimals >= 4 {
		scale, err := pow10(assetDecimals - 4)
		if err != nil {
			return 0, err
		}
		return mulChecked(fee, scale)
	}
	scale, err := pow10(assetDecimals)
	if err != nil {
		return 0, err
	}
	fee, err = mulChecked(fee, scale)
	if err != nil {
		return 0, err
	}
	return fee / BasisPointsDenominator, nil
}

// PayoutShare computes one player's winnings against the vault balance at
// the moment of the payout. The numerator reserves twice the termination fee
// before splitting across a team; earlier payouts and refunds in the same
// session therefore change the share of later ones.
func PayoutShare(vaultBalance, terminationFee uint64, playersPerTeam uint8) (uint64, error) {
	if playersPerTeam == 0 {
		return 0, ErrArithmeticOverflow
	}
	reserve, err := mulChecked(terminationFee, 2)
	if err != nil {
		return 0, err
	}
	if vaultBalance < reserve {
		return 0, ErrInsufficientVault
	}
	return (vaultBalance - reserve) / uint64(playersPerTeam), nil
}

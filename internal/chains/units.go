package chains

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// ToBaseUnits converts an amount to the chain's smallest unit, dropping any
// precision below it.
func ToBaseUnits(amount decimal.Decimal, decimals int32) *big.Int {
	return amount.Shift(decimals).Truncate(0).BigInt()
}

func FromBaseUnits(value *big.Int, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(value, -decimals)
}

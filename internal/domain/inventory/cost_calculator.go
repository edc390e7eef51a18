package inventory

import "github.com/shopspring/decimal"

// WeightedUnitValue recalcula el valor unitario promedio ponderado al reponer stock.
// Nuevo = ((StockActual * ValorActual) + (CantEntrada * ValorEntrada)) / (StockActual + CantEntrada)
func WeightedUnitValue(stock int, current decimal.Decimal, incoming int, incomingValue decimal.Decimal) decimal.Decimal {
	sum := stock + incoming
	if sum <= 0 {
		return decimal.Zero
	}
	num := decimal.NewFromInt(int64(stock)).Mul(current).
		Add(decimal.NewFromInt(int64(incoming)).Mul(incomingValue))
	return num.Div(decimal.NewFromInt(int64(sum))).Round(2)
}

package pricing

import "github.com/shopspring/decimal"

// Line represents one recipe ingredient resolved against the current catalog:
// the amount used and the referenced product's unit price.
type Line struct {
	Quantity     decimal.Decimal
	PricePerUnit decimal.Decimal
}

// Config carries the pricing parameters. Callers resolve these from wherever
// they live (the settings store, a fixture) before invoking the calculation;
// this package never looks anything up.
type Config struct {
	MarkupPercent decimal.Decimal
}

// Breakdown is the result of a pricing calculation. Monetary values are
// rounded to two decimal places, and TotalCost is the exact sum of the
// rounded BaseCost and MarkupAmount.
type Breakdown struct {
	BaseCost      decimal.Decimal
	MarkupPercent decimal.Decimal
	MarkupAmount  decimal.Decimal
	TotalCost     decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// LineCost returns quantity x unit price for a single ingredient line.
func LineCost(line Line) decimal.Decimal {
	return line.Quantity.Mul(line.PricePerUnit)
}

// BaseCost sums the ingredient line costs without rounding. Accumulation is
// exact, so per-line rounding error cannot build up across large recipes.
func BaseCost(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(LineCost(line))
	}
	return total
}

// Calculate applies the markup percentage to the given base cost.
func Calculate(base decimal.Decimal, cfg Config) Breakdown {
	markupAmount := base.Mul(cfg.MarkupPercent).Div(hundred)

	roundedBase := base.Round(2)
	roundedMarkup := markupAmount.Round(2)

	return Breakdown{
		BaseCost:      roundedBase,
		MarkupPercent: cfg.MarkupPercent,
		MarkupAmount:  roundedMarkup,
		TotalCost:     roundedBase.Add(roundedMarkup),
	}
}

package models

import "github.com/shopspring/decimal"

func init() {
	// The client reads monetary fields as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

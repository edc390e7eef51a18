package dto

import "github.com/shopspring/decimal"

// StockAdjustRequest body para POST /api/items/:id/stock/deduct y /increase.
type StockAdjustRequest struct {
	Amount    int              `json:"amount" validate:"required,min=1"`
	Reason    string           `json:"reason,omitempty"`
	Reference string           `json:"reference,omitempty"`
	UnitValue *decimal.Decimal `json:"unit_value,omitempty"` // sólo en entradas
}

// ReplenishmentSuggestionDTO ítem bajo el umbral con su proyección de consumo.
type ReplenishmentSuggestionDTO struct {
	ItemID         string `json:"item_id"`
	ItemName       string `json:"item_name"`
	CurrentStock   int    `json:"current_stock"`
	NextPeriod     string `json:"next_period"`
	ExpectedUsage  int    `json:"expected_usage"`
	SuggestedOrder int    `json:"suggested_order_qty"`
	Samples        int    `json:"samples"`
	Priority       int    `json:"priority"` // 1 = más urgente
}

// UsageRecordDTO acumulado trimestral de un ítem.
type UsageRecordDTO struct {
	ItemID     string `json:"item_id"`
	Period     string `json:"period"`
	StockStart int    `json:"stock_start"`
	Usage      int    `json:"usage"`
	Restock    int    `json:"restock"`
	Restocked  bool   `json:"restocked"`
	StockEnd   int    `json:"stock_end"`
}

// UsageReportResponse acumulados de un periodo.
type UsageReportResponse struct {
	Period  string           `json:"period"`
	Records []UsageRecordDTO `json:"records"`
}

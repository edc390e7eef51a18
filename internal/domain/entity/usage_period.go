package entity

import "time"

// UsagePeriodRecord acumulado de consumo/reposición de un ítem en un trimestre.
// Se actualiza de forma monótona; nunca se recalcula hacia atrás.
type UsagePeriodRecord struct {
	ItemID     string    `json:"item_id"`
	Period     string    `json:"period"` // "Q1 2025"
	Year       int       `json:"year"`
	Quarter    int       `json:"quarter"`
	StockStart int       `json:"stock_start"`
	Usage      int       `json:"usage"`
	Restock    int       `json:"restock"`
	Restocked  bool      `json:"restocked"`
	StockEnd   int       `json:"stock_end"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

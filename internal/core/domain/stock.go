package domain

// StockAssignment is the quantity of a product a distributor is entitled to
// sell. Quantity and LowStockAlert are set independently; whether the item is
// low on stock is always derived, never stored.
type StockAssignment struct {
	ID            string  `json:"id"`
	Product       Product `json:"product"`
	Quantity      int     `json:"quantity"`
	LowStockAlert int     `json:"low_stock_alert"`
}

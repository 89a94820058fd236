package models

import "time"

type InventoryItem struct {
	ID        string
	SKU       string
	Name      string
	Unit      string
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type InventoryAdjustment struct {
	ID         string
	ItemID     string
	Delta      int
	Reason     string
	AdjustedBy string
	CreatedAt  time.Time
}

package models

// ShoppingLine is one ingredient row reachable from a user's cart.
type ShoppingLine struct {
	Name   string
	Unit   string
	Amount int
}

// ShoppingItem is the summed amount of one (name, unit) group.
type ShoppingItem struct {
	Name  string `json:"name"`
	Unit  string `json:"measurement_unit"`
	Total int    `json:"amount"`
}

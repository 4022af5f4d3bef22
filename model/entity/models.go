package entity

// All lists every persisted model in dependency order for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&TokenBlacklist{},
		&Category{},
		&Product{},
		&Customer{},
		&Supplier{},
		&Warehouse{},
		&Inventory{},
		&Inbound{},
		&InboundItem{},
		&Outbound{},
		&OutboundItem{},
		&StockMovement{},
	}
}

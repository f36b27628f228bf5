package products

import (
	"context"

	"github.com/shopspring/decimal"
)

// Seed loads the default demo catalog into a memory store so the API keeps
// serving data while the relational backend is down. It mirrors the rows the
// seed migration inserts.
func Seed(ctx context.Context, store *MemoryStore) error {
	active := true
	inactive := false

	seeds := []CreateProductInput{
		{
			Name:        "Laptop Dell Inspiron",
			Description: "Laptop de 15 pulgadas con 16GB RAM",
			Category:    "computacion",
			Price:       decimal.NewFromFloat(899.99),
			IsActive:    &active,
			Stock:       map[string]int{"Centro": 5, "Norte": 3},
		},
		{
			Name:        "Mouse Inalámbrico",
			Description: "Mouse ergonómico con receptor USB",
			Category:    "accesorios",
			Price:       decimal.NewFromFloat(19.99),
			IsActive:    &active,
			Stock:       map[string]int{"Centro": 18, "Norte": 12},
		},
		{
			Name:        "Teclado Mecánico",
			Description: "Teclado retroiluminado switches azules",
			Category:    "accesorios",
			Price:       decimal.NewFromFloat(59.99),
			IsActive:    &inactive,
			Stock:       map[string]int{"Centro": 15},
		},
	}

	for _, input := range seeds {
		if _, err := store.Create(ctx, input); err != nil {
			return err
		}
	}
	return nil
}

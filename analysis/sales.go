// Package analysis turns the four competition tables (and an optional
// submission) into the derived tables the dashboard shows. Every stage is a
// pure function over immutable slices.
package analysis

import (
	"sort"

	"edadash/models"
)

// PairKey identifies an (item, shop) combination.
type PairKey struct {
	ItemID int
	ShopID int
}

// TestUniverse returns the distinct (item, shop) pairs of the test set in
// first-appearance order. Duplicate test rows collapse to one pair.
func TestUniverse(test []models.TestPair) []PairKey {
	seen := make(map[PairKey]struct{}, len(test))
	out := make([]PairKey, 0, len(test))
	for _, t := range test {
		k := PairKey{ItemID: t.ItemID, ShopID: t.ShopID}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// FilterToUniverse keeps the sales rows whose (item, shop) pair is in the test universe.
func FilterToUniverse(sales []models.SalesRecord, universe []PairKey) []models.SalesRecord {
	keys := make(map[PairKey]struct{}, len(universe))
	for _, k := range universe {
		keys[k] = struct{}{}
	}
	out := make([]models.SalesRecord, 0)
	for _, s := range sales {
		if _, ok := keys[PairKey{ItemID: s.ItemID, ShopID: s.ShopID}]; ok {
			out = append(out, s)
		}
	}
	return out
}

// AggregateShopItemSales sums quantity per (shop, item) over the sales rows
// whose pair appears in the test set. Pairs without sales produce no row.
// Output is sorted by shop, then item.
func AggregateShopItemSales(sales []models.SalesRecord, test []models.TestPair) []models.ShopItemSales {
	return sumByShopItem(FilterToUniverse(sales, TestUniverse(test)))
}

func sumByShopItem(matched []models.SalesRecord) []models.ShopItemSales {
	totals := make(map[PairKey]int64)
	for _, s := range matched {
		totals[PairKey{ItemID: s.ItemID, ShopID: s.ShopID}] += s.Quantity
	}

	out := make([]models.ShopItemSales, 0, len(totals))
	for k, q := range totals {
		out = append(out, models.ShopItemSales{ShopID: k.ShopID, ItemID: k.ItemID, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ShopID != out[j].ShopID {
			return out[i].ShopID < out[j].ShopID
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out
}

// TotalQuantity sums the quantity column of a shop/item table.
func TotalQuantity(rows []models.ShopItemSales) int64 {
	var total int64
	for _, r := range rows {
		total += r.Quantity
	}
	return total
}

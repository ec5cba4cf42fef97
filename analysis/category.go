package analysis

import (
	"sort"
	"strings"

	"edadash/models"
)

// CategorySeparator splits a category name into its main and sub parts.
const CategorySeparator = " - "

// SplitCategoryName splits "main - sub" names. Without a separator the whole
// name is the main category and sub is nil; a nil name gives (nil, nil).
// Only the first two segments are used.
func SplitCategoryName(name *string) (main, sub *string) {
	if name == nil {
		return nil, nil
	}
	if !strings.Contains(*name, CategorySeparator) {
		m := *name
		return &m, nil
	}
	parts := strings.Split(*name, CategorySeparator)
	m, s := parts[0], parts[1]
	return &m, &s
}

// CategoryIndex answers item → category lookups built from the two category tables.
type CategoryIndex struct {
	itemToCategory map[int]int
	categoryNames  map[int]string

	// DuplicateItems counts item ids that appeared more than once in the
	// item→category table; the first mapping wins.
	DuplicateItems int
}

// NewCategoryIndex builds the left-join lookup for item → category id → name.
func NewCategoryIndex(itemCategories []models.ItemCategory, names []models.CategoryName) *CategoryIndex {
	idx := &CategoryIndex{
		itemToCategory: make(map[int]int, len(itemCategories)),
		categoryNames:  make(map[int]string, len(names)),
	}
	for _, ic := range itemCategories {
		if _, ok := idx.itemToCategory[ic.ItemID]; ok {
			idx.DuplicateItems++
			continue
		}
		idx.itemToCategory[ic.ItemID] = ic.CategoryID
	}
	for _, cn := range names {
		if _, ok := idx.categoryNames[cn.CategoryID]; ok {
			continue
		}
		idx.categoryNames[cn.CategoryID] = cn.Name
	}
	return idx
}

// Lookup returns the category metadata of an item. Unmapped items get nil
// fields; a mapped category without a name keeps its id but has nil names.
func (idx *CategoryIndex) Lookup(itemID int) models.CategoryInfo {
	var info models.CategoryInfo
	catID, ok := idx.itemToCategory[itemID]
	if !ok {
		return info
	}
	info.CategoryID = &catID
	if name, ok := idx.categoryNames[catID]; ok {
		info.CategoryName = &name
	}
	info.MainCategory, info.SubCategory = SplitCategoryName(info.CategoryName)
	return info
}

type categoryKey struct {
	main, sub       string
	hasMain, hasSub bool
}

func keyOf(main, sub *string) categoryKey {
	var k categoryKey
	if main != nil {
		k.main, k.hasMain = *main, true
	}
	if sub != nil {
		k.sub, k.hasSub = *sub, true
	}
	return k
}

// AggregateCategorySales re-aggregates shop/item totals by (main, sub)
// category. Null keys form their own groups. Output is sorted by main then
// sub, with null keys last.
func AggregateCategorySales(shopItems []models.ShopItemSales, idx *CategoryIndex) []models.CategorySales {
	totals := make(map[categoryKey]int64)
	for _, r := range shopItems {
		info := idx.Lookup(r.ItemID)
		totals[keyOf(info.MainCategory, info.SubCategory)] += r.Quantity
	}

	out := make([]models.CategorySales, 0, len(totals))
	for k, q := range totals {
		row := models.CategorySales{Quantity: q}
		if k.hasMain {
			m := k.main
			row.MainCategory = &m
		}
		if k.hasSub {
			s := k.sub
			row.SubCategory = &s
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := compareNullable(out[i].MainCategory, out[j].MainCategory); c != 0 {
			return c < 0
		}
		return compareNullable(out[i].SubCategory, out[j].SubCategory) < 0
	})
	return out
}

// compareNullable orders strings ascending with nil after every value.
func compareNullable(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return strings.Compare(*a, *b)
}

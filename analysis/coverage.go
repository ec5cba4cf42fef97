package analysis

import "edadash/models"

// TestItems returns the distinct item ids of the test set in first-appearance order.
func TestItems(test []models.TestPair) []int {
	seen := make(map[int]struct{}, len(test))
	out := make([]int, 0)
	for _, t := range test {
		if _, ok := seen[t.ItemID]; ok {
			continue
		}
		seen[t.ItemID] = struct{}{}
		out = append(out, t.ItemID)
	}
	return out
}

// ItemsSoldIn returns the set of item ids with at least one sales row dated in year.
func ItemsSoldIn(sales []models.SalesRecord, year int) map[int]struct{} {
	sold := make(map[int]struct{})
	for _, s := range sales {
		if s.Date.Year() == year {
			sold[s.ItemID] = struct{}{}
		}
	}
	return sold
}

// CheckPriorYearCoverage flags every distinct test item by whether it sold
// anything in year, attaches category metadata, and splits the flags into two
// disjoint views that together hold every flagged item exactly once.
func CheckPriorYearCoverage(sales []models.SalesRecord, test []models.TestPair, idx *CategoryIndex, year int) models.Coverage {
	sold := ItemsSoldIn(sales, year)
	items := TestItems(test)

	cov := models.Coverage{
		Year:       year,
		Flags:      make([]models.CoverageFlag, 0, len(items)),
		Covered:    make([]models.CoverageFlag, 0),
		NotCovered: make([]models.CoverageFlag, 0),
	}
	for _, itemID := range items {
		_, ok := sold[itemID]
		flag := models.CoverageFlag{
			ItemID:            itemID,
			HasPriorYearSales: ok,
			CategoryInfo:      idx.Lookup(itemID),
		}
		cov.Flags = append(cov.Flags, flag)
		if ok {
			cov.Covered = append(cov.Covered, flag)
		} else {
			cov.NotCovered = append(cov.NotCovered, flag)
		}
	}
	return cov
}

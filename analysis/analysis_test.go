package analysis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edadash/models"
	"edadash/utils"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sale(date time.Time, shop, item int, qty int64) models.SalesRecord {
	return models.SalesRecord{Date: date, ShopID: shop, ItemID: item, Quantity: qty}
}

func fixtureTables() models.Tables {
	return models.Tables{
		Sales: []models.SalesRecord{
			sale(day(2021, 1, 3), 0, 1, 4),
			sale(day(2021, 2, 3), 0, 1, 2),
			sale(day(2021, 2, 3), 1, 2, 7),
			sale(day(2020, 5, 1), 0, 5, 3),   // item 5 only sold in 2020
			sale(day(2021, 3, 1), 2, 9, 100), // pair outside the test set
			sale(day(2021, 3, 1), 0, 3, 1),
		},
		ItemCategories: []models.ItemCategory{
			{ItemID: 1, CategoryID: 10},
			{ItemID: 2, CategoryID: 11},
			{ItemID: 5, CategoryID: 12},
			{ItemID: 9, CategoryID: 10},
		},
		CategoryNames: []models.CategoryName{
			{CategoryID: 10, Name: "Accessories - Headphones"},
			{CategoryID: 11, Name: "Books"},
			{CategoryID: 12, Name: "Games - PC - Digital"},
		},
		Test: []models.TestPair{
			{Index: 0, ItemID: 1, ShopID: 0},
			{Index: 1, ItemID: 2, ShopID: 1},
			{Index: 2, ItemID: 5, ShopID: 0},
			{Index: 3, ItemID: 1, ShopID: 0}, // duplicate pair
			{Index: 4, ItemID: 3, ShopID: 0}, // item 3 has no category
			{Index: 5, ItemID: 7, ShopID: 1}, // no sales at all
		},
	}
}

func TestSplitCategoryName(t *testing.T) {
	main, sub := SplitCategoryName(utils.StringPtr("Accessories - Headphones"))
	require.NotNil(t, main)
	require.NotNil(t, sub)
	assert.Equal(t, "Accessories", *main)
	assert.Equal(t, "Headphones", *sub)

	main, sub = SplitCategoryName(utils.StringPtr("Books"))
	require.NotNil(t, main)
	assert.Equal(t, "Books", *main)
	assert.Nil(t, sub)

	main, sub = SplitCategoryName(utils.StringPtr("Games - PC - Digital"))
	assert.Equal(t, "Games", *main)
	assert.Equal(t, "PC", *sub)

	main, sub = SplitCategoryName(nil)
	assert.Nil(t, main)
	assert.Nil(t, sub)
}

func TestAggregateShopItemSales_ContainmentAndConservation(t *testing.T) {
	tables := fixtureTables()
	rows := AggregateShopItemSales(tables.Sales, tables.Test)

	universe := make(map[PairKey]bool)
	for _, p := range TestUniverse(tables.Test) {
		universe[p] = true
	}
	var want int64
	for _, s := range tables.Sales {
		if universe[PairKey{ItemID: s.ItemID, ShopID: s.ShopID}] {
			want += s.Quantity
		}
	}

	for _, r := range rows {
		assert.True(t, universe[PairKey{ItemID: r.ItemID, ShopID: r.ShopID}], "row %+v outside test universe", r)
	}
	assert.Equal(t, want, TotalQuantity(rows))
	assert.Equal(t, []models.ShopItemSales{
		{ShopID: 0, ItemID: 1, Quantity: 6},
		{ShopID: 0, ItemID: 3, Quantity: 1},
		{ShopID: 0, ItemID: 5, Quantity: 3},
		{ShopID: 1, ItemID: 2, Quantity: 7},
	}, rows)
}

func TestTestUniverse_Deduplicates(t *testing.T) {
	u := TestUniverse(fixtureTables().Test)
	assert.Len(t, u, 5)
	assert.Equal(t, PairKey{ItemID: 1, ShopID: 0}, u[0])
}

func TestAggregateCategorySales_KeepsMassAndNullGroups(t *testing.T) {
	tables := fixtureTables()
	shopItems := AggregateShopItemSales(tables.Sales, tables.Test)
	idx := NewCategoryIndex(tables.ItemCategories, tables.CategoryNames)
	cats := AggregateCategorySales(shopItems, idx)

	var total int64
	for _, c := range cats {
		total += c.Quantity
	}
	assert.Equal(t, TotalQuantity(shopItems), total)

	require.Len(t, cats, 4)
	assert.Equal(t, "Accessories", *cats[0].MainCategory)
	assert.Equal(t, "Headphones", *cats[0].SubCategory)
	assert.Equal(t, int64(6), cats[0].Quantity)

	assert.Equal(t, "Books", *cats[1].MainCategory)
	assert.Nil(t, cats[1].SubCategory)

	assert.Equal(t, "Games", *cats[2].MainCategory)
	assert.Equal(t, "PC", *cats[2].SubCategory)

	// unmapped item 3 lands in the (null, null) group, sorted last
	assert.Nil(t, cats[3].MainCategory)
	assert.Nil(t, cats[3].SubCategory)
	assert.Equal(t, int64(1), cats[3].Quantity)
}

func TestCategoryIndex_FirstMappingWins(t *testing.T) {
	idx := NewCategoryIndex(
		[]models.ItemCategory{{ItemID: 1, CategoryID: 10}, {ItemID: 1, CategoryID: 11}},
		[]models.CategoryName{{CategoryID: 10, Name: "A - B"}},
	)
	assert.Equal(t, 1, idx.DuplicateItems)
	info := idx.Lookup(1)
	require.NotNil(t, info.CategoryID)
	assert.Equal(t, 10, *info.CategoryID)

	missingName := NewCategoryIndex([]models.ItemCategory{{ItemID: 2, CategoryID: 99}}, nil).Lookup(2)
	require.NotNil(t, missingName.CategoryID)
	assert.Nil(t, missingName.CategoryName)
	assert.Nil(t, missingName.MainCategory)
}

func TestCheckPriorYearCoverage_Partition(t *testing.T) {
	tables := fixtureTables()
	idx := NewCategoryIndex(tables.ItemCategories, tables.CategoryNames)
	cov := CheckPriorYearCoverage(tables.Sales, tables.Test, idx, 2021)

	items := TestItems(tables.Test)
	assert.Len(t, cov.Flags, len(items))
	assert.Equal(t, len(items), len(cov.Covered)+len(cov.NotCovered))

	seen := make(map[int]int)
	for _, f := range cov.Covered {
		assert.True(t, f.HasPriorYearSales)
		seen[f.ItemID]++
	}
	for _, f := range cov.NotCovered {
		assert.False(t, f.HasPriorYearSales)
		seen[f.ItemID]++
	}
	for _, id := range items {
		assert.Equal(t, 1, seen[id], "item %d", id)
	}

	notCovered := make(map[int]bool)
	for _, f := range cov.NotCovered {
		notCovered[f.ItemID] = true
	}
	assert.True(t, notCovered[5], "item sold only in 2020 must lack coverage")
	assert.True(t, notCovered[7])
	assert.False(t, notCovered[1])

	for _, f := range cov.Flags {
		if f.ItemID == 5 {
			require.NotNil(t, f.MainCategory)
			assert.Equal(t, "Games", *f.MainCategory)
		}
	}
}

func TestReshapeSubmission_LeftJoinOnBaseShop(t *testing.T) {
	test := []models.TestPair{
		{Index: 0, ItemID: 1, ShopID: 0},
		{Index: 1, ItemID: 2, ShopID: 0},
		{Index: 2, ItemID: 2, ShopID: 1},
		{Index: 3, ItemID: 3, ShopID: 1},
	}
	sub := []models.SubmissionRow{
		{Index: 0, Predicted: decimal.RequireFromString("1.5")},
		{Index: 1, Predicted: decimal.RequireFromString("2")},
		{Index: 2, Predicted: decimal.RequireFromString("3.25")},
		{Index: 3, Predicted: decimal.RequireFromString("9")},
	}
	idx := NewCategoryIndex(nil, nil)

	res, err := ReshapeSubmission(test, sub, idx, nil)
	require.NoError(t, err)
	wide := res.Wide

	assert.Equal(t, []int{0, 1}, wide.ShopIDs)
	require.Len(t, wide.Rows, 2)
	assert.Equal(t, 1, wide.Rows[0].ItemID)
	assert.Equal(t, 2, wide.Rows[1].ItemID)

	assert.Equal(t, "1.5", wide.Prediction(0, 0).String())
	assert.Nil(t, wide.Prediction(0, 1))
	assert.Equal(t, "2", wide.Prediction(1, 0).String())
	assert.Equal(t, "3.25", wide.Prediction(1, 1).String())
	assert.Zero(t, res.Dropped)
}

func TestReshapeSubmission_LengthMismatch(t *testing.T) {
	test := fixtureTables().Test
	_, err := ReshapeSubmission(test, make([]models.SubmissionRow, len(test)-1), NewCategoryIndex(nil, nil), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubmissionLength)

	var lenErr *SubmissionLengthError
	require.ErrorAs(t, err, &lenErr)
	assert.Equal(t, len(test), lenErr.TestRows)
	assert.Equal(t, len(test)-1, lenErr.SubmissionRows)
}

func TestReshapeSubmission_IndexMismatch(t *testing.T) {
	test := []models.TestPair{
		{Index: 0, ItemID: 1, ShopID: 0},
		{Index: 1, ItemID: 2, ShopID: 0},
		{Index: 2, ItemID: 2, ShopID: 1},
	}
	sub := []models.SubmissionRow{
		{Index: 0, Predicted: decimal.NewFromInt(1)},
		{Index: 2, Predicted: decimal.NewFromInt(2)},
		{Index: 1, Predicted: decimal.NewFromInt(3)},
	}
	_, err := ReshapeSubmission(test, sub, NewCategoryIndex(nil, nil), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubmissionAlignment)
	assert.NotErrorIs(t, err, ErrSubmissionLength)

	var idxErr *SubmissionIndexError
	require.ErrorAs(t, err, &idxErr)
	assert.Equal(t, SubmissionIndexError{Row: 1, TestIndex: 1, SubmissionIndex: 2}, *idxErr)
}

func TestReshapeSubmission_PinnedShopsDropOthers(t *testing.T) {
	test := []models.TestPair{
		{Index: 0, ItemID: 1, ShopID: 0},
		{Index: 1, ItemID: 1, ShopID: 1},
		{Index: 2, ItemID: 1, ShopID: 18},
	}
	sub := make([]models.SubmissionRow, len(test))
	for i := range sub {
		sub[i] = models.SubmissionRow{Index: i, Predicted: decimal.NewFromInt(int64(i))}
	}
	res, err := ReshapeSubmission(test, sub, NewCategoryIndex(nil, nil), []int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Dropped)
	require.Len(t, res.Wide.Rows, 1)
	assert.Len(t, res.Wide.Rows[0].Predictions, 2)
}

func TestRun_BaseAndSubmissionVariants(t *testing.T) {
	tables := fixtureTables()
	res, err := Run(tables, Options{Mode: utils.ModeDev, PriorYear: 2021})
	require.NoError(t, err)
	assert.Equal(t, utils.VariantBase, res.Variant)
	assert.Nil(t, res.Submission)
	assert.Equal(t, int64(17), res.Summary.TotalQuantity)
	assert.Equal(t, 5, res.Summary.TestItems)
	assert.Equal(t, 5, res.Summary.TestPairs)

	_, err = Run(tables, Options{PriorYear: 2021, IncludeSubmission: true})
	assert.ErrorIs(t, err, ErrNoSubmission)

	tables.Submission = make([]models.SubmissionRow, len(tables.Test))
	for i := range tables.Submission {
		tables.Submission[i] = models.SubmissionRow{Index: i, Predicted: decimal.NewFromFloat(0.5)}
	}
	res, err = Run(tables, Options{PriorYear: 2021, IncludeSubmission: true})
	require.NoError(t, err)
	assert.Equal(t, utils.VariantSubmission, res.Variant)
	require.NotNil(t, res.Submission)
	assert.Equal(t, []int{0, 1}, res.Submission.ShopIDs)
	// shop 0 items in first-appearance order: 1, 5, 3
	require.Len(t, res.Submission.Rows, 3)
	assert.Equal(t, 1, res.Submission.Rows[0].ItemID)
	assert.Equal(t, 5, res.Submission.Rows[1].ItemID)
	assert.Equal(t, 3, res.Submission.Rows[2].ItemID)
}

func TestRun_Idempotent(t *testing.T) {
	tables := fixtureTables()
	first, err := Run(tables, Options{PriorYear: 2021})
	require.NoError(t, err)
	second, err := Run(tables, Options{PriorYear: 2021})
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

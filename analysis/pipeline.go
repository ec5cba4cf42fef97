package analysis

import (
	"errors"
	"fmt"

	"edadash/models"
	"edadash/utils"
)

// ErrNoSubmission is returned when the submission variant runs without a submission table.
var ErrNoSubmission = errors.New("submission variant requires a submission table")

// Options controls one pipeline run.
type Options struct {
	Mode              string
	PriorYear         int
	IncludeSubmission bool
	// ShopIDs pins the submission columns; nil derives them from the test set.
	ShopIDs []int
}

// Run composes every stage over t and returns the derived tables.
func Run(t models.Tables, opts Options) (*models.AnalysisResult, error) {
	universe := TestUniverse(t.Test)
	matched := FilterToUniverse(t.Sales, universe)
	shopItems := sumByShopItem(matched)

	idx := NewCategoryIndex(t.ItemCategories, t.CategoryNames)
	categories := AggregateCategorySales(shopItems, idx)
	coverage := CheckPriorYearCoverage(t.Sales, t.Test, idx, opts.PriorYear)

	res := &models.AnalysisResult{
		Variant:       utils.VariantBase,
		Mode:          opts.Mode,
		ShopItemSales: shopItems,
		CategorySales: categories,
		Coverage:      coverage,
		Summary: models.AnalysisSummary{
			SalesRows:        len(t.Sales),
			TestRows:         len(t.Test),
			TestPairs:        len(universe),
			TestItems:        len(coverage.Flags),
			MatchedSalesRows: len(matched),
			TotalQuantity:    TotalQuantity(shopItems),
			CoveredItems:     len(coverage.Covered),
			NotCoveredItems:  len(coverage.NotCovered),
		},
	}

	if !opts.IncludeSubmission {
		return res, nil
	}
	if t.Submission == nil {
		return nil, ErrNoSubmission
	}
	reshaped, err := ReshapeSubmission(t.Test, t.Submission, idx, opts.ShopIDs)
	if err != nil {
		return nil, fmt.Errorf("reshape submission: %w", err)
	}
	res.Variant = utils.VariantSubmission
	res.Submission = &reshaped.Wide
	res.Summary.SubmissionRows = len(t.Submission)
	res.Summary.SubmissionShops = len(reshaped.Wide.ShopIDs)
	res.Summary.DroppedSubmissions = reshaped.Dropped
	return res, nil
}

package models

import "github.com/shopspring/decimal"

// ShopItemSales is the total quantity sold of one test-relevant item at one shop.
type ShopItemSales struct {
	ShopID   int   `json:"shop_id"`
	ItemID   int   `json:"item_id"`
	Quantity int64 `json:"quantity"`
}

// CategoryInfo is the category metadata attached to an item. Every field is nil
// when the item has no category mapping.
type CategoryInfo struct {
	CategoryID   *int    `json:"category_id"`
	CategoryName *string `json:"category_name"`
	MainCategory *string `json:"main_category"`
	SubCategory  *string `json:"sub_category"`
}

// CategorySales is the total quantity per (main, sub) category. Nil keys are null groups.
type CategorySales struct {
	MainCategory *string `json:"main_category"`
	SubCategory  *string `json:"sub_category"`
	Quantity     int64   `json:"quantity"`
}

// CoverageFlag marks whether a test item sold anything during the prior year.
type CoverageFlag struct {
	ItemID            int  `json:"item_id"`
	HasPriorYearSales bool `json:"has_prior_year_sales"`
	CategoryInfo
}

// Coverage holds the flag table and its two disjoint views.
type Coverage struct {
	Year       int            `json:"year"`
	Flags      []CoverageFlag `json:"flags"`
	Covered    []CoverageFlag `json:"covered"`
	NotCovered []CoverageFlag `json:"not_covered"`
}

// WideSubmissionRow is one item with a prediction column per shop.
// Predictions[i] belongs to WideSubmission.ShopIDs[i]; nil means no prediction.
type WideSubmissionRow struct {
	ItemID int `json:"item_id"`
	CategoryInfo
	Predictions []*decimal.Decimal `json:"predictions"`
}

// WideSubmission is the submission pivoted to one row per item.
type WideSubmission struct {
	ShopIDs []int               `json:"shop_ids"`
	Rows    []WideSubmissionRow `json:"rows"`
}

// Prediction returns the prediction of the row for shopID, if any.
func (w *WideSubmission) Prediction(row int, shopID int) *decimal.Decimal {
	for i, id := range w.ShopIDs {
		if id == shopID {
			return w.Rows[row].Predictions[i]
		}
	}
	return nil
}

// AnalysisSummary holds headline counts for the dashboard.
type AnalysisSummary struct {
	SalesRows          int   `json:"salesRows"`
	TestRows           int   `json:"testRows"`
	TestPairs          int   `json:"testPairs"`
	TestItems          int   `json:"testItems"`
	MatchedSalesRows   int   `json:"matchedSalesRows"`
	TotalQuantity      int64 `json:"totalQuantity"`
	CoveredItems       int   `json:"coveredItems"`
	NotCoveredItems    int   `json:"notCoveredItems"`
	SubmissionRows     int   `json:"submissionRows,omitempty"`
	SubmissionShops    int   `json:"submissionShops,omitempty"`
	DroppedSubmissions int   `json:"droppedSubmissions,omitempty"`
}

// AnalysisResult is the full output of one pipeline run.
type AnalysisResult struct {
	Variant       string          `json:"variant"`
	Mode          string          `json:"mode"`
	ShopItemSales []ShopItemSales `json:"shopItemSales"`
	CategorySales []CategorySales `json:"categorySales"`
	Coverage      Coverage        `json:"coverage"`
	Submission    *WideSubmission `json:"submission,omitempty"`
	Summary       AnalysisSummary `json:"summary"`
}

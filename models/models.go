package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// --- Input kinds ---

// InputKind names one of the five files the dashboard works from.
type InputKind string

const (
	KindSalesHistory   InputKind = "sales_history"
	KindItemCategories InputKind = "item_categories"
	KindCategoryNames  InputKind = "category_names"
	KindTest           InputKind = "test"
	KindSubmission     InputKind = "submission"
)

// RequiredKinds are the four tables every analysis needs, in display order.
var RequiredKinds = []InputKind{KindSalesHistory, KindItemCategories, KindCategoryNames, KindTest}

// AllKinds lists every accepted upload kind.
var AllKinds = append(append([]InputKind{}, RequiredKinds...), KindSubmission)

// FileName is the conventional file name of the kind, used for dev-mode paths.
func (k InputKind) FileName() string {
	return string(k) + ".csv"
}

// Label is the Japanese display name used by the dashboard.
func (k InputKind) Label() string {
	switch k {
	case KindSalesHistory:
		return "販売実績データ"
	case KindItemCategories:
		return "商品カテゴリーデータ"
	case KindCategoryNames:
		return "カテゴリ名称データ"
	case KindTest:
		return "評価用データ"
	case KindSubmission:
		return "提出データ"
	}
	return string(k)
}

// ParseInputKind validates a kind received from a client.
func ParseInputKind(s string) (InputKind, bool) {
	for _, k := range AllKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// --- Base tables ---

// SalesRecord is one row of sales_history.csv.
type SalesRecord struct {
	Date     time.Time `json:"date"`
	ShopID   int       `json:"shop_id"`
	ItemID   int       `json:"item_id"`
	Quantity int64     `json:"quantity"`
}

// ItemCategory maps an item to its category.
type ItemCategory struct {
	ItemID     int `json:"item_id"`
	CategoryID int `json:"category_id"`
}

// CategoryName maps a category to its "main - sub" display name.
type CategoryName struct {
	CategoryID int    `json:"category_id"`
	Name       string `json:"category_name"`
}

// TestPair is one (item, shop) combination that needs a forecast.
// Index is the file's own index column when present, else the row position.
type TestPair struct {
	Index  int `json:"index"`
	ItemID int `json:"item_id"`
	ShopID int `json:"shop_id"`
}

// SubmissionRow is one headerless (row index, prediction) line of a submission file.
type SubmissionRow struct {
	Index     int             `json:"index"`
	Predicted decimal.Decimal `json:"predicted"`
}

// Tables bundles the loaded inputs. Submission is nil when not supplied.
type Tables struct {
	Sales          []SalesRecord
	ItemCategories []ItemCategory
	CategoryNames  []CategoryName
	Test           []TestPair
	Submission     []SubmissionRow
}

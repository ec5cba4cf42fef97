package analysis

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"edadash/models"
)

// ErrSubmissionLength is returned when the submission cannot be zipped with the test set.
var ErrSubmissionLength = errors.New("submission row count does not match test row count")

// SubmissionLengthError carries both counts of a failed alignment.
type SubmissionLengthError struct {
	TestRows       int
	SubmissionRows int
}

func (e *SubmissionLengthError) Error() string {
	return fmt.Sprintf("%s: test has %d rows, submission has %d", ErrSubmissionLength, e.TestRows, e.SubmissionRows)
}

func (e *SubmissionLengthError) Unwrap() error {
	return ErrSubmissionLength
}

// ErrSubmissionAlignment is returned when a submission row carries another
// index than the test row at the same position.
var ErrSubmissionAlignment = errors.New("submission row index does not match test index")

// SubmissionIndexError locates the first misaligned row.
type SubmissionIndexError struct {
	Row             int
	TestIndex       int
	SubmissionIndex int
}

func (e *SubmissionIndexError) Error() string {
	return fmt.Sprintf("%s: row %d has test index %d, submission index %d", ErrSubmissionAlignment, e.Row, e.TestIndex, e.SubmissionIndex)
}

func (e *SubmissionIndexError) Unwrap() error {
	return ErrSubmissionAlignment
}

// ShopIDs returns the distinct shop ids of the test set, ascending.
func ShopIDs(test []models.TestPair) []int {
	seen := make(map[int]struct{})
	out := make([]int, 0)
	for _, t := range test {
		if _, ok := seen[t.ShopID]; ok {
			continue
		}
		seen[t.ShopID] = struct{}{}
		out = append(out, t.ShopID)
	}
	sort.Ints(out)
	return out
}

// ReshapeResult is the pivoted submission plus the count of predictions for
// shops outside the shop list.
type ReshapeResult struct {
	Wide    models.WideSubmission
	Dropped int
}

// ReshapeSubmission zips submission rows onto test rows by position, after
// checking that both sides have the same length and the same row indices, and
// pivots them into one row per item of the first shop, with one prediction
// column per shop. shops nil means every shop seen in the test set.
//
// Rows come only from the base (first) shop; other shops are left-attached by
// item id. For repeated (item, shop) test rows the first prediction wins.
func ReshapeSubmission(test []models.TestPair, submission []models.SubmissionRow, idx *CategoryIndex, shops []int) (ReshapeResult, error) {
	if len(submission) != len(test) {
		return ReshapeResult{}, &SubmissionLengthError{TestRows: len(test), SubmissionRows: len(submission)}
	}
	for i := range test {
		if submission[i].Index != test[i].Index {
			return ReshapeResult{}, &SubmissionIndexError{Row: i, TestIndex: test[i].Index, SubmissionIndex: submission[i].Index}
		}
	}
	if shops == nil {
		shops = ShopIDs(test)
	}

	column := make(map[int]int, len(shops))
	for i, id := range shops {
		column[id] = i
	}

	var res ReshapeResult
	res.Wide.ShopIDs = append([]int{}, shops...)
	res.Wide.Rows = make([]models.WideSubmissionRow, 0)
	if len(shops) == 0 {
		res.Dropped = len(test)
		return res, nil
	}
	baseShop := shops[0]

	preds := make(map[PairKey]decimal.Decimal, len(test))
	rowOf := make(map[int]int)
	for i, t := range test {
		if _, ok := column[t.ShopID]; !ok {
			res.Dropped++
			continue
		}
		k := PairKey{ItemID: t.ItemID, ShopID: t.ShopID}
		if _, ok := preds[k]; ok {
			continue
		}
		preds[k] = submission[i].Predicted
		if t.ShopID == baseShop {
			if _, ok := rowOf[t.ItemID]; !ok {
				rowOf[t.ItemID] = len(res.Wide.Rows)
				res.Wide.Rows = append(res.Wide.Rows, models.WideSubmissionRow{
					ItemID:       t.ItemID,
					CategoryInfo: idx.Lookup(t.ItemID),
					Predictions:  make([]*decimal.Decimal, len(shops)),
				})
			}
		}
	}

	for k, v := range preds {
		r, ok := rowOf[k.ItemID]
		if !ok {
			continue
		}
		p := v
		res.Wide.Rows[r].Predictions[column[k.ShopID]] = &p
	}
	return res, nil
}

// Package export writes analysis results as an xlsx workbook.
package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"edadash/models"
)

const (
	SheetShopItems     = "店舗商品別売上"
	SheetCategories    = "カテゴリ別売上"
	SheetCovered       = "前年実績あり"
	SheetNotCovered    = "前年実績なし"
	SheetSubmission    = "提出データ"
	ContentTypeXLSX    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	defaultSheetName   = "Sheet1"
	headerColumnsWidth = 16
)

var coverageHeadings = []string{"商品ID", "前年実績", "商品カテゴリID", "商品カテゴリ名", "メインカテゴリ名", "サブカテゴリ名"}

// Workbook builds the workbook for res. The caller must Close it.
func Workbook(res *models.AnalysisResult) (*excelize.File, error) {
	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	w := &writer{f: f, header: header}

	rows := make([][]any, 0, len(res.ShopItemSales))
	for _, r := range res.ShopItemSales {
		rows = append(rows, []any{r.ShopID, r.ItemID, r.Quantity})
	}
	w.sheet(SheetShopItems, []string{"店舗ID", "商品ID", "売上個数"}, rows)

	rows = make([][]any, 0, len(res.CategorySales))
	for _, r := range res.CategorySales {
		rows = append(rows, []any{nullable(r.MainCategory), nullable(r.SubCategory), r.Quantity})
	}
	w.sheet(SheetCategories, []string{"メインカテゴリ名", "サブカテゴリ名", "売上個数"}, rows)

	w.sheet(SheetCovered, coverageHeadings, coverageRows(res.Coverage.Covered))
	w.sheet(SheetNotCovered, coverageHeadings, coverageRows(res.Coverage.NotCovered))

	if res.Submission != nil {
		headings := []string{"商品ID", "商品カテゴリID", "商品カテゴリ名"}
		for _, id := range res.Submission.ShopIDs {
			headings = append(headings, "店舗"+strconv.Itoa(id))
		}
		rows = make([][]any, 0, len(res.Submission.Rows))
		for _, r := range res.Submission.Rows {
			row := []any{r.ItemID, nullableInt(r.CategoryID), nullable(r.CategoryName)}
			for _, p := range r.Predictions {
				if p == nil {
					row = append(row, nil)
					continue
				}
				row = append(row, p.InexactFloat64())
			}
			rows = append(rows, row)
		}
		w.sheet(SheetSubmission, headings, rows)
	}

	if w.err != nil {
		_ = f.Close()
		return nil, w.err
	}
	if err := f.DeleteSheet(defaultSheetName); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

// Write streams the workbook for res to out.
func Write(out io.Writer, res *models.AnalysisResult) error {
	f, err := Workbook(res)
	if err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	defer f.Close()
	if err := f.Write(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

type writer struct {
	f      *excelize.File
	header int
	err    error
}

func (w *writer) sheet(name string, headings []string, rows [][]any) {
	if w.err != nil {
		return
	}
	if _, err := w.f.NewSheet(name); err != nil {
		w.err = err
		return
	}
	head := make([]any, len(headings))
	for i, h := range headings {
		head[i] = h
	}
	if err := w.f.SetSheetRow(name, "A1", &head); err != nil {
		w.err = err
		return
	}
	last, _ := excelize.CoordinatesToCellName(len(headings), 1)
	if err := w.f.SetCellStyle(name, "A1", last, w.header); err != nil {
		w.err = err
		return
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headings))
	if err := w.f.SetColWidth(name, "A", lastCol, headerColumnsWidth); err != nil {
		w.err = err
		return
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := r
		if err := w.f.SetSheetRow(name, cell, &row); err != nil {
			w.err = err
			return
		}
	}
}

func coverageRows(flags []models.CoverageFlag) [][]any {
	rows := make([][]any, 0, len(flags))
	for _, f := range flags {
		rows = append(rows, []any{
			f.ItemID,
			f.HasPriorYearSales,
			nullableInt(f.CategoryID),
			nullable(f.CategoryName),
			nullable(f.MainCategory),
			nullable(f.SubCategory),
		})
	}
	return rows
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

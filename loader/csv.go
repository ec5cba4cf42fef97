// Package loader reads the competition CSV files into typed tables and decides
// where they come from: fixed local paths in dev mode, session uploads otherwise.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"edadash/models"
	"edadash/utils"
)

var (
	ErrMissingColumn = errors.New("missing column")
	ErrEmptyFile     = errors.New("file has no header row")
)

const (
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift_jis"
)

// Column aliases: the competition's Japanese headers first, then English fallbacks.
var (
	colDate         = []string{"日付", "date"}
	colShopID       = []string{"店舗ID", "shop_id"}
	colItemID       = []string{"商品ID", "item_id"}
	colQuantity     = []string{"売上個数", "quantity", "qty", "item_cnt_day"}
	colCategoryID   = []string{"商品カテゴリID", "category_id", "item_category_id"}
	colCategoryName = []string{"商品カテゴリ名", "category_name", "item_category_name"}
	colIndex        = []string{"index", "ID", "id"}
)

// ParseError locates a bad cell.
type ParseError struct {
	Kind   models.InputKind
	Line   int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s line %d column %q: %v", e.Kind, e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Decoder wraps r so that it yields UTF-8 without a byte order mark.
func Decoder(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", EncodingUTF8, "utf8":
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	case EncodingShiftJIS, "sjis", "cp932":
		return transform.NewReader(r, japanese.ShiftJIS.NewDecoder()), nil
	}
	return nil, fmt.Errorf("unsupported csv encoding %q", encoding)
}

type table struct {
	kind    models.InputKind
	headers map[string]int
	records [][]string
}

func readTable(kind models.InputKind, r io.Reader, encoding string) (*table, error) {
	dec, err := Decoder(r, encoding)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: %w", kind, ErrEmptyFile)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", kind, err)
	}
	t := &table{kind: kind, headers: make(map[string]int, len(header))}
	for i, h := range header {
		t.headers[strings.TrimSpace(h)] = i
	}
	t.records, err = cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return t, nil
}

// column resolves the first alias present in the header.
func (t *table) column(aliases []string) (int, string, error) {
	for _, a := range aliases {
		if i, ok := t.headers[a]; ok {
			return i, a, nil
		}
	}
	return -1, "", fmt.Errorf("%s: %w %q", t.kind, ErrMissingColumn, aliases[0])
}

func (t *table) optionalColumn(aliases []string) (int, string) {
	i, name, err := t.column(aliases)
	if err != nil {
		return -1, ""
	}
	return i, name
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func (t *table) intAt(rec []string, line, i int, name string) (int, error) {
	n, err := strconv.Atoi(cell(rec, i))
	if err != nil {
		f, ferr := strconv.ParseFloat(cell(rec, i), 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, &ParseError{Kind: t.kind, Line: line, Column: name, Err: err}
		}
		n = int(f)
	}
	return n, nil
}

// ReadSalesHistory parses sales_history.csv.
func ReadSalesHistory(r io.Reader, encoding string) ([]models.SalesRecord, error) {
	t, err := readTable(models.KindSalesHistory, r, encoding)
	if err != nil {
		return nil, err
	}
	cols := make([]int, 4)
	names := make([]string, 4)
	for i, aliases := range [][]string{colDate, colShopID, colItemID, colQuantity} {
		if cols[i], names[i], err = t.column(aliases); err != nil {
			return nil, err
		}
	}

	out := make([]models.SalesRecord, 0, len(t.records))
	for n, rec := range t.records {
		line := n + 2
		date, err := utils.ParseDate(cell(rec, cols[0]))
		if err != nil {
			return nil, &ParseError{Kind: t.kind, Line: line, Column: names[0], Err: err}
		}
		shop, err := t.intAt(rec, line, cols[1], names[1])
		if err != nil {
			return nil, err
		}
		item, err := t.intAt(rec, line, cols[2], names[2])
		if err != nil {
			return nil, err
		}
		qty, err := t.intAt(rec, line, cols[3], names[3])
		if err != nil {
			return nil, err
		}
		out = append(out, models.SalesRecord{Date: date, ShopID: shop, ItemID: item, Quantity: int64(qty)})
	}
	return out, nil
}

// ReadItemCategories parses item_categories.csv.
func ReadItemCategories(r io.Reader, encoding string) ([]models.ItemCategory, error) {
	t, err := readTable(models.KindItemCategories, r, encoding)
	if err != nil {
		return nil, err
	}
	itemCol, itemName, err := t.column(colItemID)
	if err != nil {
		return nil, err
	}
	catCol, catName, err := t.column(colCategoryID)
	if err != nil {
		return nil, err
	}

	out := make([]models.ItemCategory, 0, len(t.records))
	for n, rec := range t.records {
		item, err := t.intAt(rec, n+2, itemCol, itemName)
		if err != nil {
			return nil, err
		}
		cat, err := t.intAt(rec, n+2, catCol, catName)
		if err != nil {
			return nil, err
		}
		out = append(out, models.ItemCategory{ItemID: item, CategoryID: cat})
	}
	return out, nil
}

// ReadCategoryNames parses category_names.csv.
func ReadCategoryNames(r io.Reader, encoding string) ([]models.CategoryName, error) {
	t, err := readTable(models.KindCategoryNames, r, encoding)
	if err != nil {
		return nil, err
	}
	catCol, catName, err := t.column(colCategoryID)
	if err != nil {
		return nil, err
	}
	nameCol, _, err := t.column(colCategoryName)
	if err != nil {
		return nil, err
	}

	out := make([]models.CategoryName, 0, len(t.records))
	for n, rec := range t.records {
		cat, err := t.intAt(rec, n+2, catCol, catName)
		if err != nil {
			return nil, err
		}
		name := cell(rec, nameCol)
		if name == "" {
			// an unnamed category stays unknown to the index
			continue
		}
		out = append(out, models.CategoryName{CategoryID: cat, Name: name})
	}
	return out, nil
}

// ReadTest parses test.csv. The index column is optional; without it the
// 0-based row position is used.
func ReadTest(r io.Reader, encoding string) ([]models.TestPair, error) {
	t, err := readTable(models.KindTest, r, encoding)
	if err != nil {
		return nil, err
	}
	itemCol, itemName, err := t.column(colItemID)
	if err != nil {
		return nil, err
	}
	shopCol, shopName, err := t.column(colShopID)
	if err != nil {
		return nil, err
	}
	indexCol, indexName := t.optionalColumn(colIndex)

	out := make([]models.TestPair, 0, len(t.records))
	for n, rec := range t.records {
		line := n + 2
		item, err := t.intAt(rec, line, itemCol, itemName)
		if err != nil {
			return nil, err
		}
		shop, err := t.intAt(rec, line, shopCol, shopName)
		if err != nil {
			return nil, err
		}
		idx := n
		if indexCol >= 0 {
			if idx, err = t.intAt(rec, line, indexCol, indexName); err != nil {
				return nil, err
			}
		}
		out = append(out, models.TestPair{Index: idx, ItemID: item, ShopID: shop})
	}
	return out, nil
}

// ReadSubmission parses a headerless two-column (row index, prediction) file.
// A leading row whose first cell is not an integer is treated as a header and skipped.
func ReadSubmission(r io.Reader, encoding string) ([]models.SubmissionRow, error) {
	dec, err := Decoder(r, encoding)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", models.KindSubmission, err)
	}

	out := make([]models.SubmissionRow, 0, len(records))
	for n, rec := range records {
		line := n + 1
		if len(rec) < 2 {
			return nil, &ParseError{Kind: models.KindSubmission, Line: line, Column: "1", Err: ErrMissingColumn}
		}
		idx, err := strconv.Atoi(cell(rec, 0))
		if err != nil {
			if n == 0 {
				continue
			}
			return nil, &ParseError{Kind: models.KindSubmission, Line: line, Column: "0", Err: err}
		}
		pred, err := decimal.NewFromString(cell(rec, 1))
		if err != nil {
			return nil, &ParseError{Kind: models.KindSubmission, Line: line, Column: "1", Err: err}
		}
		out = append(out, models.SubmissionRow{Index: idx, Predicted: pred})
	}
	return out, nil
}

package loader

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"

	"edadash/analysis"
	"edadash/models"
	"edadash/utils"
)

const salesCSV = "日付,店舗ID,商品ID,売上個数\n2021-01-02,0,1,3\n2020/12/31,1,2,1.0\n"
const itemCategoriesCSV = "商品ID,商品カテゴリID\n1,10\n2,11\n"
const categoryNamesCSV = "商品カテゴリID,商品カテゴリ名\n10,Accessories - Headphones\n11,Books\n"
const testCSV = "index,商品ID,店舗ID\n0,1,0\n1,2,1\n"
const submissionCSV = "0,1.25\n1,0\n"

func TestReadSalesHistory(t *testing.T) {
	rows, err := ReadSalesHistory(strings.NewReader("\ufeff"+salesCSV), EncodingUTF8)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2021, rows[0].Date.Year())
	assert.Equal(t, 1, rows[0].ItemID)
	assert.Equal(t, int64(3), rows[0].Quantity)
	assert.Equal(t, 2020, rows[1].Date.Year())
	assert.Equal(t, int64(1), rows[1].Quantity)
}

func TestReadSalesHistory_EnglishHeaders(t *testing.T) {
	rows, err := ReadSalesHistory(strings.NewReader("date,shop_id,item_id,qty\n2021-05-01,3,4,2\n"), EncodingUTF8)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].ShopID)
}

func TestReadSalesHistory_Errors(t *testing.T) {
	_, err := ReadSalesHistory(strings.NewReader("日付,店舗ID,商品ID\n2021-01-01,0,1\n"), EncodingUTF8)
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = ReadSalesHistory(strings.NewReader("日付,店舗ID,商品ID,売上個数\n2021-01-01,0,1,1.5\n"), EncodingUTF8)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
	assert.Equal(t, "売上個数", perr.Column)

	_, err = ReadSalesHistory(strings.NewReader(""), EncodingUTF8)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestReadShiftJIS(t *testing.T) {
	encoded, err := japanese.ShiftJIS.NewEncoder().String(categoryNamesCSV)
	require.NoError(t, err)

	rows, err := ReadCategoryNames(strings.NewReader(encoded), EncodingShiftJIS)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Books", rows[1].Name)

	_, err = Decoder(strings.NewReader(""), "latin1")
	assert.Error(t, err)
}

func TestReadCategoryNames_EmptyNameIsNull(t *testing.T) {
	rows, err := ReadCategoryNames(strings.NewReader("商品カテゴリID,商品カテゴリ名\n10,\n11, \n12,Books\n"), EncodingUTF8)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 12, rows[0].CategoryID)

	idx := analysis.NewCategoryIndex([]models.ItemCategory{{ItemID: 1, CategoryID: 10}}, rows)
	info := idx.Lookup(1)
	require.NotNil(t, info.CategoryID)
	assert.Nil(t, info.CategoryName)
	assert.Nil(t, info.MainCategory)
	assert.Nil(t, info.SubCategory)
}

func TestReadTest_IndexColumnOptional(t *testing.T) {
	rows, err := ReadTest(strings.NewReader("index,商品ID,店舗ID\n7,1,0\n8,2,1\n"), EncodingUTF8)
	require.NoError(t, err)
	assert.Equal(t, 7, rows[0].Index)

	rows, err = ReadTest(strings.NewReader("商品ID,店舗ID\n1,0\n2,1\n"), EncodingUTF8)
	require.NoError(t, err)
	assert.Equal(t, 0, rows[0].Index)
	assert.Equal(t, 1, rows[1].Index)
	assert.Equal(t, 2, rows[1].ItemID)
}

func TestReadSubmission(t *testing.T) {
	rows, err := ReadSubmission(strings.NewReader(submissionCSV), EncodingUTF8)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1.25", rows[0].Predicted.String())

	rows, err = ReadSubmission(strings.NewReader("index,pred\n0,2\n"), EncodingUTF8)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = ReadSubmission(strings.NewReader("0,1\nx,2\n"), EncodingUTF8)
	assert.Error(t, err)

	_, err = ReadSubmission(strings.NewReader("0\n"), EncodingUTF8)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func writeDataDir(t *testing.T, withSubmission bool) string {
	t.Helper()
	dir := t.TempDir()
	files := map[models.InputKind]string{
		models.KindSalesHistory:   salesCSV,
		models.KindItemCategories: itemCategoriesCSV,
		models.KindCategoryNames:  categoryNamesCSV,
		models.KindTest:           testCSV,
	}
	if withSubmission {
		files[models.KindSubmission] = submissionCSV
	}
	for k, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, k.FileName()), []byte(body), 0o644))
	}
	return dir
}

type memSource map[models.InputKind]string

func (m memSource) Has(k models.InputKind) bool {
	_, ok := m[k]
	return ok
}

func (m memSource) Open(k models.InputKind) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(m[k])), nil
}

func TestDevModeAvailable(t *testing.T) {
	dir := writeDataDir(t, false)
	assert.True(t, DevModeAvailable(dir))

	require.NoError(t, os.Remove(filepath.Join(dir, models.KindTest.FileName())))
	assert.False(t, DevModeAvailable(dir))
	assert.False(t, DevModeAvailable(filepath.Join(dir, "nope")))
}

func TestResolve_NormalModeGatesOnMissingUploads(t *testing.T) {
	uploads := memSource{models.KindSalesHistory: salesCSV, models.KindTest: testCSV}
	plan := Resolve(utils.ModeNormal, utils.VariantBase, "", uploads)
	assert.False(t, plan.Ready())
	assert.Equal(t, []models.InputKind{models.KindItemCategories, models.KindCategoryNames}, plan.Missing)

	_, err := plan.Load(EncodingUTF8)
	assert.ErrorIs(t, err, ErrMissingFile)

	uploads[models.KindItemCategories] = itemCategoriesCSV
	uploads[models.KindCategoryNames] = categoryNamesCSV
	plan = Resolve(utils.ModeNormal, utils.VariantBase, "", uploads)
	require.True(t, plan.Ready())
	tables, err := plan.Load(EncodingUTF8)
	require.NoError(t, err)
	assert.Len(t, tables.Sales, 2)
	assert.Nil(t, tables.Submission)

	plan = Resolve(utils.ModeNormal, utils.VariantSubmission, "", uploads)
	assert.Equal(t, []models.InputKind{models.KindSubmission}, plan.Missing)
}

func TestResolve_DevMode(t *testing.T) {
	dir := writeDataDir(t, false)
	plan := Resolve(utils.ModeDev, utils.VariantBase, dir, nil)
	require.True(t, plan.Ready())
	tables, err := plan.Load(EncodingUTF8)
	require.NoError(t, err)
	assert.Len(t, tables.Test, 2)

	// submission falls back to uploads in dev mode
	plan = Resolve(utils.ModeDev, utils.VariantSubmission, dir, memSource{})
	assert.Equal(t, []models.InputKind{models.KindSubmission}, plan.Missing)
	plan = Resolve(utils.ModeDev, utils.VariantSubmission, dir, memSource{models.KindSubmission: submissionCSV})
	require.True(t, plan.Ready())
	tables, err = plan.Load(EncodingUTF8)
	require.NoError(t, err)
	assert.Len(t, tables.Submission, 2)

	// a required file vanishing after the mode was offered is fatal
	require.NoError(t, os.Remove(filepath.Join(dir, models.KindSalesHistory.FileName())))
	plan = Resolve(utils.ModeDev, utils.VariantBase, dir, nil)
	require.True(t, plan.Ready())
	_, err = plan.Load(EncodingUTF8)
	assert.ErrorIs(t, err, ErrMissingFile)
}

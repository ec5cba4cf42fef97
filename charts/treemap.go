// Package charts adapts derived tables to what the dashboard draws: treemap
// node lists for plotly and PNG bar charts.
package charts

import (
	"strconv"

	"edadash/models"
	"edadash/utils"
)

const (
	ColorScale = "RdBu"

	NullMainLabel = "(未分類)"
	NullSubLabel  = "(なし)"
)

// Treemap is a two-level hierarchy flattened into parallel arrays, in the
// shape plotly's treemap trace takes with branchvalues "total".
type Treemap struct {
	Title         string    `json:"title"`
	IDs           []string  `json:"ids"`
	Labels        []string  `json:"labels"`
	Parents       []string  `json:"parents"`
	Values        []float64 `json:"values"`
	ColorScale    string    `json:"colorscale"`
	ColorMidpoint float64   `json:"colorMidpoint"`
}

type leaf struct {
	parentID, parentLabel string
	childID, childLabel   string
	value                 float64
}

// build flattens leaves into the treemap; parents appear in first-seen order
// before their children and carry the sum of their children. A leaf's id is
// its parent id and its own id joined by "/", so node ids must not be
// prefixes of one another across the "/" boundary.
func build(title string, leaves []leaf) Treemap {
	tm := Treemap{Title: title, ColorScale: ColorScale}
	parentPos := make(map[string]int)
	var total float64

	for _, l := range leaves {
		if _, ok := parentPos[l.parentID]; !ok {
			parentPos[l.parentID] = len(tm.IDs)
			tm.IDs = append(tm.IDs, l.parentID)
			tm.Labels = append(tm.Labels, l.parentLabel)
			tm.Parents = append(tm.Parents, "")
			tm.Values = append(tm.Values, 0)
		}
	}
	for _, l := range leaves {
		tm.Values[parentPos[l.parentID]] += l.value
		tm.IDs = append(tm.IDs, l.parentID+"/"+l.childID)
		tm.Labels = append(tm.Labels, l.childLabel)
		tm.Parents = append(tm.Parents, l.parentID)
		tm.Values = append(tm.Values, l.value)
		total += l.value
	}
	if len(leaves) > 0 {
		tm.ColorMidpoint = total / float64(len(leaves))
	}
	return tm
}

// ShopItemTreemap groups items under their shop.
func ShopItemTreemap(rows []models.ShopItemSales) Treemap {
	leaves := make([]leaf, 0, len(rows))
	for _, r := range rows {
		shop, item := strconv.Itoa(r.ShopID), strconv.Itoa(r.ItemID)
		leaves = append(leaves, leaf{
			parentID:    shop,
			parentLabel: shop,
			childID:     item,
			childLabel:  item,
			value:       float64(r.Quantity),
		})
	}
	return build("店舗ID毎の売上個数が多い商品ID", leaves)
}

// CategoryTreemap groups sub categories under their main category.
func CategoryTreemap(rows []models.CategorySales) Treemap {
	leaves := make([]leaf, 0, len(rows))
	for _, r := range rows {
		leaves = append(leaves, leaf{
			parentID:    nodeID(r.MainCategory),
			parentLabel: utils.StringOr(r.MainCategory, NullMainLabel),
			childID:     nodeID(r.SubCategory),
			childLabel:  utils.StringOr(r.SubCategory, NullSubLabel),
			value:       float64(r.Quantity),
		})
	}
	return build("カテゴリ毎の売上個数が多い商品ID", leaves)
}

// nodeID encodes a nullable name so that ids stay distinct from each other
// whatever the name contains: names are quoted, null is bare.
func nodeID(name *string) string {
	if name == nil {
		return "null"
	}
	return strconv.Quote(*name)
}

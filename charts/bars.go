package charts

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"edadash/models"
	"edadash/utils"
)

var ErrNoData = errors.New("nothing to plot")

// MaxBars caps how many bars a chart draws; the rest are folded into "other".
const MaxBars = 30

var barColor = color.RGBA{R: 70, G: 130, B: 180, A: 255}

type bar struct {
	label string
	value float64
}

// RenderCategoryBars writes a PNG bar chart of quantity per main category.
func RenderCategoryBars(w io.Writer, rows []models.CategorySales) error {
	totals := make(map[string]float64)
	for _, r := range rows {
		totals[utils.StringOr(r.MainCategory, NullMainLabel)] += float64(r.Quantity)
	}
	return renderBars(w, "Quantity by main category", "main category", totals)
}

// RenderShopBars writes a PNG bar chart of quantity per shop.
func RenderShopBars(w io.Writer, rows []models.ShopItemSales) error {
	totals := make(map[string]float64)
	for _, r := range rows {
		totals["shop "+strconv.Itoa(r.ShopID)] += float64(r.Quantity)
	}
	return renderBars(w, "Quantity by shop", "shop", totals)
}

func renderBars(w io.Writer, title, xLabel string, totals map[string]float64) error {
	if len(totals) == 0 {
		return ErrNoData
	}
	bars := topBars(totals, MaxBars)

	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "quantity"

	values := make(plotter.Values, len(bars))
	labels := make([]string, len(bars))
	for i, b := range bars {
		values[i] = b.value
		labels[i] = b.label
	}

	chart, err := plotter.NewBarChart(values, vg.Points(16))
	if err != nil {
		return fmt.Errorf("bar chart: %w", err)
	}
	chart.Color = barColor
	chart.LineStyle.Width = vg.Length(0)
	p.Add(chart)
	p.Add(plotter.NewGrid())

	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.XAlign = draw.XRight
	p.Y.Min = 0

	width := vg.Length(math.Max(6, float64(len(bars))*0.4)) * vg.Inch
	wt, err := p.WriterTo(width, 5*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// topBars sorts by value descending (label ascending on ties) and folds the
// tail beyond limit into a single "other" bar.
func topBars(totals map[string]float64, limit int) []bar {
	bars := make([]bar, 0, len(totals))
	for label, v := range totals {
		bars = append(bars, bar{label: label, value: v})
	}
	sort.Slice(bars, func(i, j int) bool {
		if bars[i].value != bars[j].value {
			return bars[i].value > bars[j].value
		}
		return bars[i].label < bars[j].label
	})
	if len(bars) <= limit {
		return bars
	}
	var rest float64
	for _, b := range bars[limit-1:] {
		rest += b.value
	}
	return append(bars[:limit-1:limit-1], bar{label: "other", value: rest})
}

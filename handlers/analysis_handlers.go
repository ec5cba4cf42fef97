package handlers

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"edadash/analysis"
	"edadash/charts"
	"edadash/config"
	"edadash/export"
	"edadash/loader"
	"edadash/middleware"
	"edadash/models"
	"edadash/utils"
)

// Table names accepted by the table query parameter.
const (
	TableShopItems  = "shop_items"
	TableCategories = "categories"
	TableCoverage   = "coverage"
	TableCovered    = "covered"
	TableNotCovered = "not_covered"
	TableSubmission = "submission"
)

// runAnalysis resolves the inputs for the request's mode and variant and runs
// the pipeline. A non-nil GatedResponse means inputs are missing and nothing ran.
func runAnalysis(c *fiber.Ctx) (*models.AnalysisResult, *models.GatedResponse, error) {
	mode, variant := middleware.Mode(c)
	cfg := config.AppConfig

	var uploads loader.Source
	if ws, ok := middleware.Workspace(c); ok {
		uploads = ws
	}
	plan := loader.Resolve(mode, variant, cfg.DataDir, uploads)
	if !plan.Ready() {
		return nil, &models.GatedResponse{Ready: false, Variant: variant, Mode: mode, Missing: plan.Missing}, nil
	}

	tables, err := plan.Load(cfg.CSVEncoding)
	if err != nil {
		return nil, nil, fmt.Errorf("load inputs: %w", err)
	}

	res, err := analysis.Run(tables, analysis.Options{
		Mode:              mode,
		PriorYear:         cfg.PriorYear,
		IncludeSubmission: variant == utils.VariantSubmission,
		ShopIDs:           cfg.ShopIDs,
	})
	if err != nil {
		return nil, nil, err
	}
	if res.Summary.DroppedSubmissions > 0 {
		config.GetLogger().WithField("dropped", res.Summary.DroppedSubmissions).
			Warn("📊 [ANALYSIS] submission rows outside the pinned shop list were dropped")
	}
	config.GetLogger().Infof("📊 [ANALYSIS] mode=%s variant=%s sales=%d pairs=%d quantity=%d",
		mode, variant, res.Summary.SalesRows, res.Summary.TestPairs, res.Summary.TotalQuantity)
	return res, nil, nil
}

// analysisFailure maps a pipeline error onto a status code and body. Bad
// uploaded content is the client's fault; unreadable dev-mode files are not.
func analysisFailure(c *fiber.Ctx, funcName string, err error) error {
	mode, variant := middleware.Mode(c)
	config.LogError(config.GetLogger(), "handlers", funcName, "run analysis", fiber.Map{"mode": mode, "variant": variant}, err)

	var lengthErr *analysis.SubmissionLengthError
	var indexErr *analysis.SubmissionIndexError
	var parseErr *loader.ParseError
	switch {
	case errors.As(err, &lengthErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"message": lengthErr.Error(),
			"data": fiber.Map{
				"testRows":       lengthErr.TestRows,
				"submissionRows": lengthErr.SubmissionRows,
			},
		})
	case errors.As(err, &indexErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"message": indexErr.Error(),
			"data": fiber.Map{
				"row":             indexErr.Row,
				"testIndex":       indexErr.TestIndex,
				"submissionIndex": indexErr.SubmissionIndex,
			},
		})
	case errors.Is(err, loader.ErrMissingFile):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
	case mode == utils.ModeNormal && (errors.As(err, &parseErr) || errors.Is(err, loader.ErrMissingColumn) || errors.Is(err, loader.ErrEmptyFile)):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
}

func gated(c *fiber.Ctx, g *models.GatedResponse) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Waiting for required inputs",
		"data":    g,
	})
}

// HandleGetAnalysis returns the whole analysis, or one of its tables paginated.
func HandleGetAnalysis(c *fiber.Ctx) error {
	res, g, err := runAnalysis(c)
	if err != nil {
		return analysisFailure(c, "HandleGetAnalysis", err)
	}
	if g != nil {
		return gated(c, g)
	}

	table := c.Query("table")
	if table == "" {
		return c.JSON(fiber.Map{"success": true, "message": "Analysis complete", "data": res})
	}

	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", 50)
	var (
		data any
		p    *utils.Pagination
	)
	switch table {
	case TableShopItems:
		data, p = utils.Paginate(res.ShopItemSales, page, pageSize)
	case TableCategories:
		data, p = utils.Paginate(res.CategorySales, page, pageSize)
	case TableCoverage:
		data, p = utils.Paginate(res.Coverage.Flags, page, pageSize)
	case TableCovered:
		data, p = utils.Paginate(res.Coverage.Covered, page, pageSize)
	case TableNotCovered:
		data, p = utils.Paginate(res.Coverage.NotCovered, page, pageSize)
	case TableSubmission:
		if res.Submission == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Submission table requires variant=submission"})
		}
		data, p = utils.Paginate(res.Submission.Rows, page, pageSize)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Unknown table " + table})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Analysis complete",
		"data": models.PaginatedTableResponse{
			Table: table,
			Data:  data,
			Pagination: models.PaginationInfo{
				TotalItems:  p.TotalItems,
				TotalPages:  p.TotalPages,
				CurrentPage: p.CurrentPage,
				PageSize:    p.PageSize,
			},
		},
	})
}

// HandleGetTreemaps returns the node tables of both treemaps.
func HandleGetTreemaps(c *fiber.Ctx) error {
	res, g, err := runAnalysis(c)
	if err != nil {
		return analysisFailure(c, "HandleGetTreemaps", err)
	}
	if g != nil {
		return gated(c, g)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"shopItems":  charts.ShopItemTreemap(res.ShopItemSales),
			"categories": charts.CategoryTreemap(res.CategorySales),
		},
	})
}

// HandleExportAnalysis downloads the analysis as an xlsx workbook.
func HandleExportAnalysis(c *fiber.Ctx) error {
	res, g, err := runAnalysis(c)
	if err != nil {
		return analysisFailure(c, "HandleExportAnalysis", err)
	}
	if g != nil {
		return gated(c, g)
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, res); err != nil {
		config.LogError(config.GetLogger(), "handlers", "HandleExportAnalysis", "write workbook", nil, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to build workbook"})
	}
	c.Attachment(fmt.Sprintf("eda_%s_%s.xlsx", res.Mode, res.Variant))
	c.Set(fiber.HeaderContentType, export.ContentTypeXLSX)
	return c.Send(buf.Bytes())
}

// HandleGetChart renders one of the PNG bar charts.
func HandleGetChart(c *fiber.Ctx) error {
	name := c.Params("name")
	if name != "categories.png" && name != "shops.png" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Unknown chart " + name})
	}

	res, g, err := runAnalysis(c)
	if err != nil {
		return analysisFailure(c, "HandleGetChart", err)
	}
	if g != nil {
		return gated(c, g)
	}

	var buf bytes.Buffer
	if name == "categories.png" {
		err = charts.RenderCategoryBars(&buf, res.CategorySales)
	} else {
		err = charts.RenderShopBars(&buf, res.ShopItemSales)
	}
	if errors.Is(err, charts.ErrNoData) {
		return c.Status(fiber.StatusNoContent).Send(nil)
	}
	if err != nil {
		config.LogError(config.GetLogger(), "handlers", "HandleGetChart", "render chart", name, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to render chart"})
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(buf.Bytes())
}

package handlers

import (
	"bytes"
	_ "embed"
	"html/template"

	"github.com/gofiber/fiber/v2"

	"edadash/config"
	"edadash/middleware"
	"edadash/models"
	"edadash/utils"
)

//go:embed templates/dashboard.html
var dashboardHTML string

var dashboardTmpl = template.Must(template.New("dashboard").Parse(dashboardHTML))

type dashboardTable struct {
	Name  string
	Title string
}

type dashboardPage struct {
	Modes     models.ModeInfo
	Kinds     []models.InputKind
	Tables    []dashboardTable
	PriorYear int
	ModeDev   string
	ModeNorm  string
}

// HandleDashboard renders the single-page dashboard. Data is fetched by the
// page itself from the JSON API.
func HandleDashboard(c *fiber.Ctx) error {
	page := dashboardPage{
		Modes:     middleware.Modes(config.AppConfig),
		Kinds:     models.AllKinds,
		PriorYear: config.AppConfig.PriorYear,
		ModeDev:   utils.ModeDev,
		ModeNorm:  utils.ModeNormal,
		Tables: []dashboardTable{
			{Name: TableShopItems, Title: "店舗ID毎の商品別売上個数"},
			{Name: TableCategories, Title: "カテゴリ別売上個数"},
			{Name: TableCovered, Title: "前年に販売実績のある評価対象商品"},
			{Name: TableNotCovered, Title: "前年に販売実績のない評価対象商品"},
			{Name: TableSubmission, Title: "店舗別予測値"},
		},
	}

	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, page); err != nil {
		config.LogError(config.GetLogger(), "handlers", "HandleDashboard", "render template", nil, err)
		return c.Status(fiber.StatusInternalServerError).SendString("failed to render dashboard")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}

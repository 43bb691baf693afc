package views

import (
	"embed"
	"net/http"
	"time"

	"github.com/SundayYogurt/scholarship_service/internal/services"
	"github.com/gofiber/template/html/v2"
)

//go:embed *.html
var TemplatesFS embed.FS

// NewEngine builds the page renderer over the embedded templates.
// Dates on the pages are shown in loc.
func NewEngine(loc *time.Location) *html.Engine {
	engine := html.NewFileSystem(http.FS(TemplatesFS), ".html")
	engine.AddFunc("semesterLabel", services.SemesterLabel)
	engine.AddFunc("appliedAt", func(t time.Time) string {
		return services.FormatAppliedAt(t, loc)
	})
	return engine
}

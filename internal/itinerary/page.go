package itinerary

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/domain"
)

var pageTemplate = template.Must(template.New("trip").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8" />
<meta name="viewport" content="width=device-width, initial-scale=1.0" />
<title>{{.Title}}</title>
<meta property="og:title" content="{{.Title}}" />
<meta property="og:description" content="{{.ShareText}}" />
<style>
body { font-family: Arial, sans-serif; margin: 0; background: #f3f4f6; color: #111827; }
main { max-width: 760px; margin: 0 auto; padding: 32px 20px; }
.meta { color: #4b5563; margin-top: 4px; }
.actions a { display: inline-block; margin: 16px 8px 16px 0; padding: 8px 14px; border-radius: 8px; background: #4f46e5; color: #fff; text-decoration: none; font-size: 14px; }
.actions a.whatsapp { background: #16a34a; }
article { background: #fff; border: 1px solid #e5e7eb; border-radius: 16px; padding: 24px; line-height: 1.6; }
.status { padding: 16px; border-radius: 12px; background: #fef3c7; }
.status.error { background: #fee2e2; }
</style>
</head>
<body>
<main>
  <h1>{{.Title}}</h1>
  <p class="meta">{{.DaysLabel}} · {{.Budget}} · {{.Adventure}}</p>
  {{if .Notes}}<p class="meta">Notes: {{.Notes}}</p>{{end}}
  {{if .WhatsAppURL}}<div class="actions"><a class="whatsapp" href="{{.WhatsAppURL}}" target="_blank" rel="noopener">WhatsApp</a></div>{{end}}
  {{if .Body}}<article>{{.Body}}</article>
  {{else if .Error}}<p class="status error">{{.Error}}</p>
  {{else}}<p class="status">{{.Placeholder}}</p>{{end}}
</main>
</body>
</html>`))

type pageData struct {
	Title       string
	ShareText   string
	DaysLabel   string
	Budget      string
	Adventure   string
	Notes       string
	WhatsAppURL string
	Body        template.HTML
	Error       string
	Placeholder string
}

// ShareTitle is the headline used when a trip is shared.
func ShareTitle(s domain.TripSummary) string {
	return "Trip to " + s.Destination
}

// ShareText is the one-line description used when a trip is shared.
func ShareText(s domain.TripSummary) string {
	return fmt.Sprintf("Check out this trip: %s, %s budget.", daysLabel(s), s.Budget)
}

// RenderPage renders a standalone HTML document for one trip. The itinerary
// body comes from RenderMarkdown; every other value is escaped by the
// template. pageURL may be empty, which hides the share link.
func RenderPage(s domain.TripSummary, pageURL string) ([]byte, error) {
	title := cases.Title(language.English)
	data := pageData{
		Title:       ShareTitle(s),
		ShareText:   ShareText(s),
		DaysLabel:   daysLabel(s),
		Budget:      title.String(s.Budget),
		Adventure:   title.String(s.Adventure),
		Notes:       s.Notes,
		Error:       s.Error,
		Placeholder: PlaceholderItinerary,
	}
	if s.HasItinerary {
		data.Body = template.HTML(RenderMarkdown(s.Itinerary))
	}
	if pageURL != "" {
		text := fmt.Sprintf("Check out this trip to %s %s", s.Destination, pageURL)
		data.WhatsAppURL = "https://api.whatsapp.com/send?text=" + url.QueryEscape(text)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func daysLabel(s domain.TripSummary) string {
	if s.Days == 1 {
		return "1 day"
	}
	if s.Days > 1 {
		return fmt.Sprintf("%d days", s.Days)
	}
	return s.DaysLabel
}

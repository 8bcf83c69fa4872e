// Package prompt renders the system prompt and the user-facing messages
// produced by tools, from templates embedded at build time.
package prompt

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/zhukpm/tracky/store"
	"github.com/zhukpm/tracky/transport"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// dateLayout is how datetimes are shown to users and to the model.
const dateLayout = "02-01-2006 15:04:05"

var templates = template.Must(
	template.New("prompt").
		Funcs(template.FuncMap{
			"date":     func(t time.Time) string { return t.Format(dateLayout) },
			"longdate": func(t time.Time) string { return t.Format("Monday, January 02, 2006 15:04") },
		}).
		ParseFS(templatesFS, "templates/*.tmpl"),
)

// Render executes the named template with data.
func Render(name string, data any) (string, error) {
	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, name+".tmpl", data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return sb.String(), nil
}

// SystemPromptData carries everything the system prompt is built from.
type SystemPromptData struct {
	Now        time.Time
	EnvConfigs []store.EnvConfig
	Categories []store.Category
	Latest     []store.Expense
	Dialog     []transport.ChatTurn
	Memory     string
}

// System renders the main system prompt.
func System(data SystemPromptData) (string, error) {
	return Render("system", data)
}

package classifier

import (
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/customeros/mailsift/dto"
	"github.com/customeros/mailsift/internal/enum"
	"github.com/customeros/mailsift/internal/utils"
)

const promptTemplate = `You are classifying a business email for an industrial organization.

Categories (choose exactly one):
{{- range .Categories }}
- {{ . }}
{{- end }}

Departments (choose exactly one):
{{- range .Departments }}
- {{ . }}
{{- end }}

Priorities (choose exactly one): {{ join .Priorities ", " }}

Email subject: {{ .Subject }}

Email body:
{{ .Body }}

Attachments:
{{- if .Attachments }}
{{- range .Attachments }}
- {{ .Filename }} ({{ .MimeType }}, {{ .Size }} bytes)
{{- end }}
{{- else }}
none
{{- end }}

Answer with exactly these four lines and nothing else:
CATEGORY: <category>
DEPARTMENT: <department>
PRIORITY: <priority>
REASON: <one sentence>
`

var prompt = template.Must(template.New("classification").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(promptTemplate))

type promptData struct {
	Categories  []string
	Departments []string
	Priorities  []string
	Subject     string
	Body        string
	Attachments []*dto.Attachment
}

// BuildPrompt renders the classification prompt. Output is deterministic for a given message.
func BuildPrompt(message *dto.Message, maxBodyChars int) (string, error) {
	body, _ := utils.Truncate(message.Body, maxBodyChars)
	data := promptData{
		Subject:     message.Subject,
		Body:        body,
		Attachments: message.Attachments,
	}
	for _, c := range enum.AllEmailCategories {
		data.Categories = append(data.Categories, c.String())
	}
	for _, d := range enum.AllDepartments {
		data.Departments = append(data.Departments, d.String())
	}
	for _, p := range enum.AllEmailPriorities {
		data.Priorities = append(data.Priorities, p.String())
	}

	var sb strings.Builder
	if err := prompt.Execute(&sb, data); err != nil {
		return "", errors.Wrap(err, "failed to render classification prompt")
	}
	return sb.String(), nil
}

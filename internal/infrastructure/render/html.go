package render

import (
	"bytes"
	"fmt"
	"html/template"
)

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 11pt; color: #222; }
h1 { font-size: 18pt; margin-bottom: 2pt; }
.generated { color: #777; font-size: 9pt; margin-bottom: 16pt; }
h2 { font-size: 13pt; border-bottom: 1px solid #ccc; padding-bottom: 2pt; margin-top: 18pt; }
table { width: 100%; border-collapse: collapse; }
th { text-align: left; background: #f3f3f3; }
th, td { padding: 4pt 6pt; border-bottom: 1px solid #eee; }
td.num { text-align: right; font-variant-numeric: tabular-nums; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="generated">Generated {{.GeneratedAt.UTC.Format "2006-01-02 15:04 MST"}}</div>
{{range .Sections}}
<h2>{{.Title}}</h2>
<table>
<tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}<td{{if ne .Kind 0}} class="num"{{end}}>{{.Display}}</td>{{end}}</tr>
{{else}}<tr><td colspan="{{len .Headers}}">No data</td></tr>
{{end}}
</table>
{{end}}
</body>
</html>
`))

// HTML renders the printable form of the document
func HTML(doc Document) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("execute report template: %w", err)
	}
	return buf.String(), nil
}

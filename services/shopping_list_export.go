package services

import (
	"bytes"
	htmltemplate "html/template"
	"math"
	"strconv"
	"strings"
	"text/template"

	"github.com/JJublanc/tidimondo-sub001/models"
)

var exportFuncs = map[string]any{
	"qty":  FormatQuantity,
	"join": strings.Join,
}

var textExport = template.Must(template.New("shopping-list.txt").Funcs(exportFuncs).Parse(
	`SHOPPING LIST - {{.StayName}}
From {{.StartDate}} to {{.EndDate}}
Participants: {{.Summary.Participants}} | Days: {{.Summary.Days}} | Meals: {{.Summary.Meals}} | Recipes: {{.Summary.Recipes}} | Ingredients: {{.Summary.Ingredients}}
{{- if not .Categories}}

Nothing to buy yet.
{{- end}}
{{- range .Categories}}

== {{.Label}} ==
{{- range .Lines}}
[ ] {{.Name}}: {{qty .Quantity .Unit}}{{if .UsedIn}} (used in: {{join .UsedIn ", "}}){{end}}
{{- range .Notes}}
      note: {{.}}
{{- end}}
{{- end}}
{{- end}}
`))

var htmlExport = htmltemplate.Must(htmltemplate.New("shopping-list.html").Funcs(exportFuncs).Parse(
	`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Shopping list - {{.StayName}}</title>
<style>
body{font-family:Helvetica,Arial,sans-serif;margin:2rem;color:#222}
h1{margin-bottom:.2rem}
.meta{color:#555;margin-top:0}
.summary span{margin-right:1.2rem}
h2{border-bottom:1px solid #ccc;padding-bottom:.2rem;margin-top:1.6rem}
ul{list-style:none;padding-left:0}
li{padding:.25rem 0}
li::before{content:"\2610";margin-right:.5rem}
.used{color:#777;font-size:.9em}
.note{display:block;color:#777;font-size:.85em;margin-left:1.6rem}
@media print{body{margin:0}}
</style>
</head>
<body>
<h1>Shopping list - {{.StayName}}</h1>
<p class="meta">From {{.StartDate}} to {{.EndDate}}</p>
<p class="summary"><span>Participants: {{.Summary.Participants}}</span><span>Days: {{.Summary.Days}}</span><span>Meals: {{.Summary.Meals}}</span><span>Recipes: {{.Summary.Recipes}}</span><span>Ingredients: {{.Summary.Ingredients}}</span></p>
{{- if not .Categories}}
<p>Nothing to buy yet.</p>
{{- end}}
{{- range .Categories}}
<h2>{{.Label}}</h2>
<ul>
{{- range .Lines}}
<li><strong>{{.Name}}</strong>: {{qty .Quantity .Unit}}{{if .UsedIn}} <span class="used">({{join .UsedIn ", "}})</span>{{end}}
{{- range .Notes}}<span class="note">{{.}}</span>{{end}}</li>
{{- end}}
</ul>
{{- end}}
</body>
</html>
`))

// RenderText renders list as a plain-text checklist.
func RenderText(list *ShoppingList) (string, error) {
	var buf bytes.Buffer
	if err := textExport.Execute(&buf, list); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderHTML renders list as a standalone printable page.
func RenderHTML(list *ShoppingList) (string, error) {
	var buf bytes.Buffer
	if err := htmlExport.Execute(&buf, list); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatQuantity prints q with at most two decimals, switching grams and
// millilitres to kg and l from 1000 upwards.
func FormatQuantity(q float64, unit string) string {
	switch {
	case unit == models.UnitGram && q >= 1000:
		q, unit = q/1000, models.UnitKilogram
	case unit == models.UnitMillilitre && q >= 1000:
		q, unit = q/1000, models.UnitLitre
	}
	q = math.Round(q*100) / 100
	n := strconv.FormatFloat(q, 'f', -1, 64)
	if unit == "" {
		return n
	}
	return n + " " + unit
}

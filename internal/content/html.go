package content

import (
	"bytes"
	"html/template"
)

const nodeTemplates = `
{{define "paragraph"}}<p>{{range .Spans}}{{if .Href}}<a href="{{.Href}}" target="_blank" rel="noopener noreferrer">{{.Text}}</a>{{else}}{{.Text}}{{end}}{{end}}</p>{{end}}
{{define "image"}}<figure class="block-image"><img src="{{.Src}}" alt="" loading="lazy"></figure>{{end}}
{{define "video"}}<video class="block-video" controls preload="metadata" src="{{.Src}}"></video>{{end}}
{{define "audio"}}<audio class="block-audio" controls preload="metadata" src="{{.Src}}"></audio>{{end}}
{{define "link"}}<p class="block-link"><a href="{{.Href}}" target="_blank" rel="noopener noreferrer">{{.Label}}</a></p>{{end}}
{{define "quote"}}<blockquote>{{.Text}}</blockquote>{{end}}
{{define "code"}}<pre><code{{with .Language}} data-language="{{.}}"{{end}}>{{.Text}}</code></pre>{{end}}
{{define "list"}}<ul>{{range .Items}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{define "table"}}<table><tbody>{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}</tbody></table>{{end}}
{{define "embed"}}<div class="block-embed">{{.Markup}}</div>{{end}}
{{define "frame"}}<div class="block-embed"><iframe src="{{.Src}}" loading="lazy" allowfullscreen></iframe></div>{{end}}
`

var htmlTemplates = template.Must(template.New("content").Parse(nodeTemplates))

// HTML renders nodes to markup. Text and URLs are escaped by html/template;
// only EmbedMarkup is emitted verbatim.
func HTML(nodes []Node) (template.HTML, error) {
	var buf bytes.Buffer
	for _, n := range nodes {
		if err := htmlTemplates.ExecuteTemplate(&buf, n.DisplayKind(), n); err != nil {
			return "", err
		}
	}
	return template.HTML(buf.String()), nil // #nosec G203 -- built from escaped templates
}

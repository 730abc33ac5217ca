// Package features renders the homepage feature grid.
package features

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"path"
	"strings"
)

//go:embed icons/*.svg
var iconFS embed.FS

// Icon is an image shown above a feature heading.
type Icon struct {
	// Src is the static image path the icon is published under.
	Src string
	// SVG is the inline markup, already carrying the featureSvg class.
	SVG template.HTML
}

// FeatureItem is one column of the grid.
type FeatureItem struct {
	Title       string
	Icon        Icon
	Description template.HTML
}

type entry struct {
	title       string
	icon        string
	description string
}

// entries is the fixed, ordered content of the grid.
var entries = [...]entry{
	{
		title: "Easy to Use",
		icon:  "undraw_docusaurus_mountain.svg",
		description: "Docusaurus was designed from the ground up to be easily installed and " +
			"used to get your website up and running quickly.",
	},
	{
		title: "Focus on What Matters",
		icon:  "undraw_docusaurus_tree.svg",
		description: "Docusaurus lets you focus on your docs, and we&apos;ll do the chores. Go " +
			"ahead and move your docs into the <code>docs</code> directory.",
	},
	{
		title: "Powered by React",
		icon:  "undraw_docusaurus_react.svg",
		description: "Extend or customize your website layout by reusing React. Docusaurus can " +
			"be extended while reusing the same header and footer.",
	},
}

var gridTemplate = template.Must(template.New("features").Parse(`<section class="features">
  <div class="container">
    <div class="row">
{{- range . }}
      <div class="col col--4">
        <div class="text--center">{{ .Icon.SVG }}</div>
        <div class="text--center padding-horiz--md">
          <h3>{{ .Title }}</h3>
          <p>{{ .Description }}</p>
        </div>
      </div>
{{- end }}
    </div>
  </div>
</section>
`))

// Items returns the feature list in display order. Callers get their own copy.
func Items() []FeatureItem {
	items := make([]FeatureItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, FeatureItem{
			Title:       e.title,
			Icon:        loadIcon(e.icon),
			Description: template.HTML(e.description), //nolint:gosec // constant markup
		})
	}
	return items
}

// Render produces the grid markup: a container wrapping one equally sized
// column per item. Output is identical on every call.
func Render() (template.HTML, error) {
	var buf bytes.Buffer
	if err := gridTemplate.Execute(&buf, Items()); err != nil {
		return "", fmt.Errorf("render feature grid: %w", err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // produced by html/template
}

// IconFiles returns the embedded icons keyed by their Icon.Src path, for
// publishing relative to the output root.
func IconFiles() map[string][]byte {
	out := make(map[string][]byte, len(entries))
	for _, e := range entries {
		out[iconSrc(e.icon)] = readIcon(e.icon)
	}
	return out
}

func iconSrc(name string) string { return path.Join("img", name) }

// readIcon panics on a miss: icons are embedded at compile time, so a miss
// means the binary was built wrong.
func readIcon(name string) []byte {
	data, err := iconFS.ReadFile(path.Join("icons", name))
	if err != nil {
		panic(fmt.Sprintf("features: missing embedded icon %s: %v", name, err))
	}
	return data
}

func loadIcon(name string) Icon {
	svg := strings.Replace(strings.TrimSpace(string(readIcon(name))), "<svg ", `<svg class="featureSvg" role="img" `, 1)
	return Icon{
		Src: iconSrc(name),
		SVG: template.HTML(svg), //nolint:gosec // embedded asset
	}
}

package markdown

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

// HighlightCSS returns the stylesheet for highlighted code blocks: the light
// style applies by default, the dark one under [data-theme='dark'].
func HighlightCSS(light, dark string) (string, error) {
	formatter := chromahtml.New(chromahtml.WithClasses(true))

	var out bytes.Buffer
	if err := formatter.WriteCSS(&out, lookupStyle(light)); err != nil {
		return "", fmt.Errorf("write %s css: %w", light, err)
	}

	var darkCSS bytes.Buffer
	if err := formatter.WriteCSS(&darkCSS, lookupStyle(dark)); err != nil {
		return "", fmt.Errorf("write %s css: %w", dark, err)
	}
	scanner := bufio.NewScanner(&darkCSS)
	for scanner.Scan() {
		line := scanner.Text()
		// Rules look like "/* Comment */ .chroma .c { ... }".
		if i := strings.Index(line, "*/ "); i >= 0 {
			i += len("*/ ")
			line = line[:i] + "[data-theme='dark'] " + line[i:]
		}
		out.WriteString(line + "\n")
	}
	return out.String(), scanner.Err()
}

func lookupStyle(name string) *chroma.Style {
	// styles.Get falls back to the default style for unknown names.
	return styles.Get(name)
}

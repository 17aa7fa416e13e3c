package render

import (
	"embed"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static/app.css
var appCSS string

//go:embed static/app.js
var appJS string

// liveReloadScript reloads the page when the dev server publishes a rebuild.
const liveReloadScript = `
;(function() {
  var es = new EventSource('/__reload');
  es.onmessage = function(e) {
    if (e.data === 'reload') {
      window.location.reload();
    }
  };
  es.onerror = function() {
    setTimeout(function() { window.location.reload(); }, 1000);
  };
})();
`

// Assets holds the stylesheet and script inlined into the page.
type Assets struct {
	CSS string
	JS  string
}

// LoadAssets returns the embedded assets, minified with esbuild when minify is set.
func LoadAssets(minify bool) (Assets, error) {
	if !minify {
		return Assets{CSS: appCSS, JS: appJS}, nil
	}

	css, err := transform(appCSS, api.LoaderCSS)
	if err != nil {
		return Assets{}, fmt.Errorf("failed to minify stylesheet: %w", err)
	}
	js, err := transform(appJS, api.LoaderJS)
	if err != nil {
		return Assets{}, fmt.Errorf("failed to minify script: %w", err)
	}
	return Assets{CSS: css, JS: js}, nil
}

func transform(src string, loader api.Loader) (string, error) {
	result := api.Transform(src, api.TransformOptions{
		Loader:            loader,
		Target:            api.ES2020,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		LogLevel:          api.LogLevelSilent,
	})

	if len(result.Errors) > 0 {
		var msgs []string
		for _, m := range result.Errors {
			if m.Location != nil {
				msgs = append(msgs, fmt.Sprintf("%d:%d: %s", m.Location.Line, m.Location.Column, m.Text))
			} else {
				msgs = append(msgs, m.Text)
			}
		}
		return "", fmt.Errorf("esbuild errors:\n%s", strings.Join(msgs, "\n"))
	}

	return strings.TrimSpace(string(result.Code)), nil
}

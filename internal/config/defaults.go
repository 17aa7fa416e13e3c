package config

import "github.com/leapstack-labs/varcat/pkg/core"

// Default configuration values.
const (
	DefaultDataDir = "data"
	DefaultOutput  = "dist/variables_browser.html"
	DefaultTitle   = "Variables Browser"
	DefaultFormat  = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultWorkers = 4
	DefaultPort    = 8080
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "varcat.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "varcat.yml"

// EnvPrefix prefixes every environment variable read into the config.
const EnvPrefix = "VARCAT_"

func defaultValues() map[string]any {
	return map[string]any{
		"data_dir":                   DefaultDataDir,
		"output":                     DefaultOutput,
		"title":                      DefaultTitle,
		"verbose":                    false,
		"format":                     DefaultFormat,
		"minify":                     true,
		"workers":                    DefaultWorkers,
		"long_notes.max_chars":       core.DefaultLongNotesMaxChars,
		"long_notes.min_line_breaks": core.DefaultLongNotesMinLineBreaks,
		"serve.port":                 DefaultPort,
	}
}

// Default returns a Config populated with default values only.
func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir,
		Output:  DefaultOutput,
		Title:   DefaultTitle,
		Format:  DefaultFormat,
		Minify:  true,
		Workers: DefaultWorkers,
		LongNotes: LongNotesConfig{
			MaxChars:      core.DefaultLongNotesMaxChars,
			MinLineBreaks: core.DefaultLongNotesMinLineBreaks,
		},
		Serve: ServeConfig{Port: DefaultPort},
	}
}

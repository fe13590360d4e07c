// Package settings loads vhdltop configuration from .vhdltop/settings.yaml.
//
// Every field is optional. A missing file, and a nil *Settings, both mean
// "use the defaults": the top file goes to the temp directory, the built-in
// template is used and no design file is excluded.
//
// Example:
//
//	output: build/sim/src/top_sim.vhdl
//	template: hdl/top_sim.templ
//	date_layout: "2006-01-02 15:04"
//	log:
//	  level: debug
//	  format: json
//	exclude:
//	  - "scratch/**"
//	  - "*.draft.yaml"
package settings

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"vhdltop/internal/simtop"
)

// Dir is the settings directory, relative to a project root.
const Dir = ".vhdltop"

// Settings holds vhdltop configuration from .vhdltop/settings.yaml.
type Settings struct {
	// Output is the path of the generated top file. Relative paths are
	// resolved against the project root.
	Output string `yaml:"output,omitempty"`
	// Template overrides the built-in template. Relative to the project root.
	Template string `yaml:"template,omitempty"`
	// DateLayout is a Go time layout for the %date% placeholder.
	DateLayout string `yaml:"date_layout,omitempty"`
	Log        Log    `yaml:"log,omitempty"`
	// Exclude lists globs of design files to skip, relative to the project
	// root. "prefix/**" matches a whole directory.
	Exclude []string `yaml:"exclude,omitempty"`

	root string
}

// Log configures the logger.
type Log struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn or error
	Format string `yaml:"format,omitempty"` // text or json
}

// Path returns the settings file path for root.
func Path(root string) string {
	return filepath.Join(root, Dir, "settings.yaml")
}

// LoadSettings reads .vhdltop/settings.yaml relative to root.
// Returns nil (not an error) if the file does not exist.
func LoadSettings(root string) (*Settings, error) {
	path := Path(root)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	s.root = root
	return &s, nil
}

// Save writes s to .vhdltop/settings.yaml under root. Errors if the file
// already exists.
func (s *Settings) Save(root string) error {
	path := Path(root)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("settings already exist at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	s.root = root
	return nil
}

func (s *Settings) resolve(p string) string {
	if filepath.IsAbs(p) || s.root == "" {
		return p
	}
	return filepath.Join(s.root, p)
}

// OutputPath returns the path of the generated top file.
// Safe to call on a nil *Settings receiver.
func (s *Settings) OutputPath() string {
	if s == nil || s.Output == "" {
		return simtop.DefaultOutputPath()
	}
	return s.resolve(s.Output)
}

// TemplateSource returns the namespace and name of the template to load.
// Safe to call on a nil *Settings receiver.
func (s *Settings) TemplateSource() (fs.FS, string) {
	if s == nil || s.Template == "" {
		return simtop.Templates(), simtop.DefaultTemplateName
	}
	p := s.resolve(s.Template)
	return os.DirFS(filepath.Dir(p)), filepath.Base(p)
}

// GeneratorOptions returns the simtop options described by s.
// Safe to call on a nil *Settings receiver.
func (s *Settings) GeneratorOptions(logger *slog.Logger) simtop.Options {
	fsys, name := s.TemplateSource()
	opts := simtop.Options{
		OutputPath:   s.OutputPath(),
		Templates:    fsys,
		TemplateName: name,
		Logger:       logger,
	}
	if s != nil {
		opts.DateLayout = s.DateLayout
	}
	return opts
}

// IsExcluded reports whether relPath (forward-slash, relative to root)
// matches any exclude rule. Safe to call on a nil *Settings receiver.
func (s *Settings) IsExcluded(relPath string) bool {
	if s == nil {
		return false
	}
	for _, rule := range s.Exclude {
		if matchExcludePattern(strings.TrimPrefix(rule, "./"), relPath) {
			return true
		}
	}
	return false
}

// matchExcludePattern reports whether path matches an exclude glob pattern.
//
// "prefix/**" matches the prefix directory itself and every path beneath it.
// All other patterns use filepath.Match semantics (single * does not cross /).
func matchExcludePattern(pattern, path string) bool {
	if strings.HasSuffix(pattern, "/**") {
		prefix := strings.TrimSuffix(pattern, "/**")
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	matched, _ := filepath.Match(pattern, path)
	return matched
}

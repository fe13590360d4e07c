package simtop

import (
	"embed"
	"io/fs"
	"strings"

	"github.com/pkg/errors"
)

// Template placeholders.
const (
	DatePlaceholder       = "%date%"
	PortsPlaceholder      = "%ports%"
	ComponentsPlaceholder = "%components%"
	MapPlaceholder        = "%map%"
)

// DefaultTemplateName is the name of the built-in template in Templates().
const DefaultTemplateName = "top_sim.templ"

//go:embed templates
var embedded embed.FS

// Templates returns the built-in template namespace.
func Templates() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// LoadTemplate reads template name from fsys and checks that it carries every
// placeholder.
func LoadTemplate(fsys fs.FS, name string) (string, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", &Error{Kind: ResourceLoad, Err: errors.Wrapf(err, "read template %s", name)}
	}
	tmpl := string(data)
	for _, ph := range []string{DatePlaceholder, PortsPlaceholder, ComponentsPlaceholder, MapPlaceholder} {
		if !strings.Contains(tmpl, ph) {
			return "", &Error{Kind: ResourceLoad, Err: errors.Errorf("template %s: missing placeholder %s", name, ph)}
		}
	}
	return tmpl, nil
}

// Render substitutes the placeholders of tmpl in a single pass. Generated
// text is never scanned for placeholders.
func Render(tmpl, date string, s Sections) string {
	return strings.NewReplacer(
		DatePlaceholder, date,
		PortsPlaceholder, s.Ports,
		ComponentsPlaceholder, s.Components,
		MapPlaceholder, s.Map,
	).Replace(tmpl)
}

// Package simtop generates the VHDL simulation top file: a wrapper that
// exposes the ports of every entity in a design and instantiates each of them,
// so that one simulator run covers the whole design.
//
// A Generator only does real work when its output is stale. It starts
// invalid, becomes valid after a successful write and is made invalid again
// by Invalidate whenever the design changes.
package simtop

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"

	"vhdltop/internal/entity"
)

// DefaultDateLayout formats the %date% placeholder.
const DefaultDateLayout = "2006-01-02 15:04:05"

// DefaultFileName is the base name of the generated file.
const DefaultFileName = "top_sim.vhdl"

// DefaultOutputPath returns the default location of the generated file.
func DefaultOutputPath() string {
	return filepath.Join(os.TempDir(), "vhdltop", "sim", "src", DefaultFileName)
}

// Options configures a Generator. Zero fields take their defaults.
type Options struct {
	OutputPath   string       // default DefaultOutputPath()
	Templates    fs.FS        // default Templates()
	TemplateName string       // default DefaultTemplateName
	DateLayout   string       // default DefaultDateLayout
	Now          func() time.Time
	Logger       *slog.Logger // default slog.Default()
}

// Generator writes the simulation top file for a list of entities.
type Generator struct {
	opts Options

	// mu guards valid and the output file for a whole Generate call.
	mu    sync.Mutex
	valid bool
}

// New returns an invalid Generator.
func New(opts Options) *Generator {
	if opts.OutputPath == "" {
		opts.OutputPath = DefaultOutputPath()
	}
	if opts.Templates == nil {
		opts.Templates = Templates()
	}
	if opts.TemplateName == "" {
		opts.TemplateName = DefaultTemplateName
	}
	if opts.DateLayout == "" {
		opts.DateLayout = DefaultDateLayout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Generator{opts: opts}
}

// OutputPath returns the path of the generated file.
func (g *Generator) OutputPath() string { return g.opts.OutputPath }

// Valid reports whether the output file is up to date.
func (g *Generator) Valid() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.valid
}

// Invalidate forces the next Generate call to rebuild and rewrite the file.
func (g *Generator) Invalidate() {
	g.mu.Lock()
	g.valid = false
	g.mu.Unlock()
}

// Generate writes the simulation top for entities unless the current output
// is still valid. On failure the error is logged and returned, the previous
// output file is left untouched and the generator stays invalid.
func (g *Generator) Generate(entities []entity.Entity) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	log := g.opts.Logger.With("path", g.opts.OutputPath)
	if g.valid {
		log.Debug("top file is up to date")
		return nil
	}

	doc, err := g.Document(entities)
	if err == nil {
		err = writeFile(g.opts.OutputPath, doc)
	}
	if err != nil {
		log.Error("could not generate top file", "error", err)
		return err
	}
	g.valid = true
	log.Info("top file generated", "entities", len(entities), "bytes", len(doc))
	return nil
}

// Document returns the rendered top file for entities. It neither writes the
// output file nor changes the generator state.
func (g *Generator) Document(entities []entity.Entity) ([]byte, error) {
	s, err := BuildSections(entities)
	if err != nil {
		return nil, err
	}
	tmpl, err := LoadTemplate(g.opts.Templates, g.opts.TemplateName)
	if err != nil {
		return nil, err
	}
	date := g.opts.Now().Format(g.opts.DateLayout)
	return []byte(Render(tmpl, date, s)), nil
}

// writeFile replaces path with data. The data goes to a temporary file next to
// path first so a failed write leaves the previous content in place.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &Error{Kind: Write, Err: errors.Wrapf(err, "mkdir %s", dir)}
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return &Error{Kind: Write, Err: errors.Wrapf(err, "create temp file in %s", dir)}
	}
	tmpName := tmp.Name()
	fail := func(err error, msg string) error {
		tmp.Close()
		os.Remove(tmpName)
		return &Error{Kind: Write, Err: errors.Wrap(err, msg)}
	}
	if _, err := tmp.Write(data); err != nil {
		return fail(err, "write "+tmpName)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(err, "chmod "+tmpName)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &Error{Kind: Write, Err: errors.Wrap(err, "close "+tmpName)}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &Error{Kind: Write, Err: errors.Wrapf(err, "rename to %s", path)}
	}
	return nil
}

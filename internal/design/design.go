// Package design loads the ordered list of entities of a design from
// manifest files.
//
// Two formats are accepted. YAML (.yaml, .yml):
//
//	entities:
//	  - name: alu
//	    kind: vhdl
//	    ports:
//	      - {name: a, direction: in, width: 8}
//	      - {name: q, direction: out, width: 8}
//	  - name: uart
//	    kind: component
//	    pins:
//	      - {tooltip: tx, type: output}
//
// HCL (.hcl):
//
//	entity "vhdl" "alu" {
//	  port "a" {
//	    direction = in
//	    width     = 8
//	  }
//	}
//	entity "component" "uart" {
//	  pin "tx" { type = pin.output }
//	}
//
// Omitted widths default to 1. Entities keep their order within a file and
// files are read in lexical path order.
package design

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"vhdltop/internal/entity"
)

// Entity kinds.
const (
	KindVhdl      = "vhdl"
	KindComponent = "component"
)

// entitySpec is the format-agnostic description of one entity.
type entitySpec struct {
	Name  string     `yaml:"name"`
	Kind  string     `yaml:"kind"`
	Ports []portSpec `yaml:"ports"`
	Pins  []pinSpec  `yaml:"pins"`
}

type portSpec struct {
	Name      string `yaml:"name"`
	Direction string `yaml:"direction"`
	Width     *int   `yaml:"width"`
}

type pinSpec struct {
	ToolTip string `yaml:"tooltip"`
	Type    string `yaml:"type"` // inout, input, output or a table index
	Width   *int   `yaml:"width"`
}

// Loader reads design manifests.
type Loader struct {
	// Root is the directory Skip paths are relative to. Defaults to ".".
	Root string
	// Skip, when set, reports whether a file found while walking a directory
	// is ignored. It receives a forward-slash path relative to Root.
	Skip func(rel string) bool
}

// Load reads every design file named by paths, walking directories, and
// returns the entities in order.
func (l *Loader) Load(paths ...string) ([]entity.Entity, error) {
	files, err := l.findDesignFiles(paths)
	if err != nil {
		return nil, err
	}
	var entities []entity.Entity
	for _, file := range files {
		specs, err := readFile(file)
		if err != nil {
			return nil, err
		}
		for _, spec := range specs {
			e, err := spec.entity()
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			entities = append(entities, e)
		}
	}
	return entities, nil
}

func isDesignFile(path string) bool {
	switch filepath.Ext(path) {
	case ".yaml", ".yml", ".hcl":
		return true
	}
	return false
}

// findDesignFiles expands paths into a flat, duplicate-free list of design
// files. Hidden directories are not walked.
func (l *Loader) findDesignFiles(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("design %s: %w", path, err)
		}
		if !info.IsDir() {
			if !isDesignFile(path) {
				return nil, fmt.Errorf("design %s: unsupported file type", path)
			}
			add(path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != path && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !isDesignFile(p) || l.skip(p) {
				return nil
			}
			add(p)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", path, err)
		}
	}
	return files, nil
}

func (l *Loader) skip(p string) bool {
	if l.Skip == nil {
		return false
	}
	root := l.Root
	if root == "" {
		root = "."
	}
	rel, err := filepath.Rel(root, p)
	if err != nil {
		rel = p
	}
	return l.Skip(filepath.ToSlash(rel))
}

func readFile(path string) ([]entitySpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read design %s: %w", path, err)
	}
	if filepath.Ext(path) == ".hcl" {
		return decodeHCL(path, data)
	}
	return decodeYAML(path, data)
}

func (s entitySpec) entity() (entity.Entity, error) {
	switch s.Kind {
	case "", KindVhdl:
		if len(s.Pins) > 0 {
			return nil, fmt.Errorf("entity %q: pins are only allowed on %s entities", s.Name, KindComponent)
		}
		ports := make([]entity.Port, 0, len(s.Ports))
		for _, p := range s.Ports {
			dir, err := entity.ParseDirection(p.Direction)
			if err != nil {
				return nil, fmt.Errorf("entity %q port %q: %w", s.Name, p.Name, err)
			}
			ports = append(ports, entity.Port{Name: p.Name, Dir: dir, Width: width(p.Width)})
		}
		return &entity.VhdlEntity{Name: s.Name, Content: &entity.Content{Ports: ports}}, nil

	case KindComponent:
		if len(s.Ports) > 0 {
			return nil, fmt.Errorf("entity %q: ports are only allowed on %s entities", s.Name, KindVhdl)
		}
		pins := make([]entity.Pin, 0, len(s.Pins))
		for _, p := range s.Pins {
			typ, err := pinType(p.Type)
			if err != nil {
				return nil, fmt.Errorf("entity %q pin %q: %w", s.Name, p.ToolTip, err)
			}
			pins = append(pins, entity.Pin{ToolTip: p.ToolTip, Type: typ, BitWidth: width(p.Width)})
		}
		return &entity.Component{Name: s.Name, Pins: pins}, nil
	}
	return nil, fmt.Errorf("entity %q: unknown kind %q", s.Name, s.Kind)
}

func width(w *int) int {
	if w == nil {
		return 1
	}
	return *w
}

// pinType accepts a pin type name or its index. Indexes are not range
// checked here; entity.Extract rejects invalid ones.
func pinType(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inout":
		return entity.PinInOut, nil
	case "in", "input":
		return entity.PinInput, nil
	case "out", "output":
		return entity.PinOutput, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("unknown pin type %q", s)
	}
	return n, nil
}

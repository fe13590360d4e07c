package simtop

// sections.go: builds the three generated blocks of the simulation top:
//
//   ports       one flat port list exposing <entity>_<port> for every port
//   components  one component declaration per entity instance
//   map         one port map per entity instance, wiring local ports to the
//               prefixed top-level signals
//
// Instances are not deduplicated: two instances resolving to the same name
// produce two blocks.

import (
	"strings"

	"vhdltop/internal/entity"
)

const (
	banner  = "Autogenerated by vhdltop --"
	divider = "---------------------------"
)

// Sections holds the generated text spliced into the template.
type Sections struct {
	Ports      string
	Components string
	Map        string
}

// resolved is an entity whose interface has been extracted.
type resolved struct {
	name  string
	ports []entity.Port
}

// BuildSections extracts every entity once, in order, and builds the three
// sections. It fails on the first entity whose interface cannot be resolved.
func BuildSections(entities []entity.Entity) (Sections, error) {
	rs := make([]resolved, 0, len(entities))
	for _, e := range entities {
		name, ports, err := entity.Extract(e)
		if err != nil {
			return Sections{}, &Error{Kind: AttributeResolution, Err: err}
		}
		rs = append(rs, resolved{name: name, ports: ports})
	}
	return Sections{
		Ports:      buildPorts(rs),
		Components: buildComponents(rs),
		Map:        buildMap(rs),
	}, nil
}

// buildPorts builds the top-level port list. A single separator flag spans
// all entities.
func buildPorts(rs []resolved) string {
	var b strings.Builder
	b.WriteString(banner + "\n")
	first := true
	for _, r := range rs {
		for _, p := range r.ports {
			if !first {
				b.WriteString(";\n")
			}
			first = false
			b.WriteString("\t\t" + r.name + "_" + p.Name + " : " + p.Dir.Keyword() + " " + p.TypeString())
		}
	}
	b.WriteString("\n\t\t" + divider + "\n")
	return b.String()
}

// buildComponents builds one component declaration per entity. Entities
// without ports get no port clause.
func buildComponents(rs []resolved) string {
	var b strings.Builder
	b.WriteString(banner + "\n")
	for _, r := range rs {
		b.WriteString("\tcomponent " + r.name + "\n")
		if len(r.ports) > 0 {
			b.WriteString("\t\tport (\n")
			for i, p := range r.ports {
				if i > 0 {
					b.WriteString(";\n")
				}
				b.WriteString("\t\t\t" + p.Name + " : " + p.Dir.Keyword() + " " + p.TypeString())
			}
			b.WriteString("\n\t\t);\n")
		}
		b.WriteString("\tend component ;\n")
		b.WriteString("\t\n")
	}
	b.WriteString("\t" + divider + "\n")
	return b.String()
}

// buildMap builds one instance per entity, named <entity>_map.
func buildMap(rs []resolved) string {
	var b strings.Builder
	b.WriteString(banner + "\n")
	for _, r := range rs {
		if len(r.ports) == 0 {
			b.WriteString("\t" + r.name + "_map : " + r.name + ";\n")
			b.WriteString("\t\n")
			continue
		}
		b.WriteString("\t" + r.name + "_map : " + r.name + " port map (\n")
		for i, p := range r.ports {
			if i > 0 {
				b.WriteString(",\n")
			}
			b.WriteString("\t\t" + p.Name + " => " + r.name + "_" + p.Name)
		}
		b.WriteString("\n\t);\n")
		b.WriteString("\t\n")
	}
	b.WriteString("\t" + divider + "\n")
	return b.String()
}

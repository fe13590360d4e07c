// Package entity describes the port interface of the sub-entities placed in a
// design.
//
// Two variants produce port lists: a VhdlEntity carries ports parsed from its
// own VHDL source, a Component is a black box whose pins are described by a
// type index and a fixed bit width. Both satisfy Entity, and Extract is the
// only place that needs to know the difference.
package entity

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrAttribute is wrapped by every error caused by a missing or malformed
// entity attribute.
var ErrAttribute = errors.New("entity attribute")

// Direction is the mode of a port.
type Direction int

const (
	In Direction = iota + 1
	Out
	InOut
)

// Keyword returns the VHDL mode keyword for d.
func (d Direction) Keyword() string {
	switch d {
	case In:
		return "in"
	case Out:
		return "out"
	case InOut:
		return "inout"
	}
	return ""
}

func (d Direction) String() string {
	if k := d.Keyword(); k != "" {
		return k
	}
	return "Direction(" + strconv.Itoa(int(d)) + ")"
}

// ParseDirection parses a port mode. Both the VHDL keywords and their long
// forms ("input", "output") are accepted.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in", "input":
		return In, nil
	case "out", "output":
		return Out, nil
	case "inout":
		return InOut, nil
	}
	return 0, errors.Wrapf(ErrAttribute, "unknown port direction %q", s)
}

// Port is one signal on an entity's boundary.
type Port struct {
	Name  string
	Dir   Direction
	Width int
}

// TypeString returns the VHDL type of p: std_logic for scalar ports,
// std_logic_vector(w-1 downto 0) otherwise.
func (p Port) TypeString() string {
	if p.Width > 1 {
		return "std_logic_vector(" + strconv.Itoa(p.Width-1) + " downto 0)"
	}
	return "std_logic"
}

// Entity is a placed sub-entity that can describe its simulation interface.
type Entity interface {
	// SimInterface returns the entity's simulation name and its ports in
	// declaration order.
	SimInterface() (name string, ports []Port, err error)
}

// Content is the pre-parsed content of a VHDL entity.
type Content struct {
	Ports []Port
}

// VhdlEntity is an entity defined by VHDL source.
type VhdlEntity struct {
	Name    string
	Content *Content
}

func (e *VhdlEntity) SimInterface() (string, []Port, error) {
	if e.Content == nil {
		return "", nil, errors.Wrapf(ErrAttribute, "entity %q has no parsed content", e.Name)
	}
	ports := make([]Port, len(e.Content.Ports))
	copy(ports, e.Content.Ports)
	return e.Name, ports, nil
}

// pinTypes maps a Pin.Type index to a port direction.
var pinTypes = [...]Direction{InOut, In, Out}

// Pin types, as indexes into pinTypes.
const (
	PinInOut = iota
	PinInput
	PinOutput
)

// Pin is a port of a black-box component.
type Pin struct {
	ToolTip  string // pin name
	Type     int    // PinInOut, PinInput or PinOutput
	BitWidth int
}

// Component is a black-box entity described only by its pins.
type Component struct {
	Name string
	Pins []Pin
}

func (c *Component) SimInterface() (string, []Port, error) {
	ports := make([]Port, 0, len(c.Pins))
	for i, pin := range c.Pins {
		if pin.Type < 0 || pin.Type >= len(pinTypes) {
			return "", nil, errors.Wrapf(ErrAttribute, "component %q: pin %d (%q) has invalid type %d", c.Name, i, pin.ToolTip, pin.Type)
		}
		ports = append(ports, Port{Name: pin.ToolTip, Dir: pinTypes[pin.Type], Width: pin.BitWidth})
	}
	return c.Name, ports, nil
}

// Extract resolves the simulation name and ports of e and checks that they
// can be spliced into generated VHDL.
func Extract(e Entity) (string, []Port, error) {
	if e == nil {
		return "", nil, errors.Wrap(ErrAttribute, "nil entity")
	}
	name, ports, err := e.SimInterface()
	if err != nil {
		return "", nil, err
	}
	if !ValidIdentifier(name) {
		return "", nil, errors.Wrapf(ErrAttribute, "invalid simulation name %q", name)
	}
	seen := make(map[string]bool, len(ports))
	for _, p := range ports {
		if !ValidIdentifier(p.Name) {
			return "", nil, errors.Wrapf(ErrAttribute, "%s: invalid port name %q", name, p.Name)
		}
		key := strings.ToLower(p.Name)
		if seen[key] {
			return "", nil, errors.Wrapf(ErrAttribute, "%s: duplicate port %q", name, p.Name)
		}
		seen[key] = true
		if p.Dir.Keyword() == "" {
			return "", nil, errors.Wrapf(ErrAttribute, "%s.%s: invalid direction %v", name, p.Name, p.Dir)
		}
		if p.Width < 1 {
			return "", nil, errors.Wrapf(ErrAttribute, "%s.%s: width must be at least 1, got %d", name, p.Name, p.Width)
		}
	}
	return name, ports, nil
}

// ValidIdentifier reports whether s is a VHDL basic identifier: a letter
// followed by letters, digits and single underscores, not ending with an
// underscore.
func ValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	prev := '_'
	for i, r := range s {
		switch {
		case isLetter(r):
		case i > 0 && r >= '0' && r <= '9':
		case i > 0 && r == '_' && prev != '_':
		default:
			return false
		}
		prev = r
	}
	return prev != '_'
}

func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

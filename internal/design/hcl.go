package design

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"vhdltop/internal/entity"
)

// hclFile is used to decode all top-level blocks of an HCL design file.
type hclFile struct {
	Entities []*hclEntity `hcl:"entity,block"`
}

type hclEntity struct {
	Kind  string     `hcl:"kind,label"`
	Name  string     `hcl:"name,label"`
	Ports []*hclPort `hcl:"port,block"`
	Pins  []*hclPin  `hcl:"pin,block"`
}

type hclPort struct {
	Name      string `hcl:"name,label"`
	Direction string `hcl:"direction"`
	Width     *int   `hcl:"width,optional"`
}

type hclPin struct {
	ToolTip string `hcl:"tooltip,label"`
	Type    int    `hcl:"type"`
	Width   *int   `hcl:"width,optional"`
}

// evalContext lets design files write directions and pin types as bare
// keywords: direction = in, type = pin.output.
var evalContext = &hcl.EvalContext{
	Variables: map[string]cty.Value{
		"in":    cty.StringVal("in"),
		"out":   cty.StringVal("out"),
		"inout": cty.StringVal("inout"),
		"pin": cty.ObjectVal(map[string]cty.Value{
			"inout":  cty.NumberIntVal(entity.PinInOut),
			"input":  cty.NumberIntVal(entity.PinInput),
			"output": cty.NumberIntVal(entity.PinOutput),
		}),
	},
}

func decodeHCL(path string, data []byte) ([]entitySpec, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root hclFile
	diags = gohcl.DecodeBody(file.Body, evalContext, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	specs := make([]entitySpec, 0, len(root.Entities))
	for _, e := range root.Entities {
		spec := entitySpec{Name: e.Name, Kind: e.Kind}
		for _, p := range e.Ports {
			spec.Ports = append(spec.Ports, portSpec{Name: p.Name, Direction: p.Direction, Width: p.Width})
		}
		for _, p := range e.Pins {
			spec.Pins = append(spec.Pins, pinSpec{ToolTip: p.ToolTip, Type: strconv.Itoa(p.Type), Width: p.Width})
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

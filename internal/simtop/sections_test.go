package simtop_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"vhdltop/internal/entity"
	"vhdltop/internal/simtop"
)

// exampleDesign returns E1(a: in, b: out[4]) and E2(x: inout).
func exampleDesign() []entity.Entity {
	return []entity.Entity{
		&entity.VhdlEntity{Name: "E1", Content: &entity.Content{Ports: []entity.Port{
			{Name: "a", Dir: entity.In, Width: 1},
			{Name: "b", Dir: entity.Out, Width: 4},
		}}},
		&entity.Component{Name: "E2", Pins: []entity.Pin{
			{ToolTip: "x", Type: entity.PinInOut, BitWidth: 1},
		}},
	}
}

func TestBuildSections_Example(t *testing.T) {
	s, err := simtop.BuildSections(exampleDesign())
	require.NoError(t, err)

	wantPorts := "Autogenerated by vhdltop --\n" +
		"\t\tE1_a : in std_logic;\n" +
		"\t\tE1_b : out std_logic_vector(3 downto 0);\n" +
		"\t\tE2_x : inout std_logic\n" +
		"\t\t---------------------------\n"
	wantComponents := "Autogenerated by vhdltop --\n" +
		"\tcomponent E1\n" +
		"\t\tport (\n" +
		"\t\t\ta : in std_logic;\n" +
		"\t\t\tb : out std_logic_vector(3 downto 0)\n" +
		"\t\t);\n" +
		"\tend component ;\n" +
		"\t\n" +
		"\tcomponent E2\n" +
		"\t\tport (\n" +
		"\t\t\tx : inout std_logic\n" +
		"\t\t);\n" +
		"\tend component ;\n" +
		"\t\n" +
		"\t---------------------------\n"
	wantMap := "Autogenerated by vhdltop --\n" +
		"\tE1_map : E1 port map (\n" +
		"\t\ta => E1_a,\n" +
		"\t\tb => E1_b\n" +
		"\t);\n" +
		"\t\n" +
		"\tE2_map : E2 port map (\n" +
		"\t\tx => E2_x\n" +
		"\t);\n" +
		"\t\n" +
		"\t---------------------------\n"

	if diff := cmp.Diff(wantPorts, s.Ports); diff != "" {
		t.Errorf("ports mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantComponents, s.Components); diff != "" {
		t.Errorf("components mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantMap, s.Map); diff != "" {
		t.Errorf("map mismatch (-want +got):\n%s", diff)
	}
}

// withPorts returns a VHDL entity with n scalar input ports.
func withPorts(name string, n int) entity.Entity {
	ports := make([]entity.Port, n)
	for i := range ports {
		ports[i] = entity.Port{Name: "p" + strconv.Itoa(i), Dir: entity.In, Width: 1}
	}
	return &entity.VhdlEntity{Name: name, Content: &entity.Content{Ports: ports}}
}

func TestBuildSections_Separators(t *testing.T) {
	counts := []int{3, 1, 5, 2}
	var design []entity.Entity
	total := 0
	for i, n := range counts {
		design = append(design, withPorts("e"+strconv.Itoa(i), n))
		total += n
	}

	s, err := simtop.BuildSections(design)
	require.NoError(t, err)

	// One flat list across all entities.
	require.Equal(t, total-1, strings.Count(s.Ports, ";\n"))

	// Component and map separators reset per entity.
	blocks := strings.Split(s.Components, "\tcomponent ")[1:]
	require.Len(t, blocks, len(counts))
	for i, b := range blocks {
		require.Equal(t, counts[i]-1, strings.Count(b, ";\n\t\t\t"), "component %d", i)
	}
	maps := strings.Split(s.Map, "_map : ")[1:]
	require.Len(t, maps, len(counts))
	for i, m := range maps {
		require.Equal(t, counts[i]-1, strings.Count(m, ",\n"), "map %d", i)
	}
}

func TestBuildSections_Widths(t *testing.T) {
	s, err := simtop.BuildSections([]entity.Entity{
		&entity.VhdlEntity{Name: "w", Content: &entity.Content{Ports: []entity.Port{
			{Name: "bit", Dir: entity.In, Width: 1},
			{Name: "byte", Dir: entity.Out, Width: 8},
		}}},
	})
	require.NoError(t, err)
	require.Contains(t, s.Ports, "w_bit : in std_logic;\n")
	require.Contains(t, s.Ports, "w_byte : out std_logic_vector(7 downto 0)\n")
	require.Contains(t, s.Components, "bit : in std_logic;\n")
	require.Contains(t, s.Components, "byte : out std_logic_vector(7 downto 0)\n")
}

func TestBuildSections_InstancesNotDeduplicated(t *testing.T) {
	s, err := simtop.BuildSections([]entity.Entity{withPorts("dup", 1), withPorts("dup", 1)})
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(s.Ports, "dup_p0"))
	require.Equal(t, 2, strings.Count(s.Components, "\tcomponent dup\n"))
	require.Equal(t, 2, strings.Count(s.Map, "\tdup_map : dup port map (\n"))
}

func TestBuildSections_NoPorts(t *testing.T) {
	s, err := simtop.BuildSections([]entity.Entity{withPorts("empty", 0), withPorts("one", 1)})
	require.NoError(t, err)

	require.Equal(t, "Autogenerated by vhdltop --\n\t\tone_p0 : in std_logic\n\t\t---------------------------\n", s.Ports)
	require.Contains(t, s.Components, "\tcomponent empty\n\tend component ;\n")
	require.Contains(t, s.Map, "\tempty_map : empty;\n")
}

func TestBuildSections_Empty(t *testing.T) {
	s, err := simtop.BuildSections(nil)
	require.NoError(t, err)
	require.Equal(t, "Autogenerated by vhdltop --\n\n\t\t---------------------------\n", s.Ports)
	require.Equal(t, "Autogenerated by vhdltop --\n\t---------------------------\n", s.Components)
	require.Equal(t, "Autogenerated by vhdltop --\n\t---------------------------\n", s.Map)
}

func TestBuildSections_AbortsOnBadEntity(t *testing.T) {
	design := append(exampleDesign(), &entity.VhdlEntity{Name: "broken"})
	s, err := simtop.BuildSections(design)
	require.Error(t, err)
	require.True(t, simtop.IsKind(err, simtop.AttributeResolution), "got %v", err)
	require.True(t, errors.Is(err, entity.ErrAttribute))
	require.Equal(t, simtop.Sections{}, s)
}

package simtop_test

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"vhdltop/internal/simtop"
)

func TestLoadTemplate_Embedded(t *testing.T) {
	tmpl, err := simtop.LoadTemplate(simtop.Templates(), simtop.DefaultTemplateName)
	require.NoError(t, err)
	require.Contains(t, tmpl, "entity top_sim is")
	for _, ph := range []string{"%date%", "%ports%", "%components%", "%map%"} {
		require.Equal(t, 1, strings.Count(tmpl, ph), ph)
	}
}

func TestLoadTemplate_Missing(t *testing.T) {
	_, err := simtop.LoadTemplate(fstest.MapFS{}, "nope.templ")
	require.Error(t, err)
	require.True(t, simtop.IsKind(err, simtop.ResourceLoad), "got %v", err)
}

func TestLoadTemplate_MissingPlaceholder(t *testing.T) {
	fsys := fstest.MapFS{
		"t.templ": {Data: []byte("%date% %ports% %map%")},
	}
	_, err := simtop.LoadTemplate(fsys, "t.templ")
	require.Error(t, err)
	require.True(t, simtop.IsKind(err, simtop.ResourceLoad))
	require.Contains(t, err.Error(), "%components%")
}

func TestRender(t *testing.T) {
	got := simtop.Render("-- %date%\n(%ports%)\n[%components%]\n{%map%}\n", "2026-10-19", simtop.Sections{
		Ports:      "P",
		Components: "C",
		Map:        "M",
	})
	require.Equal(t, "-- 2026-10-19\n(P)\n[C]\n{M}\n", got)
}

func TestRender_SinglePass(t *testing.T) {
	got := simtop.Render("%ports%|%map%", "d", simtop.Sections{Ports: "%map%", Map: "M"})
	require.Equal(t, "%map%|M", got)
}

func TestRender_EmbeddedTemplate(t *testing.T) {
	tmpl, err := simtop.LoadTemplate(simtop.Templates(), simtop.DefaultTemplateName)
	require.NoError(t, err)
	s, err := simtop.BuildSections(exampleDesign())
	require.NoError(t, err)

	doc := simtop.Render(tmpl, "2026-10-19 12:00:00", s)
	require.Contains(t, doc, "-- Simulation top, generated 2026-10-19 12:00:00\n")
	require.Contains(t, doc, "\t\t-- Autogenerated by vhdltop --\n\t\tE1_a : in std_logic;\n")
	require.Contains(t, doc, "\t-- Autogenerated by vhdltop --\n\tcomponent E1\n")
	require.Contains(t, doc, "\tE2_map : E2 port map (\n\t\tx => E2_x\n\t);\n")
	require.NotContains(t, doc, "%")
}

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"vhdltop/internal/design"
	"vhdltop/internal/logging"
	"vhdltop/internal/settings"
	"vhdltop/internal/simtop"
)

// command describes a CLI subcommand.
type command struct {
	name  string
	short string
	usage string
	long  string
	run   func(args []string) error
}

var commands = []command{
	{
		name:  "init",
		short: "Create .vhdltop/settings.yaml",
		usage: "vhdltop init [-root dir] [-defaults]",
		long: `Prompt for the output path, template and date layout, then write
<root>/.vhdltop/settings.yaml.

With -defaults no prompt is shown and the default values are written.
Errors if the settings file already exists.
`,
		run: runInit,
	},
	{
		name:  "generate",
		short: "Write the simulation top file for a design",
		usage: "vhdltop generate [-root dir] [-o file] [-log-level level] [-log-format fmt] <design>...",
		long: `Load every design manifest (.yaml, .yml or .hcl files, or directories
containing them) and write the VHDL simulation top file.

The output path, template and date layout come from
<root>/.vhdltop/settings.yaml; -o overrides the output path.
`,
		run: runGenerate,
	},
	{
		name:  "render",
		short: "Print the simulation top file for a design",
		usage: "vhdltop render [-root dir] <design>...",
		long: `Same as generate, but print the document to stdout instead of writing
the output file.
`,
		run: runRender,
	},
	{
		name:  "clean",
		short: "Remove the generated simulation top file",
		usage: "vhdltop clean [-root dir] [-o file]",
		long: `Remove the file written by generate. Succeeds if it does not exist.
`,
		run: runClean,
	},
}

// stdout receives command output.
var stdout io.Writer = os.Stdout

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "vhdltop: VHDL simulation top generator\n\n")
	fmt.Fprintf(w, "Usage:\n  vhdltop <command> [arguments]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.name, cmd.short)
	}
	fmt.Fprintf(w, "\nRun 'vhdltop help <command>' for details on a specific command.\n")
}

func printCommandHelp(w io.Writer, name string) {
	for _, cmd := range commands {
		if cmd.name == name {
			fmt.Fprintf(w, "Usage: %s\n\n%s", cmd.usage, cmd.long)
			return
		}
	}
	fmt.Fprintf(w, "vhdltop: unknown command %q\n\nRun 'vhdltop help' for usage.\n", name)
}

func dispatch(args []string) error {
	if len(args) == 0 || args[0] == "--help" || args[0] == "-h" {
		printUsage(stdout)
		return nil
	}
	if args[0] == "help" {
		if len(args) >= 2 {
			printCommandHelp(stdout, args[1])
		} else {
			printUsage(stdout)
		}
		return nil
	}
	for _, cmd := range commands {
		if cmd.name == args[0] {
			return cmd.run(args[1:])
		}
	}
	return fmt.Errorf("unknown command %q\n\nRun 'vhdltop help' for usage.", args[0])
}

// ---------------------------------------------------------------------------
// shared flags
// ---------------------------------------------------------------------------

// project holds what every design command needs: settings, logger and the
// loaded design.
type project struct {
	root     string
	settings *settings.Settings
	logger   *slog.Logger
}

type projectFlags struct {
	root      *string
	output    *string
	logLevel  *string
	logFormat *string
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func addProjectFlags(fs *flag.FlagSet) projectFlags {
	return projectFlags{
		root:      fs.String("root", ".", "Project root containing .vhdltop/settings.yaml."),
		output:    fs.String("o", "", "Output file, overrides the settings."),
		logLevel:  fs.String("log-level", "", "Log level: debug, info, warn or error."),
		logFormat: fs.String("log-format", "", "Log format: text or json."),
	}
}

func (f projectFlags) open() (*project, error) {
	s, err := settings.LoadSettings(*f.root)
	if err != nil {
		return nil, err
	}
	level, format := *f.logLevel, *f.logFormat
	if s != nil {
		if level == "" {
			level = s.Log.Level
		}
		if format == "" {
			format = s.Log.Format
		}
	}
	logger, err := logging.New(level, format, os.Stderr)
	if err != nil {
		return nil, err
	}
	return &project{root: *f.root, settings: s, logger: logger}, nil
}

func (p *project) generator(output string) *simtop.Generator {
	opts := p.settings.GeneratorOptions(p.logger)
	if output != "" {
		opts.OutputPath = output
	}
	return simtop.New(opts)
}

func (p *project) loader() *design.Loader {
	return &design.Loader{Root: p.root, Skip: p.settings.IsExcluded}
}

// ---------------------------------------------------------------------------
// init
// ---------------------------------------------------------------------------

func runInit(args []string) error {
	fs := newFlagSet("init")
	root := fs.String("root", ".", "Project root.")
	defaults := fs.Bool("defaults", false, "Write default values without prompting.")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("usage: vhdltop init [-root dir] [-defaults]")
	}

	answers := make(map[string]string, len(initQuestions))
	for _, q := range initQuestions {
		answers[q.key] = q.value
	}
	if !*defaults {
		var err error
		if answers, err = promptQuestions(initQuestions); err != nil {
			return fmt.Errorf("prompt: %w", err)
		}
	}

	s := &settings.Settings{
		Output:     answers["output"],
		Template:   answers["template"],
		DateLayout: answers["date_layout"],
	}
	if err := s.Save(*root); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s\n", settings.Path(*root))
	return nil
}

// ---------------------------------------------------------------------------
// generate
// ---------------------------------------------------------------------------

func runGenerate(args []string) error {
	fs := newFlagSet("generate")
	pf := addProjectFlags(fs)
	if err := fs.Parse(args); err != nil || fs.NArg() == 0 {
		return fmt.Errorf("usage: vhdltop generate [-root dir] [-o file] <design>...")
	}
	p, err := pf.open()
	if err != nil {
		return err
	}
	entities, err := p.loader().Load(fs.Args()...)
	if err != nil {
		return err
	}
	gen := p.generator(*pf.output)
	if err := gen.Generate(entities); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s (%d entities)\n", gen.OutputPath(), len(entities))
	return nil
}

// ---------------------------------------------------------------------------
// render
// ---------------------------------------------------------------------------

func runRender(args []string) error {
	fs := newFlagSet("render")
	pf := addProjectFlags(fs)
	if err := fs.Parse(args); err != nil || fs.NArg() == 0 {
		return fmt.Errorf("usage: vhdltop render [-root dir] <design>...")
	}
	p, err := pf.open()
	if err != nil {
		return err
	}
	entities, err := p.loader().Load(fs.Args()...)
	if err != nil {
		return err
	}
	doc, err := p.generator("").Document(entities)
	if err != nil {
		return err
	}
	_, err = stdout.Write(doc)
	return err
}

// ---------------------------------------------------------------------------
// clean
// ---------------------------------------------------------------------------

func runClean(args []string) error {
	fs := newFlagSet("clean")
	pf := addProjectFlags(fs)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("usage: vhdltop clean [-root dir] [-o file]")
	}
	p, err := pf.open()
	if err != nil {
		return err
	}
	path := p.generator(*pf.output).OutputPath()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	fmt.Fprintf(stdout, "removed %s\n", path)
	return nil
}

// ---------------------------------------------------------------------------
// TUI prompt helpers
// ---------------------------------------------------------------------------

// question is one settings prompt; value is the pre-filled answer.
type question struct {
	key    string
	prompt string
	value  string
}

var initQuestions = []question{
	{key: "output", prompt: "Output file", value: simtop.DefaultOutputPath()},
	{key: "template", prompt: "Template file (empty for built-in)"},
	{key: "date_layout", prompt: "Date layout", value: simtop.DefaultDateLayout},
}

// promptModel is a bubbletea model that asks one question at a time.
type promptModel struct {
	questions []question
	idx       int
	inputs    []textinput.Model
	done      bool
}

func newPromptModel(questions []question) promptModel {
	inputs := make([]textinput.Model, len(questions))
	for i, q := range questions {
		ti := textinput.New()
		ti.Placeholder = q.prompt
		ti.CharLimit = 512
		ti.SetValue(q.value)
		inputs[i] = ti
	}
	m := promptModel{
		questions: questions,
		inputs:    inputs,
	}
	if len(inputs) > 0 {
		m.inputs[0].Focus()
	}
	return m
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.idx < len(m.inputs)-1 {
				m.inputs[m.idx].Blur()
				m.idx++
				m.inputs[m.idx].Focus()
				return m, textinput.Blink
			}
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.inputs[m.idx], cmd = m.inputs[m.idx].Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done || len(m.questions) == 0 {
		return ""
	}
	q := m.questions[m.idx]
	return fmt.Sprintf("%s: %s\n", q.prompt, m.inputs[m.idx].View())
}

// answers returns the current input values keyed by question key.
func (m promptModel) answers() map[string]string {
	out := make(map[string]string, len(m.questions))
	for i, q := range m.questions {
		out[q.key] = m.inputs[i].Value()
	}
	return out
}

// promptQuestions runs the TUI and returns answers keyed by question key.
func promptQuestions(questions []question) (map[string]string, error) {
	if len(questions) == 0 {
		return map[string]string{}, nil
	}
	p := tea.NewProgram(newPromptModel(questions))
	result, err := p.Run()
	if err != nil {
		return nil, err
	}
	final, ok := result.(promptModel)
	if !ok || !final.done {
		return nil, fmt.Errorf("prompt cancelled")
	}
	return final.answers(), nil
}

func main() {
	if err := dispatch(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

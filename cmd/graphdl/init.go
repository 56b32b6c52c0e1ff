// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sigil-dev/graphdl/internal/config"
	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
	"github.com/spf13/cobra"
)

// initWizardStep tracks which step of the wizard is active.
type initWizardStep int

const (
	stepBackend initWizardStep = iota // select storage backend
	stepDataDir                       // data directory (sqlite only)
	stepListen                        // API listen address
	stepWriting                       // writing config (spinner)
	stepDone                          // wizard complete
	stepError                         // terminal error
)

// initResult holds the collected wizard configuration.
type initResult struct {
	Backend string
	DataDir string
	Listen  string
}

type configWrittenMsg struct{ path string }

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(0, 1)
)

type backendChoice struct {
	name string
	desc string
}

var supportedBackends = []backendChoice{
	{"sqlite", "persist to a SQLite database in a data directory"},
	{"memory", "keep everything in process; lost on exit"},
}

// initModel is the bubbletea model for the init wizard.
type initModel struct {
	step          initWizardStep
	backendIdx    int
	dirInput      textinput.Model
	listenInput   textinput.Model
	spinner       spinner.Model
	result        initResult
	validationErr string
	configPath    string
	force         bool
	errFinal      error
}

func newInitModel(configPath, dataDir string, force bool) initModel {
	dir := textinput.New()
	dir.Placeholder = "data directory"
	dir.SetValue(dataDir)

	listen := textinput.New()
	listen.Placeholder = "host:port"
	listen.SetValue("127.0.0.1:8420")

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return initModel{
		step:        stepBackend,
		dirInput:    dir,
		listenInput: listen,
		spinner:     sp,
		configPath:  configPath,
		force:       force,
	}
}

func (m initModel) Init() tea.Cmd {
	return nil
}

func (m initModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case configWrittenMsg:
		m.step = stepDone
		m.configPath = msg.path
		return m, tea.Quit

	case error:
		m.step = stepError
		m.errFinal = msg
		return m, tea.Quit
	}

	return m.updateInputs(msg)
}

func (m initModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.step {
	case stepBackend:
		return m.handleBackendKey(msg)
	case stepDataDir:
		return m.handleDataDirInput(msg)
	case stepListen:
		return m.handleListenInput(msg)
	}
	return m, nil
}

func (m initModel) handleBackendKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.backendIdx > 0 {
			m.backendIdx--
		}
	case "down", "j":
		if m.backendIdx < len(supportedBackends)-1 {
			m.backendIdx++
		}
	case "enter":
		m.result.Backend = supportedBackends[m.backendIdx].name
		m.validationErr = ""
		if m.result.Backend == "memory" {
			m.step = stepListen
			m.listenInput.Focus()
		} else {
			m.step = stepDataDir
			m.dirInput.Focus()
		}
		return m, textinput.Blink
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m initModel) handleDataDirInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		dir := strings.TrimSpace(m.dirInput.Value())
		if dir == "" {
			m.validationErr = "data directory must not be empty"
			return m, nil
		}
		m.result.DataDir = dir
		m.validationErr = ""
		m.dirInput.Blur()
		m.step = stepListen
		m.listenInput.Focus()
		return m, textinput.Blink
	}
	var cmd tea.Cmd
	m.dirInput, cmd = m.dirInput.Update(msg)
	return m, cmd
}

func (m initModel) handleListenInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		addr := strings.TrimSpace(m.listenInput.Value())
		if err := config.ValidateListenAddr(addr); err != nil {
			m.validationErr = err.Error()
			return m, nil
		}
		m.result.Listen = addr
		m.validationErr = ""
		m.listenInput.Blur()
		m.step = stepWriting
		return m, tea.Batch(m.spinner.Tick, writeConfigCmd(m.configPath, m.result, m.force))
	}
	var cmd tea.Cmd
	m.listenInput, cmd = m.listenInput.Update(msg)
	return m, cmd
}

func (m initModel) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.step {
	case stepDataDir:
		m.dirInput, cmd = m.dirInput.Update(msg)
	case stepListen:
		m.listenInput, cmd = m.listenInput.Update(msg)
	}
	return m, cmd
}

func (m initModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("  graphdl setup  ") + "\n\n")

	switch m.step {
	case stepBackend:
		b.WriteString(promptStyle.Render("Storage backend") + "\n\n")
		for i, c := range supportedBackends {
			line := fmt.Sprintf("%-7s %s", c.name, c.desc)
			if i == m.backendIdx {
				b.WriteString(selectedStyle.Render("  > "+line) + "\n")
			} else {
				b.WriteString(dimStyle.Render("    "+line) + "\n")
			}
		}
		b.WriteString("\n" + dimStyle.Render("↑/↓ to navigate  enter to select  q to quit"))

	case stepDataDir:
		b.WriteString(promptStyle.Render("Data directory") + "\n\n")
		b.WriteString(m.dirInput.View() + "\n")
		m.writeValidation(&b)
		b.WriteString("\n" + dimStyle.Render("enter to continue  ctrl+c to quit"))

	case stepListen:
		b.WriteString(promptStyle.Render("API listen address") + "\n\n")
		b.WriteString(m.listenInput.View() + "\n")
		m.writeValidation(&b)
		b.WriteString("\n" + dimStyle.Render("enter to continue  ctrl+c to quit"))

	case stepWriting:
		b.WriteString(m.spinner.View() + " Writing " + m.configPath + "…\n")

	case stepDone:
		b.WriteString(successStyle.Render("  Setup complete!  ") + "\n\n")
		b.WriteString(dimStyle.Render("Config written to: "+m.configPath) + "\n\n")
		b.WriteString("Run " + promptStyle.Render("graphdl serve") + " to start the API.\n")

	case stepError:
		b.WriteString(errorStyle.Render("Setup failed: "+m.errFinal.Error()) + "\n")
	}

	return boxStyle.Render(b.String())
}

func (m initModel) writeValidation(b *strings.Builder) {
	if m.validationErr != "" {
		b.WriteString("\n" + errorStyle.Render("  "+m.validationErr) + "\n")
	}
}

func writeConfigCmd(path string, result initResult, force bool) tea.Cmd {
	return func() tea.Msg {
		if err := writeInitConfig(path, result, force); err != nil {
			return err
		}
		return configWrittenMsg{path: path}
	}
}

// writeInitConfig renders the commented default config with the wizard's
// answers. An existing file is only replaced with force.
func writeInitConfig(path string, result initResult, force bool) error {
	written, err := config.WriteConfig(path, config.Overrides{
		Listen:  result.Listen,
		Backend: result.Backend,
		Path:    result.DataDir,
	}, force)
	if err != nil {
		return err
	}
	if !written {
		return graphdlerr.Errorf(graphdlerr.CodeConfigWriteConflict,
			"config file already exists at %s; use --force to overwrite", path)
	}
	return nil
}

// --- Cobra command ---

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a graphdl config file",
		Long: `Walk through choosing a storage backend, a data directory and the API
listen address, then write a commented config file to --config or
~/.config/graphdl/graphdl.yaml.

With --non-interactive the answers come from --backend, --path and --listen.`,
		Args: cobra.NoArgs,
		// The config file is the output here, so skip reading it.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE:              runInit,
	}

	cmd.Flags().Bool("force", false, "overwrite an existing config file")
	cmd.Flags().Bool("non-interactive", false, "write the config from flags without prompting")
	cmd.Flags().String("backend", "sqlite", "storage backend for --non-interactive: sqlite or memory")
	cmd.Flags().String("path", "", "data directory for --non-interactive (default ~/.local/share/graphdl)")
	cmd.Flags().String("listen", "127.0.0.1:8420", "API listen address for --non-interactive")

	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	force, _ := cmd.Flags().GetBool("force")
	nonInteractive, _ := cmd.Flags().GetBool("non-interactive")

	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		cfgPath = p
	}

	dataDir, _ := cmd.Flags().GetString("path")
	if dataDir == "" {
		dataDir, _ = cmd.Flags().GetString("data-dir")
	}
	if dataDir == "" {
		d, err := config.DefaultDataDir()
		if err != nil {
			return err
		}
		dataDir = d
	}

	if nonInteractive {
		return runInitFromFlags(cmd, cfgPath, dataDir, force)
	}

	f, ok := cmd.InOrStdin().(*os.File)
	if !ok || !isTerminal(f) {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(),
			"graphdl init requires an interactive terminal.\n"+
				"Use --non-interactive with --backend, --path and --listen instead.")
		return graphdlerr.New(graphdlerr.CodeCLISetupFailure, "graphdl init: not an interactive terminal")
	}

	p := tea.NewProgram(newInitModel(cfgPath, dataDir, force), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return graphdlerr.Errorf(graphdlerr.CodeCLISetupFailure, "init wizard error: %w", err)
	}

	fm, ok := finalModel.(initModel)
	if !ok {
		return graphdlerr.New(graphdlerr.CodeCLISetupFailure, "unexpected model type after wizard")
	}
	if fm.errFinal != nil {
		return fm.errFinal
	}
	if fm.step == stepDone {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", fm.configPath)
	}
	return nil
}

func runInitFromFlags(cmd *cobra.Command, cfgPath, dataDir string, force bool) error {
	backend, _ := cmd.Flags().GetString("backend")
	listen, _ := cmd.Flags().GetString("listen")

	if backend != "sqlite" && backend != "memory" {
		return graphdlerr.Errorf(graphdlerr.CodeCLIInputInvalid, "--backend must be sqlite or memory, got %q", backend)
	}
	if err := config.ValidateListenAddr(listen); err != nil {
		return err
	}

	result := initResult{Backend: backend, Listen: listen}
	if backend == "sqlite" {
		result.DataDir = dataDir
	}
	if err := writeInitConfig(cfgPath, result, force); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", cfgPath)
	return err
}

// isTerminal reports whether f is a terminal file descriptor.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

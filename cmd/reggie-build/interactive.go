package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/reggie-db/reggie-build/internal/ui"
	"github.com/reggie-db/reggie-build/internal/workspace"
)

// --- inputModel: bubbletea model for text input with validation ---

type inputModel struct {
	textInput textinput.Model
	title     string
	hint      string
	validate  func(string) error
	errMsg    string
	done      bool
	aborted   bool
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			if m.validate != nil {
				if err := m.validate(m.textInput.Value()); err != nil {
					m.errMsg = err.Error()
					return m, nil
				}
			}
			m.done = true
			return m, tea.Quit
		}
	}
	m.errMsg = ""
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(ui.PromptStyle.Render(m.title) + "\n")
	b.WriteString(m.textInput.View() + "\n")
	if m.errMsg != "" {
		b.WriteString(ui.ErrorStyle.Render(m.errMsg) + "\n")
	} else if m.hint != "" {
		b.WriteString(ui.HintStyle.Render(m.hint) + "\n")
	}
	return b.String()
}

func promptInput(title, placeholder, hint string, validate func(string) error) (string, error) {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()

	m := inputModel{
		textInput: ti,
		title:     title,
		hint:      hint,
		validate:  validate,
	}

	result, err := tea.NewProgram(m).Run()
	if err != nil {
		return "", err
	}
	rm := result.(inputModel)
	if rm.aborted {
		return "", fmt.Errorf("user aborted")
	}
	return strings.TrimSpace(rm.textInput.Value()), nil
}

// memberDirValidator returns a validation function for a new member
// directory given relative to the workspace root.
func memberDirValidator(tree *workspace.Tree) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			return fmt.Errorf("member directory is required")
		}
		if filepath.IsAbs(s) {
			return fmt.Errorf("member directory must be relative to the workspace root")
		}
		clean := filepath.Clean(filepath.FromSlash(s))
		if clean == "." {
			return fmt.Errorf("member directory must not be the workspace root")
		}
		if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			return fmt.Errorf("member directory %q is outside the workspace root", s)
		}
		if workspace.HasManifest(filepath.Join(tree.Dir(), clean)) {
			return fmt.Errorf("%s already has a pyproject.toml", s)
		}
		return nil
	}
}

// Package theme centralizes the colors the dashboard uses, so the views
// never hardcode tcell values.
package theme

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// DefaultColors are the base colors for general text.
type DefaultColors struct {
	Background tcell.Color
	Foreground tcell.Color
	Title      tcell.Color
	Border     tcell.Color
}

// SupplyColors map supply statuses to display colors.
type SupplyColors struct {
	Surplus     tcell.Color
	Balanced    tcell.Color
	Shortage    tcell.Color
	NoDemand    tcell.Color
	NotProduced tcell.Color
	Estimated   tcell.Color
}

// PanelColors style the framed panels and table headers.
type PanelColors struct {
	Background tcell.Color
	HeaderBg   tcell.Color
	HeaderFg   tcell.Color
	SelectedBg tcell.Color
	SelectedFg tcell.Color
}

// Theme is the full color scheme for the dashboard.
type Theme interface {
	Name() string
	DefaultColors() DefaultColors
	SupplyColors() SupplyColors
	PanelColors() PanelColors
}

// Manager keeps the registered themes and the active selection.
type Manager struct {
	current Theme
	themes  map[string]Theme
}

func NewManager() *Manager {
	m := &Manager{themes: make(map[string]Theme)}
	m.Register(NewConsoleTheme())
	m.Set("console")
	return m
}

func (m *Manager) Register(t Theme) {
	m.themes[t.Name()] = t
}

func (m *Manager) Set(name string) error {
	t, ok := m.themes[name]
	if !ok {
		return fmt.Errorf("theme %q not found", name)
	}
	m.current = t
	return nil
}

func (m *Manager) Current() Theme { return m.current }

func (m *Manager) Available() []string {
	names := make([]string, 0, len(m.themes))
	for name := range m.themes {
		names = append(names, name)
	}
	return names
}

var defaultManager = NewManager()

// Current returns the active theme from the global manager.
func Current() Theme { return defaultManager.Current() }

// GetManager returns the global theme manager.
func GetManager() *Manager { return defaultManager }

package theme

import "github.com/gdamore/tcell/v2"

// ConsoleTheme is the default dark scheme.
type ConsoleTheme struct{}

func NewConsoleTheme() *ConsoleTheme { return &ConsoleTheme{} }

func (t *ConsoleTheme) Name() string { return "console" }

func (t *ConsoleTheme) DefaultColors() DefaultColors {
	return DefaultColors{
		Background: tcell.ColorBlack,
		Foreground: tcell.ColorWhite,
		Title:      tcell.ColorAqua,
		Border:     tcell.ColorGray,
	}
}

func (t *ConsoleTheme) SupplyColors() SupplyColors {
	return SupplyColors{
		Surplus:     tcell.ColorYellow,
		Balanced:    tcell.ColorGreen,
		Shortage:    tcell.ColorRed,
		NoDemand:    tcell.ColorGray,
		NotProduced: tcell.ColorMaroon,
		Estimated:   tcell.ColorTeal,
	}
}

func (t *ConsoleTheme) PanelColors() PanelColors {
	return PanelColors{
		Background: tcell.ColorBlack,
		HeaderBg:   tcell.ColorNavy,
		HeaderFg:   tcell.ColorWhite,
		SelectedBg: tcell.ColorAqua,
		SelectedFg: tcell.ColorBlack,
	}
}

package cli

import (
	"fmt"
	"math"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// Upper end of the speed gauge, in LongMaxBitrate units.
const gaugeMaxBitrate = 800

// gaugeModel shows the speed setting and the information rate of the
// text written since navigation last started.
type gaugeModel struct {
	speedBar progress.Model
	infoBar  progress.Model

	bitrate    int64
	nats       float64
	symbols    int
	numSymbols int

	theme tuiTheme
}

func newGaugeModel(theme tuiTheme) gaugeModel {
	return gaugeModel{
		speedBar: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		infoBar:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		theme:    theme,
	}
}

func (m *gaugeModel) setWidth(w int) {
	available := w - 28
	if available < 10 {
		available = 10
	}
	m.speedBar.Width = available
	m.infoBar.Width = available
}

func (m *gaugeModel) setSpeed(bitrate int64) {
	m.bitrate = bitrate
}

// setInformation records nats spent over symbols written, for an
// alphabet of numSymbols.
func (m *gaugeModel) setInformation(nats float64, symbols, numSymbols int) {
	m.nats = nats
	m.symbols = symbols
	m.numSymbols = numSymbols
}

// natsPerSymbol is the mean information per written symbol.
func (m gaugeModel) natsPerSymbol() float64 {
	if m.symbols <= 0 {
		return 0
	}
	return m.nats / float64(m.symbols)
}

// efficiency compares natsPerSymbol with a uniform guess over the
// alphabet: low values mean the model predicted the text well.
func (m gaugeModel) efficiency() float64 {
	if m.numSymbols < 2 || m.symbols <= 0 {
		return 0
	}
	return math.Min(1, m.natsPerSymbol()/math.Log(float64(m.numSymbols)))
}

func (m gaugeModel) View() string {
	speedPct := math.Min(1, float64(m.bitrate)/gaugeMaxBitrate)
	speed := lipgloss.JoinHorizontal(lipgloss.Center,
		m.theme.text.Width(7).Render("Speed"),
		m.speedBar.ViewAs(speedPct),
		m.theme.muted.Render(fmt.Sprintf(" %.2f bit/s", float64(m.bitrate)/100)),
	)
	info := lipgloss.JoinHorizontal(lipgloss.Center,
		m.theme.text.Width(7).Render("Info"),
		m.infoBar.ViewAs(m.efficiency()),
		m.theme.muted.Render(fmt.Sprintf(" %.2f nat/sym", m.natsPerSymbol())),
	)
	return lipgloss.JoinVertical(lipgloss.Left, speed, info)
}

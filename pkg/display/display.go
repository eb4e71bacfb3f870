//go:build !nodebug

// Package display provides SSD1306 OLED display support for debug
// output. The panel shows the bridge status on the yellow rows (0-1)
// and keyboard traffic plus diagnostics on the blue rows (2-3).
//
// To build without display support (saves ~1KB RAM and flash), use:
//
//	tinygo build -tags=nodebug -target=pico -o firmware.uf2 .
package display

import (
	"image/color"
	"machine"
	"time"

	"tinygo.org/x/drivers/ssd1306"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

const (
	// I2C configuration
	i2cAddress = 0x3C
	sclPin     = machine.GPIO1
	sdaPin     = machine.GPIO0

	// Display dimensions
	screenWidth  = 128
	screenHeight = 64
	lineHeight   = 14
	rows         = 4

	// Row assignments
	rowStatus = 0 // Yellow - bridge state
	rowID     = 1 // Yellow - keyboard identity
	rowKey    = 2 // Blue - last key event
	rowDiag   = 3 // Blue - diagnostics summary
)

var white = color.RGBA{255, 255, 255, 255}

// Manager handles the SSD1306 display for debug output.
type Manager struct {
	device *ssd1306.Device
	lines  [rows]string
}

// NewManager creates and initializes the display manager.
// Returns nil if display initialization fails (non-fatal for debug).
func NewManager() *Manager {
	i2c := machine.I2C0
	if err := i2c.Configure(machine.I2CConfig{
		Frequency: 400000, // 400kHz fast mode
		SCL:       sclPin,
		SDA:       sdaPin,
	}); err != nil {
		return nil
	}

	// Small delay for bus stabilization
	time.Sleep(10 * time.Millisecond)

	dev := ssd1306.NewI2C(i2c)
	dev.Configure(ssd1306.Config{
		Address: i2cAddress,
		Width:   screenWidth,
		Height:  screenHeight,
	})
	dev.ClearDisplay()

	mgr := &Manager{device: dev}
	mgr.ShowStatus("ps2 bridge boot")
	return mgr
}

// ShowStatus updates the bridge state row.
func (m *Manager) ShowStatus(s string) {
	m.setLine(rowStatus, s)
}

// ShowID updates the keyboard identity row.
func (m *Manager) ShowID(s string) {
	m.setLine(rowID, s)
}

// ShowKey updates the last-key-event row.
func (m *Manager) ShowKey(s string) {
	m.setLine(rowKey, s)
}

// ShowDiagnostics updates the diagnostics row.
func (m *Manager) ShowDiagnostics(s string) {
	m.setLine(rowDiag, s)
}

// ShowError puts an error message on the diagnostics row.
func (m *Manager) ShowError(msg string) {
	m.setLine(rowDiag, "ERR "+msg)
}

func (m *Manager) setLine(row int, s string) {
	// A nil Manager means init failed or no panel is fitted; every
	// update becomes a no-op so callers don't have to check.
	if m == nil || row < 0 || row >= rows {
		return
	}
	if m.lines[row] == s {
		return
	}
	m.lines[row] = s
	m.redraw()
}

// redraw repaints the whole panel. Rewriting all four rows is cheaper
// than tracking dirty rectangles at this size.
func (m *Manager) redraw() {
	m.device.ClearBuffer()
	for row, line := range m.lines {
		if line == "" {
			continue
		}
		y := int16(row*lineHeight) + lineHeight - 2
		tinyfont.WriteLine(m.device, &proggy.TinySZ8pt7b, 0, y, line, white)
	}
	m.device.Display()
}

// Package serial runs a small console over USB CDC for pulling
// diagnostics out of the bridge in the field.
package serial

import (
	"machine"

	"github.com/SteveBenz/PS2KeyboardHost/pkg/diag"
)

// Console reads line-oriented commands from a serial port and answers
// them from the diagnostics recorder.
type Console struct {
	serial   machine.Serialer
	recorder *diag.Recorder
	inIndex  int
	inBuffer [128]byte
}

func NewConsole(serial machine.Serialer, recorder *diag.Recorder) Console {
	return Console{
		serial:   serial,
		recorder: recorder,
	}
}

// Handle services the console. Run it on its own goroutine.
func (c *Console) Handle() {
	for {
		in := c.read()
		if in == "" {
			continue
		}
		switch in {
		case "diag":
			c.recorder.Report(c.serial)
			c.write("")
		case "clear":
			c.recorder.Reset()
			c.write("ok")
		case "help":
			c.write("commands: diag clear help")
		default:
			c.write("unknown command: " + in)
		}
	}
}

func (c *Console) read() string {
	b, err := c.serial.ReadByte()
	if err != nil {
		return ""
	}

	if b == '\n' || b == '\r' {
		in := string(c.inBuffer[:c.inIndex])
		c.inIndex = 0
		return in
	}

	if c.inIndex == len(c.inBuffer)-1 {
		c.inIndex = 0
	}

	c.inBuffer[c.inIndex] = b
	c.inIndex++

	return ""
}

func (c *Console) write(out string) {
	c.serial.Write([]byte(out + "\n"))
}

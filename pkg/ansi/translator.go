// Package ansi turns a stream of set-2 scan codes into ASCII
// characters. The name is aspirational; the table here only covers the
// US English layout.
//
// The translator tracks shift, ctrl, caps lock and num lock itself, so
// feeding it the raw output of ps2.Keyboard.ReadScanCode is enough:
// typing ctrl+G yields ASCII 7, typing "g" with caps lock on yields
// 'G', and shift+H in that state yields 'h'.
package ansi

import "github.com/SteveBenz/PS2KeyboardHost/pkg/ps2"

// Reference: http://www.computer-engineering.org/ps2keyboard/scancodes2.html
var ps2ToASCII = [...]byte{
	'\t', // [0d] Tab
	'`',  // [0e] ` ~
	'=',  // [0f] Keypad =
	0,    // [10] F14
	0,    // [11] Left Alt
	0,    // [12] Left Shift
	0,    // [13] unused
	0,    // [14] Left Control
	'q',  // [15] q Q
	'1',  // [16] 1 !
	0,    // [17] unused
	0,    // [18] F15
	0,    // [19] unused
	'z',  // [1a] z Z
	's',  // [1b] s S
	'a',  // [1c] a A
	'w',  // [1d] w W
	'2',  // [1e] 2 @
	0,    // [1f] unused
	0,    // [20] F16
	'c',  // [21] c C
	'x',  // [22] x X
	'd',  // [23] d D
	'e',  // [24] e E
	'4',  // [25] 4 $
	'3',  // [26] 3 #
	0,    // [27] unused
	0,    // [28] F17
	' ',  // [29] Space
	'v',  // [2a] v V
	'f',  // [2b] f F
	't',  // [2c] t T
	'r',  // [2d] r R
	'5',  // [2e] 5 %
	0,    // [2f] unused
	0,    // [30] F18
	'n',  // [31] n N
	'b',  // [32] b B
	'h',  // [33] h H
	'g',  // [34] g G
	'y',  // [35] y Y
	'6',  // [36] 6 ^
	0,    // [37] unused
	0,    // [38] F19
	0,    // [39] unused
	'm',  // [3a] m M
	'j',  // [3b] j J
	'u',  // [3c] u U
	'7',  // [3d] 7 &
	'8',  // [3e] 8 *
	0,    // [3f] unused
	0,    // [40] F20
	',',  // [41] , <
	'k',  // [42] k K
	'i',  // [43] i I
	'o',  // [44] o O
	'0',  // [45] 0 )
	'9',  // [46] 9 (
	0,    // [47] unused
	0,    // [48] F21
	'.',  // [49] . >
	'/',  // [4a] / ?
	'l',  // [4b] l L
	';',  // [4c] ; :
	'p',  // [4d] p P
	'-',  // [4e] - _
	0,    // [4f] unused
	0,    // [50] F22
	0,    // [51] unused
	'\'', // [52] ' "
	0,    // [53] unused
	'[',  // [54] [ {
	'=',  // [55] = +
	0,    // [56] unused
	0,    // [57] F23
	0,    // [58] Caps Lock
	0,    // [59] Right Shift
	'\r', // [5a] Return
	']',  // [5b] ] }
	0,    // [5c] unused
	'\\', // [5d] \ |
	0,    // [5e] unused
	0,    // [5f] F24
	0,    // [60] unused
	0,    // [61] Europe 2
	0,    // [62] unused
	0,    // [63] unused
	0,    // [64] unused
	0,    // [65] unused
	'\b', // [66] Backspace
	0,    // [67] unused
	0,    // [68] unused
	'1',  // [69] Keypad 1 End
	0,    // [6a] unused
	'4',  // [6b] Keypad 4 Left
	'7',  // [6c] Keypad 7 Home
	0,    // [6d] unused
	0,    // [6e] unused
	0,    // [6f] unused
	'0',  // [70] Keypad 0 Insert
	'.',  // [71] Keypad . Delete
	'2',  // [72] Keypad 2 Down
	'5',  // [73] Keypad 5
	'6',  // [74] Keypad 6 Right
	'8',  // [75] Keypad 8 Up
	27,   // [76] Escape
	0,    // [77] Num Lock
	0,    // [78] F11
	'+',  // [79] Keypad +
	'3',  // [7a] Keypad 3 PageDn
	'-',  // [7b] Keypad -
	'*',  // [7c] Keypad *
	'9',  // [7d] Keypad 9 PageUp
}

const tableBase = 0x0D

// The Pause key is the one sequence that doesn't follow the
// prefix-then-code pattern.
var pauseKeySequence = [...]ps2.ScanCode{0xE1, 0x14, 0x77}

// Translator converts scan codes to ASCII, one code at a time.
// The zero value is ready to use with caps lock and num lock off.
type Translator struct {
	isSpecial  bool
	isUnmake   bool
	ctrlDown   bool
	shiftDown  bool
	capsLock   bool
	numLock    bool
	pauseIndex int
}

// New returns a fresh Translator.
func New() *Translator {
	return &Translator{}
}

// Reset clears the prefix state left by a partial key sequence. Call it
// after the keyboard reports Garbled, since the dropped byte may have
// been an extend or unmake prefix. Modifier and lock state is kept; it
// is likelier to be right than wrong.
func (t *Translator) Reset() {
	t.isSpecial = false
	t.isUnmake = false
}

// Translate processes one scan code and returns the ASCII character it
// completes, or 0 when the code does not produce one (prefixes, key
// releases, keys with no ANSI meaning).
func (t *Translator) Translate(code ps2.ScanCode) byte {
	if code == ps2.Unmake {
		t.isUnmake = true
		return 0
	}
	if code == ps2.Extend {
		t.isSpecial = true
		return 0
	}

	if code == pauseKeySequence[t.pauseIndex] {
		t.pauseIndex++
		if t.pauseIndex < len(pauseKeySequence) {
			return 0
		}
		t.pauseIndex = 0
		t.isSpecial = false
		t.isUnmake = false
		return 0
	}

	switch code {
	case ps2.LeftShift, ps2.RightShift:
		t.shiftDown = !t.isUnmake
	case ps2.Ctrl:
		t.ctrlDown = !t.isUnmake
	}

	// The sequence is complete one way or another; be ready for the
	// next key.
	t.pauseIndex = 0

	if t.isUnmake || (t.isSpecial && code != ps2.KeypadEnter) {
		// Releases only matter for the modifier keys handled above, and
		// keypad enter is the only extended key with an ANSI meaning.
		t.isUnmake = false
		t.isSpecial = false
		return 0
	}

	switch code {
	case ps2.NumLock:
		t.numLock = !t.numLock
		return 0
	case ps2.CapsLock:
		t.capsLock = !t.capsLock
		return 0
	}

	c := rawTranslate(code)
	switch {
	case c == 0:
		// Plenty of keys have no ANSI meaning (F-keys, navigation);
		// that is not an error.
		return 0
	case !t.numLock && affectedByNumLock(code, c):
		return 0
	case c >= 'a' && c <= 'z':
		// Shift and caps lock cancel each other for letters.
		if t.shiftDown != t.capsLock {
			c = c - 'a' + 'A'
		}
		if c >= 'a' && c <= 'z' && t.ctrlDown {
			c = c - 'a' + 1
		}
	case t.shiftDown:
		c = shifted(c)
	}
	return c
}

// CtrlKeyDown reports whether ctrl was held as of the last Translate.
func (t *Translator) CtrlKeyDown() bool { return t.ctrlDown }

// ShiftKeyDown reports whether shift was held as of the last Translate.
func (t *Translator) ShiftKeyDown() bool { return t.shiftDown }

// CapsLock reports the translator's caps lock mode.
func (t *Translator) CapsLock() bool { return t.capsLock }

// SetCapsLock sets the translator's caps lock mode. This only affects
// translation; the keyboard's LED is ps2.Keyboard.SetLeds territory.
func (t *Translator) SetCapsLock(on bool) { t.capsLock = on }

// NumLock reports the translator's num lock mode.
func (t *Translator) NumLock() bool { return t.numLock }

// SetNumLock sets the translator's num lock mode.
func (t *Translator) SetNumLock(on bool) { t.numLock = on }

func rawTranslate(code ps2.ScanCode) byte {
	if code < tableBase || int(code-tableBase) >= len(ps2ToASCII) {
		return 0
	}
	return ps2ToASCII[code-tableBase]
}

// affectedByNumLock reports whether the key produces its character only
// in num lock mode. The keypad digits and dot double as navigation keys
// when num lock is off.
func affectedByNumLock(code ps2.ScanCode, c byte) bool {
	if code < ps2.Keypad1 {
		return false
	}
	return c == '.' || (c >= '0' && c <= '9')
}

func shifted(c byte) byte {
	switch c {
	case '`':
		return '~'
	case '1':
		return '!'
	case '2':
		return '@'
	case '3':
		return '#'
	case '4':
		return '$'
	case '5':
		return '%'
	case '6':
		return '^'
	case '7':
		return '&'
	case '8':
		return '*'
	case '9':
		return '('
	case '0':
		return ')'
	case '-':
		return '_'
	case '=':
		return '+'
	case '[':
		return '{'
	case ']':
		return '}'
	case ';':
		return ':'
	case '\'':
		return '"'
	case ',':
		return '<'
	case '.':
		return '>'
	case '/':
		return '?'
	case '\\':
		return '|'
	}
	return c
}

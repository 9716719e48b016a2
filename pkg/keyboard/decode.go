// Package keyboard turns raw terminal input into named key events.
// It understands VT100/xterm escape sequences (with modifiers), UTF-8,
// Alt/Meta prefixes and bracketed paste.
//
// Key names: printable characters are themselves ("a", "é"), control keys
// are "^A".."^Z" except the named ones ("Enter", "Tab", "Backspace",
// "Escape"), and special keys carry modifier prefixes ("S-", "M-", "C-"),
// for example "Up", "C-Left", "M-a", "S-Tab".
package keyboard

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Escape sequences that name a key outright.
var escBindings = map[string]string{
	"\x1b[A": "Up",
	"\x1b[B": "Down",
	"\x1b[C": "Right",
	"\x1b[D": "Left",
	"\x1bOA": "Up",
	"\x1bOB": "Down",
	"\x1bOC": "Right",
	"\x1bOD": "Left",

	"\x1bOP": "F1",
	"\x1bOQ": "F2",
	"\x1bOR": "F3",
	"\x1bOS": "F4",
	"\x1bOH": "Home",
	"\x1bOF": "End",

	"\x1b[H": "Home",
	"\x1b[F": "End",
	"\x1b[Z": "S-Tab",
}

// Keys produced by CSI <n> ~
var tildeKeys = map[int]string{
	1:  "Home",
	2:  "Insert",
	3:  "Delete",
	4:  "End",
	5:  "PageUp",
	6:  "PageDown",
	7:  "Home",
	8:  "End",
	15: "F5",
	17: "F6",
	18: "F7",
	19: "F8",
	20: "F9",
	21: "F10",
	23: "F11",
	24: "F12",
}

// Keys produced by CSI 1;<mod> <final>
var finalKeys = map[byte]string{
	'A': "Up",
	'B': "Down",
	'C': "Right",
	'D': "Left",
	'H': "Home",
	'F': "End",
	'P': "F1",
	'Q': "F2",
	'R': "F3",
	'S': "F4",
}

// Bracketed paste sequences
const (
	pasteStart = "\x1b[200~"
	pasteEnd   = "\x1b[201~"
)

// controlKey names a C0 control byte or DEL.
func controlKey(b byte) string {
	switch b {
	case 0:
		return "^@"
	case 8, 127:
		return "Backspace"
	case 9:
		return "Tab"
	case 13:
		return "Enter"
	case 27:
		return "Escape"
	}
	return fmt.Sprintf("^%c", b+64)
}

// Decoder is the byte-level state machine. It is not safe for concurrent
// use; the Reader owns one per input stream.
type Decoder struct {
	esc []byte // pending escape sequence, starting with ESC

	utf8Buf  []byte
	utf8Need int

	inPaste bool
	paste   []byte
}

// Pending reports whether the decoder holds an incomplete escape sequence
// that Flush should resolve if no more input arrives.
func (d *Decoder) Pending() bool {
	return len(d.esc) > 0
}

// Feed consumes one byte and returns the keys it completes, if any.
func (d *Decoder) Feed(b byte) []string {
	if d.inPaste {
		d.paste = append(d.paste, b)
		if strings.HasSuffix(string(d.paste), pasteEnd) {
			content := d.paste[:len(d.paste)-len(pasteEnd)]
			d.inPaste = false
			d.paste = nil
			return pasteKeys(content)
		}
		return nil
	}

	if len(d.esc) > 0 {
		return d.feedEscape(b)
	}

	if b == 0x1b {
		d.esc = []byte{b}
		return nil
	}

	if d.utf8Need > 0 {
		if b >= 0x80 && b <= 0xBF {
			d.utf8Buf = append(d.utf8Buf, b)
			d.utf8Need--
			if d.utf8Need == 0 {
				key := string(d.utf8Buf)
				d.utf8Buf = nil
				if r, _ := utf8.DecodeRuneInString(key); r == utf8.RuneError {
					return nil
				}
				return []string{key}
			}
			return nil
		}
		// Broken sequence: drop it and start over with this byte
		d.utf8Buf = nil
		d.utf8Need = 0
		return d.Feed(b)
	}

	switch {
	case b < 0x20 || b == 0x7f:
		return []string{controlKey(b)}
	case b < 0x80:
		return []string{string(b)}
	case b >= 0xC0 && b <= 0xDF:
		d.utf8Buf, d.utf8Need = []byte{b}, 1
	case b >= 0xE0 && b <= 0xEF:
		d.utf8Buf, d.utf8Need = []byte{b}, 2
	case b >= 0xF0 && b <= 0xF7:
		d.utf8Buf, d.utf8Need = []byte{b}, 3
	}
	// Stray continuation or invalid lead bytes are dropped
	return nil
}

func (d *Decoder) feedEscape(b byte) []string {
	d.esc = append(d.esc, b)
	seq := string(d.esc)

	if seq == pasteStart {
		d.esc = nil
		d.inPaste = true
		d.paste = nil
		return nil
	}
	if key, ok := escBindings[seq]; ok {
		d.esc = nil
		return []string{key}
	}
	if couldBePrefix(seq) {
		return nil
	}
	if key, ok := parseCSI(seq); ok {
		d.esc = nil
		return []string{key}
	}
	if key, ok := parseAlt(seq); ok {
		d.esc = nil
		return []string{key}
	}
	return d.flushEscape()
}

// Flush resolves a pending escape sequence after the input went quiet.
// A lone ESC becomes "Escape".
func (d *Decoder) Flush() []string {
	if len(d.esc) == 0 {
		return nil
	}
	if key, ok := parseAlt(string(d.esc)); ok {
		d.esc = nil
		return []string{key}
	}
	return d.flushEscape()
}

// flushEscape emits the pending bytes as Escape followed by plain keys.
func (d *Decoder) flushEscape() []string {
	keys := []string{"Escape"}
	for _, b := range d.esc[1:] {
		if b < 0x20 || b == 0x7f {
			keys = append(keys, controlKey(b))
		} else {
			keys = append(keys, string(b))
		}
	}
	d.esc = nil
	return keys
}

// couldBePrefix reports whether more bytes may complete seq.
func couldBePrefix(seq string) bool {
	if seq == "\x1b[" || seq == "\x1bO" {
		return true
	}
	if strings.HasPrefix(pasteStart, seq) {
		return true
	}
	if len(seq) > 2 && seq[1] == '[' {
		last := seq[len(seq)-1]
		return last < 0x40 || last > 0x7e
	}
	return false
}

// parseCSI handles ESC [ params final, including xterm modifier params.
func parseCSI(seq string) (string, bool) {
	if len(seq) < 3 || seq[0] != 0x1b || seq[1] != '[' {
		return "", false
	}
	body := seq[2:]
	final := body[len(body)-1]
	if final < 0x40 || final > 0x7e {
		return "", false
	}
	var params []string
	if p := body[:len(body)-1]; p != "" {
		params = strings.Split(p, ";")
	}

	switch final {
	case '~':
		if len(params) == 0 || len(params) > 2 {
			return "", false
		}
		n, err := strconv.Atoi(params[0])
		if err != nil {
			return "", false
		}
		name, ok := tildeKeys[n]
		if !ok {
			return "", false
		}
		if len(params) == 2 {
			return modifierPrefix(params[1]) + name, true
		}
		return name, true
	case 'u':
		return parseKitty(params)
	}

	name, ok := finalKeys[final]
	if !ok {
		return "", false
	}
	switch len(params) {
	case 0:
		return name, true
	case 2:
		return modifierPrefix(params[1]) + name, true
	}
	return "", false
}

// parseKitty handles the CSI keycode;mod u keyboard protocol for the keys
// that legacy encodings cannot tell apart.
func parseKitty(params []string) (string, bool) {
	if len(params) == 0 {
		return "", false
	}
	code, err := strconv.Atoi(params[0])
	if err != nil {
		return "", false
	}
	mod := ""
	if len(params) > 1 {
		mod = params[1]
	}
	var name string
	switch {
	case code == 9:
		name = "Tab"
	case code == 13:
		name = "Enter"
	case code == 27:
		name = "Escape"
	case code == 127:
		name = "Backspace"
	case code >= 'a' && code <= 'z':
		m := modifierBits(mod)
		if m&4 != 0 {
			// Ctrl+letter folds to the control-key name
			return altPrefix(m) + "^" + strings.ToUpper(string(rune(code))), true
		}
		if m&1 != 0 {
			return altPrefix(m) + strings.ToUpper(string(rune(code))), true
		}
		return altPrefix(m) + string(rune(code)), true
	default:
		return "", false
	}
	return modifierPrefix(mod) + name, true
}

// modifierBits decodes an xterm modifier parameter (1 + bitmask).
func modifierBits(param string) int {
	n, err := strconv.Atoi(param)
	if err != nil || n < 2 {
		return 0
	}
	return n - 1
}

// modifierPrefix converts an xterm modifier parameter to a key prefix.
func modifierPrefix(param string) string {
	m := modifierBits(param)
	prefix := ""
	if m&1 != 0 {
		prefix += "S-"
	}
	if m&2 != 0 {
		prefix += "M-"
	}
	if m&4 != 0 {
		prefix += "C-"
	}
	if m&8 != 0 {
		prefix += "s-"
	}
	return prefix
}

func altPrefix(m int) string {
	if m&2 != 0 {
		return "M-"
	}
	return ""
}

// parseAlt detects ESC followed by a single key (Meta prefix).
func parseAlt(seq string) (string, bool) {
	if len(seq) != 2 || seq[0] != 0x1b {
		return "", false
	}
	c := seq[1]
	switch {
	case c >= 'A' && c <= 'Z':
		return "M-S-" + string(c-'A'+'a'), true
	case c == ' ':
		return "M-Space", true
	case c > 0x20 && c < 0x7f:
		return "M-" + string(c), true
	case c == 0x1b:
		return "M-Escape", true
	case c == 0x7f || c == 0x08:
		return "M-Backspace", true
	case c == '\t':
		return "M-Tab", true
	case c == '\r':
		return "M-Enter", true
	case c >= 0x01 && c <= 0x1a:
		return "M-^" + string('A'+c-1), true
	}
	return "", false
}

// pasteKeys turns pasted content into key events. Line breaks become ^J so
// a paste never submits a line by itself.
func pasteKeys(content []byte) []string {
	var keys []string
	for len(content) > 0 {
		r, size := utf8.DecodeRune(content)
		content = content[size:]
		switch {
		case r == utf8.RuneError && size == 1:
			continue
		case r == '\r' || r == '\n':
			keys = append(keys, "^J")
		case r == '\t':
			keys = append(keys, "Tab")
		case r < 0x20 || r == 0x7f:
			// other controls are not pasted
		default:
			keys = append(keys, string(r))
		}
	}
	return keys
}

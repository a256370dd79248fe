package parser

import "strings"

// formatMarker introduces a formatting code.
const formatMarker = "§"

// colorStyles are the 16 color codes. A color closes every open style.
var colorStyles = map[byte]string{
	'0': "black",
	'1': "darkblue",
	'2': "darkgreen",
	'3': "darkaqua",
	'4': "darkred",
	'5': "darkpurple",
	'6': "gold",
	'7': "gray",
	'8': "darkgray",
	'9': "blue",
	'a': "green",
	'b': "aqua",
	'c': "red",
	'd': "lightpurple",
	'e': "yellow",
	'f': "white",
}

// modifierStyles stack on top of the current color.
var modifierStyles = map[byte]string{
	'k': "obfuscated",
	'l': "bold",
	'm': "strike",
	'n': "underline",
	'o': "italic",
}

const resetCode = 'r'

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// Escape makes text safe to embed in markup.
func Escape(text string) string {
	return htmlEscaper.Replace(text)
}

// StyleClass returns the CSS class for a formatting code, or false when the
// code is not one of the 16 colors, 5 modifiers or reset.
func StyleClass(code byte) (string, bool) {
	code = toLower(code)
	if name, ok := colorStyles[code]; ok {
		return "format-" + name, true
	}
	if name, ok := modifierStyles[code]; ok {
		return "format-" + name, true
	}
	if code == resetCode {
		return "format-reset", true
	}
	return "", false
}

// Render escapes line and resolves its formatting codes into spans. Every
// span opened on the line is closed by a color, a reset or the end of the
// line, so styles never leak into the next entry. Unknown codes stay literal.
func Render(line string) string {
	if !strings.Contains(line, formatMarker) {
		return Escape(line)
	}

	var b strings.Builder
	b.Grow(len(line) + 32)
	open := 0
	closeAll := func() {
		for ; open > 0; open-- {
			b.WriteString("</span>")
		}
	}

	rest := line
	for {
		i := strings.Index(rest, formatMarker)
		if i < 0 || i+len(formatMarker) >= len(rest) {
			b.WriteString(Escape(rest))
			break
		}
		b.WriteString(Escape(rest[:i]))

		code := toLower(rest[i+len(formatMarker)])
		switch {
		case code == resetCode:
			closeAll()
		case colorStyles[code] != "":
			closeAll()
			b.WriteString(`<span class="format-` + colorStyles[code] + `">`)
			open++
		case modifierStyles[code] != "":
			b.WriteString(`<span class="format-` + modifierStyles[code] + `">`)
			open++
		default:
			b.WriteString(formatMarker)
			rest = rest[i+len(formatMarker):]
			continue
		}
		rest = rest[i+len(formatMarker)+1:]
	}
	closeAll()
	return b.String()
}

// Strip removes recognized formatting codes, leaving unknown ones in place.
func Strip(line string) string {
	if !strings.Contains(line, formatMarker) {
		return line
	}
	var b strings.Builder
	rest := line
	for {
		i := strings.Index(rest, formatMarker)
		if i < 0 || i+len(formatMarker) >= len(rest) {
			b.WriteString(rest)
			return b.String()
		}
		b.WriteString(rest[:i])
		if _, ok := StyleClass(rest[i+len(formatMarker)]); ok {
			rest = rest[i+len(formatMarker)+1:]
			continue
		}
		b.WriteString(formatMarker)
		rest = rest[i+len(formatMarker):]
	}
}

func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// Package common holds helpers shared by the language generators.
package common

import "strings"

// GeneratedMarker opens every generated file, wrapped in the comment
// syntax of the target language.
const GeneratedMarker = "Code generated by sunburst regs generate. DO NOT EDIT."

// initialisms are description name parts spelled in full caps in Go
// identifiers.
var initialisms = map[string]string{
	"id":  "ID",
	"io":  "IO",
	"usb": "USB",
}

// ToCamelCase converts a lower snake_case description name into a Go
// identifier. "receive_buffer" becomes "ReceiveBuffer" and "buffer_id"
// becomes "BufferID".
func ToCamelCase(name string) string {
	var b strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		if up, ok := initialisms[part]; ok {
			b.WriteString(up)
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// ToUpperSnake converts a description name into its C macro spelling.
func ToUpperSnake(name string) string { return strings.ToUpper(name) }

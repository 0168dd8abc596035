// Package gogen renders a resolved peripheral description as a Go
// register file: offset constants, field constants and an mmio.R32
// layout struct, formatted the way the hand-written drivers are.
package gogen

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"text/template"

	"github.com/marnovandermaas/sunburst/internal/codegen/common"
	"github.com/marnovandermaas/sunburst/internal/codegen/meta"
)

const fileTmpl = `// {{.Marker}}

// Package {{.Package}} gives register-level access to the {{.Title}} block.
package {{.Package}}

import "github.com/marnovandermaas/sunburst/mmio"

// Register byte offsets from the peripheral base address.
const (
{{- range .OffsetRows}}
{{.}}
{{- end}}
)
{{- range .FieldBlocks}}

// {{.Comment}}
const (
{{- range .Rows}}
{{.}}
{{- end}}
)
{{- end}}

// Registers is the {{.Package}} register layout. Map it over the start of
// the peripheral MMIO window.
type Registers struct {
{{- range .StructRows}}
{{.}}
{{- end}}
}
`

type fileData struct {
	Marker      string
	Package     string
	Title       string
	OffsetRows  []string
	FieldBlocks []fieldBlock
	StructRows  []string
}

type fieldBlock struct {
	Comment string
	Rows    []string
}

// indent prefixes each row with the declaration-level tab, leaving
// separator blank lines bare so the output carries no trailing
// whitespace.
func indent(rows []string) []string {
	for i, row := range rows {
		if row != "" {
			rows[i] = "\t" + row
		}
	}
	return rows
}

// Generate writes a <name> package holding <name>.go under outputDir.
func Generate(logger *slog.Logger, outputDir string, p *meta.Peripheral) error {
	pkgDir := filepath.Join(outputDir, p.Name)
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		return fmt.Errorf("create package directory: %w", err)
	}
	out := filepath.Join(pkgDir, p.Name+".go")
	t := template.Must(template.New(p.Name + ".go").Parse(fileTmpl))

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create register file: %w", err)
	}
	defer f.Close()

	if err := t.Execute(f, buildData(p)); err != nil {
		return fmt.Errorf("exec register file tmpl: %w", err)
	}
	logger.Info("Generated Go register file", "file", out)
	return nil
}

func buildData(p *meta.Peripheral) fileData {
	title := p.Description
	if title == "" {
		title = p.Name
	}
	data := fileData{
		Marker:     common.GeneratedMarker,
		Package:    p.Name,
		Title:      title,
		OffsetRows: indent(offsetRows(p)),
		StructRows: indent(structRows(p)),
	}
	for _, reg := range p.Registers {
		if len(reg.Fields) == 0 {
			continue
		}
		data.FieldBlocks = append(data.FieldBlocks, fieldBlock{
			Comment: blockComment(reg),
			Rows:    indent(fieldRows(reg)),
		})
	}
	return data
}

// hexDigits returns the digit count that renders every register offset at
// a uniform width, at least two.
func hexDigits(p *meta.Peripheral) int {
	digits := 2
	for _, reg := range p.Registers {
		if n := len(fmt.Sprintf("%X", reg.Offset)); n > digits {
			digits = n
		}
	}
	return digits
}

func offsetRows(p *meta.Peripheral) []string {
	digits := hexDigits(p)
	width := 0
	for _, reg := range p.Registers {
		if n := len("Reg" + common.ToCamelCase(reg.Name)); n > width {
			width = n
		}
	}

	rows := make([]string, 0, len(p.Registers))
	for _, reg := range p.Registers {
		row := fmt.Sprintf("%-*s = 0x%0*X", width, "Reg"+common.ToCamelCase(reg.Name), digits, reg.Offset)
		if reg.Description != "" {
			row += " // " + reg.Description
		}
		rows = append(rows, row)
	}
	return rows
}

func blockComment(reg meta.Register) string {
	name := common.ToCamelCase(reg.Name)
	if reg.Array() {
		return fmt.Sprintf("%s register fields (offsets 0x%X-0x%X, one register per instance).",
			name, reg.Offset, reg.Offset+4*(reg.Count-1))
	}
	return fmt.Sprintf("%s register fields (offset 0x%X).", name, reg.Offset)
}

func maskValue(f meta.Field) string {
	if f.Single() {
		return fmt.Sprintf("1 << %d", f.Low)
	}
	return fmt.Sprintf("0x%X << %d", uint32(1<<f.Width()-1), f.Low)
}

// fieldRows renders one register's field constants: typed masks, then the
// shift constants for the placed multi-bit fields. Rows separated by a
// field doc comment are padded per run, matching how gofmt aligns
// constant groups.
func fieldRows(reg meta.Register) []string {
	prefix := common.ToCamelCase(reg.Name)

	var rows []string
	var run [][2]string // name, value
	flush := func() {
		width := 0
		for _, e := range run {
			if len(e[0]) > width {
				width = len(e[0])
			}
		}
		for _, e := range run {
			rows = append(rows, fmt.Sprintf("%-*s uint32 = %s", width, e[0], e[1]))
		}
		run = nil
	}

	for _, f := range reg.Fields {
		if f.Description != "" {
			flush()
			rows = append(rows, "// "+f.Description)
		}
		run = append(run, [2]string{prefix + common.ToCamelCase(f.Name), maskValue(f)})
	}
	flush()

	var shifts [][2]string
	for _, f := range reg.Fields {
		if !f.Single() && f.Low > 0 {
			shifts = append(shifts, [2]string{prefix + common.ToCamelCase(f.Name) + "Shift", fmt.Sprintf("%d", f.Low)})
		}
	}
	if len(shifts) > 0 {
		rows = append(rows, "")
		width := 0
		for _, e := range shifts {
			if len(e[0]) > width {
				width = len(e[0])
			}
		}
		for _, e := range shifts {
			rows = append(rows, fmt.Sprintf("%-*s = %s", width, e[0], e[1]))
		}
	}
	return rows
}

// structRows lays the registers out as mmio.R32 fields, inserting blank
// padding fields over the reserved gaps between them.
func structRows(p *meta.Peripheral) []string {
	type row struct {
		name, typ string
		offset    uint32
	}

	var list []row
	var cursor uint32
	for _, reg := range p.Registers {
		if gap := reg.Offset - cursor; gap > 0 {
			typ := "mmio.R32"
			if gap > 4 {
				typ = fmt.Sprintf("[%d]mmio.R32", gap/4)
			}
			list = append(list, row{"_", typ, cursor})
		}
		typ := "mmio.R32"
		if reg.Array() {
			typ = fmt.Sprintf("[%d]mmio.R32", reg.Count)
		}
		list = append(list, row{common.ToCamelCase(reg.Name), typ, reg.Offset})
		cursor = reg.End()
	}

	nameWidth, typWidth := 0, 0
	for _, r := range list {
		if len(r.name) > nameWidth {
			nameWidth = len(r.name)
		}
		if len(r.typ) > typWidth {
			typWidth = len(r.typ)
		}
	}

	digits := hexDigits(p)
	rows := make([]string, 0, len(list))
	for _, r := range list {
		rows = append(rows, fmt.Sprintf("%-*s %-*s // 0x%0*X", nameWidth, r.name, typWidth, r.typ, digits, r.offset))
	}
	return rows
}

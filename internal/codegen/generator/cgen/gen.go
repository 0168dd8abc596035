// Package cgen renders a resolved peripheral description as a C header
// for firmware that cannot use the Go drivers: offset and field macros
// plus a volatile register struct.
package cgen

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"text/template"

	"github.com/marnovandermaas/sunburst/internal/codegen/common"
	"github.com/marnovandermaas/sunburst/internal/codegen/meta"
)

const headerTmpl = `/* {{.Marker}} */

/* {{.Title}} registers. */

#ifndef {{.Guard}}
#define {{.Guard}}

#include <stdint.h>

#ifdef __cplusplus
extern "C" {
#endif

/* Register byte offsets from the peripheral base address. */
{{- $p := .Prefix}}
{{- range .Registers}}
#define {{$p}}_{{upper .Name}}_REG {{hex .Offset}}
{{- end}}
{{- range .Registers}}
{{- if .Fields}}

/* {{upper .Name}} fields. */
{{- $r := .}}
{{- range .Fields}}
#define {{$p}}_{{upper $r.Name}}_{{upper .Name}} {{mask .}}
{{- if and (not .Single) .Low}}
#define {{$p}}_{{upper $r.Name}}_{{upper .Name}}_SHIFT {{.Low}}u
{{- end}}
{{- end}}
{{- end}}
{{- end}}

typedef struct {
{{- range .StructRows}}
{{.}}
{{- end}}
} {{.Type}};

#ifdef __cplusplus
}
#endif

#endif /* {{.Guard}} */
`

var tplFuncs = template.FuncMap{
	"upper": common.ToUpperSnake,
	"hex":   func(v uint32) string { return fmt.Sprintf("%#xu", v) },
	"mask":  maskValue,
}

type headerData struct {
	Marker     string
	Title      string
	Guard      string
	Prefix     string
	Type       string
	Registers  []meta.Register
	StructRows []string
}

// Generate writes <name>.h under outputDir.
func Generate(logger *slog.Logger, outputDir string, p *meta.Peripheral) error {
	out := filepath.Join(outputDir, p.Name+".h")
	t := template.Must(template.New(p.Name + ".h").Funcs(tplFuncs).Parse(headerTmpl))

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create header: %w", err)
	}
	defer f.Close()

	title := p.Description
	if title == "" {
		title = p.Name
	}
	data := headerData{
		Marker:     common.GeneratedMarker,
		Title:      title,
		Guard:      fmt.Sprintf("SUNBURST_%s_REGS_H", common.ToUpperSnake(p.Name)),
		Prefix:     common.ToUpperSnake(p.Name),
		Type:       p.Name + "_regs_t",
		Registers:  p.Registers,
		StructRows: structRows(p),
	}
	if err := t.Execute(f, data); err != nil {
		return fmt.Errorf("exec header tmpl: %w", err)
	}
	logger.Info("Generated C header", "file", out)
	return nil
}

func maskValue(f meta.Field) string {
	if f.Single() {
		return fmt.Sprintf("(1u << %d)", f.Low)
	}
	return fmt.Sprintf("(%#xu << %d)", uint32(1<<f.Width()-1), f.Low)
}

// structRows lays the registers out as volatile words, naming the
// reserved gaps between them.
func structRows(p *meta.Peripheral) []string {
	var rows []string
	var cursor uint32
	reserved := 0
	for _, reg := range p.Registers {
		if gap := reg.Offset - cursor; gap > 0 {
			decl := fmt.Sprintf("reserved%d", reserved)
			reserved++
			if gap > 4 {
				decl += fmt.Sprintf("[%d]", gap/4)
			}
			rows = append(rows, fmt.Sprintf("    volatile uint32_t %s; /* %#x */", decl, cursor))
		}
		decl := reg.Name
		if reg.Array() {
			decl += fmt.Sprintf("[%d]", reg.Count)
		}
		rows = append(rows, fmt.Sprintf("    volatile uint32_t %s; /* %#x */", decl, reg.Offset))
		cursor = reg.End()
	}
	return rows
}

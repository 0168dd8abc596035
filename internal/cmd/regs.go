package cmd

import (
	"log/slog"

	"github.com/marnovandermaas/sunburst/internal/codegen/generator"
)

// RegsCommand groups register map subcommands.
type RegsCommand struct {
	Generate RegsGenerate `cmd:"" help:"Generate register interfaces from a peripheral description"`
}

// RegsGenerate renders a YAML peripheral description as source code.
type RegsGenerate struct {
	Description string `arg:"" type:"existingfile" help:"Peripheral description YAML"`
	Output      string `help:"Output directory for generated files" default:"./regs" env:"SUNBURST_REGS_OUTPUT"`
	Lang        string `help:"Target language: c, go, or 'all'" default:"all" enum:"c,go,all" env:"SUNBURST_REGS_LANG"`
}

// Run is called by Kong when the regs generate command is executed.
func (r *RegsGenerate) Run(logger *slog.Logger) error {
	logger.Info("Starting register interface generation",
		"description", r.Description, "output", r.Output, "lang", r.Lang)

	gen := generator.New(r.Output, logger)
	if r.Lang == "all" {
		return gen.GenAll(r.Description)
	}
	return gen.GenerateLang(r.Lang, r.Description)
}

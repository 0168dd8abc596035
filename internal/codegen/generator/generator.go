// Package generator orchestrates register interface generation from a
// peripheral description.
package generator

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/marnovandermaas/sunburst/internal/codegen/generator/cgen"
	"github.com/marnovandermaas/sunburst/internal/codegen/generator/gogen"
	"github.com/marnovandermaas/sunburst/internal/codegen/load"
	"github.com/marnovandermaas/sunburst/internal/codegen/meta"
)

// Generator renders register interfaces into an output directory.
type Generator struct {
	outputDir string
	logger    *slog.Logger
}

// LanguageGenerator renders one target language for a resolved
// peripheral.
type LanguageGenerator func(logger *slog.Logger, outputDir string, p *meta.Peripheral) error

var generators = map[string]LanguageGenerator{
	"c":  cgen.Generate,
	"go": gogen.Generate,
}

func New(outputDir string, logger *slog.Logger) *Generator {
	return &Generator{
		outputDir: outputDir,
		logger:    logger,
	}
}

// Languages returns the supported target languages, sorted.
func Languages() []string {
	langs := make([]string, 0, len(generators))
	for lang := range generators {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// GenAll renders the description at descPath in every supported
// language.
func (g *Generator) GenAll(descPath string) error {
	for _, lang := range Languages() {
		if err := g.GenerateLang(lang, descPath); err != nil {
			return fmt.Errorf("generate %s register interface: %w", lang, err)
		}
	}
	return nil
}

// GenerateLang renders the description at descPath for one language.
func (g *Generator) GenerateLang(lang, descPath string) error {
	gen, ok := generators[lang]
	if !ok {
		return fmt.Errorf("unsupported language '%s' (supported: %v)", lang, Languages())
	}

	p, err := load.File(descPath)
	if err != nil {
		return err
	}

	g.logger.Info("Generating register interface", "language", lang, "peripheral", p.Name)

	outputPath := filepath.Join(g.outputDir, lang)
	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		return fmt.Errorf("failed to create %s output directory: %w", lang, err)
	}

	if err := gen(g.logger, outputPath, p); err != nil {
		return err
	}

	g.logger.Info("Register interface generation complete", "language", lang, "output", outputPath)
	return nil
}

// Package generator builds one JSON Schema artifact per presentation
// template and writes it to the artifact store.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"slidedeck/internal/layout"
	"slidedeck/internal/pkg/logger"
	"slidedeck/internal/ports"
	"slidedeck/internal/schema"
)

const (
	settingsFile   = "settings.json"
	defaultPattern = "*.tsx"
)

// Settings is the optional settings.json of a template.
type Settings struct {
	Ordered     bool   `json:"ordered"`
	Description string `json:"description"`
	Default     bool   `json:"default"`
}

// SlideSchema is one layout in a generated artifact.
type SlideSchema struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	JSONSchema  json.RawMessage `json:"json_schema"`
}

// TemplateOutput is the artifact stored as <template>.json.
type TemplateOutput struct {
	Name    string        `json:"name"`
	Ordered bool          `json:"ordered"`
	Slides  []SlideSchema `json:"slides"`
}

// Summary counts what a run did.
type Summary struct {
	Templates int `json:"templates"`
	Written   int `json:"written"`
	Slides    int `json:"slides"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Converter turns a layout content type into a JSON Schema document.
type Converter func(t reflect.Type) (json.RawMessage, error)

type Generator struct {
	templatesDir string
	pattern      string
	store        ports.StorageProvider
	registry     *layout.Registry
	convert      Converter
	log          *logger.Logger
}

type Option func(*Generator)

// WithPattern sets the doublestar pattern layout file names must match.
func WithPattern(pattern string) Option {
	return func(g *Generator) {
		if pattern != "" {
			g.pattern = pattern
		}
	}
}

func WithRegistry(r *layout.Registry) Option {
	return func(g *Generator) { g.registry = r }
}

func WithConverter(c Converter) Option {
	return func(g *Generator) { g.convert = c }
}

func WithLogger(log *logger.Logger) Option {
	return func(g *Generator) { g.log = log }
}

// New creates a generator reading templates from templatesDir and writing
// artifacts to store. By default it uses layout.Default and schema.Convert.
func New(templatesDir string, store ports.StorageProvider, opts ...Option) *Generator {
	g := &Generator{
		templatesDir: templatesDir,
		pattern:      defaultPattern,
		store:        store,
		registry:     layout.Default,
		convert:      schema.Convert,
		log:          logger.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.WithComponent("generator")
	return g
}

// Run generates every template under the templates root. Only an unreadable
// root, an invalid pattern or a canceled context end the run early; every
// other failure is logged and counted in the summary.
func (g *Generator) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	if !doublestar.ValidatePattern(g.pattern) {
		return sum, fmt.Errorf("invalid layout pattern %q", g.pattern)
	}

	templates, err := g.templateIDs()
	if err != nil {
		return sum, err
	}

	runID := uuid.NewString()
	ctx = logger.ContextWithRunID(ctx, runID)
	log := g.log.FromContext(ctx)
	start := time.Now()

	log.Info("found templates", "count", len(templates), "templates", strings.Join(templates, ", "))
	g.warnMissingTemplates(log, templates)

	for _, id := range templates {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		g.generate(ctx, log, id, &sum)
	}

	log.Info("schema generation complete",
		"templates", sum.Templates,
		"written", sum.Written,
		"slides", sum.Slides,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return sum, nil
}

// RunTemplate regenerates a single template. It fails when id is not the
// name of a directory under the templates root.
func (g *Generator) RunTemplate(ctx context.Context, id string) (Summary, error) {
	var sum Summary

	if !doublestar.ValidatePattern(g.pattern) {
		return sum, fmt.Errorf("invalid layout pattern %q", g.pattern)
	}
	if !filepath.IsLocal(id) || strings.ContainsAny(id, `/\`) {
		return sum, fmt.Errorf("invalid template name %q", id)
	}
	st, err := os.Stat(filepath.Join(g.templatesDir, id))
	if err != nil {
		return sum, fmt.Errorf("template %q: %w", id, err)
	}
	if !st.IsDir() {
		return sum, fmt.Errorf("template %q is not a directory", id)
	}

	ctx = logger.ContextWithRunID(ctx, uuid.NewString())
	g.generate(ctx, g.log.FromContext(ctx), id, &sum)
	return sum, nil
}

func (g *Generator) generate(ctx context.Context, log *logger.Logger, id string, sum *Summary) {
	sum.Templates++

	out, skipped, err := g.build(id, log.WithTemplate(id))
	sum.Skipped += skipped
	if err != nil {
		sum.Failed++
		g.log.LogError(ctx, "failed to read template", err, "template", id)
		return
	}

	size, err := g.write(ctx, out)
	if err != nil {
		sum.Failed++
		g.log.LogError(ctx, "failed to write artifact", err, "template", id)
		return
	}
	sum.Written++
	sum.Slides += len(out.Slides)
	log.Info("saved artifact", "template", id, "key", ObjectKey(id), "slides", len(out.Slides), "bytes", size)
}

// build assembles the artifact of one template and reports how many
// layout files were skipped.
func (g *Generator) build(id string, log *logger.Logger) (TemplateOutput, int, error) {
	dir := filepath.Join(g.templatesDir, id)

	if !layout.ValidTemplateName(id) {
		log.Warn("template name cannot be requested over HTTP", "template", id)
	}

	settings, err := LoadSettings(dir, id)
	if err != nil {
		log.Warn("failed to parse settings.json, using defaults", "template", id, "error", err.Error())
	}

	files, err := g.layoutFiles(dir)
	if err != nil {
		return TemplateOutput{}, 0, err
	}
	log.Info("processing template", "template", id, "layouts", len(files))

	g.warnMissingLayouts(log, id, files)

	out := TemplateOutput{
		Name:    id,
		Ordered: settings.Ordered,
		Slides:  make([]SlideSchema, 0, len(files)),
	}
	skipped := 0

	for _, file := range files {
		def, ok := g.registry.Lookup(id, file)
		if !ok || def.Schema == nil {
			log.Info("skipping layout: no Schema export", "file", file)
			skipped++
			continue
		}

		raw, err := g.convert(def.Schema)
		if err != nil {
			log.Error("failed to convert layout", "file", file, "error", err.Error())
			skipped++
			continue
		}

		meta := def.Resolved()
		slide := SlideSchema{
			ID:          layout.SlideID(id, meta.ID),
			Name:        meta.Name,
			Description: meta.Description,
			JSONSchema:  raw,
		}
		out.Slides = append(out.Slides, slide)
		log.Debug("converted layout", "file", file, "slide_id", slide.ID)
	}

	return out, skipped, nil
}

// warnMissingTemplates reports registered templates without a directory.
func (g *Generator) warnMissingTemplates(log *logger.Logger, found []string) {
	for _, id := range g.registry.Templates() {
		if !slices.Contains(found, id) {
			log.Warn("registered template has no directory", "template", id)
		}
	}
}

// warnMissingLayouts reports registered layouts of id without a file.
func (g *Generator) warnMissingLayouts(log *logger.Logger, id string, files []string) {
	for _, def := range g.registry.Layouts(id) {
		if !slices.Contains(files, def.File) {
			log.Warn("registered layout has no file", "file", def.File)
		}
	}
}

func (g *Generator) write(ctx context.Context, out TemplateOutput) (int64, error) {
	data, err := Marshal(out)
	if err != nil {
		return 0, err
	}
	res, err := g.store.PutObject(ctx, ports.PutObjectInput{
		ObjectKey:   ObjectKey(out.Name),
		ContentType: "application/json",
		Reader:      bytes.NewReader(data),
		Size:        int64(len(data)),
	})
	if err != nil {
		return 0, err
	}
	return res.Size, nil
}

// templateIDs lists the immediate subdirectories of the templates root.
func (g *Generator) templateIDs() ([]string, error) {
	entries, err := os.ReadDir(g.templatesDir)
	if err != nil {
		return nil, fmt.Errorf("read templates dir %s: %w", g.templatesDir, err)
	}

	var ids []string
	for _, e := range entries {
		if isDir(g.templatesDir, e) {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// layoutFiles lists the non-hidden regular files of dir whose names match
// the layout pattern.
func (g *Generator) layoutFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read template dir %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || isDir(dir, e) {
			continue
		}
		ok, err := doublestar.Match(g.pattern, name)
		if err != nil {
			return nil, err
		}
		if ok {
			files = append(files, name)
		}
	}
	sort.Strings(files)
	return files, nil
}

// isDir follows symlinks, so a linked template directory still counts.
func isDir(parent string, e fs.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	st, err := os.Stat(filepath.Join(parent, e.Name()))
	return err == nil && st.IsDir()
}

// DefaultSettings are used when settings.json is missing or unreadable.
func DefaultSettings(templateID string) Settings {
	return Settings{
		Ordered:     false,
		Description: templateID + " presentation layouts",
		Default:     false,
	}
}

// LoadSettings reads dir/settings.json. Keys absent from the file keep
// their default. On a parse error the defaults are returned with the error.
func LoadSettings(dir, templateID string) (Settings, error) {
	settings := DefaultSettings(templateID)

	data, err := os.ReadFile(filepath.Join(dir, settingsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, err
	}

	parsed := settings
	if err := json.Unmarshal(data, &parsed); err != nil {
		return settings, err
	}
	return parsed, nil
}

// ObjectKey is the artifact key of a template.
func ObjectKey(templateID string) string {
	return templateID + ".json"
}

// Marshal renders an artifact with two-space indentation, no HTML escaping
// and no trailing newline.
func Marshal(out TemplateOutput) ([]byte, error) {
	if out.Slides == nil {
		out.Slides = []SlideSchema{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("marshal %s: %w", out.Name, err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

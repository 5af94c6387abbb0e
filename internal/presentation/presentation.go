// Package presentation checks imported presentation content against the
// generated template artifacts before it is handed to the renderer.
package presentation

import (
	"context"
	"fmt"
	"strings"

	"slidedeck/internal/catalog"
	"slidedeck/internal/generator"
	"slidedeck/internal/pkg/errors"
	"slidedeck/internal/schema"
)

const (
	DefaultTemplate = "general"
	DefaultLanguage = "Traditional Chinese"
)

// Export formats accepted in export_as.
const (
	ExportPPTX = "pptx"
	ExportPDF  = "pdf"
)

// ImportSlide is one slide of an import request. Content must match the
// json_schema of the layout named by LayoutID, e.g. "general:basic-info-slide".
type ImportSlide struct {
	LayoutID    string         `json:"layout_id"`
	Content     map[string]any `json:"content"`
	SpeakerNote *string        `json:"speaker_note,omitempty"`
}

// ImportRequest imports finished slide content without generation.
type ImportRequest struct {
	Title    string        `json:"title"`
	Template string        `json:"template,omitempty"`
	Slides   []ImportSlide `json:"slides"`
	Language string        `json:"language,omitempty"`
	ExportAs *string       `json:"export_as,omitempty"`
}

type SlideResult struct {
	Index    int    `json:"index"`
	LayoutID string `json:"layout_id"`
	Valid    bool   `json:"valid"`
	Error    string `json:"error,omitempty"`
}

type Result struct {
	Valid    bool          `json:"valid"`
	Template string        `json:"template"`
	Title    string        `json:"title"`
	Language string        `json:"language"`
	Slides   []SlideResult `json:"slides"`
}

// Normalize applies defaults and checks the request shape. It does not look
// at the template.
func (r *ImportRequest) Normalize() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Template = strings.TrimSpace(r.Template)
	r.Language = strings.TrimSpace(r.Language)

	if r.Template == "" {
		r.Template = DefaultTemplate
	}
	if r.Language == "" {
		r.Language = DefaultLanguage
	}

	if r.Title == "" {
		return errors.New(errors.CodeValidation, "title is required").WithField("field", "title")
	}
	if len(r.Slides) == 0 {
		return errors.New(errors.CodeValidation, "slides must not be empty").WithField("field", "slides")
	}
	if r.ExportAs != nil && *r.ExportAs != ExportPPTX && *r.ExportAs != ExportPDF {
		return errors.New(errors.CodeValidation, "export_as must be one of pptx, pdf").WithField("field", "export_as")
	}
	for i, s := range r.Slides {
		if strings.TrimSpace(s.LayoutID) == "" {
			return errors.Newf(errors.CodeValidation, "slides[%d].layout_id is required", i)
		}
		if s.Content == nil {
			return errors.Newf(errors.CodeValidation, "slides[%d].content is required", i)
		}
	}
	return nil
}

// Validator checks import requests against artifacts from a catalog.
type Validator struct {
	catalog *catalog.Catalog
}

func NewValidator(c *catalog.Catalog) *Validator {
	return &Validator{catalog: c}
}

// Validate normalizes req and checks every slide. Per-slide problems are
// reported in the Result; only request and template errors are returned.
func (v *Validator) Validate(ctx context.Context, req *ImportRequest) (*Result, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}

	tpl, err := v.catalog.Template(ctx, req.Template)
	if err != nil {
		return nil, err
	}

	layouts := make(map[string]int, len(tpl.Slides))
	for i, s := range tpl.Slides {
		layouts[s.ID] = i
	}
	compiled := make(map[string]*schema.Validator)

	res := &Result{
		Valid:    true,
		Template: req.Template,
		Title:    req.Title,
		Language: req.Language,
		Slides:   make([]SlideResult, 0, len(req.Slides)),
	}

	for i, s := range req.Slides {
		sr := SlideResult{Index: i, LayoutID: s.LayoutID, Valid: true}

		if err := v.checkSlide(tpl.Slides, layouts, compiled, s); err != nil {
			sr.Valid = false
			sr.Error = err.Error()
			res.Valid = false
		}
		res.Slides = append(res.Slides, sr)
	}
	return res, nil
}

func (v *Validator) checkSlide(slides []generator.SlideSchema, layouts map[string]int, compiled map[string]*schema.Validator, s ImportSlide) error {
	idx, ok := layouts[s.LayoutID]
	if !ok {
		return fmt.Errorf("unknown layout %q", s.LayoutID)
	}

	sv, ok := compiled[s.LayoutID]
	if !ok {
		var err error
		sv, err = schema.Compile(slides[idx].JSONSchema)
		if err != nil {
			return fmt.Errorf("layout %q has an unusable schema: %w", s.LayoutID, err)
		}
		compiled[s.LayoutID] = sv
	}

	return sv.Validate(s.Content)
}

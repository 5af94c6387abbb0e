// Package catalog reads generated template artifacts from the artifact store.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"slidedeck/internal/generator"
	"slidedeck/internal/layout"
	"slidedeck/internal/pkg/errors"
	"slidedeck/internal/ports"
)

const (
	MsgMissingGroup = "Missing group name"
	MsgInvalidGroup = "Invalid group name"
	MsgReadFailed   = "Failed to read template schema"
)

// Catalog serves artifacts by template group name. It keeps no cache:
// every call reads from the store.
type Catalog struct {
	store ports.StorageProvider
}

func New(store ports.StorageProvider) *Catalog {
	return &Catalog{store: store}
}

// Get returns the artifact of group decoded as generic JSON. Numbers are
// kept as json.Number so re-encoding reproduces them exactly.
func (c *Catalog) Get(ctx context.Context, group string) (any, error) {
	var doc any
	if err := c.load(ctx, group, &doc, true); err != nil {
		return nil, err
	}
	return doc, nil
}

// Template returns the artifact of group as a TemplateOutput.
func (c *Catalog) Template(ctx context.Context, group string) (*generator.TemplateOutput, error) {
	var out generator.TemplateOutput
	if err := c.load(ctx, group, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Catalog) load(ctx context.Context, group string, v any, useNumber bool) error {
	const op = "catalog.get"

	if err := CheckGroup(group); err != nil {
		return err.WithOp(op)
	}

	rc, _, _, err := c.store.GetObject(ctx, generator.ObjectKey(group))
	if err != nil {
		if errors.Is(err, ports.ErrObjectNotFound) {
			return errors.NotFound(fmt.Sprintf("Template '%s' not found", group)).
				WithOp(op).
				WithField("group", group)
		}
		return errors.WrapWithCode(err, errors.CodeInternal, op, MsgReadFailed).WithField("group", group)
	}
	defer rc.Close()

	if err := decodeOne(rc, v, useNumber); err != nil {
		return errors.WrapWithCode(err, errors.CodeInternal, op, MsgReadFailed).
			WithField("group", group).
			WithField("provider", c.store.Provider())
	}
	return nil
}

// CheckGroup rejects empty names and names outside [A-Za-z0-9_-] before
// any object key is built from them.
func CheckGroup(group string) *errors.Error {
	if group == "" {
		return errors.BadRequest(MsgMissingGroup)
	}
	if !layout.ValidTemplateName(group) {
		return errors.BadRequest(MsgInvalidGroup).WithField("group", group)
	}
	return nil
}

// decodeOne decodes exactly one JSON value; trailing data is an error.
func decodeOne(r io.Reader, v any, useNumber bool) error {
	dec := json.NewDecoder(r)
	if useNumber {
		dec.UseNumber()
	}
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after artifact")
	}
	return nil
}

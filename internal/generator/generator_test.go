package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slidedeck/internal/adapters/storage/localfs"
	"slidedeck/internal/layout"
	"slidedeck/internal/pkg/logger"
	"slidedeck/internal/ports"
	"slidedeck/internal/schema"
)

type coverContent struct {
	Title    string `json:"title" jsonschema:"minLength=3,default=Hello"`
	Subtitle string `json:"subtitle,omitempty" jsonschema:"default=World"`
}

type titleContent struct {
	Heading string `json:"heading" jsonschema:"default=Title"`
}

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failKey string
}

func newMemStore() *memStore { return &memStore{objects: map[string][]byte{}} }

func (m *memStore) Provider() string { return "memory" }
func (m *memStore) Ping(ctx context.Context) error { return nil }

func (m *memStore) PutObject(ctx context.Context, in ports.PutObjectInput) (ports.PutObjectOutput, error) {
	if in.ObjectKey == m.failKey {
		return ports.PutObjectOutput{}, errors.New("disk full")
	}
	data, err := io.ReadAll(in.Reader)
	if err != nil {
		return ports.PutObjectOutput{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[in.ObjectKey] = data
	return ports.PutObjectOutput{ObjectKey: in.ObjectKey, Size: int64(len(data))}, nil
}

func (m *memStore) GetObject(ctx context.Context, key string) (io.ReadCloser, string, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, "", 0, ports.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), "application/json", int64(len(data)), nil
}

func (m *memStore) get(t *testing.T, key string) TemplateOutput {
	t.Helper()
	m.mu.Lock()
	data, ok := m.objects[key]
	m.mu.Unlock()
	require.True(t, ok, "artifact %s not written", key)

	var out TemplateOutput
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

// writeTree creates files relative to root; content "" creates a directory.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if content == "" && !strings.Contains(filepath.Base(p), ".") {
			require.NoError(t, os.MkdirAll(p, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func testRegistry(t *testing.T) *layout.Registry {
	t.Helper()
	r := layout.NewRegistry()
	require.NoError(t, r.Register(layout.Define[coverContent]("classic", "Cover.tsx", layout.Meta{
		ID:          "cover",
		Name:        "Cover Slide",
		Description: "Opening slide",
	})))
	require.NoError(t, r.Register(layout.Define[titleContent]("classic", "TitleLayout.tsx", layout.Meta{})))
	require.NoError(t, r.Register(layout.Definition{Template: "classic", File: "Divider.tsx"}))
	return r
}

func classicTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"classic/settings.json":    `{"ordered":true,"description":"Classic deck"}`,
		"classic/Cover.tsx":        "export const Schema = z.object({})",
		"classic/TitleLayout.tsx":  "export default Title",
		"classic/Divider.tsx":      "export default Divider",
		"classic/Unregistered.tsx": "export default Nothing",
		"classic/.Hidden.tsx":      "hidden",
		"classic/README.md":        "not a layout",
		"classic/nested.tsx/x":     "dir named like a layout",
	})
	return root
}

func TestRunClassicTemplate(t *testing.T) {
	root := classicTree(t)
	store := newMemStore()
	g := New(root, store, WithRegistry(testRegistry(t)))

	sum, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Templates: 1, Written: 1, Slides: 2, Skipped: 2}, sum)

	out := store.get(t, "classic.json")
	assert.Equal(t, "classic", out.Name)
	assert.True(t, out.Ordered)
	require.Len(t, out.Slides, 2)

	cover := out.Slides[0]
	assert.Equal(t, "classic:cover", cover.ID)
	assert.Equal(t, "Cover Slide", cover.Name)
	assert.Equal(t, "Opening slide", cover.Description)

	title := out.Slides[1]
	assert.Equal(t, "classic:title", title.ID)
	assert.Equal(t, "Title", title.Name)
	assert.Equal(t, "", title.Description)

	for _, s := range out.Slides {
		assert.NotContains(t, string(s.JSONSchema), `"default"`, s.ID)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	root := classicTree(t)
	outDir := t.TempDir()
	g := New(root, localfs.New(outDir), WithRegistry(testRegistry(t)))

	_, err := g.Run(context.Background())
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(outDir, "classic.json"))
	require.NoError(t, err)

	_, err = g.Run(context.Background())
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(outDir, "classic.json"))
	require.NoError(t, err)

	if diff := cmp.Diff(string(first), string(second)); diff != "" {
		t.Errorf("artifact changed between runs (-first +second):\n%s", diff)
	}
	assert.False(t, bytes.HasSuffix(first, []byte("\n")))
	assert.True(t, bytes.HasPrefix(first, []byte("{\n  \"name\": \"classic\",\n  \"ordered\": true,\n  \"slides\": [")))
}

func TestRunSettingsFallback(t *testing.T) {
	tests := []struct {
		name        string
		settings    string
		wantOrdered bool
	}{
		{name: "missing"},
		{name: "malformed", settings: `{"ordered": tru`},
		{name: "wrong type", settings: `{"ordered":"yes"}`},
		{name: "partial", settings: `{"ordered":true}`, wantOrdered: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			files := map[string]string{"classic/Cover.tsx": "x"}
			if tt.settings != "" {
				files["classic/settings.json"] = tt.settings
			}
			writeTree(t, root, files)

			store := newMemStore()
			sum, err := New(root, store, WithRegistry(testRegistry(t))).Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 1, sum.Written)
			assert.Equal(t, tt.wantOrdered, store.get(t, "classic.json").Ordered)
		})
	}
}

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()

	s, err := LoadSettings(dir, "modern")
	require.NoError(t, err)
	assert.Equal(t, Settings{Description: "modern presentation layouts"}, s)

	writeTree(t, dir, map[string]string{"settings.json": `{"description":"Modern deck","default":true}`})
	s, err = LoadSettings(dir, "modern")
	require.NoError(t, err)
	assert.Equal(t, Settings{Description: "Modern deck", Default: true}, s)

	writeTree(t, dir, map[string]string{"settings.json": `not json`})
	s, err = LoadSettings(dir, "modern")
	require.Error(t, err)
	assert.Equal(t, DefaultSettings("modern"), s)
}

func TestRunEmptyTemplateWritesEmptySlides(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"empty": "", "stray.txt": "ignored"})

	store := newMemStore()
	sum, err := New(root, store, WithRegistry(layout.NewRegistry())).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Templates: 1, Written: 1}, sum)

	store.mu.Lock()
	raw := string(store.objects["empty.json"])
	store.mu.Unlock()
	assert.Equal(t, "{\n  \"name\": \"empty\",\n  \"ordered\": false,\n  \"slides\": []\n}", raw)
}

func TestRunConversionFailureSkipsLayout(t *testing.T) {
	root := classicTree(t)
	store := newMemStore()

	failing := func(rt reflect.Type) (json.RawMessage, error) {
		if rt == reflect.TypeFor[coverContent]() {
			return nil, fmt.Errorf("unsupported type")
		}
		return json.RawMessage(`{"type":"object"}`), nil
	}

	sum, err := New(root, store, WithRegistry(testRegistry(t)), WithConverter(failing)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Skipped)
	assert.Equal(t, 1, sum.Slides)

	out := store.get(t, "classic.json")
	require.Len(t, out.Slides, 1)
	assert.Equal(t, "classic:title", out.Slides[0].ID)
}

func TestRunWriteFailureContinues(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"alpha/Cover.tsx":   "x",
		"classic/Cover.tsx": "x",
	})

	store := newMemStore()
	store.failKey = "alpha.json"

	sum, err := New(root, store, WithRegistry(testRegistry(t))).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Templates)
	assert.Equal(t, 1, sum.Written)
	assert.Equal(t, 1, sum.Failed)
	store.get(t, "classic.json")
}

func TestRunPattern(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"classic/Cover.tsx":        "x",
		"classic/TitleLayout.jsx":  "x",
		"classic/TitleLayout.tsx~": "backup",
	})

	r := testRegistry(t)
	require.NoError(t, r.Register(layout.Define[titleContent]("classic", "TitleLayout.jsx", layout.Meta{})))

	store := newMemStore()
	_, err := New(root, store, WithRegistry(r), WithPattern("*.{tsx,jsx}")).Run(context.Background())
	require.NoError(t, err)

	var ids []string
	for _, s := range store.get(t, "classic.json").Slides {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"classic:cover", "classic:title"}, ids)
}

func TestRunTopLevelFailures(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), newMemStore()).Run(context.Background())
	require.Error(t, err)

	_, err = New(t.TempDir(), newMemStore(), WithPattern("[")).Run(context.Background())
	require.ErrorContains(t, err, "invalid layout pattern")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	root := classicTree(t)
	sum, err := New(root, newMemStore(), WithRegistry(testRegistry(t))).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, sum.Written)
}

func TestRunTemplate(t *testing.T) {
	root := classicTree(t)
	writeTree(t, root, map[string]string{"modern/Cover.tsx": "x"})
	store := newMemStore()
	g := New(root, store, WithRegistry(testRegistry(t)))

	sum, err := g.RunTemplate(context.Background(), "classic")
	require.NoError(t, err)
	assert.Equal(t, Summary{Templates: 1, Written: 1, Slides: 2, Skipped: 2}, sum)
	assert.Len(t, store.get(t, "classic.json").Slides, 2)

	_, ok := store.objects["modern.json"]
	assert.False(t, ok)

	for _, id := range []string{"", "missing", "../classic", "classic/..", "classic/settings.json"} {
		_, err := g.RunTemplate(context.Background(), id)
		assert.Error(t, err, id)
	}
}

func TestRunWarnsAboutRegisteredLayoutsWithoutFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"classic/Cover.tsx": "x"})

	reg := testRegistry(t)
	require.NoError(t, reg.Register(layout.Define[titleContent]("modern", "TitleLayout.tsx", layout.Meta{})))

	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "warn", Format: "json", Output: &buf})

	sum, err := New(root, newMemStore(), WithRegistry(reg), WithLogger(log)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Written)

	out := buf.String()
	assert.Contains(t, out, `"msg":"registered template has no directory"`)
	assert.Contains(t, out, `"template":"modern"`)
	assert.Contains(t, out, `"file":"TitleLayout.tsx"`)
	assert.Contains(t, out, `"file":"Divider.tsx"`)
	assert.NotContains(t, out, `"file":"Cover.tsx"`)
}

type markupContent struct {
	Body string `json:"body" jsonschema:"description=Use <b> & <i> tags,default=Hi <there>"`
}

func TestMarshalEscaping(t *testing.T) {
	raw, err := schema.Convert(reflect.TypeOf(markupContent{}))
	require.NoError(t, err)

	data, err := Marshal(TemplateOutput{
		Name: "a&b",
		Slides: []SlideSchema{{
			ID:         "a&b:x",
			Name:       "<Intro>",
			JSONSchema: raw,
		}},
	})
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `"name": "<Intro>"`)
	assert.Contains(t, out, `"description": "Use <b> & <i> tags"`)
	assert.NotContains(t, out, `\u003c`)
	assert.NotContains(t, out, `\u0026`)
	assert.NotContains(t, out, "Hi <there>")
	assert.Contains(t, out, "\n      \"json_schema\": {\n")
}

func TestWatchRegeneratesOnChange(t *testing.T) {
	root := classicTree(t)
	store := newMemStore()
	g := New(root, store, WithRegistry(testRegistry(t)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runs := make(chan Summary, 10)
	done := make(chan error, 1)
	go func() {
		done <- g.Watch(ctx, 20*time.Millisecond, func(s Summary, err error) { runs <- s })
	}()

	select {
	case <-runs:
	case <-time.After(5 * time.Second):
		t.Fatal("initial run did not happen")
	}
	assert.True(t, store.get(t, "classic.json").Ordered)

	writeTree(t, root, map[string]string{"classic/settings.json": `{"ordered":false}`})

	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-runs:
		case <-deadline:
			t.Fatal("watch did not regenerate after a change")
		}
		if !store.get(t, "classic.json").Ordered {
			break
		}
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

package layout

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type coverContent struct {
	Title string `json:"title"`
}

func TestDeriveNames(t *testing.T) {
	tests := []struct {
		file     string
		wantID   string
		wantName string
	}{
		{file: "TitleLayout.tsx", wantID: "title", wantName: "Title"},
		{file: "Cover.tsx", wantID: "cover", wantName: "Cover"},
		{file: "TwoColumnLayout.tsx", wantID: "twocolumn", wantName: "TwoColumn"},
		{file: "LayoutGrid.tsx", wantID: "layoutgrid", wantName: "LayoutGrid"},
		{file: "Layout.tsx", wantID: "layout", wantName: "Layout"},
		{file: "ÉtapeLayout.tsx", wantID: "étape", wantName: "Étape"},
		{file: "nested/QuoteLayout.tsx", wantID: "quote", wantName: "Quote"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.Equal(t, tt.wantID, DeriveID(tt.file))
			assert.Equal(t, tt.wantName, DeriveName(tt.file))
		})
	}
}

func TestSlideID(t *testing.T) {
	assert.Equal(t, "classic:cover", SlideID("classic", "cover"))
}

func TestDefineAndResolve(t *testing.T) {
	def := Define[coverContent]("classic", "Cover.tsx", Meta{ID: "cover", Name: "Cover Slide"})
	assert.Equal(t, reflect.TypeOf(coverContent{}), def.Schema)
	assert.Equal(t, Meta{ID: "cover", Name: "Cover Slide"}, def.Resolved())

	bare := Definition{Template: "general", File: "TitleLayout.tsx"}
	assert.Equal(t, Meta{ID: "title", Name: "Title"}, bare.Resolved())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(Define[coverContent]("classic", "Cover.tsx", Meta{})))
	require.NoError(t, r.Register(Definition{Template: "classic", File: "Agenda.tsx"}))
	require.NoError(t, r.Register(Define[coverContent]("general", "Cover.tsx", Meta{})))

	def, ok := r.Lookup("classic", "Cover.tsx")
	require.True(t, ok)
	assert.Equal(t, "Cover.tsx", def.File)

	_, ok = r.Lookup("classic", "Missing.tsx")
	assert.False(t, ok)

	assert.Equal(t, []string{"classic", "general"}, r.Templates())

	layouts := r.Layouts("classic")
	require.Len(t, layouts, 2)
	assert.Equal(t, "Agenda.tsx", layouts[0].File)
	assert.Nil(t, layouts[0].Schema)
}

func TestRegistryRejectsBadRegistrations(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Definition{Template: "classic", File: "Cover.tsx"}))

	assert.ErrorContains(t, r.Register(Definition{Template: "classic", File: "Cover.tsx"}), "already registered")
	assert.Error(t, r.Register(Definition{File: "Cover.tsx"}))
	assert.Error(t, r.Register(Definition{Template: "classic"}))
}

func TestPackageRegisterPanicsOnDuplicate(t *testing.T) {
	saved := Default
	Default = NewRegistry()
	t.Cleanup(func() { Default = saved })

	Register(Definition{Template: "t", File: "A.tsx"})
	assert.Panics(t, func() { Register(Definition{Template: "t", File: "A.tsx"}) })
}

func TestValidTemplateName(t *testing.T) {
	for _, name := range []string{"general", "classic", "Modern_2", "dark-mode"} {
		assert.True(t, ValidTemplateName(name), name)
	}
	for _, name := range []string{"", "../etc", "a b", "a/b", "näive", "x.json", "a\x00"} {
		assert.False(t, ValidTemplateName(name), name)
	}
}

package layouts

import "slidedeck/internal/layout"

const classic = "classic"

type CoverSlide struct {
	Title    string `json:"title" jsonschema:"minLength=3,maxLength=80,default=Presentation title"`
	Subtitle string `json:"subtitle,omitempty" jsonschema:"maxLength=120"`
	Date     string `json:"date,omitempty" jsonschema:"format=date"`
}

type TitleSlide struct {
	Title string `json:"title" jsonschema:"minLength=3,maxLength=80"`
}

type AgendaSlide struct {
	Title string   `json:"title" jsonschema:"minLength=3,maxLength=60,default=Agenda"`
	Items []string `json:"items" jsonschema:"minItems=2,maxItems=8"`
}

func init() {
	layout.Register(layout.Define[CoverSlide](classic, "Cover.tsx", layout.Meta{
		ID:          "cover",
		Name:        "Cover Slide",
		Description: "Deck cover with title, subtitle and date.",
	}))
	// No metadata: id and name come from the file name ("title", "Title").
	layout.Register(layout.Define[TitleSlide](classic, "TitleLayout.tsx", layout.Meta{}))
	layout.Register(layout.Define[AgendaSlide](classic, "AgendaLayout.tsx", layout.Meta{}))
	// Purely decorative, nothing to fill in.
	layout.Register(layout.Definition{Template: classic, File: "Divider.tsx"})
}

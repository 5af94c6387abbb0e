package layouts

import "slidedeck/internal/layout"

const general = "general"

type IntroSlide struct {
	Title       string `json:"title" jsonschema:"minLength=3,maxLength=60,default=Welcome"`
	Description string `json:"description" jsonschema:"minLength=10,maxLength=200"`
	Presenter   string `json:"presenter,omitempty" jsonschema:"maxLength=60,default=Presenter name"`
	Image       Image  `json:"image"`
}

type BasicInfoSlide struct {
	Title       string `json:"title" jsonschema:"minLength=3,maxLength=60"`
	Description string `json:"description" jsonschema:"minLength=10,maxLength=400"`
	Image       Image  `json:"image"`
}

type IconBullet struct {
	TitledPoint
	Icon Icon `json:"icon"`
}

type BulletWithIconsSlide struct {
	Title       string       `json:"title" jsonschema:"minLength=3,maxLength=60"`
	Description string       `json:"description,omitempty" jsonschema:"maxLength=200"`
	Image       Image        `json:"image"`
	Bullets     []IconBullet `json:"bullets" jsonschema:"minItems=1,maxItems=4"`
}

type BulletIconsOnlySlide struct {
	Title   string       `json:"title" jsonschema:"minLength=3,maxLength=60"`
	Image   Image        `json:"image"`
	Bullets []IconBullet `json:"bullets" jsonschema:"minItems=2,maxItems=6"`
}

type NumberedBulletsSlide struct {
	Title   string        `json:"title" jsonschema:"minLength=3,maxLength=60"`
	Image   Image         `json:"image"`
	Bullets []TitledPoint `json:"bullets" jsonschema:"minItems=2,maxItems=5"`
}

type MetricsSlide struct {
	Title       string   `json:"title" jsonschema:"minLength=3,maxLength=60"`
	Description string   `json:"description,omitempty" jsonschema:"maxLength=200"`
	Metrics     []Metric `json:"metrics" jsonschema:"minItems=2,maxItems=4"`
}

type MetricsWithImageSlide struct {
	Title       string   `json:"title" jsonschema:"minLength=3,maxLength=60"`
	Description string   `json:"description,omitempty" jsonschema:"maxLength=200"`
	Image       Image    `json:"image"`
	Metrics     []Metric `json:"metrics" jsonschema:"minItems=1,maxItems=3"`
}

type QuoteSlide struct {
	Heading         string `json:"heading" jsonschema:"minLength=3,maxLength=60"`
	Quote           string `json:"quote" jsonschema:"minLength=10,maxLength=300"`
	Author          string `json:"author,omitempty" jsonschema:"maxLength=60"`
	BackgroundImage Image  `json:"background_image"`
}

type Section struct {
	Title string `json:"title" jsonschema:"minLength=2,maxLength=60"`
	Page  string `json:"page,omitempty" jsonschema:"maxLength=10"`
}

type TableOfContentsSlide struct {
	Title    string    `json:"title" jsonschema:"minLength=3,maxLength=60,default=Contents"`
	Sections []Section `json:"sections" jsonschema:"minItems=2,maxItems=10"`
}

func init() {
	layout.Register(layout.Define[IntroSlide](general, "IntroSlideLayout.tsx", layout.Meta{
		ID:          "general-intro-slide",
		Name:        "Intro Slide",
		Description: "Opening slide with title, description, presenter and a hero image.",
	}))
	layout.Register(layout.Define[BasicInfoSlide](general, "BasicInfoSlideLayout.tsx", layout.Meta{
		ID:          "basic-info-slide",
		Name:        "Basic Info",
		Description: "A title and a paragraph next to an image.",
	}))
	layout.Register(layout.Define[BulletWithIconsSlide](general, "BulletWithIconsSlideLayout.tsx", layout.Meta{
		ID:          "bullet-with-icons-slide",
		Name:        "Bullets with Icons",
		Description: "Up to four icon bullets with an image.",
	}))
	layout.Register(layout.Define[BulletIconsOnlySlide](general, "BulletIconsOnlySlideLayout.tsx", layout.Meta{
		ID:          "bullet-icons-only-slide",
		Name:        "Icon Bullets",
		Description: "A grid of icon bullets.",
	}))
	layout.Register(layout.Define[NumberedBulletsSlide](general, "NumberedBulletsSlideLayout.tsx", layout.Meta{
		ID:          "numbered-bullets-slide",
		Name:        "Numbered Bullets",
		Description: "Numbered steps or points with an image.",
	}))
	layout.Register(layout.Define[MetricsSlide](general, "MetricsSlideLayout.tsx", layout.Meta{
		ID:          "metrics-slide",
		Name:        "Metrics",
		Description: "Key figures with short labels.",
	}))
	layout.Register(layout.Define[MetricsWithImageSlide](general, "MetricsWithImageSlideLayout.tsx", layout.Meta{
		ID:          "metrics-with-image-slide",
		Name:        "Metrics with Image",
		Description: "Key figures beside an image.",
	}))
	layout.Register(layout.Define[QuoteSlide](general, "QuoteSlideLayout.tsx", layout.Meta{
		ID:          "quote-slide",
		Name:        "Quote",
		Description: "A large quote over a background image.",
	}))
	layout.Register(layout.Define[TableOfContentsSlide](general, "TableOfContentsSlideLayout.tsx", layout.Meta{
		ID:          "table-of-contents-slide",
		Name:        "Table of Contents",
		Description: "Section list with optional page references.",
	}))
}

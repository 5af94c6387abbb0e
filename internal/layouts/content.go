// Package layouts registers the slide layouts of the templates that ship
// with the application. Import it for its side effects.
package layouts

// Image is filled in after generation: the model supplies a prompt and the
// renderer resolves it to a URL.
type Image struct {
	URL    string `json:"__image_url__,omitempty" jsonschema:"format=uri,description=URL of the image"`
	Prompt string `json:"__image_prompt__" jsonschema:"minLength=10,maxLength=50,description=Prompt used to search or generate the image"`
}

type Icon struct {
	URL   string `json:"__icon_url__,omitempty" jsonschema:"format=uri,description=URL of the icon"`
	Query string `json:"__icon_query__" jsonschema:"minLength=3,maxLength=30,description=Query used to look up the icon"`
}

type Metric struct {
	Value string `json:"value" jsonschema:"minLength=1,maxLength=10,default=95%"`
	Label string `json:"label" jsonschema:"minLength=2,maxLength=40,default=Customer satisfaction"`
}

type TitledPoint struct {
	Title       string `json:"title" jsonschema:"minLength=2,maxLength=60"`
	Description string `json:"description" jsonschema:"minLength=5,maxLength=150"`
}

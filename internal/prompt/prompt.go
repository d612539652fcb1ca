package prompt

const RoleUser = "user"

type PartType string

const (
	PartImageURL PartType = "image_url"
	PartText     PartType = "text"
)

// Part is one piece of content inside a message. Only the field matching Type
// is set.
type Part struct {
	Type     PartType
	ImageURL string
	Text     string
}

// Message is a single multimodal user turn.
type Message struct {
	Role  string
	Parts []Part
}

// ImageRef is anything addressable by URL, normally a normalized request image.
type ImageRef interface {
	URL() string
}

// Build returns one user turn: the image reference first, then the text.
func Build(text string, image ImageRef) Message {
	return Message{
		Role: RoleUser,
		Parts: []Part{
			{Type: PartImageURL, ImageURL: image.URL()},
			{Type: PartText, Text: text},
		},
	}
}

package notification

// Variables are the values a template can reference.
type Variables struct {
	Name         string
	DaysInactive int
}

// Content is the rendered subject and bodies of a message.
type Content struct {
	Subject string
	HTML    string
	Text    string
}

// Renderer turns a template id and variables into message content. It must be pure.
type Renderer interface {
	Render(templateID string, vars Variables) (Content, error)
}

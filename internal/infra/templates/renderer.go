// Package templates renders reminder emails from embedded templates.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmltmpl "html/template"
	"strings"
	texttmpl "text/template"

	"inactivity_notifier/internal/domain/notification"
)

//go:embed email/*
var files embed.FS

const appName = "Skill Up Academy"

// copyText is the per-template wording. %s is the recipient's name, %d the day count.
type copyText struct {
	subject  string
	emoji    string
	headline string
	message  string
}

var inactivityCopy = map[string]copyText{
	"inactivity_3d": {
		subject:  "%s, we miss you! 👋",
		emoji:    "👋",
		headline: "We Miss You!",
		message:  "It's been %d days since we last saw you. Your learning journey is waiting!",
	},
	"inactivity_7d": {
		subject:  "Don't lose momentum, %s! ⏰",
		emoji:    "⏰",
		headline: "A Week Has Passed!",
		message:  "It's been a full week! Don't let your momentum slip. Just 15 minutes today can make a huge difference.",
	},
	"inactivity_14d": {
		subject:  "Last chance to get back on track, %s! 🔥",
		emoji:    "🔥",
		headline: "Your Goals Are Waiting!",
		message:  "Two weeks without progress! Remember why you started. Let's get back on track together.",
	},
}

// used for any other configured threshold
var genericCopy = copyText{
	subject:  "%s, your courses are waiting for you",
	emoji:    "📚",
	headline: "Pick Up Where You Left Off",
	message:  "It's been %d days since your last visit. A few minutes today will keep your progress going.",
}

type data struct {
	AppName      string
	Name         string
	DaysInactive int
	Emoji        string
	Headline     string
	Message      string
	ResumeURL    string
}

// Renderer implements notification.Renderer. Parsed templates are immutable after construction.
type Renderer struct {
	html        *htmltmpl.Template
	text        *texttmpl.Template
	frontendURL string
}

var _ notification.Renderer = (*Renderer)(nil)

func NewRenderer(frontendURL string) (*Renderer, error) {
	h, err := htmltmpl.ParseFS(files, "email/inactivity.gohtml")
	if err != nil {
		return nil, fmt.Errorf("failed to parse html template: %w", err)
	}
	t, err := texttmpl.ParseFS(files, "email/inactivity.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to parse text template: %w", err)
	}
	return &Renderer{
		html:        h.Option("missingkey=error"),
		text:        t.Option("missingkey=error"),
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}, nil
}

func (r *Renderer) Render(templateID string, vars notification.Variables) (notification.Content, error) {
	if !strings.HasPrefix(templateID, "inactivity_") {
		return notification.Content{}, fmt.Errorf("unknown template %q", templateID)
	}
	c, ok := inactivityCopy[templateID]
	if !ok {
		c = genericCopy
	}

	d := data{
		AppName:      appName,
		Name:         vars.Name,
		DaysInactive: vars.DaysInactive,
		Emoji:        c.emoji,
		Headline:     c.headline,
		Message:      formatMessage(c.message, vars.DaysInactive),
		ResumeURL:    r.frontendURL + "/student/modules",
	}

	var html, text bytes.Buffer
	if err := r.html.Execute(&html, d); err != nil {
		return notification.Content{}, fmt.Errorf("failed to render html for %s: %w", templateID, err)
	}
	if err := r.text.Execute(&text, d); err != nil {
		return notification.Content{}, fmt.Errorf("failed to render text for %s: %w", templateID, err)
	}

	return notification.Content{
		Subject: fmt.Sprintf(c.subject, vars.Name),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

func formatMessage(msg string, days int) string {
	if strings.Contains(msg, "%d") {
		return fmt.Sprintf(msg, days)
	}
	return msg
}

package templates

import (
	"testing"

	"inactivity_notifier/internal/domain/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderKnownThresholds(t *testing.T) {
	r, err := NewRenderer("https://skillup.test/")
	require.NoError(t, err)

	tests := []struct {
		id       string
		days     int
		subject  string
		headline string
	}{
		{id: "inactivity_3d", days: 3, subject: "Ada, we miss you! 👋", headline: "We Miss You!"},
		{id: "inactivity_7d", days: 7, subject: "Don't lose momentum, Ada! ⏰", headline: "A Week Has Passed!"},
		{id: "inactivity_14d", days: 14, subject: "Last chance to get back on track, Ada! 🔥", headline: "Your Goals Are Waiting!"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			c, err := r.Render(tt.id, notification.Variables{Name: "Ada", DaysInactive: tt.days})
			require.NoError(t, err)
			assert.Equal(t, tt.subject, c.Subject)
			assert.Contains(t, c.HTML, tt.headline)
			assert.Contains(t, c.HTML, "Hi Ada,")
			assert.Contains(t, c.HTML, `href="https://skillup.test/student/modules"`)
			assert.Contains(t, c.Text, tt.headline)
			assert.Contains(t, c.Text, "Days since last activity: ")
		})
	}
}

func TestRenderEscapesName(t *testing.T) {
	r, err := NewRenderer("https://skillup.test")
	require.NoError(t, err)

	c, err := r.Render("inactivity_3d", notification.Variables{Name: "<b>Eve</b>", DaysInactive: 3})
	require.NoError(t, err)
	assert.NotContains(t, c.HTML, "<b>Eve</b>")
	assert.Contains(t, c.HTML, "&lt;b&gt;Eve&lt;/b&gt;")
	assert.Contains(t, c.HTML, "It&#39;s been 3 days")
}

func TestRenderGenericAndUnknown(t *testing.T) {
	r, err := NewRenderer("https://skillup.test")
	require.NoError(t, err)

	c, err := r.Render("inactivity_21d", notification.Variables{Name: "Ada", DaysInactive: 21})
	require.NoError(t, err)
	assert.Equal(t, "Ada, your courses are waiting for you", c.Subject)
	assert.Contains(t, c.Text, "It's been 21 days since your last visit.")

	_, err = r.Render("welcome", notification.Variables{Name: "Ada"})
	assert.Error(t, err)
}

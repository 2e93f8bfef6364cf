package email

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inactivity_notifier/internal/domain/notification"
	"inactivity_notifier/internal/infra/config"

	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

var testEmail = notification.Email{
	To:      "ada@example.com",
	Subject: "Ada, we miss you! 👋",
	HTML:    "<p>hi</p>",
	Text:    "hi",
}

type fakeResend struct {
	got *resend.SendEmailRequest
	err error
}

func (f *fakeResend) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.got = params
	if f.err != nil {
		return nil, f.err
	}
	return &resend.SendEmailResponse{Id: "msg_1"}, nil
}

func TestResendDispatcher(t *testing.T) {
	fake := &fakeResend{}
	d := &ResendDispatcher{emails: fake, from: "Skill Up Academy <onboarding@skillupacademy.com>", logger: testLogger()}

	require.NoError(t, d.Send(context.Background(), testEmail))
	assert.Equal(t, []string{"ada@example.com"}, fake.got.To)
	assert.Equal(t, "Skill Up Academy <onboarding@skillupacademy.com>", fake.got.From)
	assert.Equal(t, testEmail.Subject, fake.got.Subject)
	assert.Equal(t, testEmail.HTML, fake.got.Html)
	assert.Equal(t, testEmail.Text, fake.got.Text)

	fake.err = errors.New("validation_error")
	err := d.Send(context.Background(), testEmail)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation_error")
}

func TestSendgridDispatcher(t *testing.T) {
	var body map[string]any
	status := http.StatusAccepted
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer SG.test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad"}]}`))
	}))
	defer srv.Close()

	d, err := NewSendgridDispatcher("SG.test", "Skill Up Academy <onboarding@skillupacademy.com>", testLogger())
	require.NoError(t, err)
	d.host = srv.URL

	require.NoError(t, d.Send(context.Background(), testEmail))
	from := body["from"].(map[string]any)
	assert.Equal(t, "onboarding@skillupacademy.com", from["email"])
	assert.Equal(t, "Skill Up Academy", from["name"])
	p := body["personalizations"].([]any)[0].(map[string]any)
	assert.Equal(t, testEmail.Subject, p["subject"])

	status = http.StatusBadRequest
	err = d.Send(context.Background(), testEmail)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestSendgridDispatcherRejectsBadSender(t *testing.T) {
	_, err := NewSendgridDispatcher("SG.test", "not an address", testLogger())
	assert.Error(t, err)
}

type countingDispatcher struct {
	calls int
}

func (c *countingDispatcher) Send(context.Context, notification.Email) error {
	c.calls++
	return nil
}

func TestThrottledDispatcher(t *testing.T) {
	next := &countingDispatcher{}
	d := NewThrottledDispatcher(next, 1)

	require.NoError(t, d.Send(context.Background(), testEmail))

	// the single token is spent; a short deadline cannot wait a full second
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, d.Send(ctx, testEmail))
	assert.Equal(t, 1, next.calls)
}

func TestConsoleDispatcher(t *testing.T) {
	d := NewConsoleDispatcher(testLogger())
	assert.NoError(t, d.Send(context.Background(), testEmail))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, d.Send(ctx, testEmail))
}

func TestNewDispatcher(t *testing.T) {
	cfg := &config.AppConfig{
		EmailProvider:      config.EmailProviderConsole,
		EmailFrom:          "Skill Up Academy <onboarding@skillupacademy.com>",
		EmailRatePerSecond: 2,
	}
	d, err := NewDispatcher(cfg, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &ThrottledDispatcher{}, d)

	cfg.EmailProvider = "pigeon"
	_, err = NewDispatcher(cfg, testLogger())
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

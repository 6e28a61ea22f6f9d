package mail_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiffinbox/tiffin/pkg/mail"
)

type recorder struct {
	to  []string
	raw string
}

func (r *recorder) Deliver(_ mail.SMTP, to []string, raw []byte) error {
	r.to = to
	r.raw = string(raw)
	return nil
}

func TestTemplateRendersIntoBody(t *testing.T) {
	rec := &recorder{}
	prev := mail.UseTransport(rec)
	defer mail.UseTransport(prev)

	err := mail.To("asha@example.com").
		Subject("Activate your account").
		Template("activation.html", map[string]any{"Email": "asha@example.com", "Code": "4821"}).
		Send()
	require.NoError(t, err)

	assert.Equal(t, []string{"asha@example.com"}, rec.to)
	assert.Contains(t, rec.raw, "Subject: Activate your account\r\n")
	assert.Contains(t, rec.raw, "text/html")
	assert.Contains(t, rec.raw, "4821")
}

func TestUnknownTemplateFailsSend(t *testing.T) {
	rec := &recorder{}
	prev := mail.UseTransport(rec)
	defer mail.UseTransport(prev)

	err := mail.To("a@example.com").Template("missing.html", nil).Send()
	assert.Error(t, err)
	assert.Empty(t, rec.raw)
}

func TestCCIsDeliveredButNotInToHeader(t *testing.T) {
	rec := &recorder{}
	prev := mail.UseTransport(rec)
	defer mail.UseTransport(prev)

	require.NoError(t, mail.To("a@example.com").CC("b@example.com").Text("hi").Send())
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, rec.to)
	assert.Contains(t, rec.raw, "To: a@example.com\r\n")
	assert.Contains(t, rec.raw, "Cc: b@example.com\r\n")
	assert.Contains(t, rec.raw, "text/plain")
}

func TestSMTPTransportRequiresCredentials(t *testing.T) {
	err := mail.To("a@example.com").
		UseConfig(mail.SMTP{Host: "localhost", Port: "2525"}).
		Text("hi").
		Send()
	assert.ErrorIs(t, err, mail.ErrNotConfigured)
}

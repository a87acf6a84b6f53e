package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageFromRaw_PlainText(t *testing.T) {
	raw := strings.Join([]string{
		"From: alice@example.com",
		"To: bob@example.com",
		"Subject: Weekly sync",
		"",
		"See you at 10am.",
	}, "\r\n")

	msg, err := messageFromRaw("alice@example.com", []string{"bob@example.com"}, []byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", msg.Sender)
	assert.Equal(t, []string{"bob@example.com"}, msg.Recipients)
	assert.Equal(t, "Weekly sync", msg.Subject)
	assert.Equal(t, "See you at 10am.", msg.Body)
	assert.Empty(t, msg.Attachments)
	assert.Equal(t, []string{"Weekly sync"}, msg.Headers["Subject"])
}

func TestMessageFromRaw_Multipart(t *testing.T) {
	raw := strings.Join([]string{
		"From: alice@example.com",
		"Subject: Report",
		`Content-Type: multipart/mixed; boundary="frontier"`,
		"",
		"--frontier",
		"Content-Type: text/plain",
		"",
		"The report is attached.",
		"--frontier",
		"Content-Type: application/octet-stream",
		`Content-Disposition: attachment; filename="report.pdf.exe"`,
		"",
		"MZbinarydata",
		"--frontier",
		"Content-Type: text/html",
		"",
		"<p>The report is attached.</p>",
		"--frontier--",
	}, "\r\n")

	msg, err := messageFromRaw("alice@example.com", nil, []byte(raw))
	require.NoError(t, err)

	assert.Equal(t, []string{"report.pdf.exe"}, msg.Attachments)
	assert.Contains(t, msg.Body, "The report is attached.")
	assert.Contains(t, msg.Body, "<p>The report is attached.</p>")
	assert.NotContains(t, msg.Body, "MZbinarydata")
}

func TestMessageFromRaw_EncodedSubject(t *testing.T) {
	raw := strings.Join([]string{
		"From: alice@example.com",
		"Subject: =?ISO-8859-1?Q?Caf=E9_menu?=",
		"",
		"Lunch options inside.",
	}, "\r\n")

	msg, err := messageFromRaw("alice@example.com", nil, []byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "Café menu", msg.Subject)
}

func TestMessageFromRaw_Invalid(t *testing.T) {
	_, err := messageFromRaw("alice@example.com", nil, []byte("not a message"))
	assert.Error(t, err)
}

func TestDecodeHeader_FallsBackOnUnknownCharset(t *testing.T) {
	value := "=?X-UNKNOWN?Q?hello?="
	assert.Equal(t, value, decodeHeader(value))
}

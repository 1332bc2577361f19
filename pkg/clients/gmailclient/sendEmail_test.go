package gmailclient

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("marketing@example.com", "lina@example.com", "Ads distributed in North", "Line one\nLine two")

	headers, body, found := strings.Cut(msg, "\r\n\r\n")
	assert.True(t, found)

	assert.Contains(t, headers, "From: marketing@example.com\r\n")
	assert.Contains(t, headers, "To: lina@example.com\r\n")
	assert.Contains(t, headers, "Subject: Ads distributed in North\r\n")
	assert.Contains(t, headers, "Content-Type: text/plain; charset=\"UTF-8\"")
	assert.Equal(t, "Line one\r\nLine two", body)
}

func TestBuildMessage_NoSender(t *testing.T) {
	msg := buildMessage("", "lina@example.com", "Subject", "Body")

	assert.NotContains(t, msg, "From:")
	assert.True(t, strings.HasPrefix(msg, "To: lina@example.com\r\n"))
}

func TestBuildMessage_EncodesNonASCIISubject(t *testing.T) {
	msg := buildMessage("", "lina@example.com", "توزيع الإعلانات", "Body")

	assert.Contains(t, msg, "Subject: =?utf-8?q?")
	assert.NotContains(t, msg, "توزيع")
}

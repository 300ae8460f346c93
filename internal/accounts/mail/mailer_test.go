package mail

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderResetPassword(t *testing.T) {
	url := "https://qayimli.test/resetpassword/aaa.bbb.ccc"

	body, err := RenderResetPassword(url)
	require.NoError(t, err)
	require.Contains(t, body, `href="`+url+`"`)
	require.Contains(t, body, "Reset your password")
}

func TestRenderResetPassword_Escapes(t *testing.T) {
	body, err := RenderResetPassword(`https://x.test/"><script>alert(1)</script>`)
	require.NoError(t, err)
	require.NotContains(t, body, "<script>")
}

func TestNewSMTPSender(t *testing.T) {
	_, err := NewSMTPSender(SMTPConfig{From: "no-reply@qayimli.test"})
	require.ErrorIs(t, err, ErrSMTPConfig)

	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.qayimli.test", From: "no-reply@qayimli.test"})
	require.NoError(t, err)
	require.Equal(t, 587, s.cfg.Port)
}

func TestBuildMessage(t *testing.T) {
	msg, err := buildMessage("no-reply@qayimli.test", "sara@example.com", ResetPasswordSubject, "<p>hi</p>")
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	require.Contains(t, buf.String(), "Subject: Qayimli - Reset Password")
	require.Contains(t, buf.String(), "sara@example.com")

	_, err = buildMessage("no-reply@qayimli.test", "not an address", "s", "b")
	require.Error(t, err)
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	s := &LogSender{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	require.NoError(t, s.Send(context.Background(), "sara@example.com", ResetPasswordSubject, "<p>secret</p>"))
	require.True(t, strings.Contains(buf.String(), "sara@example.com"))
	require.NotContains(t, buf.String(), "secret", "body is only logged at debug level")
}

package mail

import (
	"bytes"
	"embed"
	"html/template"
)

const ResetPasswordSubject = "Qayimli - Reset Password"

//go:embed templates/*.html
var templateFS embed.FS

var resetPasswordTmpl = template.Must(template.ParseFS(templateFS, "templates/reset_password.html"))

// RenderResetPassword renders the reset email body for the given link.
func RenderResetPassword(resetURL string) (string, error) {
	var buf bytes.Buffer
	err := resetPasswordTmpl.Execute(&buf, struct{ ResetURL string }{ResetURL: resetURL})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

type ResetData struct {
	AppName string
	Link    string
	TTL     time.Duration
	Year    int
}

var resetTpl = template.Must(template.New("reset").Funcs(template.FuncMap{
	"minutes": func(d time.Duration) int { return int(d.Minutes()) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; }
    .header { background-color: #2e7d32; color: white; padding: 20px; text-align: center; }
    .content { padding: 20px; }
    .reset-button { display: inline-block; background-color: #2e7d32; color: white !important; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold; margin: 15px 0; }
    .footer { background-color: #f4f4f4; padding: 15px; text-align: center; font-size: 12px; }
    .warning { color: #d9534f; font-weight: bold; }
  </style>
</head>
<body>
  <div class="header"><h1>Password Reset Request</h1></div>
  <div class="content">
    <p>We received a request to reset your {{.AppName}} account password.</p>
    <p style="text-align:center"><a href="{{.Link}}" class="reset-button">Reset Password</a></p>
    <p class="warning">This link will expire in <strong>{{minutes .TTL}} minutes</strong>.</p>
    <p>If you didn't request this password reset, please:</p>
    <ol>
      <li>Ignore this email</li>
      <li>Secure your account</li>
      <li>Contact our support team if you notice suspicious activity</li>
    </ol>
  </div>
  <div class="footer">
    <p>&copy; {{.Year}} {{.AppName}}. All rights reserved.</p>
    <p>For security reasons, we never ask for your password via email.</p>
  </div>
</body>
</html>
`))

// ResetEmail 返回找回密码邮件的主题与 HTML 正文
func ResetEmail(d ResetData) (subject, html string, err error) {
	if d.Year == 0 {
		d.Year = time.Now().Year()
	}
	var buf bytes.Buffer
	if err := resetTpl.Execute(&buf, d); err != nil {
		return "", "", fmt.Errorf("render reset email: %w", err)
	}
	return fmt.Sprintf("Reset Your %s Password!", d.AppName), buf.String(), nil
}

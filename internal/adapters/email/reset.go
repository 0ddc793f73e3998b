package email

import "fmt"

// BuildPasswordReset builds the password-reset email for the given recipient.
// The link embeds a single-use token; the email never contains the password.
func BuildPasswordReset(to, resetLink string) SendRequest {
	html := fmt.Sprintf(`<p>Hi,</p>
<p>Someone asked to reset the password for your AnatWithMe account. If that was you,
follow the link below within the next hour:</p>
<p><a href="%s">Reset your password</a></p>
<p>If you did not ask for a reset, you can ignore this email. Your password is unchanged.</p>
<p>— AnatWithMe</p>`, resetLink)

	return SendRequest{
		To:      []string{to},
		Subject: "Reset your AnatWithMe password",
		HTML:    html,
	}
}

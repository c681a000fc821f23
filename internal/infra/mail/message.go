package mail

import (
	"fmt"
	"net/url"

	"atelier/internal/domain/entity"
)

// VerificationLink builds the deep link embedded in the email:
// <continueUrl>?<kind>Token=<token>. The continue URL is treated as opaque;
// existing query parameters are preserved.
func VerificationLink(continueURL string, kind entity.RequestKind, token string) (string, error) {
	u, err := url.Parse(continueURL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set(kind.TokenParam(), token)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// VerificationMessage composes the subject and body for a verification
// email. The body states the 24-hour expiry; that exact wording is part of
// the product's email contract.
func VerificationMessage(kind entity.RequestKind, link string) (subject, body string) {
	switch kind {
	case entity.KindSignIn:
		subject = "Sign in to Atelier"
		body = fmt.Sprintf(
			"Hello,\n\n"+
				"Use the link below to sign in to your Atelier account, expiring in 24 hours:\n\n"+
				"%s\n\n"+
				"If you did not request this, you can safely ignore this email.\n",
			link)
	default:
		subject = "Confirm your Atelier registration"
		body = fmt.Sprintf(
			"Hello,\n\n"+
				"Use the link below to finish creating your Atelier account, expiring in 24 hours:\n\n"+
				"%s\n\n"+
				"If you did not request this, you can safely ignore this email.\n",
			link)
	}

	return subject, body
}

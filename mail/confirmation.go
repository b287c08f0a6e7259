package mail

import (
	"bytes"
	"context"
	"net/url"
	"text/template"

	"github.com/jrsteele09/go-ssi-auth-server/internal/utils"
	"github.com/jrsteele09/go-ssi-auth-server/users"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
)

const confirmationSubject = "Account confirmation"

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`Hello {{.Username}},

Thank you for registering with {{.AppName}}!

You have to confirm your account with your decentralized identity. Open the link below and present your credential.

[{{.Link}}]({{.Link}})

Thanks.
`))

// ConfirmationSender mails the confirmation link of a newly created account
type ConfirmationSender struct {
	mailer  Mailer
	baseURL string
	appName string
}

func NewConfirmationSender(mailer Mailer, confirmationURL, appName string) *ConfirmationSender {
	return &ConfirmationSender{mailer: mailer, baseURL: confirmationURL, appName: appName}
}

// SendConfirmation fails when the account has no outstanding token
func (s *ConfirmationSender) SendConfirmation(ctx context.Context, user *users.User) error {
	token := utils.Value(user.ConfirmationToken)
	if token == "" {
		return errors.New("account has no confirmation token")
	}

	link, err := ConfirmationLink(s.baseURL, token)
	if err != nil {
		return err
	}

	var md bytes.Buffer
	err = confirmationTemplate.Execute(&md, struct {
		Username string
		AppName  string
		Link     string
	}{Username: user.Username, AppName: s.appName, Link: link})
	if err != nil {
		return errors.Wrap(err, "failed to render confirmation email")
	}

	var html bytes.Buffer
	if err := goldmark.Convert(md.Bytes(), &html); err != nil {
		return errors.Wrap(err, "failed to convert confirmation email to HTML")
	}

	return s.mailer.Send(ctx, Message{
		To:      user.Email,
		Subject: confirmationSubject,
		Text:    md.String(),
		HTML:    html.String(),
	})
}

// ConfirmationLink appends confirmation=<token> to base
func ConfirmationLink(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", errors.Wrapf(err, "invalid confirmation url %q", base)
	}
	q := u.Query()
	q.Set("confirmation", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

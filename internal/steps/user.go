package steps

import "fmt"

// userStep settles who may administer the deployment when email-based
// authentication is on. With it off there is nothing to collect.
type userStep struct{}

func NewUser() Step { return userStep{} }

func (userStep) Name() string        { return "user" }
func (userStep) Description() string { return "Configure user authentication settings" }
func (userStep) Required() bool      { return true }

func (s userStep) emailAuthEnabled(ctx *Context) bool {
	return isTrue(configOr(ctx, "USE_EMAIL_AUTHENTICATION",
		ctx.Defaults.Get("application.email_authentication")))
}

func (s userStep) CollectConfig(ctx *Context) (map[string]string, error) {
	if !s.emailAuthEnabled(ctx) {
		return nil, nil
	}

	emails, ok := ctx.Config["ADMIN_EMAILS"]
	if !ok && ctx.Interactive {
		answer, err := ctx.Gatherer.Prompt("user.admin_emails",
			"Admin email addresses (comma-separated)", "", validateEmailList)
		if err != nil {
			return nil, err
		}
		emails = answer
	}
	if err := validateEmailList(emails); err != nil {
		return nil, fmt.Errorf("ADMIN_EMAILS: %w", err)
	}

	return map[string]string{"ADMIN_EMAILS": emails}, nil
}

func (s userStep) GenerateSecrets(ctx *Context) (map[string]string, error) {
	if !s.emailAuthEnabled(ctx) {
		return nil, nil
	}
	return map[string]string{"admin_emails": ctx.Config["ADMIN_EMAILS"]}, nil
}

package steps

import (
	"fmt"
	"strings"
)

// emailStep settles the outbound mail provider. AWS SES deployments
// get placeholder credential files to fill in later; SMTP deployments
// are asked for connection details and, interactively, a password.
type emailStep struct{}

func NewEmail() Step { return emailStep{} }

func (emailStep) Name() string { return "email" }
func (emailStep) Description() string {
	return "Configure email provider (AWS SES or SMTP) and credentials"
}
func (emailStep) Required() bool { return false }

func validProvider(value string) error {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "aws", "smtp":
		return nil
	default:
		return fmt.Errorf("mail provider must be \"aws\" or \"smtp\", got %q", value)
	}
}

func (emailStep) CollectConfig(ctx *Context) (map[string]string, error) {
	cfg := make(map[string]string)

	provider, ok := ctx.Config["MAIL_PROVIDER"]
	if !ok {
		var err error
		provider, err = promptOr(ctx, "email.mail_provider", "Mail provider (aws or smtp)",
			ctx.Defaults.Get("email.provider"), validProvider)
		if err != nil {
			return nil, err
		}
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	if err := validProvider(provider); err != nil {
		return nil, err
	}
	cfg["MAIL_PROVIDER"] = provider

	if provider == "smtp" {
		host, ok := ctx.Config["SMTP_HOST"]
		if !ok {
			var err error
			host, err = promptOr(ctx, "email.smtp_host", "SMTP host",
				ctx.Defaults.Get("email.smtp.host"), nonEmpty("SMTP host"))
			if err != nil {
				return nil, err
			}
		}
		cfg["SMTP_HOST"] = host

		port, ok := ctx.Config["SMTP_PORT"]
		if !ok {
			var err error
			port, err = promptOr(ctx, "email.smtp_port", "SMTP port",
				ctx.Defaults.Get("email.smtp.port"), nil)
			if err != nil {
				return nil, err
			}
		}
		cfg["SMTP_PORT"] = port

		cfg["SMTP_USE_TLS"] = configOr(ctx, "SMTP_USE_TLS", ctx.Defaults.Get("email.smtp.use_tls"))
		cfg["SMTP_START_TLS"] = configOr(ctx, "SMTP_START_TLS", ctx.Defaults.Get("email.smtp.start_tls"))
		cfg["SMTP_VERIFY"] = configOr(ctx, "SMTP_VERIFY", ctx.Defaults.Get("email.smtp.verify"))

		sender, ok := ctx.Config["SMTP_SENDER_EMAIL"]
		if !ok {
			var err error
			sender, err = promptOr(ctx, "email.smtp_sender_email", "SMTP sender email",
				ctx.Defaults.Get("email.smtp.sender_email"), nonEmpty("SMTP sender email"))
			if err != nil {
				return nil, err
			}
		}
		cfg["SMTP_SENDER_EMAIL"] = sender

		var missing []string
		if cfg["SMTP_HOST"] == "" {
			missing = append(missing, "SMTP_HOST")
		}
		if cfg["SMTP_SENDER_EMAIL"] == "" {
			missing = append(missing, "SMTP_SENDER_EMAIL")
		}
		if len(missing) > 0 {
			return nil, &MissingConfigError{Keys: missing}
		}
	}

	cfg["USE_EMAIL_AUTHENTICATION"] = configOr(ctx, "USE_EMAIL_AUTHENTICATION",
		ctx.Defaults.Get("application.email_authentication"))

	return cfg, nil
}

func (emailStep) GenerateSecrets(ctx *Context) (map[string]string, error) {
	out := make(map[string]string)

	switch ctx.Config["MAIL_PROVIDER"] {
	case "smtp":
		if ctx.Interactive {
			password, err := ctx.Gatherer.PromptSecret("email.smtp_password",
				"SMTP password (press Enter to skip)")
			if err != nil {
				return nil, err
			}
			if password != "" {
				out["smtp_password"] = password
			}
		}
	case "aws":
		// Placeholder files; the SES credentials are issued separately
		// and pasted in by the operator.
		out["aws_mail_account_access_key_id"] = ""
		out["aws_mail_account_secret_access_key"] = ""
	}

	return out, nil
}

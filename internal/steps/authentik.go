package steps

import "github.com/octopize/avatar-deploy/pkg/secrets"

// authentikStep settles the Authentik database identity and the
// bootstrap credentials that let the install skip the first-boot
// setup screen.
type authentikStep struct{}

func NewAuthentik() Step { return authentikStep{} }

func (authentikStep) Name() string { return "authentik" }
func (authentikStep) Description() string {
	return "Configure Authentik SSO authentication credentials"
}
func (authentikStep) Required() bool { return true }

func (authentikStep) CollectConfig(ctx *Context) (map[string]string, error) {
	cfg := map[string]string{
		"AUTHENTIK_DATABASE_NAME": configOr(ctx, "AUTHENTIK_DATABASE_NAME", "authentik"),
		"AUTHENTIK_DATABASE_USER": configOr(ctx, "AUTHENTIK_DATABASE_USER", "authentik"),
	}

	email, ok := ctx.Config["AUTHENTIK_BOOTSTRAP_EMAIL"]
	if !ok {
		var err error
		email, err = promptOr(ctx, "authentik.bootstrap_email",
			"Email address for the Authentik admin user (akadmin)",
			"admin@example.com", nil)
		if err != nil {
			return nil, err
		}
	}
	cfg["AUTHENTIK_BOOTSTRAP_EMAIL"] = email

	// Bootstrap credentials live in the env file, not the secrets
	// directory, and are regenerated on every fresh run.
	cfg["AUTHENTIK_BOOTSTRAP_PASSWORD"] = secrets.URLSafeToken()
	cfg["AUTHENTIK_BOOTSTRAP_TOKEN"] = secrets.URLSafeToken()

	return cfg, nil
}

func (authentikStep) GenerateSecrets(ctx *Context) (map[string]string, error) {
	return map[string]string{
		"authentik_database_name":     ctx.Config["AUTHENTIK_DATABASE_NAME"],
		"authentik_database_user":     ctx.Config["AUTHENTIK_DATABASE_USER"],
		"authentik_database_password": secrets.HexToken(),
		"authentik_secret_key":        secrets.HexToken(),
	}, nil
}

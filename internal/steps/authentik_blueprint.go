package steps

import (
	"fmt"

	"github.com/octopize/avatar-deploy/pkg/secrets"
)

// authentikBlueprintStep derives the OAuth2 wiring between the Avatar
// API and Authentik. The blueprint YAML itself is copied untouched; it
// reads these values from the container environment via !Env tags when
// Authentik applies it. Everything is derived from earlier answers, so
// the step never prompts.
type authentikBlueprintStep struct{}

func NewAuthentikBlueprint() Step { return authentikBlueprintStep{} }

func (authentikBlueprintStep) Name() string        { return "authentik-blueprint" }
func (authentikBlueprintStep) Description() string { return "Configure Authentik SSO blueprint settings" }
func (authentikBlueprintStep) Required() bool      { return true }

func (authentikBlueprintStep) CollectConfig(ctx *Context) (map[string]string, error) {
	domain := normalizeDomain(ctx.Config["PUBLIC_URL"])
	if domain == "" {
		return nil, fmt.Errorf(
			"PUBLIC_URL %q is not set or invalid; cannot derive the Authentik blueprint domain",
			ctx.Config["PUBLIC_URL"])
	}

	cfg := map[string]string{
		"AVATAR_AUTHENTIK_BLUEPRINT_DOMAIN": domain,
		"AVATAR_AUTHENTIK_BLUEPRINT_CLIENT_ID": configOr(ctx,
			"AVATAR_AUTHENTIK_BLUEPRINT_CLIENT_ID", secrets.HexToken()),
		"AVATAR_AUTHENTIK_BLUEPRINT_CLIENT_SECRET": configOr(ctx,
			"AVATAR_AUTHENTIK_BLUEPRINT_CLIENT_SECRET", secrets.HexToken()),
		"AVATAR_AUTHENTIK_BLUEPRINT_API_REDIRECT_URI": configOr(ctx,
			"AVATAR_AUTHENTIK_BLUEPRINT_API_REDIRECT_URI",
			fmt.Sprintf("https://%s/api/login/sso/auth", domain)),
		"AVATAR_AUTHENTIK_BLUEPRINT_SELF_SERVICE_LICENSE": configOr(ctx,
			"AVATAR_AUTHENTIK_BLUEPRINT_SELF_SERVICE_LICENSE", "demo"),
	}
	return cfg, nil
}

func (authentikBlueprintStep) GenerateSecrets(*Context) (map[string]string, error) {
	return nil, nil
}

package steps

import (
	"strings"

	"github.com/octopize/avatar-deploy/pkg/secrets"
)

// requiredConfigStep settles the deployment identity: public URL,
// environment name, organization, and the service image versions.
type requiredConfigStep struct{}

func NewRequiredConfig() Step { return requiredConfigStep{} }

func (requiredConfigStep) Name() string { return "required_config" }
func (requiredConfigStep) Description() string {
	return "Collect required deployment settings (PUBLIC_URL, ENV_NAME, etc.)"
}
func (requiredConfigStep) Required() bool { return true }

func (requiredConfigStep) CollectConfig(ctx *Context) (map[string]string, error) {
	cfg := make(map[string]string)
	var missing []string

	publicURL := ctx.Config["PUBLIC_URL"]
	if ctx.Interactive && strings.TrimSpace(publicURL) == "" {
		answer, err := ctx.Gatherer.Prompt("required_config.public_url",
			"Public URL (domain name, e.g., avatar.example.com)", "", nonEmpty("public URL"))
		if err != nil {
			return nil, err
		}
		publicURL = answer
	}
	// Stored as a bare domain regardless of how the operator typed it.
	publicURL = normalizeDomain(publicURL)
	if publicURL == "" {
		missing = append(missing, "PUBLIC_URL")
	}
	cfg["PUBLIC_URL"] = publicURL

	envName := ctx.Config["ENV_NAME"]
	if ctx.Interactive && strings.TrimSpace(envName) == "" {
		answer, err := ctx.Gatherer.Prompt("required_config.env_name",
			"Environment name (e.g., mycompany-prod)", "", nonEmpty("environment name"))
		if err != nil {
			return nil, err
		}
		envName = answer
	}
	if envName == "" {
		missing = append(missing, "ENV_NAME")
	}
	cfg["ENV_NAME"] = envName

	orgName := ctx.Config["ORGANIZATION_NAME"]
	if ctx.Interactive && strings.TrimSpace(orgName) == "" {
		answer, err := ctx.Gatherer.Prompt("required_config.organization_name",
			"Organization name (e.g., MyCompany)", "", nonEmpty("organization name"))
		if err != nil {
			return nil, err
		}
		orgName = answer
	}
	if orgName == "" {
		missing = append(missing, "ORGANIZATION_NAME")
	}
	cfg["ORGANIZATION_NAME"] = orgName

	cfg["AVATAR_API_VERSION"] = configOr(ctx, "AVATAR_API_VERSION", ctx.Defaults.Get("images.api"))
	cfg["AVATAR_WEB_VERSION"] = configOr(ctx, "AVATAR_WEB_VERSION", ctx.Defaults.Get("images.web"))
	cfg["AVATAR_PDFGENERATOR_VERSION"] = configOr(ctx, "AVATAR_PDFGENERATOR_VERSION", ctx.Defaults.Get("images.pdfgenerator"))
	cfg["AVATAR_SEAWEEDFS_VERSION"] = configOr(ctx, "AVATAR_SEAWEEDFS_VERSION", ctx.Defaults.Get("images.seaweedfs"))
	cfg["AVATAR_AUTHENTIK_VERSION"] = configOr(ctx, "AVATAR_AUTHENTIK_VERSION", ctx.Defaults.Get("images.authentik"))

	if len(missing) > 0 {
		return nil, &MissingConfigError{Keys: missing}
	}
	return cfg, nil
}

func (requiredConfigStep) GenerateSecrets(ctx *Context) (map[string]string, error) {
	return map[string]string{
		"pepper":               secrets.HexToken(),
		"authjwt_secret_key":   secrets.HexToken(),
		"organization_name":    ctx.Config["ORGANIZATION_NAME"],
		"clevercloud_sso_salt": secrets.HexToken(),
	}, nil
}

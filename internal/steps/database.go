package steps

import "github.com/octopize/avatar-deploy/pkg/secrets"

// databaseStep settles the PostgreSQL names and generates both the
// application and admin credentials. Nothing here is prompted; the
// names only change through a config file.
type databaseStep struct{}

func NewDatabase() Step { return databaseStep{} }

func (databaseStep) Name() string        { return "database" }
func (databaseStep) Description() string { return "Configure PostgreSQL database credentials" }
func (databaseStep) Required() bool      { return true }

func (databaseStep) CollectConfig(ctx *Context) (map[string]string, error) {
	return map[string]string{
		"DB_NAME":       configOr(ctx, "DB_NAME", "avatar"),
		"DB_USER":       configOr(ctx, "DB_USER", "avatar"),
		"DB_ADMIN_USER": configOr(ctx, "DB_ADMIN_USER", "avatar_dba"),
	}, nil
}

func (databaseStep) GenerateSecrets(ctx *Context) (map[string]string, error) {
	return map[string]string{
		"db_password":       secrets.HexToken(),
		"db_admin_password": secrets.HexToken(),
		"db_admin_user":     ctx.Config["DB_ADMIN_USER"],
		"db_user":           ctx.Config["DB_USER"],
		"db_name":           ctx.Config["DB_NAME"],
	}, nil
}

package steps

import "github.com/octopize/avatar-deploy/pkg/secrets"

// storageStep generates the credentials for the S3-compatible SeaweedFS
// store. All material is generated; there is nothing to ask.
type storageStep struct{}

func NewStorage() Step { return storageStep{} }

func (storageStep) Name() string { return "storage" }
func (storageStep) Description() string {
	return "Configure S3-compatible storage (SeaweedFS) credentials"
}
func (storageStep) Required() bool { return true }

func (storageStep) CollectConfig(*Context) (map[string]string, error) {
	return nil, nil
}

func (storageStep) GenerateSecrets(*Context) (map[string]string, error) {
	return map[string]string{
		"file_jwt_secret_key":             secrets.HexToken(),
		"file_encryption_key":             secrets.URLSafeKey(),
		"storage_admin_access_key_id":     secrets.HexToken(),
		"storage_admin_secret_access_key": secrets.HexToken(),
	}, nil
}

package steps

// nginxTLSStep settles where the reverse proxy will find its TLS
// material. The paths are recorded as given; the certificates
// themselves are provisioned after configuration, so existence is not
// checked here.
type nginxTLSStep struct{}

func NewNginxTLS() Step { return nginxTLSStep{} }

func (nginxTLSStep) Name() string        { return "nginx_tls" }
func (nginxTLSStep) Description() string { return "Configure Nginx TLS certificate paths" }
func (nginxTLSStep) Required() bool      { return true }

func (nginxTLSStep) CollectConfig(ctx *Context) (map[string]string, error) {
	cfg := make(map[string]string)

	certPath, ok := ctx.Config["NGINX_SSL_CERTIFICATE_PATH"]
	if !ok {
		var err error
		certPath, err = promptOr(ctx, "nginx_tls.certificate_path",
			"Path to TLS certificate (full chain)",
			ctx.Defaults.Get("nginx.ssl_certificate_path"), nil)
		if err != nil {
			return nil, err
		}
	}
	cfg["NGINX_SSL_CERTIFICATE_PATH"] = certPath

	keyPath, ok := ctx.Config["NGINX_SSL_CERTIFICATE_KEY_PATH"]
	if !ok {
		var err error
		keyPath, err = promptOr(ctx, "nginx_tls.certificate_key_path",
			"Path to TLS private key (decrypted)",
			ctx.Defaults.Get("nginx.ssl_certificate_key_path"), nil)
		if err != nil {
			return nil, err
		}
	}
	cfg["NGINX_SSL_CERTIFICATE_KEY_PATH"] = keyPath

	return cfg, nil
}

func (nginxTLSStep) GenerateSecrets(*Context) (map[string]string, error) {
	return nil, nil
}

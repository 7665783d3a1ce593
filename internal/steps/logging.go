package steps

// loggingStep settles how the application itself logs. Nothing is
// prompted; the defaults are sensible and a config file can override
// them.
type loggingStep struct{}

func NewLogging() Step { return loggingStep{} }

func (loggingStep) Name() string        { return "logging" }
func (loggingStep) Description() string { return "Configure application logging settings" }
func (loggingStep) Required() bool      { return false }

func (loggingStep) CollectConfig(ctx *Context) (map[string]string, error) {
	cfg := make(map[string]string)

	if _, ok := ctx.Config["USE_CONSOLE_LOGGING"]; !ok {
		cfg["USE_CONSOLE_LOGGING"] = ctx.Defaults.Get("application.use_console_logging")
	}
	cfg["LOG_LEVEL"] = configOr(ctx, "LOG_LEVEL", ctx.Defaults.Get("application.log_level"))

	return cfg, nil
}

func (loggingStep) GenerateSecrets(*Context) (map[string]string, error) {
	return nil, nil
}

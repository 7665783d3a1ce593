package steps

// telemetryStep settles error monitoring and usage telemetry. The S3
// credentials for the telemetry sink are always written as placeholder
// files; they are issued out of band when telemetry is wanted.
type telemetryStep struct{}

func NewTelemetry() Step { return telemetryStep{} }

func (telemetryStep) Name() string { return "telemetry" }
func (telemetryStep) Description() string {
	return "Configure telemetry and monitoring (Sentry, usage analytics)"
}
func (telemetryStep) Required() bool { return false }

func (telemetryStep) CollectConfig(ctx *Context) (map[string]string, error) {
	cfg := make(map[string]string)

	sentryEnabled := ctx.Defaults.GetBool("application.sentry_enabled")
	if v, ok := ctx.Config["IS_SENTRY_ENABLED"]; ok {
		sentryEnabled = isTrue(v)
	} else if ctx.Interactive {
		answer, err := ctx.Gatherer.Confirm("telemetry.enable_sentry",
			"Enable Sentry error monitoring?", sentryEnabled)
		if err != nil {
			return nil, err
		}
		sentryEnabled = answer
	}
	if sentryEnabled {
		cfg["IS_SENTRY_ENABLED"] = "true"
	} else {
		cfg["IS_SENTRY_ENABLED"] = "false"
	}

	telemetryEnabled := ctx.Defaults.GetBool("telemetry.enabled")
	if ctx.Interactive {
		answer, err := ctx.Gatherer.Confirm("telemetry.enable_telemetry",
			"Enable usage telemetry?", telemetryEnabled)
		if err != nil {
			return nil, err
		}
		telemetryEnabled = answer
	}
	if telemetryEnabled {
		cfg["TELEMETRY_S3_ENDPOINT_URL"] = ctx.Defaults.Get("telemetry.endpoint_url")
		cfg["TELEMETRY_S3_REGION"] = ctx.Defaults.Get("telemetry.region")
	} else {
		cfg["TELEMETRY_S3_ENDPOINT_URL"] = ""
		cfg["TELEMETRY_S3_REGION"] = ""
	}

	return cfg, nil
}

func (telemetryStep) GenerateSecrets(*Context) (map[string]string, error) {
	return map[string]string{
		"telemetry_s3_access_key_id":     "",
		"telemetry_s3_secret_access_key": "",
	}, nil
}

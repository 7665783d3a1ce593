package steps

// Registry returns the wizard steps in execution order. Order matters:
// later steps read answers settled by earlier ones, e.g. the Authentik
// blueprint derives its domain from PUBLIC_URL. Dev mode appends the
// local source step for bind-mount development setups.
func Registry(dev bool) []Step {
	all := []Step{
		NewRequiredConfig(),
		NewNginxTLS(),
		NewDatabase(),
		NewAuthentik(),
		NewAuthentikBlueprint(),
		NewStorage(),
		NewEmail(),
		NewUser(),
		NewTelemetry(),
		NewLogging(),
	}
	if dev {
		all = append(all, NewLocalSource())
	}
	return all
}

// Names lists step names in registration order.
func Names(all []Step) []string {
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name()
	}
	return names
}

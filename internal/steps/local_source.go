package steps

import (
	"fmt"
	"os"
)

// localSourceStep collects bind-mount paths for live-reload
// development. It only registers when the wizard runs in dev mode.
type localSourceStep struct{}

func NewLocalSource() Step { return localSourceStep{} }

func (localSourceStep) Name() string { return "local_source" }
func (localSourceStep) Description() string {
	return "Configure local source code directories for development"
}
func (localSourceStep) Required() bool { return false }

func validateDirExists(value string) error {
	info, err := os.Stat(expandUser(value))
	if err != nil {
		return fmt.Errorf("directory does not exist: %s", value)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", value)
	}
	return nil
}

func validateFileExists(value string) error {
	info, err := os.Stat(expandUser(value))
	if err != nil {
		return fmt.Errorf("file does not exist: %s", value)
	}
	if info.IsDir() {
		return fmt.Errorf("path is not a file: %s", value)
	}
	return nil
}

func (localSourceStep) CollectConfig(ctx *Context) (map[string]string, error) {
	cfg := make(map[string]string)

	ctx.Printer.Println("In dev mode, source code is bind-mounted for live reloading.")
	ctx.Printer.Println("Provide absolute paths to your local source directories.")

	webPath, ok := ctx.Config["WEB_SOURCE_PATH"]
	if !ok {
		var err error
		webPath, err = promptOr(ctx, "local_source.web_source_path",
			"Path to the avatar web source directory",
			ctx.Defaults.Get("local_source.web_source_path"), validateDirExists)
		if err != nil {
			return nil, err
		}
	}
	if err := validateDirExists(webPath); err != nil {
		return nil, fmt.Errorf("web source path: %w", err)
	}
	cfg["WEB_SOURCE_PATH"] = webPath

	npmrcPath, ok := ctx.Config["NPMRC_PATH"]
	if !ok {
		var err error
		npmrcPath, err = promptOr(ctx, "local_source.npmrc_path",
			"Path to the .npmrc file (for private npm packages)",
			ctx.Defaults.Get("local_source.npmrc_path"), validateFileExists)
		if err != nil {
			return nil, err
		}
	}
	if err := validateFileExists(npmrcPath); err != nil {
		return nil, fmt.Errorf("npmrc path: %w", err)
	}
	cfg["NPMRC_PATH"] = npmrcPath

	return cfg, nil
}

func (localSourceStep) GenerateSecrets(*Context) (map[string]string, error) {
	return nil, nil
}

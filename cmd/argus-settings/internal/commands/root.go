// Package commands holds the argus-settings sub-commands.
package commands

import (
	"errors"
	"io"
	"os"

	"argus-settings/internal/check"
	"argus-settings/internal/common/config"
	"argus-settings/internal/common/logger"
	"argus-settings/internal/common/metrics"
	"argus-settings/internal/settings"

	"github.com/spf13/cobra"
)

// ErrChecksFailed is returned by check when at least one check failed. The
// report has already been printed.
var ErrChecksFailed = errors.New("one or more checks failed")

// App carries the state shared by every command.
type App struct {
	Stdout io.Writer
	Stderr io.Writer

	// Values, when non-nil, replace the process environment and the .env
	// search.
	Values   map[string]string
	Registry func() *settings.Registry
	Deps     check.Dependencies

	module     string
	overlays   []string
	envFile    string
	valuesFile string
	logLevel   string
	logFormat  string

	log     logger.Logger
	env     *config.Env
	loader  *settings.Loader
	metrics *metrics.Metrics
}

func NewApp() *App {
	return &App{
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Registry: settings.Builtin,
		Deps:     check.DefaultDependencies(),
	}
}

func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "argus-settings",
		Short: "Resolve and check Argus settings modules",
		Long: `argus-settings resolves an Argus settings module, including the docker
overlay docker.api.dockerdev, and prints, diffs or checks the result.

The module is taken from --settings, then from ` + config.SettingsModuleEnvVar + `,
and defaults to ` + settings.DockerDevOverlayPath + `.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if app.log != nil {
				_ = app.log.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.module, "settings", "", "settings module to load")
	flags.StringArrayVar(&app.overlays, "overlay", nil, "YAML overlay file applied after the module (repeatable)")
	flags.StringVar(&app.envFile, "env-file", "", "explicit .env file")
	flags.StringVar(&app.valuesFile, "values", "", "YAML file of environment values")
	flags.StringVar(&app.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	flags.StringVar(&app.logFormat, "log-format", "console", "log format: console or json")

	root.AddCommand(
		newShowCommand(app),
		newGetCommand(app),
		newDiffCommand(app),
		newCheckCommand(app),
		newModulesCommand(app),
	)
	root.SetOut(app.Stdout)
	root.SetErr(app.Stderr)
	return root
}

func (a *App) setup() error {
	a.log = logger.NewZapAdapter(logger.NewWriter(a.Stderr, a.logLevel, a.logFormat))

	env, err := config.NewEnv(config.Options{
		EnvFile:        a.envFile,
		SkipEnvFile:    a.Values != nil && a.envFile == "",
		ValuesFile:     a.valuesFile,
		Values:         a.Values,
		SkipProcessEnv: a.Values != nil,
		Logger:         a.log,
	})
	if err != nil {
		return err
	}
	a.env = env

	if a.module == "" {
		a.module = env.String(config.SettingsModuleEnvVar, settings.DockerDevOverlayPath)
	}

	a.metrics = metrics.New()
	a.loader = settings.NewLoader(a.Registry(), env,
		settings.WithLogger(a.log),
		settings.WithRecorder(a.metrics),
		settings.WithOverlayFiles(a.overlays...),
	)
	return nil
}

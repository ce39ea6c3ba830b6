package settings

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"argus-settings/internal/common/config"
)

// Built-in module paths.
const (
	BasePath      = "argus.site.settings.base"
	DevPath       = "argus.site.settings.dev"
	DockerDevPath = "argus.site.settings.dockerdev"
	ProdPath      = "argus.site.settings.prod"
	TestPath      = "argus.site.settings.test"
)

// devSecretKey is only ever used when DEBUG is on and SECRET_KEY is unset.
const devSecretKey = "argus-insecure-development-key"

// Builtin returns a registry holding the built-in modules and the docker
// overlay.
func Builtin() *Registry {
	return NewRegistry().MustRegister(
		Module{
			Path:  BasePath,
			Doc:   "Defaults shared by every deployment; values come from the environment",
			Apply: applyBase,
		},
		Module{
			Path:  DevPath,
			Base:  BasePath,
			Doc:   "Local development: debug on, console e-mail",
			Apply: applyDev,
		},
		Module{
			Path:  DockerDevPath,
			Base:  DevPath,
			Doc:   "docker-compose development: backends addressed by service name",
			Apply: applyDockerDev,
		},
		Module{
			Path:  ProdPath,
			Base:  BasePath,
			Doc:   "Production: debug off, SMTP e-mail, notifications on",
			Apply: applyProd,
		},
		Module{
			Path:  TestPath,
			Base:  BasePath,
			Doc:   "Deterministic values for test runs",
			Apply: applyTest,
		},
		DockerDevOverlay(),
	)
}

func applyBase(s *Settings, env *config.Env) error {
	var err error

	s.Debug = false
	s.SecretKey = env.String("SECRET_KEY", "")
	s.AllowedHosts = env.StringSlice("ALLOWED_HOSTS", nil)
	s.TimeZone = env.String("TIME_ZONE", "Europe/Oslo")

	s.Database, err = databaseFromEnv(env, DatabaseSettings{
		Engine:  "postgresql",
		Name:    "argus",
		User:    "argus",
		Host:    "localhost",
		Port:    5432,
		SSLMode: "prefer",
	})
	if err != nil {
		return err
	}

	s.ChannelLayer, err = channelLayerFromEnv(env, "localhost")
	if err != nil {
		return err
	}

	s.Email, err = emailFromEnv(env, EmailBackendSMTP)
	if err != nil {
		return err
	}

	s.DefaultFromEmail = env.String("DEFAULT_FROM_EMAIL", "")
	s.SMSGatewayAddress = env.String("SMS_GATEWAY_ADDRESS", "")
	if s.SendNotifications, err = env.Bool("SEND_NOTIFICATIONS", false); err != nil {
		return err
	}

	s.FrontendURL = env.String("ARGUS_FRONTEND_URL", "")
	s.CookieDomain = env.String("ARGUS_COOKIE_DOMAIN", "")
	s.CORSAllowedOrigins = env.StringSlice("ARGUS_CORS_ALLOWED_ORIGINS", nil)

	s.Logging = LoggingSettings{
		Level:  env.String("ARGUS_LOG_LEVEL", "info"),
		Format: env.String("ARGUS_LOG_FORMAT", "json"),
	}

	s.MediaPlugins = []string{EmailNotification}
	return nil
}

func applyDev(s *Settings, env *config.Env) error {
	var err error

	if s.Debug, err = env.Bool("DEBUG", true); err != nil {
		return err
	}
	if s.SecretKey == "" && s.Debug {
		s.SecretKey = devSecretKey
	}
	s.AllowedHosts = env.StringSlice("ALLOWED_HOSTS", []string{"*"})

	s.Email.Backend = env.String("EMAIL_BACKEND", EmailBackendConsole)
	s.Logging = LoggingSettings{
		Level:  env.String("ARGUS_LOG_LEVEL", "debug"),
		Format: env.String("ARGUS_LOG_FORMAT", "console"),
	}
	return nil
}

func applyDockerDev(s *Settings, env *config.Env) error {
	var err error

	// Inside compose the backends are reached by service name.
	s.Database, err = databaseFromEnv(env, DatabaseSettings{
		Engine:  "postgresql",
		Name:    "argus",
		User:    "argus",
		Host:    "postgres",
		Port:    5432,
		SSLMode: "disable",
	})
	if err != nil {
		return err
	}
	s.ChannelLayer, err = channelLayerFromEnv(env, "redis")
	if err != nil {
		return err
	}

	s.FrontendURL = env.String("ARGUS_FRONTEND_URL", "http://localhost:8080")
	s.CORSAllowedOrigins = env.StringSlice("ARGUS_CORS_ALLOWED_ORIGINS", []string{s.FrontendURL})
	return nil
}

func applyProd(s *Settings, env *config.Env) error {
	var err error

	s.Debug = false
	if s.SendNotifications, err = env.Bool("SEND_NOTIFICATIONS", true); err != nil {
		return err
	}
	s.Email.Backend = env.String("EMAIL_BACKEND", EmailBackendSMTP)
	// Only tighten the base default; an explicit sslmode wins.
	if s.Database.SSLMode == "prefer" {
		s.Database.SSLMode = "require"
	}
	s.Logging = LoggingSettings{
		Level:  env.String("ARGUS_LOG_LEVEL", "info"),
		Format: "json",
	}
	return nil
}

func applyTest(s *Settings, _ *config.Env) error {
	s.Debug = false
	s.SecretKey = "argus-test-secret-key"
	s.AllowedHosts = []string{"testserver"}
	s.TimeZone = "Europe/Oslo"
	s.Database = DatabaseSettings{
		Engine:  "postgresql",
		Name:    "test_argus",
		User:    "argus",
		Host:    "localhost",
		Port:    5432,
		SSLMode: "disable",
	}
	s.ChannelLayer = ChannelLayerSettings{Backend: ChannelLayerInMemory}
	s.Email = EmailSettings{Backend: EmailBackendConsole}
	s.DefaultFromEmail = "argus@example.com"
	s.SMSGatewayAddress = "sms@example.com"
	s.SendNotifications = false
	s.FrontendURL = "http://testserver"
	s.CookieDomain = ""
	s.CORSAllowedOrigins = nil
	s.Logging = LoggingSettings{Level: "warn", Format: "console"}
	return nil
}

// databaseFromEnv reads DATABASE_URL when set, otherwise the POSTGRES_*
// variables, falling back to defaults per field.
func databaseFromEnv(env *config.Env, defaults DatabaseSettings) (DatabaseSettings, error) {
	if raw, ok := env.Lookup("DATABASE_URL"); ok {
		return parseDatabaseURL(raw, defaults)
	}

	db := defaults
	db.Name = env.String("POSTGRES_DB", defaults.Name)
	db.User = env.String("POSTGRES_USER", defaults.User)
	db.Password = env.String("POSTGRES_PASSWORD", defaults.Password)
	db.Host = env.String("POSTGRES_HOST", defaults.Host)
	db.SSLMode = env.String("POSTGRES_SSLMODE", defaults.SSLMode)

	port, err := env.Int("POSTGRES_PORT", defaults.Port)
	if err != nil {
		return db, err
	}
	db.Port = port
	return db, nil
}

// parseDatabaseURL accepts postgres:// and postgresql:// URLs.
func parseDatabaseURL(raw string, defaults DatabaseSettings) (DatabaseSettings, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return defaults, fmt.Errorf("DATABASE_URL: %w", err)
	}
	switch u.Scheme {
	case "postgres", "postgresql", "pgsql":
	default:
		return defaults, fmt.Errorf("DATABASE_URL: unsupported scheme %q", u.Scheme)
	}

	db := defaults
	db.Engine = "postgresql"
	if u.User != nil {
		db.User = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			db.Password = pw
		}
	}
	if host := u.Hostname(); host != "" {
		db.Host = host
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return defaults, fmt.Errorf("DATABASE_URL: invalid port %q", p)
		}
		db.Port = port
	}
	if name := strings.TrimPrefix(u.Path, "/"); name != "" {
		db.Name = name
	}
	if mode := u.Query().Get("sslmode"); mode != "" {
		db.SSLMode = mode
	}
	return db, nil
}

func channelLayerFromEnv(env *config.Env, defaultHost string) (ChannelLayerSettings, error) {
	port, err := env.Int("ARGUS_REDIS_PORT", 6379)
	if err != nil {
		return ChannelLayerSettings{}, err
	}
	db, err := env.Int("ARGUS_REDIS_DB", 0)
	if err != nil {
		return ChannelLayerSettings{}, err
	}
	return ChannelLayerSettings{
		Backend: ChannelLayerRedis,
		Host:    env.String("ARGUS_REDIS_SERVER", defaultHost),
		Port:    port,
		DB:      db,
	}, nil
}

func emailFromEnv(env *config.Env, defaultBackend string) (EmailSettings, error) {
	port, err := env.Int("EMAIL_PORT", 25)
	if err != nil {
		return EmailSettings{}, err
	}
	useTLS, err := env.Bool("EMAIL_USE_TLS", false)
	if err != nil {
		return EmailSettings{}, err
	}
	return EmailSettings{
		Backend:   env.String("EMAIL_BACKEND", defaultBackend),
		Host:      env.String("EMAIL_HOST", "localhost"),
		Port:      port,
		User:      env.String("EMAIL_HOST_USER", ""),
		Password:  env.String("EMAIL_HOST_PASSWORD", ""),
		UseTLS:    useTLS,
		AWSRegion: env.String("AWS_REGION", ""),
	}, nil
}

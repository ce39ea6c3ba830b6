package check

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"argus-settings/internal/common/aws"
	"argus-settings/internal/common/database"
	apperrors "argus-settings/internal/common/errors"
	"argus-settings/internal/settings"
	"argus-settings/pkg/registry"
)

// Check names.
const (
	NameSettings     = "settings"
	NameMedia        = "media"
	NameDatabase     = "database"
	NameChannelLayer = "channel_layer"
	NameEmail        = "email"
)

// Backend is a connection that can be pinged and closed.
type Backend interface {
	Ping(ctx context.Context) error
	Close() error
}

type versioner interface {
	ServerVersion(ctx context.Context) (string, error)
}

type SenderVerifier interface {
	VerifySender(ctx context.Context, address string) error
}

// Dependencies opens the clients the checks talk to. Tests swap them out.
type Dependencies struct {
	Catalog      *registry.MediaCatalog
	OpenDatabase func(settings.DatabaseSettings) (Backend, error)
	OpenRedis    func(settings.ChannelLayerSettings) (Backend, error)
	NewSES       func(ctx context.Context, region string) (SenderVerifier, error)
}

func DefaultDependencies() Dependencies {
	return Dependencies{
		Catalog: registry.Default(),
		OpenDatabase: func(cfg settings.DatabaseSettings) (Backend, error) {
			return database.NewPostgres(cfg)
		},
		OpenRedis: func(cfg settings.ChannelLayerSettings) (Backend, error) {
			return database.NewRedis(cfg)
		},
		NewSES: func(ctx context.Context, region string) (SenderVerifier, error) {
			return aws.NewSESClient(ctx, region)
		},
	}
}

// ForSettings returns the standard checks for s, in the order they should run.
func ForSettings(s *settings.Settings, deps Dependencies) []Check {
	return []Check{
		SettingsCheck(s),
		MediaCheck(s, deps.Catalog),
		DatabaseCheck(s.Database, deps.OpenDatabase),
		ChannelLayerCheck(s.ChannelLayer, deps.OpenRedis),
		EmailCheck(s, deps.NewSES),
	}
}

func SettingsCheck(s *settings.Settings) Check {
	return Check{
		Name: NameSettings,
		Run: func(context.Context) (Status, string, error) {
			if err := settings.Validate(s); err != nil {
				return StatusFail, "", err
			}
			return StatusOK, "settings are valid", nil
		},
	}
}

// MediaCheck looks every MEDIA_PLUGINS entry up in the catalog. Unknown
// identifiers only warn, since third-party media may not be catalogued. A
// known medium whose required settings are empty fails.
func MediaCheck(s *settings.Settings, catalog *registry.MediaCatalog) Check {
	return Check{
		Name: NameMedia,
		Run: func(context.Context) (Status, string, error) {
			if len(s.MediaPlugins) == 0 {
				return StatusWarn, "no media plugins enabled", nil
			}

			var known, unknown, missing []string
			for _, id := range s.MediaPlugins {
				medium, ok := catalog.Lookup(id)
				if !ok {
					unknown = append(unknown, id)
					continue
				}
				known = append(known, medium.Slug)
				for _, key := range medium.RequiredSettings {
					if !hasValue(s, key) {
						missing = append(missing, fmt.Sprintf("%s needs %s", medium.Slug, key))
					}
				}
			}

			switch {
			case len(missing) > 0:
				return StatusFail, strings.Join(missing, "; "), nil
			case len(unknown) > 0:
				return StatusWarn, "not in the media catalog: " + strings.Join(unknown, ", "), nil
			}
			return StatusOK, "enabled: " + strings.Join(known, ", "), nil
		},
	}
}

func hasValue(s *settings.Settings, key string) bool {
	v, err := settings.Get(s, key)
	if err != nil {
		return false
	}
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case []interface{}:
		return len(val) > 0
	}
	return true
}

func DatabaseCheck(cfg settings.DatabaseSettings, open func(settings.DatabaseSettings) (Backend, error)) Check {
	return Check{
		Name: NameDatabase,
		Run: func(ctx context.Context) (Status, string, error) {
			b, err := open(cfg)
			if err != nil {
				return StatusFail, "", err
			}
			defer b.Close()

			if err := b.Ping(ctx); err != nil {
				return StatusFail, "", apperrors.NewBackendUnreachableError(NameDatabase, err)
			}
			detail := fmt.Sprintf("postgresql %s:%d/%s reachable", cfg.Host, cfg.Port, cfg.Name)
			if v, ok := b.(versioner); ok {
				if version, err := v.ServerVersion(ctx); err == nil {
					detail += ", server " + version
				}
			}
			return StatusOK, detail, nil
		},
	}
}

func ChannelLayerCheck(cfg settings.ChannelLayerSettings, open func(settings.ChannelLayerSettings) (Backend, error)) Check {
	return Check{
		Name: NameChannelLayer,
		Run: func(ctx context.Context) (Status, string, error) {
			if cfg.Backend == settings.ChannelLayerInMemory {
				return StatusSkipped, "in-memory channel layer", nil
			}
			b, err := open(cfg)
			if err != nil {
				return StatusFail, "", err
			}
			defer b.Close()

			if err := b.Ping(ctx); err != nil {
				return StatusFail, "", apperrors.NewBackendUnreachableError(NameChannelLayer, err)
			}
			return StatusOK, fmt.Sprintf("redis %s db %d reachable", cfg.Address(), cfg.DB), nil
		},
	}
}

func EmailCheck(s *settings.Settings, newSES func(ctx context.Context, region string) (SenderVerifier, error)) Check {
	return Check{
		Name: NameEmail,
		Run: func(ctx context.Context) (Status, string, error) {
			cfg := s.Email
			switch cfg.Backend {
			case settings.EmailBackendConsole:
				return StatusOK, "console backend, mail is written to the log", nil

			case settings.EmailBackendSES:
				if s.DefaultFromEmail == "" {
					return StatusFail, "DEFAULT_FROM_EMAIL is required for the ses backend", nil
				}
				client, err := newSES(ctx, cfg.AWSRegion)
				if err != nil {
					return StatusFail, fmt.Sprintf("ses client: %v", err), nil
				}
				if err := client.VerifySender(ctx, s.DefaultFromEmail); err != nil {
					return StatusFail, err.Error(), nil
				}
				return StatusOK, fmt.Sprintf("ses sender %s verified in %s", s.DefaultFromEmail, cfg.AWSRegion), nil

			case settings.EmailBackendSMTP:
				if err := probeSMTP(ctx, cfg); err != nil {
					return StatusFail, "", apperrors.NewBackendUnreachableError(NameEmail, err)
				}
				return StatusOK, fmt.Sprintf("smtp %s answered", cfg.Address()), nil
			}
			return StatusFail, fmt.Sprintf("unknown e-mail backend %q", cfg.Backend), nil
		},
	}
}

// probeSMTP connects, reads the greeting, optionally upgrades to TLS and quits
// without sending anything.
func probeSMTP(ctx context.Context, cfg settings.EmailSettings) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", cfg.Address())
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to read SMTP greeting: %w", err)
	}
	defer client.Close()

	if cfg.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			return fmt.Errorf("server does not offer STARTTLS")
		}
		if err := client.StartTLS(&tls.Config{ServerName: cfg.Host}); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	return client.Quit()
}

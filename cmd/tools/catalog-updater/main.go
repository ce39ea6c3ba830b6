// cmd/tools/catalog-updater/main.go
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"argus-settings/internal/settings"
	"argus-settings/pkg/registry"
)

const defaultCatalogPath = "pkg/registry/media.json"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		help(out)
		return errors.New("missing command")
	}

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("add", flag.ContinueOnError)
		path := fs.String("path", defaultCatalogPath, "Path to catalog file")
		identifier := fs.String("identifier", "", "Plugin identifier (e.g., argus_msteams.MSTeamsNotification)")
		slug := fs.String("slug", "", "Media slug (e.g., msteams)")
		name := fs.String("name", "", "Display name (e.g., MS Teams)")
		description := fs.String("description", "", "Description")
		required := fs.String("requires", "", "Comma separated settings the medium needs")
		properties := fs.String("properties", "", "Comma separated destination properties")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *identifier == "" || *slug == "" || *name == "" {
			return errors.New("identifier, slug and name are required for add")
		}
		media := registry.Media{
			Identifier:            *identifier,
			Slug:                  *slug,
			Name:                  *name,
			Description:           *description,
			RequiredSettings:      splitList(*required),
			DestinationProperties: splitList(*properties),
		}
		if err := addMedia(*path, media); err != nil {
			return fmt.Errorf("adding media: %w", err)
		}
		fmt.Fprintf(out, "Added media: %s\n", *slug)

	case "update":
		fs := flag.NewFlagSet("update", flag.ContinueOnError)
		path := fs.String("path", defaultCatalogPath, "Path to catalog file")
		slug := fs.String("slug", "", "Slug of the media to update")
		field := fs.String("field", "", "Field to update (name, description, identifier, slug, requires, properties)")
		value := fs.String("value", "", "New value for the field")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *slug == "" || *field == "" {
			return errors.New("slug and field are required for update")
		}
		if err := updateMedia(*path, *slug, *field, *value); err != nil {
			return fmt.Errorf("updating media: %w", err)
		}
		fmt.Fprintf(out, "Updated media %s, field %s\n", *slug, *field)

	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		path := fs.String("path", defaultCatalogPath, "Path to catalog file")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		cat, err := validateCatalog(*path)
		if err != nil {
			return fmt.Errorf("catalog validation failed: %w", err)
		}
		fmt.Fprintf(out, "Catalog validation passed. Found %d media.\n", len(cat.Media))

	case "help":
		help(out)

	default:
		help(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func loadOrCreate(path string) (*registry.MediaCatalog, error) {
	cat, err := registry.LoadCatalog(path)
	if err == nil {
		return cat, nil
	}
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		return &registry.MediaCatalog{Version: "1.0"}, nil
	}
	return nil, err
}

func addMedia(path string, media registry.Media) error {
	cat, err := loadOrCreate(path)
	if err != nil {
		return err
	}
	for _, existing := range cat.Media {
		if existing.Identifier == media.Identifier || existing.Slug == media.Slug {
			return fmt.Errorf("media %s (%s) already exists", media.Slug, media.Identifier)
		}
	}
	cat.Media = append(cat.Media, media)
	if err := checkEntries(cat); err != nil {
		return err
	}
	return saveCatalog(cat, path)
}

func updateMedia(path, slug, field, value string) error {
	cat, err := registry.LoadCatalog(path)
	if err != nil {
		return err
	}

	i := -1
	for j := range cat.Media {
		if cat.Media[j].Slug == slug {
			i = j
			break
		}
	}
	if i < 0 {
		return fmt.Errorf("media with slug %s not found", slug)
	}

	switch field {
	case "name":
		cat.Media[i].Name = value
	case "description":
		cat.Media[i].Description = value
	case "identifier":
		cat.Media[i].Identifier = value
	case "slug":
		cat.Media[i].Slug = value
	case "requires":
		cat.Media[i].RequiredSettings = splitList(value)
	case "properties":
		cat.Media[i].DestinationProperties = splitList(value)
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	if err := checkEntries(cat); err != nil {
		return err
	}
	return saveCatalog(cat, path)
}

func validateCatalog(path string) (*registry.MediaCatalog, error) {
	cat, err := registry.LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	if len(cat.Media) == 0 {
		return nil, errors.New("catalog contains no media")
	}
	if err := checkEntries(cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// checkEntries verifies identifiers are dotted paths, identifiers and slugs
// are unique, and required settings name real setting keys.
func checkEntries(cat *registry.MediaCatalog) error {
	keys, err := settings.Keys(&settings.Settings{})
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(keys))
	for _, k := range keys {
		known[k] = true
	}

	identifiers := make(map[string]string, len(cat.Media))
	slugs := make(map[string]bool, len(cat.Media))
	for _, m := range cat.Media {
		if m.Slug == "" {
			return fmt.Errorf("media %s missing required field: slug", m.Identifier)
		}
		if slugs[m.Slug] {
			return fmt.Errorf("slug %s is used more than once", m.Slug)
		}
		slugs[m.Slug] = true
		if other, ok := identifiers[m.Identifier]; ok {
			return fmt.Errorf("media %s: identifier %s is already used by %s", m.Slug, m.Identifier, other)
		}
		identifiers[m.Identifier] = m.Slug
		if !settings.IsIdentifier(m.Identifier) {
			return fmt.Errorf("media %s: %q is not a dotted plugin identifier", m.Slug, m.Identifier)
		}
		if m.Name == "" {
			return fmt.Errorf("media %s missing required field: name", m.Slug)
		}
		for _, key := range m.RequiredSettings {
			if !known[key] {
				return fmt.Errorf("media %s requires unknown setting %s", m.Slug, key)
			}
		}
	}
	return nil
}

// saveCatalog stamps and writes the catalog.
func saveCatalog(cat *registry.MediaCatalog, path string) error {
	cat.LastUpdated = time.Now().UTC().Format("2006-01-02")

	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}

func help(out io.Writer) {
	fmt.Fprintln(out, `
Usage: catalog-updater <command> [flags]

Commands:
  add       Add a medium to the catalog
  update    Update a field of an existing medium
  validate  Validate the catalog file
  help      Show this help message

Examples:
  catalog-updater add -identifier argus_msteams.MSTeamsNotification -slug msteams -name "MS Teams" -properties webhook
  catalog-updater update -slug sms -field requires -value DEFAULT_FROM_EMAIL,SMS_GATEWAY_ADDRESS
  catalog-updater validate -path pkg/registry/media.json

Use 'catalog-updater <command> -h' for more information about a command.`)
}

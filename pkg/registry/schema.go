// pkg/registry/schema.go
package registry

// MediaCatalog describes the notification media a deployment may list in
// MEDIA_PLUGINS. It is metadata only; nothing here loads plugin code.
type MediaCatalog struct {
	Version     string  `json:"version"`
	LastUpdated string  `json:"lastUpdated"`
	Media       []Media `json:"media"`
}

type Media struct {
	Identifier  string `json:"identifier"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// RequiredSettings are setting keys that must be non-empty for the medium
	// to be usable.
	RequiredSettings []string `json:"requiredSettings,omitempty"`
	// DestinationProperties are the properties a destination of this medium
	// carries, e.g. email_address or phone_number.
	DestinationProperties []string `json:"destinationProperties,omitempty"`
}

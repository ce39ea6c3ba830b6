package settings

import "argus-settings/internal/common/config"

// Media plugin identifiers understood by the Argus notification profile app.
const (
	EmailNotification = "argus.notificationprofile.media.email.EmailNotification"
	SMSNotification   = "argus.notificationprofile.media.sms_as_email.SMSNotification"
)

// DockerDevOverlayPath is the module the docker-compose API container runs with.
const DockerDevOverlayPath = "docker.api.dockerdev"

// DockerDevMediaPlugins returns a fresh copy of the media list the docker
// overlay enables: e-mail first, then SMS delivered through the e-mail gateway.
func DockerDevMediaPlugins() []string {
	return []string{EmailNotification, SMSNotification}
}

// DockerDevOverlay layers the docker API container settings on
// argus.site.settings.dockerdev.
func DockerDevOverlay() Module {
	return Overlay(DockerDevOverlayPath, DockerDevPath)
}

// Overlay builds a module that inherits everything from base and replaces
// MEDIA_PLUGINS with the docker media list. Whatever base assigned to
// MEDIA_PLUGINS, if anything, is discarded rather than extended.
func Overlay(path, base string) Module {
	return Module{
		Path: path,
		Base: base,
		Doc:  "Settings specific to the docker-compose deployment of the Argus API container",
		Apply: func(s *Settings, _ *config.Env) error {
			s.MediaPlugins = DockerDevMediaPlugins()
			return nil
		},
	}
}

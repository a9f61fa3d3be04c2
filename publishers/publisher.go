package publishers

import (
	"AutoPostAPI/models"
)

// SocialPublisher pushes a rendered message to an external platform.
// The result carries either a remote post identifier or a failure
// reason; it never panics on network errors.
type SocialPublisher interface {
	Publish(message, accessToken string) models.PublishResult
}

// Package constants holds shared domain-level constant values.
package constants

// Pub/Sub provider names accepted in configuration.
const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)

// Mail provider names accepted in configuration.
const (
	MailProviderMailgun = "mailgun"
	MailProviderLog     = "log"
)

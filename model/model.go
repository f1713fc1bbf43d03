package model

// The DeploymentRequest type carries all the information needed to request a full sync
type DeploymentRequest struct {
	// Repository is the repository name, as listed in the configuration
	Repository string
	// Team overrides the configured namespace of the repository
	Team string
	// AuthKey is the deploy auth key supplied by the caller
	AuthKey string
	// Clean removes the previously deployed content before copying
	Clean bool
}

// Trigger is one of FullSync, WebhookSync or Retry.
type Trigger interface {
	// Kind names the trigger for logs and the journal
	Kind() string
	trigger()
}

// FullSync is a manual request to fetch and deploy the whole repository.
type FullSync struct {
	DeploymentRequest
}

// WebhookSync is a push notification from the hosting service.
// The repository is identified by its homepage URL; it never cleans.
type WebhookSync struct {
	Homepage string
	// AuthKey comes from the webhook URL and is checked like a manual key,
	// so webhooks keep working with requireAuthentication. Webhooks
	// configured without one still sync when authentication is not required.
	AuthKey string
}

// Retry asks for failed synchronizations to be retried.
type Retry struct{}

func (FullSync) Kind() string    { return "full" }
func (WebhookSync) Kind() string { return "webhook" }
func (Retry) Kind() string       { return "retry" }

func (FullSync) trigger()    {}
func (WebhookSync) trigger() {}
func (Retry) trigger()       {}

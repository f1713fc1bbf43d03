package constants

const (
	// Version is the application version reported by `gitlab-sync version` and `gitlab-sync --version`
	Version = "1.0.0"
	// TokenEnvVar is the name of the environment variable that holds a static API token
	TokenEnvVar = "GITLAB_SYNC_TOKEN"
	// PasswordEnvVar is the name of the environment variable that holds the API password
	PasswordEnvVar = "GITLAB_SYNC_PASSWORD"
	// AuthKeyEnvVar is the name of the environment variable that holds the deploy auth key
	AuthKeyEnvVar = "DEPLOY_AUTH_KEY"
	// SecretEnvVar is the name of the environment variable that holds the webhook secret
	SecretEnvVar = "GITLAB_WEBHOOK_SECRET"
	// UserAgent is sent with every request to the hosting service
	UserAgent = "gitlab-sync/" + Version
)

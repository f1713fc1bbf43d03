package deployer

import (
	"crypto/subtle"

	"github.com/redbadger/gitlab-sync/config"
	"github.com/redbadger/gitlab-sync/model"
)

// authorize checks the auth key of req. Cleaning always needs a configured,
// matching deploy key; otherwise the key is only checked when authentication
// is required.
func authorize(cfg *config.Config, req model.DeploymentRequest) *Error {
	if req.Clean && cfg.DeployAuthKey == "" {
		return &Error{
			Kind:       Forbidden,
			Repository: req.Repository,
			Msg:        "Cannot clean right now. A non-empty deploy auth key must be defined for cleaning.",
		}
	}
	if (cfg.RequireAuthentication || req.Clean) && !keysMatch(cfg.DeployAuthKey, req.AuthKey) {
		msg := "Unauthorized."
		if req.Clean && req.AuthKey == "" {
			msg += " The deploy auth key must be provided when cleaning."
		}
		return &Error{Kind: Unauthorized, Repository: req.Repository, Msg: msg}
	}
	return nil
}

func keysMatch(want, got string) bool {
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

package deployer

import (
	"testing"

	"github.com/redbadger/gitlab-sync/config"
	"github.com/redbadger/gitlab-sync/model"
)

func Test_authorize(t *testing.T) {
	type args struct {
		configured string
		required   bool
		key        string
		clean      bool
	}
	tests := []struct {
		name     string
		args     args
		wantKind Kind
	}{
		{"open sync", args{"", false, "", false}, 0},
		{"open sync ignores key", args{"s3cret", false, "wrong", false}, 0},
		{"required and matching", args{"s3cret", true, "s3cret", false}, 0},
		{"required and wrong", args{"s3cret", true, "wrong", false}, Unauthorized},
		{"required and missing", args{"s3cret", true, "", false}, Unauthorized},
		{"clean with key", args{"s3cret", false, "s3cret", true}, 0},
		{"clean with wrong key", args{"s3cret", false, "wrong", true}, Unauthorized},
		{"clean without key", args{"s3cret", false, "", true}, Unauthorized},
		{"clean without configured key", args{"", false, "", true}, Forbidden},
		{"clean without configured key, key supplied", args{"", true, "anything", true}, Forbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{DeployAuthKey: tt.args.configured, RequireAuthentication: tt.args.required}
			req := model.DeploymentRequest{Repository: "demo", AuthKey: tt.args.key, Clean: tt.args.clean}
			err := authorize(cfg, req)
			var got Kind
			if err != nil {
				got = err.Kind
			}
			if got != tt.wantKind {
				t.Errorf("authorize() = %v, want %v", got, tt.wantKind)
			}
		})
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 200},
		{"unauthorized", &Error{Kind: Unauthorized}, 401},
		{"forbidden", &Error{Kind: Forbidden}, 403},
		{"unknown repository", &Error{Kind: UnknownRepository}, 404},
		{"token", &Error{Kind: AuthTokenError}, 502},
		{"transfer", &Error{Kind: TransferError}, 502},
		{"extraction", &Error{Kind: ExtractionFailed}, 422},
		{"incomplete", &Error{Kind: DeployIncomplete}, 500},
		{"retry", &Error{Kind: NotSupported}, 501},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.want {
				t.Errorf("StatusCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

package gitlab

import (
	"testing"
)

func TestParseHomepage(t *testing.T) {
	type args struct {
		homepage string
	}
	tests := []struct {
		name          string
		args          args
		wantNamespace string
		wantRepo      string
		wantErr       bool
	}{
		{
			"public gitlab",
			args{"https://gitlab.com/my-team/my-repo"},
			"my-team",
			"my-repo",
			false,
		},
		{
			"nested group",
			args{"https://gitlab.my-domain/group/sub/my-repo"},
			"sub",
			"my-repo",
			false,
		},
		{
			"trailing slash and .git",
			args{"https://gitlab.com/my-team/my-repo.git/"},
			"my-team",
			"my-repo",
			false,
		},
		{
			"no namespace",
			args{"https://gitlab.com/my-repo"},
			"",
			"",
			true,
		},
		{
			"empty",
			args{""},
			"",
			"",
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotNamespace, gotRepo, err := ParseHomepage(tt.args.homepage)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseHomepage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if gotNamespace != tt.wantNamespace || gotRepo != tt.wantRepo {
				t.Errorf("ParseHomepage() = %v, %v, want %v, %v", gotNamespace, gotRepo, tt.wantNamespace, tt.wantRepo)
			}
		})
	}
}

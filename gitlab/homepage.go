package gitlab

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseHomepage returns the namespace and repository name of a project
// homepage, i.e. the last two segments of its path:
//   https://gitlab.com/my-team/my-repo returns my-team, my-repo
// and for nested groups:
//   https://gitlab.my-domain/group/sub/my-repo returns sub, my-repo
func ParseHomepage(homepage string) (namespace, repo string, err error) {
	u, err := url.Parse(strings.TrimSpace(homepage))
	if u == nil || err != nil {
		err = fmt.Errorf("cannot parse homepage %q: %v", homepage, err)
		return
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 {
		err = fmt.Errorf("homepage %q does not name a namespace and a repository", homepage)
		return
	}
	namespace = segments[len(segments)-2]
	repo = strings.TrimSuffix(segments[len(segments)-1], ".git")
	if namespace == "" || repo == "" {
		err = fmt.Errorf("homepage %q does not name a namespace and a repository", homepage)
	}
	return
}

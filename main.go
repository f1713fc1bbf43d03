package main

import "github.com/redbadger/gitlab-sync/cmd"

func main() {
	cmd.Execute()
}

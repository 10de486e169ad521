package main

import "redditdl/cmd"

func main() {
	cmd.Execute()
}

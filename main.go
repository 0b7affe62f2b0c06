package main

import "github.com/eventlens/eventlens-cli/cmd"

func main() {
	cmd.Execute()
}

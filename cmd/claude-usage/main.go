package main

import "github.com/emiliopalmerini/claude-usage/internal/cli"

func main() {
	cli.Execute()
}

// Package main is the entry point for the yousync CLI.
package main

import (
	"github.com/yousync/yousync/cmd/yousync/commands"
)

func main() {
	commands.Execute()
}

// Package main is the entry point for the fission CLI.
package main

import "github.com/fission-dev/fission/cmd"

func main() {
	cmd.Execute()
}

// Package main is the maitred entry point: a browser-automation assistant
// that finds and books Resy reservations.
package main

import "github.com/entrhq/maitred/pkg/cli"

func main() {
	cli.Execute()
}

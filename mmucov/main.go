// Package main is the entry point of the mmucov command line tool.
package main

import "github.com/sarchlab/mmucov/mmucov/cmd"

func main() {
	cmd.Execute()
}

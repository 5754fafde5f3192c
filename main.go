package main

import "pyvm/internal/cli"

func main() {
	cli.Execute()
}

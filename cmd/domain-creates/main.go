package main

import "domaincreates/internal/cli"

func main() {
	cli.Execute()
}

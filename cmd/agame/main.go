package main

import "github.com/mcoot/agame/internal/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/mcoot/apl-auction/internal/cli"

func main() {
	cli.Execute()
}

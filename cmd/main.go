package main

import "github.com/dyike/MoneyScope/internal/cli"

func main() {
	cli.Run()
}

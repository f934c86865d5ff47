package main

import "github.com/forPelevin/podask/internal/cli"

func main() {
	cli.Main()
}

package main

import "github.com/idiotmax/Addon-Switchboard-Experiments/internal/cli"

func main() {
	cli.Execute()
}

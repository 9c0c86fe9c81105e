package main

import (
	"github.com/jcalderon/strikelog/internal/cli"
)

func main() {
	cli.Execute()
}

package main

import (
	"github.com/dyike/MoexGo/internal/cli"
)

func main() {
	cli.Run()
}

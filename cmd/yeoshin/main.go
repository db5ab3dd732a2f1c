package main

import (
	"github.com/bbachinco/yeoshin/internal/cli"
)

func main() {
	cli.Execute()
}

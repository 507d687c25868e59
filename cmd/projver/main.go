package main

import (
	"github.com/NVIDIA/projver/pkg/cli"
)

func main() {
	cli.Execute()
}

package main

import (
	"github.com/statkit/outlier/pkg/cmd"
)

func main() {
	cmd.Execute()
}

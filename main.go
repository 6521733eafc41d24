package main

import (
	"github.com/sstrack/sstrack/cmd"
)

func main() {
	cmd.Execute()
}

package main

import (
	"github.com/phishscope/phishscope/cmd"
)

func main() {
	cmd.Execute()
}

package main

import (
	"github.com/notemark/notemark/cmd"
)

func main() {
	cmd.Execute()
}

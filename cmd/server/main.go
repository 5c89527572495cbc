package main

import (
	"fmt"
	"os"
)

func main() {
	cmd, a := newRootCommand()
	if err := execute(cmd, a); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

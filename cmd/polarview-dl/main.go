package main

import (
	"fmt"
	"os"
)

func main() {
	if err := createCliApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing CLI app: %v\n", err)
		os.Exit(1)
	}
}

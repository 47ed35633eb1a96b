package main

import (
	"os"

	"github.com/revyh/glossify/cmd/glossify/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}

package main

import (
	"os"

	"github.com/headless-tools/headless-tools-cms/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}

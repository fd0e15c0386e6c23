package main

import (
	"os"

	"github.com/univhr/hrcore/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}

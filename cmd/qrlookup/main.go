package main

import (
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/autopeer-io/qrlookup/cmd/qrlookup/app"
)

func main() {
	if err := app.NewApp().Run(); err != nil {
		os.Exit(1)
	}
}

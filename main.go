package main

import (
	"os"

	"github.com/ledgerdesk/ledgerdesk/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}

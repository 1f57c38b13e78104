package main

import (
	"os"

	"github.com/yangxing-star/rongyun/cmd/rongcloud/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

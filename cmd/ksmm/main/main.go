package main

import (
	"os"

	"github.com/ksmm-dev/ksmm/cmd/ksmm"
	"github.com/ksmm-dev/ksmm/pkg/ui"
)

func main() {
	rootCmd := ksmm.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		ui.Default().Failure(err)
		os.Exit(1)
	}
}

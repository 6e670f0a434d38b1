// Package main provides the Born tensor core CLI.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

const version = "v0.0.1-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

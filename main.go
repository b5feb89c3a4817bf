package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		logrus.WithError(err).Error("stressfeat failed")
		os.Exit(1)
	}
}

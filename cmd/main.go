package main

import (
	"context"
	"os"

	"github.com/zshrug/zshrug/internal/infrastructure/logging"
	"github.com/zshrug/zshrug/internal/interfaces/cli"
	"github.com/zshrug/zshrug/internal/interfaces/di"
)

func main() {
	if err := cli.Execute(context.Background(), di.Factory); err != nil {
		logging.NewDefault().ErrorChain(err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/mirrorwell/mirrorwell-backend/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := application.Start(); err != nil {
		application.Log.Error("failed to start background work", "error", err)
		os.Exit(1)
	}

	application.Log.Info("Server listening", "port", application.Cfg.Port)
	if err := application.Run(); err != nil {
		application.Log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

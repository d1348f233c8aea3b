package main

import (
	"log"
	"os"

	"github.com/spf13/pflag"

	"taskmanager/internal/app"
	"taskmanager/internal/config"
)

// @title                       Task Manager API
// @version                     1.0
// @description                 Personal task manager: accounts, owner-scoped tasks, filtering, statistics.
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	configPath := pflag.StringP("config", "c", config.DefaultPath, "path to the yaml config file")
	pflag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("[main] config: %v", err)
	}

	code, err := app.Run(cfg)
	if err != nil {
		log.Printf("[main][err] %v", err)
	}
	os.Exit(code)
}

package main

import (
	"fmt"
	"os"

	// Swagger imports
	_ "gamestore/backend/docs" // This is important for swag to find the generated docs
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
)

// @title           Game Store API
// @version         1.0
// @description     REST API of the game store: accounts, catalog, library and reviews.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	cmd := NewRootCmd()
	cmd.Version = fmt.Sprintf("%s (commit: %s)", version, commit)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

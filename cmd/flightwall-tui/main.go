// FlightWall TUI client
// Terminal display of the enriched flight list served by the FlightWall
// daemon's REST API.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/flightwall/flightwall/pkg/config"
)

var (
	configPath = flag.String("config", "configs/config.json", "Path to configuration file")
	apiURL     = flag.String("api", "", "FlightWall API base URL (default from config)")
)

// apiBaseURL resolves the daemon address: the -api flag when given,
// otherwise the configured server host and port. A wildcard or empty bind
// host becomes localhost, since the client dials rather than listens.
func apiBaseURL(flagURL string, cfg *config.Config) string {
	if flagURL != "" {
		return flagURL
	}
	host := cfg.Server.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%s", host, cfg.Server.Port)
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	app := NewApp(apiBaseURL(*apiURL, cfg), cfg)
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

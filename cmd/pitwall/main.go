package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/apexlaps/pitwall/internal/app"
	"github.com/apexlaps/pitwall/internal/logger"
	"github.com/apexlaps/pitwall/pkg/iracing"
	"github.com/apexlaps/pitwall/web"
)

var (
	version = "dev"
)

// defaultUpstreamURL is the iRacing members API base
const defaultUpstreamURL = "https://members-api.iracing.com"

func printBanner() {
	fmt.Print(`
    ____  _ __                 ____
   / __ \(_) /__      ______ _/ / /
  / /_/ / / __/ | /| / / __ '/ / /
 / ____/ / /_ | |/ |/ / /_/ / / /
/_/   /_/\__/ |__/|__/\__,_/_/_/

`)
}

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "pitwall.db", "SQLite cache database path")
	logLevel := flag.String("loglevel", "info", "Log level (debug, info, warn, error)")
	upstreamURL := flag.String("upstream", defaultUpstreamURL, "iRacing API base URL")
	httpLog := flag.Bool("httplog", false, "Log every HTTP request")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Pitwall - iRacing Driver Statistics Dashboard

Usage:
  pitwall [options]

Options:
  -port int       HTTP server port (default 8080)
  -db string      SQLite cache database path (default "pitwall.db")
  -loglevel str   Log level: debug, info, warn, error (default "info")
  -upstream str   iRacing API base URL
  -httplog        Log every HTTP request
  -version        Show version and exit
  -help           Show this help message

Environment:
  IRACING_EMAIL     iRacing account email
  IRACING_PASSWORD  iRacing account password
  IRACING_COOKIE    Pre-established session cookie (alternative to email/password)

Examples:
  IRACING_EMAIL=me@example.com IRACING_PASSWORD=secret pitwall
  IRACING_COOKIE=abc123 pitwall -port 8081

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("pitwall %s\n", version)
		os.Exit(0)
	}

	printBanner()

	log := logger.NewWithLevel(logger.ParseLevel(*logLevel))
	if *httpLog {
		log.EnableHTTPLogging()
	}

	client := iracing.NewHTTPClient(*upstreamURL, log)
	if cookie := os.Getenv("IRACING_COOKIE"); cookie != "" {
		client.SetSessionCookie(cookie)
	} else {
		client.SetCredentials(os.Getenv("IRACING_EMAIL"), os.Getenv("IRACING_PASSWORD"))
	}
	if !client.HasCredentials() {
		log.Warn("No iRacing credentials configured; API endpoints will return configuration errors")
	}

	a, err := app.New(log, *dbPath, client, web.GetTemplatesFS(), web.GetStaticFS())
	if err != nil {
		log.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	addr := fmt.Sprintf(":%d", *port)
	log.Info("Dashboard ready", "url", fmt.Sprintf("http://localhost%s", addr))
	if err := a.Run(addr); err != nil {
		log.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

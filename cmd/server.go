package main

import (
	"flag"
	"log"
	"os"

	"github.com/pavitra297/Doc-Repo-Service-FP/config"
	"github.com/pavitra297/Doc-Repo-Service-FP/internal/server"
	"github.com/pavitra297/Doc-Repo-Service-FP/internal/websocket"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config/settings.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Tee log output to the log file and to connected web consoles
	logFile, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logFile.Close()

	logStream := websocket.NewLogStreamer(logFile)
	log.SetOutput(logStream)

	// Set up server configuration
	serverConfig := &server.Config{
		Port:         cfg.Server.Port,
		UploadDir:    cfg.Server.UploadDir,
		StaticDir:    cfg.Server.StaticDir,
		RegistryFile: cfg.Server.RegistryFile,
		EnableCORS:   cfg.Security.EnableCORS,
		CORSOrigins:  cfg.Security.CORSOrigins,
	}

	// Create and start server manager
	serverManager, err := server.NewServerManager(serverConfig, logStream)
	if err != nil {
		log.Fatalf("Failed to create server manager: %v", err)
	}

	log.Printf("[STARTUP] Starting file drop server...")
	if err := serverManager.Start(); err != nil {
		log.Fatalf("[ERROR] Server error: %v", err)
	}
}

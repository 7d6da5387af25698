package server

import (
	"log"
	"net/http"

	"github.com/pavitra297/Doc-Repo-Service-FP/internal/blobstore"
	"github.com/pavitra297/Doc-Repo-Service-FP/internal/handlers/api"
	"github.com/pavitra297/Doc-Repo-Service-FP/internal/handlers/web"
	"github.com/pavitra297/Doc-Repo-Service-FP/internal/registry"
	"github.com/pavitra297/Doc-Repo-Service-FP/internal/websocket"
)

// Config carries the settings the server manager needs, lifted out of
// the YAML configuration by the entrypoint.
type Config struct {
	Port         string
	UploadDir    string
	StaticDir    string
	RegistryFile string
	EnableCORS   bool
	CORSOrigins  []string
}

// ServerManager owns the registry and blob store and wires the HTTP
// surface: the four file endpoints, health, the log stream and the
// static console.
type ServerManager struct {
	config    *Config
	registry  *registry.Registry
	blobs     *blobstore.Store
	logStream *websocket.LogStreamer
	mux       *http.ServeMux
}

// NewServerManager builds the component graph and the route table.
// logStream may be nil, in which case the /logs endpoint is not served.
func NewServerManager(config *Config, logStream *websocket.LogStreamer) (*ServerManager, error) {
	blobs, err := blobstore.New(config.UploadDir)
	if err != nil {
		return nil, err
	}

	reg := registry.New(config.RegistryFile)
	reg.Load()

	sm := &ServerManager{
		config:    config,
		registry:  reg,
		blobs:     blobs,
		logStream: logStream,
		mux:       http.NewServeMux(),
	}
	sm.setupRoutes()

	return sm, nil
}

func (sm *ServerManager) setupRoutes() {
	fileHandlers := api.NewFileHandlers(sm.registry, sm.blobs)
	staticHandler := web.New(sm.config.StaticDir)

	sm.mux.HandleFunc("/upload", fileHandlers.HandleUpload)
	sm.mux.HandleFunc("/files", fileHandlers.HandleFileList)
	sm.mux.HandleFunc("/files/", fileHandlers.HandleFileDelete)
	sm.mux.HandleFunc("/download/", fileHandlers.HandleDownload)
	sm.mux.HandleFunc("/api/health", fileHandlers.HandleHealth)

	if sm.logStream != nil {
		sm.mux.HandleFunc("/logs", sm.logStream.HandleConnection)
	}

	sm.mux.HandleFunc("/", staticHandler.HandleRoot)
}

// Registry exposes the registry for startup reporting and tests.
func (sm *ServerManager) Registry() *registry.Registry {
	return sm.registry
}

// Handler returns the root HTTP handler, wrapped with CORS headers when
// enabled.
func (sm *ServerManager) Handler() http.Handler {
	if !sm.config.EnableCORS {
		return sm.mux
	}
	return sm.corsMiddleware(sm.mux)
}

func (sm *ServerManager) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed := "*"
		if len(sm.config.CORSOrigins) > 0 {
			allowed = sm.config.CORSOrigins[0]
			origin := r.Header.Get("Origin")
			for _, o := range sm.config.CORSOrigins {
				if o == origin {
					allowed = origin
					break
				}
			}
		}

		w.Header().Set("Access-Control-Allow-Origin", allowed)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Start logs the effective configuration and serves until the listener
// fails.
func (sm *ServerManager) Start() error {
	log.Printf("[STARTUP] File drop server initializing...")
	log.Printf("[CONFIG] Upload directory: %s", sm.config.UploadDir)
	log.Printf("[CONFIG] Static directory: %s", sm.config.StaticDir)
	log.Printf("[CONFIG] Registry snapshot: %s", sm.config.RegistryFile)
	log.Printf("[CONFIG] Tracking %d file(s)", sm.registry.Len())
	log.Printf("[NETWORK] Port: %s", sm.config.Port)

	return http.ListenAndServe(":"+sm.config.Port, sm.Handler())
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iancoleman/orderedmap"
	"github.com/tendant/simple-scene/pkg/simplescene"
	"github.com/tendant/simple-scene/pkg/simplescene/api"
	"github.com/tendant/simple-scene/pkg/simplescene/presets"
)

// Standalone simple-scene server for quick testing
// Uses in-memory repository + filesystem archives (./dev-data)
// No database setup required

func main() {
	// Command-line flags
	portFlag := flag.String("port", "", "HTTP port (default: 4000)")
	archiveDirFlag := flag.String("data-dir", "", "Archive directory (default: ./dev-data)")
	flag.Parse()

	// Configuration priority: CLI args > environment variables > defaults
	port := *portFlag
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = "4000"
	}

	archiveDir := *archiveDirFlag
	if archiveDir == "" {
		archiveDir = os.Getenv("ARCHIVE_DIR")
	}
	if archiveDir == "" {
		archiveDir = "./dev-data"
	}

	log.Println("=== Simple Scene Standalone Server ===")
	log.Printf("  Mode: In-memory repository + filesystem archives")
	log.Printf("  Archive directory: %s", archiveDir)
	log.Printf("  Port: %s", port)
	log.Println()

	// Initialize service with development preset
	svc, cleanup, err := presets.NewDevelopment(
		presets.WithDevArchiveDir(archiveDir),
		presets.WithDevPort(port),
	)
	if err != nil {
		log.Fatalf("Failed to initialize service: %v", err)
	}
	defer cleanup()

	log.Println("✓ Service initialized")

	// Create HTTP server
	server := NewHTTPServer(svc, port, archiveDir)

	// Create HTTP server instance
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: server.Routes(),
	}

	// Start server in goroutine
	go func() {
		log.Printf("✓ Server ready on http://localhost:%s", port)
		log.Println()
		log.Println("Available endpoints:")
		log.Println("  GET  /health                                - Health check")
		log.Println("  POST /api/v1/scenes                         - Create scene")
		log.Println("  GET  /api/v1/scenes                         - List scenes")
		log.Println("  POST /api/v1/scenes/{id}/nodes              - Create node")
		log.Println("  GET  /api/v1/nodes/{id}/attributes          - List node attributes")
		log.Println("  POST /api/v1/scenes/{id}/export             - Export scene archive")
		log.Println("  GET  /api/v1/test                           - Run end-to-end test")
		log.Println()
		log.Println("Quick test:")
		log.Printf("  curl http://localhost:%s/api/v1/test\n", port)
		log.Println()

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// HTTPServer wraps the simple-scene service
type HTTPServer struct {
	service    simplescene.Service
	port       string
	archiveDir string
}

// NewHTTPServer creates a new HTTP server wrapper
func NewHTTPServer(service simplescene.Service, port, archiveDir string) *HTTPServer {
	return &HTTPServer{
		service:    service,
		port:       port,
		archiveDir: archiveDir,
	}
}

// Routes sets up the HTTP routes
func (s *HTTPServer) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS for development
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Health check
	r.Get("/health", s.handleHealth)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Scene and node handlers using the API package
		sceneHandler := api.NewSceneHandler(s.service)
		nodeHandler := api.NewNodeHandler(s.service)
		r.Mount("/scenes", sceneHandler.Routes())
		r.Mount("/nodes", nodeHandler.Routes())

		// Test endpoint
		r.Get("/test", s.handleTest)
	})

	return r
}

// handleHealth returns health status
func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":      "healthy",
		"mode":        "standalone",
		"archive_dir": s.archiveDir,
		"port":        s.port,
	})
}

// handleTest runs an end-to-end test
func (s *HTTPServer) handleTest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	log.Println("=== Running End-to-End Test ===")

	// Step 1: Create a scene
	log.Println("Step 1: Creating scene...")

	sceneName := fmt.Sprintf("standalone_test_%d", time.Now().UnixNano())
	scene, err := s.service.CreateScene(ctx, simplescene.CreateSceneRequest{
		Name: sceneName,
	})
	if err != nil {
		log.Printf("Failed to create scene: %v", err)
		http.Error(w, fmt.Sprintf("Create scene failed: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✓ Scene created: %s (%s)", scene.Name, scene.ID)

	// Step 2: Create nodes
	log.Println("Step 2: Creating nodes...")

	left, err := s.service.CreateNode(ctx, simplescene.CreateNodeRequest{
		SceneID: scene.ID,
		Name:    "arm_l",
		Kind:    "limb",
	})
	if err != nil {
		log.Printf("Failed to create node: %v", err)
		http.Error(w, fmt.Sprintf("Create node failed: %v", err), http.StatusInternalServerError)
		return
	}

	right, err := s.service.CreateNode(ctx, simplescene.CreateNodeRequest{
		SceneID: scene.ID,
		Name:    "arm_r",
		Kind:    "limb",
	})
	if err != nil {
		log.Printf("Failed to create node: %v", err)
		http.Error(w, fmt.Sprintf("Create node failed: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✓ Nodes created: %s, %s", left.Name, right.Name)

	// Step 3: Set typed attributes
	log.Println("Step 3: Setting typed attributes...")

	side := "left"
	count := int64(3)
	stretch := 1.25
	if err := s.service.SetString(ctx, left.ID, "side", &side); err != nil {
		http.Error(w, fmt.Sprintf("Set string failed: %v", err), http.StatusInternalServerError)
		return
	}
	if err := s.service.SetInt(ctx, left.ID, "jointCount", &count); err != nil {
		http.Error(w, fmt.Sprintf("Set int failed: %v", err), http.StatusInternalServerError)
		return
	}
	if err := s.service.SetFloat(ctx, left.ID, "stretchFactor", &stretch); err != nil {
		http.Error(w, fmt.Sprintf("Set float failed: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✓ Attributes set: side=%q jointCount=%d stretchFactor=%g", side, count, stretch)

	// Step 4: Connect the mirror slot
	log.Println("Step 4: Connecting mirror slot...")

	if err := s.service.SetConnection(ctx, left.ID, "mirror", simplescene.ConnNode(right)); err != nil {
		http.Error(w, fmt.Sprintf("Connect failed: %v", err), http.StatusInternalServerError)
		return
	}

	mirror, err := s.service.GetConnection(ctx, left.ID, "mirror")
	if err != nil {
		http.Error(w, fmt.Sprintf("Get connection failed: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✓ Mirror connected: %s -> %s", mirror.Name, left.Name)

	// Step 5: Write and read a JSON document
	log.Println("Step 5: Writing JSON document...")

	doc := orderedmap.New()
	doc.Set("space", "world")
	doc.Set("priority", 10)
	if err := s.service.SetJSON(ctx, left.ID, "data", doc); err != nil {
		http.Error(w, fmt.Sprintf("Set JSON failed: %v", err), http.StatusInternalServerError)
		return
	}

	readBack, err := s.service.GetJSON(ctx, left.ID, "data")
	if err != nil {
		http.Error(w, fmt.Sprintf("Get JSON failed: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✓ JSON document stored with %d keys", len(readBack.Keys()))

	// Step 6: Export the scene to an archive
	log.Println("Step 6: Exporting scene archive...")

	info, err := s.service.ExportScene(ctx, simplescene.ExportSceneRequest{
		SceneID: scene.ID,
	})
	if err != nil {
		http.Error(w, fmt.Sprintf("Export failed: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✓ Scene exported: %s (%d bytes)", info.Key, info.Size)

	log.Println("=== Test Complete ===")

	// Return test results
	response := map[string]interface{}{
		"test_status": "success",
		"scene_id":    scene.ID.String(),
		"scene_name":  scene.Name,
		"nodes":       []string{left.Name, right.Name},
		"mirror":      mirror.Name,
		"json_keys":   readBack.Keys(),
		"archive": map[string]interface{}{
			"key":  info.Key,
			"size": info.Size,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

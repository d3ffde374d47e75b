package testutil

import (
	"log"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
	"github.com/tendant/simple-scene/pkg/simplescene"
	"github.com/tendant/simple-scene/pkg/simplescene/api"
	memoryrepo "github.com/tendant/simple-scene/pkg/simplescene/repo/memory"
	memorystorage "github.com/tendant/simple-scene/pkg/simplescene/storage/memory"
)

// SetupTestServer creates a test server with all routes configured
func SetupTestServer() *httptest.Server {
	// Create repository and archive store
	repo := memoryrepo.New()
	memStore := memorystorage.New()

	// Create unified service
	svc, err := simplescene.New(
		simplescene.WithRepository(repo),
		simplescene.WithArchiveStore("memory", memStore),
	)
	if err != nil {
		log.Fatal(err)
	}

	// Create handlers
	sceneHandler := api.NewSceneHandler(svc)
	nodeHandler := api.NewNodeHandler(svc)

	// Create router
	r := chi.NewRouter()

	r.Mount("/scenes", sceneHandler.Routes())
	r.Mount("/nodes", nodeHandler.Routes())

	// Create test server
	return httptest.NewServer(r)
}

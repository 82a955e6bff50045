// Package server exposes one shared scene graph over a REST API.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/meikuraledutech/scenegraph"
)

// Server serializes every request against a single Graph. The graph has no
// locking of its own, so all access goes through mu.
type Server struct {
	mu     sync.Mutex
	graph  *scenegraph.Graph
	store  scenegraph.Persister
	logger *slog.Logger
}

// New wraps g. store may be nil, in which case the schema and scene routes
// answer 501.
func New(g *scenegraph.Graph, store scenegraph.Persister, logger *slog.Logger) *Server {
	return &Server{graph: g, store: store, logger: logger}
}

// App builds the fiber application with every route registered.
func (s *Server) App() *fiber.App {
	app := fiber.New()
	app.Use(recoverer.New())
	app.Use(s.logRequests)

	// ── Schema ────────────────────────────────────────────────────────
	app.Post("/schema", s.createSchema)
	app.Delete("/schema", s.dropSchema)

	// ── Graph (bulk) ──────────────────────────────────────────────────
	app.Get("/graph", s.getGraph)
	app.Put("/graph", s.putGraph)
	app.Delete("/graph", s.resetGraph)
	app.Get("/graph/evaluate", s.evaluate)

	// ── Nodes ─────────────────────────────────────────────────────────
	app.Post("/nodes", s.addNode)
	app.Get("/nodes", s.listNodes)
	app.Get("/nodes/:ref", s.getNode)
	app.Patch("/nodes/:ref", s.updateNode)
	app.Delete("/nodes/:ref", s.removeNode)

	// ── Edges ─────────────────────────────────────────────────────────
	app.Post("/edges", s.addEdge)
	app.Get("/edges", s.listEdges)
	app.Get("/edges/:ref", s.getEdge)
	app.Delete("/edges/:ref", s.removeEdge)

	// ── Scenes ────────────────────────────────────────────────────────
	app.Get("/scenes", s.listScenes)
	app.Post("/scenes/:id", s.saveScene)
	app.Post("/scenes/:id/load", s.loadScene)
	app.Delete("/scenes/:id", s.deleteScene)

	return app
}

func (s *Server) logRequests(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Info("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start),
	)
	return err
}

// fail writes err as a JSON error with a status derived from its kind.
func fail(c fiber.Ctx, err error) error {
	return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, scenegraph.ErrMalformedDocument),
		errors.Is(err, scenegraph.ErrInvalidEndpoint),
		errors.Is(err, scenegraph.ErrUnresolvedEndpoint),
		errors.Is(err, scenegraph.ErrInvalidAttribute),
		errors.Is(err, scenegraph.ErrImmutableAttribute),
		errors.Is(err, scenegraph.ErrEmptyName):
		return http.StatusUnprocessableEntity
	case errors.Is(err, scenegraph.ErrUnknownNode),
		errors.Is(err, scenegraph.ErrUnknownEdge),
		errors.Is(err, scenegraph.ErrSceneNotFound):
		return http.StatusNotFound
	case errors.Is(err, scenegraph.ErrNameCollision),
		errors.Is(err, scenegraph.ErrExhaustedNamespace):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

var errNoStore = errors.New("scenegraph: no storage configured")

func (s *Server) requireStore(c fiber.Ctx) error {
	if s.store == nil {
		return c.Status(http.StatusNotImplemented).JSON(fiber.Map{"error": errNoStore.Error()})
	}
	return nil
}

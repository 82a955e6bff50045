package server

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/scenegraph"
)

func (s *Server) createSchema(c fiber.Ctx) error {
	if s.store == nil {
		return s.requireStore(c)
	}
	if err := s.store.CreateSchema(c.Context()); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "schema created"})
}

func (s *Server) dropSchema(c fiber.Ctx) error {
	if s.store == nil {
		return s.requireStore(c)
	}
	if err := s.store.DropSchema(c.Context()); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "schema dropped"})
}

func (s *Server) getGraph(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := s.graph.Encode(&buf); err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(buf.Bytes())
}

func (s *Server) putGraph(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.graph.Decode(bytes.NewReader(c.Body())); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (s *Server) resetGraph(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.graph.Reset()
	return c.SendStatus(http.StatusNoContent)
}

func (s *Server) evaluate(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return c.JSON(s.graph.Evaluate())
}

func (s *Server) addNode(c fiber.Ctx) error {
	var attrs scenegraph.Attrs
	if err := c.Bind().JSON(&attrs); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	tag, _ := attrs[scenegraph.KeyNodeType].(string)

	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.graph.AddNode(tag, attrs)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(n)
}

func (s *Server) listNodes(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return c.JSON(s.graph.Nodes())
}

func (s *Server) getNode(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.graph.Node(c.Params("ref"))
	if !ok {
		return fail(c, fmt.Errorf("%w: %s", scenegraph.ErrUnknownNode, c.Params("ref")))
	}
	return c.JSON(n)
}

func (s *Server) updateNode(c fiber.Ctx) error {
	var attrs scenegraph.Attrs
	if err := c.Bind().JSON(&attrs); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.graph.UpdateNode(c.Params("ref"), attrs)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(n)
}

func (s *Server) removeNode(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.graph.Node(c.Params("ref"))
	if !ok || !s.graph.RemoveNode(n.Name) {
		return fail(c, fmt.Errorf("%w: %s", scenegraph.ErrUnknownNode, c.Params("ref")))
	}
	return c.SendStatus(http.StatusNoContent)
}

type edgeRequest struct {
	Src  string `json:"src"`
	Dest string `json:"dest"`
	ID   string `json:"id"`
}

func (s *Server) addEdge(c fiber.Ctx) error {
	var req edgeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	attrs := scenegraph.Attrs{}
	if req.ID != "" {
		attrs[scenegraph.KeyEdgeID] = req.ID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.graph.AddEdge(req.Src, req.Dest, attrs)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(e)
}

func (s *Server) listEdges(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return c.JSON(s.graph.Edges())
}

func (s *Server) getEdge(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.graph.Edge(c.Params("ref"))
	if !ok {
		return fail(c, fmt.Errorf("%w: %s", scenegraph.ErrUnknownEdge, c.Params("ref")))
	}
	return c.JSON(e)
}

func (s *Server) removeEdge(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.graph.RemoveEdge(c.Params("ref")) {
		return fail(c, fmt.Errorf("%w: %s", scenegraph.ErrUnknownEdge, c.Params("ref")))
	}
	return c.SendStatus(http.StatusNoContent)
}

func (s *Server) listScenes(c fiber.Ctx) error {
	if s.store == nil {
		return s.requireStore(c)
	}
	ids, err := s.store.ListScenes(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(ids)
}

func (s *Server) saveScene(c fiber.Ctx) error {
	if s.store == nil {
		return s.requireStore(c)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Params("id")
	if err := s.graph.Save(c.Context(), s.store, id); err != nil {
		return fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"id": id})
}

func (s *Server) loadScene(c fiber.Ctx) error {
	if s.store == nil {
		return s.requireStore(c)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.graph.Load(c.Context(), s.store, c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("scene %s loaded", c.Params("id"))})
}

func (s *Server) deleteScene(c fiber.Ctx) error {
	if s.store == nil {
		return s.requireStore(c)
	}
	if err := s.store.DeleteDocument(c.Context(), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

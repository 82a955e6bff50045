package scenegraph

import "context"

// Persister stores whole scene documents under a scene identifier.
type Persister interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// Scenes
	SaveDocument(ctx context.Context, sceneID string, doc *Document) error
	LoadDocument(ctx context.Context, sceneID string) (*Document, error)
	DeleteDocument(ctx context.Context, sceneID string) error
	ListScenes(ctx context.Context) ([]string, error)
}

// Save stores the current contents of g under sceneID.
func (g *Graph) Save(ctx context.Context, p Persister, sceneID string) error {
	g.UpdateGraph()
	doc, err := g.Document()
	if err != nil {
		return err
	}
	if err := p.SaveDocument(ctx, sceneID, doc); err != nil {
		return err
	}
	g.logger.Info("saved scene", "scene", sceneID, "nodes", len(g.nodes), "edges", len(g.edges))
	return nil
}

// Load replaces the contents of g with the scene stored under sceneID.
func (g *Graph) Load(ctx context.Context, p Persister, sceneID string) error {
	doc, err := p.LoadDocument(ctx, sceneID)
	if err != nil {
		return err
	}
	if err := g.LoadDocument(doc); err != nil {
		return err
	}
	g.logger.Info("loaded scene", "scene", sceneID, "nodes", len(g.nodes), "edges", len(g.edges))
	return nil
}

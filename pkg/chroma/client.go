package chroma

import (
	"context"
	"fmt"
	"os"

	"flux-backend/pkg/config"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings/gemini"
	log "github.com/sirupsen/logrus"
)

const (
	collectionName = "flux_tasks"
	maxDocumentLen = 10000
)

// TaskDocument is the text and metadata indexed for one task.
type TaskDocument struct {
	ID       string
	Name     string
	Status   string
	Category string
	Summary  string
	Notes    string
}

// TaskIndex keeps an embedding per task in a Chroma collection for semantic search.
type TaskIndex struct {
	client     chroma.Client
	collection chroma.Collection
}

func NewTaskIndex(ctx context.Context, cfg *config.Config) (*TaskIndex, error) {
	if cfg.ChromaAPIKey == "" {
		return nil, fmt.Errorf("CHROMA_API_KEY is required")
	}

	// The embedding function reads its key from the environment
	if cfg.GeminiApiKey != "" {
		os.Setenv("GEMINI_API_KEY", cfg.GeminiApiKey)
	}

	embedFunc, err := gemini.NewGeminiEmbeddingFunction(
		gemini.WithEnvAPIKey(),
		gemini.WithDefaultModel("text-embedding-004"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini embedding function: %w", err)
	}

	opts := []chroma.ClientOption{
		chroma.WithBaseURL(chroma.ChromaCloudEndpoint),
		chroma.WithCloudAPIKey(cfg.ChromaAPIKey),
	}
	switch {
	case cfg.ChromaDatabase != "" && cfg.ChromaTenant != "":
		opts = append(opts, chroma.WithDatabaseAndTenant(cfg.ChromaDatabase, cfg.ChromaTenant))
	case cfg.ChromaTenant != "":
		opts = append(opts, chroma.WithTenant(cfg.ChromaTenant))
	}

	client, err := chroma.NewHTTPClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Chroma client: %w", err)
	}

	collection, err := client.GetOrCreateCollection(ctx, collectionName,
		chroma.WithEmbeddingFunctionCreate(embedFunc),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	log.Infof("[Chroma] Initialized task index with collection: %s", collectionName)
	return &TaskIndex{client: client, collection: collection}, nil
}

// UpsertTask indexes doc under its task id, replacing any previous entry.
func (c *TaskIndex) UpsertTask(ctx context.Context, doc TaskDocument) error {
	metadata, err := chroma.NewDocumentMetadataFromMap(map[string]interface{}{
		"task_id":  doc.ID,
		"name":     doc.Name,
		"status":   doc.Status,
		"category": doc.Category,
	})
	if err != nil {
		return fmt.Errorf("failed to create metadata: %w", err)
	}

	err = c.collection.Upsert(ctx,
		chroma.WithIDs(chroma.DocumentID(doc.ID)),
		chroma.WithMetadatas(metadata),
		chroma.WithTexts(DocumentText(doc)),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert task embedding: %w", err)
	}
	return nil
}

// Search returns task ids ordered by similarity to query, with their distances.
func (c *TaskIndex) Search(ctx context.Context, query string, limit int) ([]string, []float64, error) {
	results, err := c.collection.Query(ctx,
		chroma.WithQueryTexts(query),
		chroma.WithNResults(limit),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query collection: %w", err)
	}
	if results == nil || results.CountGroups() == 0 {
		return []string{}, []float64{}, nil
	}

	idGroups := results.GetIDGroups()
	distanceGroups := results.GetDistancesGroups()
	if len(idGroups) == 0 || len(idGroups[0]) == 0 {
		return []string{}, []float64{}, nil
	}

	ids := make([]string, 0, len(idGroups[0]))
	for _, id := range idGroups[0] {
		ids = append(ids, string(id))
	}
	distances := []float64{}
	if len(distanceGroups) > 0 {
		for _, d := range distanceGroups[0] {
			distances = append(distances, float64(d))
		}
	}

	log.WithField("results", len(ids)).Debugf("[Chroma] Search %q", query)
	return ids, distances, nil
}

// DocumentText is the text embedded for a task, truncated to the embedding limit.
func DocumentText(doc TaskDocument) string {
	text := fmt.Sprintf("Task: %s\nType: %s\nStatus: %s\n\nSummary: %s\n\nNotes: %s",
		doc.Name, doc.Category, doc.Status, doc.Summary, doc.Notes)
	if len(text) > maxDocumentLen {
		text = text[:maxDocumentLen]
	}
	return text
}

package integration

import (
	"context"
	"io"
	"log"
	"os"
	"testing"
	"time"

	vsfactory "ca-assistant-be/pkg/vectorsearch/factory"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

// Exercises a live Qdrant instance. Needs QDRANT_URL; embeddings are not
// required because only availability endpoints are hit.
func TestQdrantConnection(t *testing.T) {
	// Load .env from root (2 levels up) because tests run in package dir
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	url := os.Getenv("QDRANT_URL")
	if url == "" {
		t.Skip("Skipping integration test: QDRANT_URL not set")
	}

	provider, err := vsfactory.NewSearchProvider(vsfactory.Config{
		Provider:    "qdrant",
		QdrantURL:   url,
		Collections: []string{"tax_documents"},
		Dimension:   1536,
	}, nil, nil, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("Failed to build Qdrant provider: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	assert.NoError(t, provider.Ping(ctx))

	infos := provider.Collections(ctx)
	assert.NotEmpty(t, infos)
	for _, info := range infos {
		t.Logf("collection %s available=%v err=%s", info.Name, info.Available, info.Error)
	}
}

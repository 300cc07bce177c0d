package main

import (
	"log"

	"ca-assistant-be/internal/config"
	"ca-assistant-be/pkg/database"
	"ca-assistant-be/pkg/embedding"
	"ca-assistant-be/pkg/embedding/jina"
	"ca-assistant-be/pkg/vectorsearch/pgvector"

	pgv "github.com/pgvector/pgvector-go"
)

type seedChunk struct {
	Collection string
	Title      string
	Source     string
	Content    string
}

// Sample knowledge for local pgvector development. Production collections
// are populated by the external ingestion pipeline.
var seedChunks = []seedChunk{
	{
		Collection: "tax_documents",
		Title:      "Tax audit applicability under section 44AB",
		Source:     "incometaxindia.gov.in",
		Content:    "Section 44AB of the Income Tax Act requires every person carrying on business to get their accounts audited if total sales, turnover or gross receipts exceed one crore rupees in the previous year. The threshold rises to ten crore rupees when cash receipts and cash payments each stay within five percent of the respective totals. For professionals the audit applies when gross receipts exceed fifty lakh rupees.",
	},
	{
		Collection: "tax_documents",
		Title:      "Advance tax installment schedule",
		Source:     "incometaxindia.gov.in",
		Content:    "Advance tax is payable in four installments: 15 percent of the estimated liability by 15 June, 45 percent by 15 September, 75 percent by 15 December and 100 percent by 15 March. Taxpayers opting for presumptive taxation under section 44AD or 44ADA may pay the whole amount in a single installment by 15 March.",
	},
	{
		Collection: "tax_documents",
		Title:      "TDS on contractor payments under section 194C",
		Source:     "incometaxindia.gov.in",
		Content:    "Section 194C requires deduction of tax at source on payments to resident contractors: 1 percent when the payee is an individual or HUF and 2 percent otherwise. No deduction is required when a single payment does not exceed thirty thousand rupees and the aggregate for the year does not exceed one lakh rupees.",
	},
	{
		Collection: "ca_knowledge_base",
		Title:      "GST registration thresholds",
		Source:     "cbic.gov.in",
		Content:    "GST registration is mandatory once aggregate turnover exceeds forty lakh rupees for suppliers of goods and twenty lakh rupees for suppliers of services in most states. Special category states use lower limits of twenty and ten lakh rupees respectively. Persons making inter-state taxable supplies of goods must register regardless of turnover.",
	},
	{
		Collection: "ca_knowledge_base",
		Title:      "Income tax return due dates",
		Source:     "incometaxindia.gov.in",
		Content:    "The due date for filing the income tax return is 31 July of the assessment year for taxpayers not subject to audit, 31 October for companies and persons whose accounts require audit under the Act, and 30 November for persons required to furnish a transfer pricing report under section 92E.",
	},
	{
		Collection: "ca_knowledge_base",
		Title:      "Depreciation under the Companies Act 2013",
		Source:     "mca.gov.in",
		Content:    "Schedule II of the Companies Act 2013 prescribes useful lives for computing depreciation instead of fixed rates. General plant and machinery carries a useful life of fifteen years, computers three years, and buildings other than factory buildings sixty years. Companies may adopt different useful lives with disclosure and technical justification.",
	},
}

func main() {
	// Load Environment Variables (godotenv inside config.Load)
	cfg := config.Load()

	dsn := cfg.Database.Connection
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	var embedder embedding.EmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		embedder = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	case "jina":
		embedder = jina.NewJinaProvider(cfg.Keys.Jina)
	case "gemini":
		embedder = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	default:
		if cfg.Keys.OpenAI == "" {
			log.Fatal("Error: Seeding needs an embedding provider; set OPENAI_API_KEY or EMBEDDING_PROVIDER")
		}
		embedder = embedding.NewOpenAIProvider(cfg.Keys.OpenAI, cfg.Ai.EmbeddingModel)
	}

	log.Println("Seeding Knowledge Chunks...")

	for _, chunk := range seedChunks {
		// Check if a chunk with this title already exists in the collection
		var existing pgvector.KnowledgeChunk
		if err := db.Where("collection = ? AND title = ?", chunk.Collection, chunk.Title).First(&existing).Error; err == nil {
			log.Printf("Chunk '%s' already exists, skipping...", chunk.Title)
			continue
		}

		res, err := embedder.Generate(chunk.Content, "RETRIEVAL_DOCUMENT")
		if err != nil {
			log.Printf("Error embedding chunk '%s': %v", chunk.Title, err)
			continue
		}

		row := pgvector.KnowledgeChunk{
			Collection:     chunk.Collection,
			Title:          chunk.Title,
			Source:         chunk.Source,
			Content:        chunk.Content,
			EmbeddingValue: pgv.NewVector(embedding.FitToDimension(res.Embedding.Values, cfg.Vector.Dimension)),
		}

		if err := db.Create(&row).Error; err != nil {
			log.Printf("Error creating chunk '%s': %v", chunk.Title, err)
		} else {
			log.Printf("Created chunk: %s (%s)", chunk.Title, chunk.Collection)
		}
	}

	log.Println("Knowledge seeding completed!")
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"ca-assistant-be/internal/config"
	"ca-assistant-be/pkg/database"
	"ca-assistant-be/pkg/embedding"
	"ca-assistant-be/pkg/embedding/jina"
	"ca-assistant-be/pkg/fusion"
	"ca-assistant-be/pkg/fusion/document"
	"ca-assistant-be/pkg/fusion/knowledge"
	"ca-assistant-be/pkg/fusion/scorer"
	"ca-assistant-be/pkg/fusion/webgate"
	"ca-assistant-be/pkg/llm"
	"ca-assistant-be/pkg/llm/factory"
	"ca-assistant-be/pkg/store"
	vsfactory "ca-assistant-be/pkg/vectorsearch/factory"
	"ca-assistant-be/pkg/websearch"

	"github.com/fatih/color"
	"gorm.io/gorm"
)

// Dry-runs the answer pipeline against the live backends and prints what
// each stage contributed. Useful when an answer looks wrong and the
// question is which source let it through.
func main() {
	useWeb := flag.Bool("web", false, "allow the web search phase")
	collection := flag.String("collection", "", "query a single collection instead of the fused pipeline")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: diagnose [-web] [-collection NAME] \"question\"")
		os.Exit(2)
	}
	query := flag.Arg(0)

	cfg := config.Load()

	color.Cyan("🚀 Answer Pipeline Diagnostic\n")

	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		var err error
		gormDB, err = database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			color.Red("Failed to connect to database: %v", err)
			os.Exit(1)
		}
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
		if cfg.Keys.OpenAI != "" {
			embedder = embedding.NewOpenAIProvider(cfg.Keys.OpenAI, cfg.Ai.EmbeddingModel)
		}
	}

	pipelineLogger := log.New(os.Stderr, "", 0)

	vectorProvider, err := vsfactory.NewSearchProvider(vsfactory.Config{
		Provider:     cfg.Vector.Backend,
		QdrantURL:    cfg.Vector.QdrantURL,
		QdrantAPIKey: cfg.Vector.QdrantAPIKey,
		Collections:  cfg.Vector.Collections,
		NamedVectors: cfg.Vector.NamedVectors,
		Dimension:    cfg.Vector.Dimension,
	}, gormDB, embedder, pipelineLogger)
	if err != nil {
		color.Red("Failed to initialize vector search: %v", err)
		os.Exit(1)
	}

	webClient := websearch.NewClient(websearch.Config{
		APIKey:     cfg.Keys.Brave,
		MaxResults: cfg.Web.MaxResults,
		Timeout:    cfg.Web.Timeout,
	})

	var llmProvider llm.LLMProvider
	if cfg.Ai.LLMProvider != "openai" || cfg.Keys.OpenAI != "" {
		completionKey := cfg.Keys.OpenAI
		if cfg.Ai.LLMProvider == "huggingface" {
			completionKey = cfg.Keys.HuggingFace
		}
		llmProvider, err = factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.OllamaBaseURL, completionKey)
		if err != nil {
			color.Red("Failed to initialize LLM provider: %v", err)
			os.Exit(1)
		}
	}

	sc := scorer.NewScorer(embedder, pipelineLogger)
	matcher := document.NewMatcher(sc, pipelineLogger)
	retriever := knowledge.NewRetriever(vectorProvider, pipelineLogger)
	gate := webgate.NewGate(webClient, pipelineLogger)

	var refiner *fusion.Refiner
	if llmProvider != nil {
		refiner = fusion.NewRefiner(llmProvider, pipelineLogger)
	}
	engine := fusion.NewEngine(matcher, retriever, gate, refiner, pipelineLogger, fusion.DefaultConfig())

	color.Yellow("\n[QUERY] %s", query)
	if *collection != "" {
		color.Yellow("[MODE] single collection: %s", *collection)
		printBundle(engine.AnswerFromCollection(context.Background(), query, *collection))
		return
	}

	ctx := fusion.WithProgress(context.Background(), func(stage string) {
		color.Yellow("[STAGE] %s", stage)
	})

	printBundle(engine.Answer(ctx, query, *useWeb, nil))
}

func printBundle(bundle store.AnswerBundle) {
	color.Green("\nConfidence: %.3f", bundle.Confidence)
	fmt.Printf("Document context: %v | Web search: %v | Refinement: %v | KB passages: %d\n",
		bundle.UsedDocumentContext, bundle.UsedWebSearch, bundle.UsedRefinement, bundle.DocumentsFound)

	if len(bundle.Citations) > 0 {
		color.Cyan("\nSources:")
		for i, c := range bundle.Citations {
			fmt.Printf("  %2d. [%s] %s (%.3f)", i+1, c.Kind, c.Label, c.RelevanceScore)
			if c.Origin != "" {
				fmt.Printf(" %s", c.Origin)
			}
			fmt.Println()
		}
	}

	color.Cyan("\nAnswer:")
	fmt.Println(bundle.FinalAnswer)
}

package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"

	"alfredoptarigan/compliance-readiness/internal/config"
	"alfredoptarigan/compliance-readiness/internal/services"
)

const (
	chunkSize    = 1000
	chunkOverlap = 200
)

func main() {
	log.Println("🚀 Starting regulation ingestion...")

	// Load configuration
	cfg := config.Load()

	sourceDir := "./regulations"
	if len(os.Args) > 1 {
		sourceDir = os.Args[1]
	}

	// Initialize services
	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbeddingModel)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	ctx := context.Background()

	if err := qdrantService.InitCollection(ctx); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	extractor := services.NewTextExtractor(1)
	chunker := services.NewTextChunker()

	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		log.Fatalf("❌ Failed to read %s: %v", sourceDir, err)
	}

	successCount := 0
	failCount := 0

	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || !services.AllowedExtensions[ext] {
			continue
		}

		path := filepath.Join(sourceDir, entry.Name())
		docID := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))

		log.Printf("\n📄 Processing: %s", entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("   ❌ Failed to read file: %v", err)
			failCount++
			continue
		}

		// Extract text
		log.Printf("   📖 Extracting text...")
		text := extractor.Extract(entry.Name(), data)
		if strings.TrimSpace(text) == "" {
			log.Printf("   ⚠️  No text extracted, skipping...")
			failCount++
			continue
		}
		log.Printf("   ✅ Extracted %d characters", len(text))

		// Chunk the text
		log.Printf("   ✂️  Chunking text...")
		chunks := chunker.ChunkText(text, chunkSize, chunkOverlap)
		log.Printf("   ✅ Created %d chunks", len(chunks))

		// Replace any passages from a previous run
		if err := qdrantService.DeleteDocument(ctx, docID); err != nil {
			log.Printf("   ⚠️  Failed to remove previous passages: %v", err)
		}

		// Embed and store each chunk
		log.Printf("   🔄 Embedding and storing chunks...")
		stored := 0
		for i, chunk := range chunks {
			embedding, err := geminiService.GenerateEmbedding(ctx, chunk)
			if err != nil {
				log.Printf("   ❌ Failed to generate embedding for chunk %d: %v", i+1, err)
				continue
			}

			passage := services.Passage{
				DocID:   docID,
				DocType: services.DocTypeRegulation,
				Source:  entry.Name(),
				Index:   i,
				Text:    chunk,
			}
			if err := qdrantService.UpsertPassage(ctx, passage, embedding); err != nil {
				log.Printf("   ❌ Failed to store chunk %d: %v", i+1, err)
				continue
			}
			stored++

			if (i+1)%5 == 0 || i == len(chunks)-1 {
				log.Printf("   📊 Progress: %d/%d chunks stored", i+1, len(chunks))
			}
		}

		if stored == 0 {
			log.Printf("   ❌ No chunks stored for %s", entry.Name())
			failCount++
			continue
		}

		log.Printf("   ✅ Successfully ingested %s (%d/%d chunks)", entry.Name(), stored, len(chunks))
		successCount++
	}

	// Summary
	log.Println("\n" + strings.Repeat("=", 60))
	log.Printf("📊 Ingestion Summary:")
	log.Printf("   ✅ Successful: %d documents", successCount)
	log.Printf("   ❌ Failed: %d documents", failCount)
	log.Println(strings.Repeat("=", 60))

	if failCount > 0 {
		log.Println("⚠️  Some documents failed to ingest. Please check the logs above.")
		os.Exit(1)
	}

	if successCount == 0 {
		log.Printf("⚠️  No regulation documents found in %s", sourceDir)
		os.Exit(1)
	}

	log.Println("✅ All regulations ingested successfully!")
}

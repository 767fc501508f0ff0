package ingestion_engine

import "github.com/Shivamm1101/doc-ai/internal/config"

// IngestConfig tunes every stage of the pipeline.
//
// ClassifyMaxChars: cleaned text sent to the classifier is cut to this many runes.
// OCRMinChars:      below this much direct text the classifier falls back to OCR.
// PageTextMaxChars: per-page text limit for structured extraction.
// ChunkPageMaxChars: per-page text limit before chunking.
// PageWorkers:      concurrent page extractions within one document.
// DocWorkers:       concurrent documents in a batch.
// Collection:       vector collection chunks are stored in.
// EmbedBatchSize:   chunks per embedding request.
// Compensate:       undo a partially persisted document when a later write fails.
type IngestConfig struct {
	ClassifyMaxChars  int
	OCRMinChars       int
	PageTextMaxChars  int
	ChunkPageMaxChars int
	PageWorkers       int
	DocWorkers        int
	Chunk             ChunkOptions
	Collection        string
	EmbedBatchSize    int
	Compensate        bool
}

func DefaultIngestConfig() IngestConfig {
	return IngestConfig{
		ClassifyMaxChars:  25000,
		OCRMinChars:       100,
		PageTextMaxChars:  6000,
		ChunkPageMaxChars: 8000,
		PageWorkers:       4,
		DocWorkers:        4,
		Chunk:             DefaultChunkOptions(),
		Collection:        "pdf_chunks",
		EmbedBatchSize:    64,
		Compensate:        true,
	}
}

// IngestConfigFromEnv maps service configuration onto pipeline settings.
func IngestConfigFromEnv(cfg *config.Config) IngestConfig {
	return IngestConfig{
		ClassifyMaxChars:  cfg.ClassifyMaxChars,
		OCRMinChars:       cfg.OCRMinChars,
		PageTextMaxChars:  cfg.PageTextMaxChars,
		ChunkPageMaxChars: cfg.ChunkPageMaxChars,
		PageWorkers:       cfg.PageWorkers,
		DocWorkers:        cfg.DocWorkers,
		Chunk: ChunkOptions{
			SizeWords:     cfg.ChunkSizeWords,
			OverlapWords:  cfg.ChunkOverlapWords,
			IncludeTables: cfg.ChunkIncludeTables,
		},
		Collection:     cfg.VectorCollection,
		EmbedBatchSize: cfg.EmbedBatchSize,
		Compensate:     cfg.CompensateOnFailure,
	}
}

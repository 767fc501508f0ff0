package ingestion_engine

import "context"

// Ingestor is the pipeline surface used by services and the CLI.
type Ingestor interface {
	Ingest(ctx context.Context, path string) (*IngestResult, error)
	IngestMany(ctx context.Context, paths []string) *BatchReport
}

var _ Ingestor = (*Pipeline)(nil)

// Previewer classifies and extracts documents without persisting anything.
type Previewer interface {
	Process(ctx context.Context, paths []string) []DocumentResult
}

var _ Previewer = (*Pipeline)(nil)

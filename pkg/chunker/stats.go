package chunker

import "sort"

// Stats summarizes a processed chunk list.
type Stats struct {
	TotalChunks     int      `json:"total_chunks"`
	TotalCharacters int      `json:"total_characters"`
	AvgChunkSize    int      `json:"avg_chunk_size"`
	UniqueSources   int      `json:"unique_sources"`
	Sources         []string `json:"sources,omitempty"`
}

// ComputeStats aggregates chunk statistics. Sources are sorted so the
// output is deterministic regardless of map iteration order.
func ComputeStats(chunks []Chunk) Stats {
	if len(chunks) == 0 {
		return Stats{}
	}

	totalChars := 0
	sourceSet := make(map[string]bool)
	for _, chunk := range chunks {
		totalChars += len(chunk.Text)
		if source, ok := chunk.Metadata["source"].(string); ok {
			sourceSet[source] = true
		}
	}

	sources := make([]string, 0, len(sourceSet))
	for source := range sourceSet {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	return Stats{
		TotalChunks:     len(chunks),
		TotalCharacters: totalChars,
		AvgChunkSize:    totalChars / len(chunks),
		UniqueSources:   len(sources),
		Sources:         sources,
	}
}

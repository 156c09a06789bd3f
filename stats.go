package transchunk

import "github.com/translatekit/transchunk/chunk"

// Stats summarizes a committed chunk sequence for audit and logging.
type Stats struct {
	TotalChunks       int            `json:"total_chunks"`
	TotalTokens       int            `json:"total_tokens"`
	AvgTokensPerChunk float64        `json:"avg_tokens_per_chunk"`
	MaxChunkTokens    int            `json:"max_chunk_tokens"`
	MinChunkTokens    int            `json:"min_chunk_tokens"`
	AvgBoundaryScore  float64        `json:"avg_boundary_score"`
	BoundaryKinds     map[string]int `json:"boundary_kind_distribution"`
	OverlapTokens     int            `json:"total_overlap_tokens"`
	ContextTokens     int            `json:"total_context_tokens"`
}

// ComputeStats aggregates per-chunk token breakdowns and boundary metadata.
func ComputeStats(chunks []chunk.Chunk) Stats {
	if len(chunks) == 0 {
		return Stats{}
	}

	stats := Stats{
		TotalChunks:    len(chunks),
		BoundaryKinds:  make(map[string]int),
		MinChunkTokens: chunks[0].Breakdown.Total(),
	}
	var scoreSum float64
	for _, c := range chunks {
		total := c.Breakdown.Total()
		stats.TotalTokens += total
		if total > stats.MaxChunkTokens {
			stats.MaxChunkTokens = total
		}
		if total < stats.MinChunkTokens {
			stats.MinChunkTokens = total
		}
		scoreSum += c.Boundary.Score
		stats.BoundaryKinds[c.Boundary.EndKind.String()]++
		stats.OverlapTokens += c.Breakdown.LeadingOverlap + c.Breakdown.TrailingOverlap
		stats.ContextTokens += c.Breakdown.Context
	}
	stats.AvgTokensPerChunk = float64(stats.TotalTokens) / float64(len(chunks))
	stats.AvgBoundaryScore = scoreSum / float64(len(chunks))
	return stats
}

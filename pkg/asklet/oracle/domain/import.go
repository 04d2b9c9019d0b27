package domain

import (
	"context"
	"fmt"

	"github.com/cognicore/asklet/pkg/asklet/oracle/matrix"
	"github.com/cognicore/asklet/pkg/asklet/slug"
	"github.com/cognicore/asklet/pkg/asklet/store"
)

// ImportStats summarizes an Import run.
type ImportStats struct {
	Targets   int
	Questions int
	Answers   int
}

// Import copies a matrix into dst, recording every table entry as one answer
// for its target/question pair. Running it twice doubles the answer counts
// but leaves the normalized weights unchanged.
func Import(ctx context.Context, dst store.Domain, m *matrix.Oracle) (ImportStats, error) {
	var stats ImportStats
	questions := make(map[string]store.Question)

	for _, targetID := range m.Targets() {
		t, err := dst.UpsertTarget(ctx, targetID, slug.Name(targetID))
		if err != nil {
			return stats, fmt.Errorf("upsert target %q: %w", targetID, err)
		}
		stats.Targets++

		for _, attr := range m.Attributes(targetID) {
			q, ok := questions[attr]
			if !ok {
				q, err = dst.UpsertQuestion(ctx, attr, slug.Name(attr))
				if err != nil {
					return stats, fmt.Errorf("upsert question %q: %w", attr, err)
				}
				questions[attr] = q
				stats.Questions++
			}

			w, _ := m.Weight(targetID, attr)
			if err := dst.RecordAnswer(ctx, t.ID, q.ID, float64(w)); err != nil {
				return stats, fmt.Errorf("record %q/%q: %w", targetID, attr, err)
			}
			stats.Answers++
		}
	}

	return stats, nil
}

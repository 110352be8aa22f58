package board

import (
	"time"

	"github.com/sprite-ai/civtriage/internal/intake"
	"github.com/sprite-ai/civtriage/internal/model"
)

// Sample is a demo report plus the workflow updates it has already seen.
type Sample struct {
	Record  intake.Record
	Updates []Update
}

// Samples returns the demo reports, timestamped relative to now.
func Samples(now time.Time) []Sample {
	return []Sample{
		{
			Record: intake.Record{
				Title:       "Exposed electrical wire",
				Description: "Dangerous exposed electrical wire hanging low, risk of electrocution",
				Location:    "Main St & 5th Ave",
				CreatedAt:   now.Add(-6 * time.Hour),
			},
		},
		{
			Record: intake.Record{
				Title:       "Large pothole on Elm Street",
				Description: "Deep pothole causing traffic congestion and damage to vehicles",
				Location:    "123 Elm St",
				CreatedAt:   now.Add(-12 * time.Hour),
			},
			Updates: []Update{
				{Status: model.StatusInProgress, AssignedTo: "Road Maintenance Dept."},
			},
		},
		{
			Record: intake.Record{
				Title:       "Overflowing garbage bin",
				Description: "Public bin overflowing for several days, attracting pests",
				Location:    "Central Plaza",
				CreatedAt:   now.Add(-48 * time.Hour),
			},
		},
	}
}

// Seed submits the demo reports to b and returns them as stored.
func Seed(b *Board) ([]Report, error) {
	var out []Report
	for _, s := range Samples(b.Now()) {
		r, err := b.Submit(s.Record)
		if err != nil {
			return nil, err
		}
		for _, u := range s.Updates {
			if r, err = b.UpdateStatus(r.ID, u); err != nil {
				return nil, err
			}
		}
		out = append(out, r)
	}
	return out, nil
}

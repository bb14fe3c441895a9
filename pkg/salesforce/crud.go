package salesforce

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
)

// CreateLeads inserts Lead records in batches of 200 and returns one result
// per record, in input order. A failed batch returns the results gathered so
// far with the error.
func CreateLeads(ctx context.Context, c Client, records []map[string]any) ([]CollectionResult, error) {
	if len(records) == 0 {
		return nil, nil
	}
	for i, r := range records {
		if r["LastName"] == nil || r["LastName"] == "" || r["Company"] == nil || r["Company"] == "" {
			return nil, eris.New(fmt.Sprintf("sf: lead %d requires LastName and Company", i))
		}
	}

	var all []CollectionResult
	for start := 0; start < len(records); start += maxBatchSize {
		end := min(start+maxBatchSize, len(records))
		results, err := c.InsertCollection(ctx, "Lead", records[start:end])
		if err != nil {
			return all, eris.Wrap(err, fmt.Sprintf("sf: create leads batch %d-%d", start, end))
		}
		all = append(all, results...)
	}
	return all, nil
}

package export

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/leadforge-cli/internal/model"
	"github.com/sells-group/leadforge-cli/pkg/salesforce"
)

// leadSource tags records created by this exporter.
const leadSource = "LeadForge"

// Salesforce exports leads as Salesforce Lead objects.
type Salesforce struct {
	client salesforce.Client
}

// NewSalesforce creates a Salesforce exporter.
func NewSalesforce(c salesforce.Client) *Salesforce {
	return &Salesforce{client: c}
}

// Export inserts every exportable lead whose email is not already on a
// Salesforce Lead. Leads without an email are skipped since they cannot be
// matched on a later run.
func (s *Salesforce) Export(ctx context.Context, leads []model.Lead) (*Result, error) {
	res := &Result{}
	todo := eligible(leads, res)
	if len(todo) == 0 {
		return res, nil
	}

	emails := make([]string, len(todo))
	for i, l := range todo {
		emails[i] = l.Email
	}
	existing, err := salesforce.FindLeadIDsByEmail(ctx, s.client, emails)
	if err != nil {
		return res, err
	}

	var records []map[string]any
	var sent []model.Lead
	for _, l := range todo {
		if _, ok := existing[strings.ToLower(l.Email)]; ok {
			res.Skipped++
			continue
		}
		records = append(records, leadRecord(l))
		sent = append(sent, l)
	}

	results, err := salesforce.CreateLeads(ctx, s.client, records)
	for i, r := range results {
		if r.Success {
			res.Created++
			continue
		}
		res.Failed++
		res.Errors = append(res.Errors, fmt.Sprintf("%s: %s", sent[i].Email, strings.Join(r.Errors, "; ")))
	}
	if err != nil {
		// Records past the failed batch were never written.
		res.Failed += len(records) - len(results)
		res.Errors = append(res.Errors, err.Error())
	}

	zap.L().Info("export: salesforce finished",
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
	)
	return res, err
}

func leadRecord(l model.Lead) map[string]any {
	last := l.LastName
	if last == "" {
		last = l.FirstName
	}
	if last == "" {
		last = "Unknown"
	}
	company := l.Company
	if company == "" {
		company = "[not provided]"
	}

	rec := map[string]any{
		"LastName":   last,
		"Company":    company,
		"Email":      l.Email,
		"LeadSource": leadSource,
		"Status":     leadStatus(l.Status),
	}
	if l.LastName != "" && l.FirstName != "" {
		rec["FirstName"] = l.FirstName
	}
	set := func(k, v string) {
		if v != "" {
			rec[k] = v
		}
	}
	set("Title", l.Title)
	set("Phone", l.Phone)
	set("Website", l.Website)
	set("Industry", l.Industry)
	set("Description", l.Requirements)
	return rec
}

func leadStatus(s model.Status) string {
	if s == model.StatusConverted {
		return "Closed - Converted"
	}
	return "Working - Contacted"
}

// Package prompt builds research briefs for the generative-text provider.
package prompt

import (
	"fmt"
	"strings"

	"github.com/sells-group/leadforge-cli/internal/model"
)

const systemPrompt = `You are an expert B2B lead researcher. You find real companies and real ` +
	`decision makers, verify them against public sources (company website, LinkedIn, news, ` +
	`job postings) and never invent contact details. When a detail cannot be verified, leave ` +
	`the field empty instead of guessing.`

// resultContract is appended to every brief so the normalizer always parses
// against the same shape.
const resultContract = `Return ONLY a JSON object, no prose and no markdown, with this exact shape:
{
  "leads": [
    {
      "firstName": "string",
      "lastName": "string",
      "title": "string",
      "email": "string",
      "phone": "string",
      "company": "string",
      "website": "string",
      "companySize": "string",
      "industry": "string",
      "projectType": "string",
      "budget": {"min": integer, "max": integer},
      "timeline": "string",
      "requirements": "string",
      "linkedIn": {"personal": "string", "company": "string"},
      "evidence": {
        "projectSource": "string",
        "companyNews": "string",
        "jobPostings": "string",
        "verificationDate": "YYYY-MM-DD",
        "urls": ["string"]
      },
      "tags": ["string"]
    }
  ]
}
Budget values are whole numbers without currency symbols. Return between 3 and 5 leads.`

// System returns the fixed system prompt for lead research.
func System() string {
	return systemPrompt
}

// Build returns the research brief for freeText, falling back to prefs when
// freeText is blank. Output is deterministic for identical inputs.
func Build(freeText string, prefs *model.Preferences) string {
	base := strings.TrimSpace(freeText)
	if base == "" {
		base = FromPreferences(prefs)
	} else {
		base = "Research and verify leads matching: " + base
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\n\n")
	b.WriteString("For every lead include the company details, the contact person and the ")
	b.WriteString("potential project requirements, with the evidence you used to verify them.")
	b.WriteString("\n\n")
	b.WriteString(resultContract)
	return b.String()
}

// FromPreferences renders stored preferences as one instruction sentence.
// Missing preferences are left out of the sentence entirely.
func FromPreferences(prefs *model.Preferences) string {
	parts := []string{"Find potential clients"}
	if prefs != nil {
		if s := joinNonEmpty(prefs.Industries); s != "" {
			parts = append(parts, "in "+s)
		}
		if s := joinNonEmpty(prefs.ProjectTypes); s != "" {
			parts = append(parts, "looking for "+s)
		}
		if r := prefs.BudgetRange; r != nil && (r.Min > 0 || r.Max > 0) {
			r := r.Normalized()
			parts = append(parts, fmt.Sprintf("with budget between $%d and $%d", r.Min, r.Max))
		}
	}
	parts = append(parts, "who might need freelance services.")
	return strings.Join(parts, " ")
}

func joinNonEmpty(items []string) string {
	var kept []string
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			kept = append(kept, it)
		}
	}
	return strings.Join(kept, ", ")
}

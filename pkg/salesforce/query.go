package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Lead is the subset of the Salesforce Lead SObject read back by export.
type Lead struct {
	ID    string `json:"Id" salesforce:"Id"`
	Email string `json:"Email" salesforce:"Email"`
}

// queryChunk bounds the IN clause so SOQL stays under the URI length limit.
const queryChunk = 100

// FindLeadIDsByEmail returns existing Lead IDs keyed by lowercased email.
func FindLeadIDsByEmail(ctx context.Context, c Client, emails []string) (map[string]string, error) {
	found := make(map[string]string)
	for start := 0; start < len(emails); start += queryChunk {
		end := min(start+queryChunk, len(emails))

		quoted := make([]string, 0, end-start)
		for _, e := range emails[start:end] {
			quoted = append(quoted, "'"+escapeSoql(strings.ToLower(e))+"'")
		}
		soql := fmt.Sprintf("SELECT Id, Email FROM Lead WHERE Email IN (%s)", strings.Join(quoted, ", "))

		var leads []Lead
		if err := c.Query(ctx, soql, &leads); err != nil {
			return nil, eris.Wrap(err, "sf: find leads by email")
		}
		for _, l := range leads {
			found[strings.ToLower(l.Email)] = l.ID
		}
	}
	return found, nil
}

// escapeSoql escapes backslashes and single quotes in SOQL string literals.
func escapeSoql(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", `\'`)
}

package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadforge-cli/internal/model"
	"github.com/sells-group/leadforge-cli/pkg/notion"
)

// Notion exports leads as pages of a Notion database with the properties
// Company (title), Contact, Email, Status, Industry and Project.
type Notion struct {
	client notion.Client
	dbID   string
}

// NewNotion creates a Notion exporter writing to dbID.
func NewNotion(c notion.Client, dbID string) *Notion {
	return &Notion{client: c, dbID: dbID}
}

// Export creates one page per exportable lead whose email is not already
// present in the database.
func (n *Notion) Export(ctx context.Context, leads []model.Lead) (*Result, error) {
	if n.dbID == "" {
		return nil, eris.New("notion: database id is required")
	}
	res := &Result{}
	todo := eligible(leads, res)
	if len(todo) == 0 {
		return res, nil
	}

	pages, err := notion.QueryAll(ctx, n.client, n.dbID, nil)
	if err != nil {
		return res, eris.Wrap(err, "notion: read export database")
	}
	existing := make(map[string]bool, len(pages))
	for _, p := range pages {
		if e, ok := notion.Flatten(p)["Email"].(string); ok {
			existing[strings.ToLower(e)] = true
		}
	}

	for _, l := range todo {
		if existing[strings.ToLower(l.Email)] {
			res.Skipped++
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, eris.Wrap(err, "notion: export")
		}
		if _, err := n.client.CreatePage(ctx, n.pageRequest(l)); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", l.Email, err))
			continue
		}
		res.Created++
	}
	return res, nil
}

func (n *Notion) pageRequest(l model.Lead) *notionapi.PageCreateRequest {
	company := l.Company
	if company == "" {
		company = l.FullName()
	}
	props := notionapi.Properties{
		"Company": notion.Title(company),
		"Contact": notion.Text(l.FullName()),
		"Email":   notionapi.EmailProperty{Type: notionapi.PropertyTypeEmail, Email: l.Email},
		"Status":  notion.Select(string(l.Status)),
	}
	if l.Industry != "" {
		props["Industry"] = notion.Select(l.Industry)
	}
	if l.ProjectType != "" {
		props["Project"] = notion.Text(l.ProjectType)
	}
	return &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(n.dbID),
		},
		Properties: props,
	}
}

package importer

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadforge-cli/pkg/notion"
)

// FromNotion reads every page of a Notion database as a lead row. The page
// id is not carried over; imported rows are matched by natural key.
func FromNotion(ctx context.Context, c notion.Client, dbID string) ([]map[string]any, error) {
	if dbID == "" {
		return nil, eris.New("notion: database id is required")
	}
	pages, err := notion.QueryAll(ctx, c, dbID, nil)
	if err != nil {
		return nil, eris.Wrap(err, "notion: read lead database")
	}

	rows := make([]map[string]any, 0, len(pages))
	for _, p := range pages {
		if p.Archived {
			continue
		}
		row := canonicalRow(notion.Flatten(p))
		if len(row) == 0 {
			continue
		}
		rows = append(rows, row)
	}
	zap.L().Debug("notion: rows read", zap.String("database", dbID), zap.Int("pages", len(pages)), zap.Int("rows", len(rows)))
	return rows, nil
}

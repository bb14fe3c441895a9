package importer

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ReadXLSX reads one sheet of a workbook whose first row is a header. An
// empty sheet name selects the first sheet.
func ReadXLSX(path, sheet string) ([]map[string]any, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}

	s, err := getSheet(f, sheet)
	if err != nil {
		return nil, err
	}
	if len(s.Rows) == 0 {
		return nil, eris.Errorf("xlsx: sheet %q is empty", s.Name)
	}

	header := rowToStrings(s.Rows[0])
	records := make([][]string, 0, len(s.Rows)-1)
	for _, row := range s.Rows[1:] {
		if row == nil {
			continue
		}
		records = append(records, rowToStrings(row))
	}
	return toRows(header, records), nil
}

func getSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name != "" {
		sheet, ok := f.Sheet[name]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", name)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("xlsx: workbook has no sheets")
	}
	return f.Sheets[0], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

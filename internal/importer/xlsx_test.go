package importer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func createTestXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				row.AddCell().SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "leads.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadXLSX(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Leads": {
			{"Contact", "Company", "Email"},
			{"Ada Lovelace", "Acme", "ada@acme.io"},
			{"Grace Hopper", "Navy", ""},
		},
	})

	rows, err := ReadXLSX(path, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, map[string]any{"contactName": "Ada Lovelace", "company": "Acme", "email": "ada@acme.io"}, rows[0])

	rows, err = ReadXLSX(path, "Leads")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestReadXLSX_Errors(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{"Leads": {{"Email"}}, "Empty": {}})

	_, err := ReadXLSX(path, "Nope")
	assert.ErrorContains(t, err, `sheet "Nope" not found`)

	_, err = ReadXLSX(path, "Empty")
	assert.ErrorContains(t, err, "is empty")

	_, err = ReadXLSX(filepath.Join(t.TempDir(), "missing.xlsx"), "")
	assert.Error(t, err)
}

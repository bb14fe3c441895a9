// Package importer reads lead rows from spreadsheets and Notion databases
// into the record shape the normalizer accepts.
package importer

import (
	"strings"
)

// headerAliases maps folded spreadsheet headers to the field names the
// normalizer resolves. Unlisted headers pass through unchanged.
var headerAliases = map[string]string{
	"first":        "firstName",
	"firstname":    "firstName",
	"givenname":    "firstName",
	"last":         "lastName",
	"lastname":     "lastName",
	"surname":      "lastName",
	"familyname":   "lastName",
	"name":         "contactName",
	"contact":      "contactName",
	"contactname":  "contactName",
	"fullname":     "contactName",
	"company":      "company",
	"companyname":  "company",
	"organization": "company",
	"organisation": "company",
	"account":      "company",
	"accountname":  "company",
	"email":        "email",
	"emailaddress": "email",
	"workemail":    "email",
	"phone":        "phone",
	"phonenumber":  "phone",
	"mobile":       "phone",
	"title":        "title",
	"jobtitle":     "title",
	"position":     "title",
	"website":      "website",
	"url":          "website",
	"linkedin":     "linkedIn",
	"linkedinurl":  "linkedIn",
	"industry":     "industry",
	"sector":       "industry",
	"companysize":  "companySize",
	"employees":    "companySize",
	"projecttype":  "projectType",
	"project":      "projectType",
	"budget":       "budget",
	"budgetmin":    "budgetMin",
	"minbudget":    "budgetMin",
	"budgetmax":    "budgetMax",
	"maxbudget":    "budgetMax",
	"timeline":     "timeline",
	"requirements": "requirements",
	"notes":        "notes",
	"tags":         "tags",
	"status":       "status",
	"leadstatus":   "status",
}

func foldHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		switch r {
		case ' ', '_', '-', '.', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CanonicalField maps a column header to its canonical field name.
func CanonicalField(header string) string {
	if f, ok := headerAliases[foldHeader(header)]; ok {
		return f
	}
	return strings.TrimSpace(header)
}

// toRows pairs records with a header row. Blank cells are omitted, rows
// that are entirely blank are skipped, and the first column wins when two
// headers map to the same field.
func toRows(header []string, records [][]string) []map[string]any {
	fields := make([]string, len(header))
	for i, h := range header {
		fields[i] = CanonicalField(h)
	}

	rows := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		row := make(map[string]any, len(fields))
		for i, cell := range rec {
			if i >= len(fields) || fields[i] == "" {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if _, dup := row[fields[i]]; dup {
				continue
			}
			row[fields[i]] = cell
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

// canonicalRow renames an already keyed row, such as a flattened Notion page.
func canonicalRow(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		f := CanonicalField(k)
		if _, dup := out[f]; dup && f != k {
			continue
		}
		out[f] = v
	}
	return out
}

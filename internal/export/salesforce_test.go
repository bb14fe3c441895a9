package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadforge-cli/internal/model"
	"github.com/sells-group/leadforge-cli/pkg/salesforce"
)

type fakeSF struct {
	existing []salesforce.Lead
	queryErr error
	inserted []map[string]any
	reject   map[string]string
	batchErr error
}

func (f *fakeSF) Query(_ context.Context, _ string, out any) error {
	if f.queryErr != nil {
		return f.queryErr
	}
	*out.(*[]salesforce.Lead) = f.existing
	return nil
}

func (f *fakeSF) InsertOne(context.Context, string, map[string]any) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeSF) InsertCollection(_ context.Context, _ string, records []map[string]any) ([]salesforce.CollectionResult, error) {
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	out := make([]salesforce.CollectionResult, len(records))
	for i, r := range records {
		f.inserted = append(f.inserted, r)
		if reason, bad := f.reject[r["Email"].(string)]; bad {
			out[i] = salesforce.CollectionResult{Errors: []string{reason}}
			continue
		}
		out[i] = salesforce.CollectionResult{ID: fmt.Sprintf("00Q%d", i), Success: true}
	}
	return out, nil
}

func lead(email string, status model.Status) model.Lead {
	return model.Lead{FirstName: "Ada", LastName: "Lovelace", Company: "Acme", Email: email, Status: status}
}

func TestSalesforceExport(t *testing.T) {
	sf := &fakeSF{
		existing: []salesforce.Lead{{ID: "00Qx", Email: "Known@Acme.io"}},
		reject:   map[string]string{"bad@acme.io": "INVALID_EMAIL_ADDRESS"},
	}
	leads := []model.Lead{
		lead("ada@acme.io", model.StatusQualified),
		lead("known@acme.io", model.StatusProposal),
		lead("new@acme.io", model.StatusNew),
		lead("", model.StatusConverted),
		lead("ADA@acme.io", model.StatusConverted),
		lead("bad@acme.io", model.StatusConverted),
		{LastName: "", FirstName: "Solo", Email: "solo@x.io", Status: model.StatusConverted},
	}

	res, err := NewSalesforce(sf).Export(context.Background(), leads)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 4, res.Skipped)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "INVALID_EMAIL_ADDRESS")

	require.Len(t, sf.inserted, 3)
	first := sf.inserted[0]
	assert.Equal(t, "Lovelace", first["LastName"])
	assert.Equal(t, "Ada", first["FirstName"])
	assert.Equal(t, "Working - Contacted", first["Status"])
	assert.Equal(t, "LeadForge", first["LeadSource"])

	solo := sf.inserted[2]
	assert.Equal(t, "Solo", solo["LastName"])
	assert.Equal(t, "[not provided]", solo["Company"])
	assert.NotContains(t, solo, "FirstName")
	assert.Equal(t, "Closed - Converted", solo["Status"])
}

func TestSalesforceExport_NothingEligible(t *testing.T) {
	sf := &fakeSF{queryErr: errors.New("must not be called")}
	res, err := NewSalesforce(sf).Export(context.Background(), []model.Lead{lead("a@x.io", model.StatusLost)})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
}

func TestSalesforceExport_Errors(t *testing.T) {
	_, err := NewSalesforce(&fakeSF{queryErr: errors.New("INVALID_SESSION_ID")}).
		Export(context.Background(), []model.Lead{lead("a@x.io", model.StatusQualified)})
	assert.ErrorContains(t, err, "sf: find leads by email")

	res, err := NewSalesforce(&fakeSF{batchErr: errors.New("503")}).
		Export(context.Background(), []model.Lead{lead("a@x.io", model.StatusQualified), lead("b@x.io", model.StatusQualified)})
	require.Error(t, err)
	assert.Equal(t, 2, res.Failed)
	assert.True(t, strings.Contains(res.Errors[0], "batch 0-2"))
}

func TestExportable(t *testing.T) {
	for s, want := range map[model.Status]bool{
		model.StatusNew: false, model.StatusContacted: false, model.StatusQualified: true,
		model.StatusProposal: true, model.StatusConverted: true, model.StatusLost: false,
	} {
		assert.Equal(t, want, Exportable(model.Lead{Status: s}), string(s))
	}
}

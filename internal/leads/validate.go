package leads

import (
	"strings"

	"github.com/sells-group/leadforge-cli/internal/model"
)

// validateDraft checks a manually entered lead. Unlike provider output,
// a negative budget is an error here rather than a dropped field.
func validateDraft(d model.Lead) (model.Lead, error) {
	l := d.Clone()
	l.FirstName = strings.TrimSpace(l.FirstName)
	l.LastName = strings.TrimSpace(l.LastName)
	l.Email = strings.TrimSpace(l.Email)
	l.Company = strings.TrimSpace(l.Company)

	if l.Email == "" && l.Company == "" {
		return l, &model.InvalidLeadError{Index: -1, Reason: "email or company is required"}
	}
	if l.Email != "" && !strings.Contains(l.Email, "@") {
		return l, &model.InvalidLeadError{Index: -1, Reason: "email is not an address: " + l.Email}
	}
	if l.Budget != nil {
		if err := l.Budget.Validate(); err != nil {
			return l, err
		}
		b := l.Budget.Normalized()
		l.Budget = &b
	}
	switch {
	case l.Status == "":
		l.Status = model.StatusNew
	case !l.Status.Valid():
		return l, &model.InvalidLeadError{Index: -1, Reason: "unknown status " + string(l.Status)}
	}
	l.Tags = model.DedupeTags(l.Tags)
	l.ID = ""
	return l, nil
}

package normalize

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sells-group/leadforge-cli/internal/model"
)

// Shape is the payload generation a provider record follows.
type Shape int

const (
	// ShapeSplit carries firstName/lastName and company.
	ShapeSplit Shape = iota + 1
	// ShapeContact carries a single contactName plus companyName/employeeCount.
	ShapeContact
	// ShapeStructured is ShapeSplit plus nested evidence and linkedIn objects.
	ShapeStructured
)

func (s Shape) String() string {
	switch s {
	case ShapeSplit:
		return "split"
	case ShapeContact:
		return "contact"
	case ShapeStructured:
		return "structured"
	default:
		return "unknown"
	}
}

// adapter copies one family of fields from a record into the lead under
// construction. Warnings are appended to w.
type adapter func(idx keyIndex, l *model.Lead, w *[]string)

var adapters = map[Shape][]adapter{
	ShapeSplit:      {adaptSplitName, adaptCompany, adaptContactDetails, adaptProject, adaptLinkedIn, adaptLegacyEvidence, adaptVerification},
	ShapeContact:    {adaptContactName, adaptCompany, adaptContactDetails, adaptProject, adaptLinkedIn, adaptLegacyEvidence, adaptVerification},
	ShapeStructured: {adaptSplitName, adaptCompany, adaptContactDetails, adaptProject, adaptLinkedIn, adaptEvidence, adaptLegacyEvidence, adaptVerification},
}

// DetectShape classifies a record by the fields it carries.
func DetectShape(rec map[string]any) Shape {
	return detectShape(indexKeys(rec))
}

func detectShape(idx keyIndex) Shape {
	if ev, ok := idx.lookup("evidence"); ok {
		if _, isObj := ev.(map[string]any); isObj {
			return ShapeStructured
		}
	}
	if li, ok := idx.lookup("linkedIn", "linkedin_url"); ok {
		if _, isObj := li.(map[string]any); isObj {
			return ShapeStructured
		}
	}
	if idx.str("firstName", "lastName") == "" &&
		(idx.str("contactName", "contact", "fullName", "name") != "" || idx.str("companyName") != "") {
		return ShapeContact
	}
	return ShapeSplit
}

// buildLead maps one provider record onto the canonical lead.
func buildLead(i int, rec map[string]any, opts Options) (model.Lead, []string, error) {
	idx := indexKeys(rec)
	shape := detectShape(idx)

	l := model.Lead{
		ID:           idx.str("id", "_id", "leadId"),
		UserID:       opts.UserID,
		Status:       opts.Status,
		Source:       opts.Source,
		NormalizedAt: opts.Now,
	}
	var warnings []string
	for _, apply := range adapters[shape] {
		apply(idx, &l, &warnings)
	}

	if l.Email == "" && l.Company == "" {
		return model.Lead{}, warnings, &model.InvalidLeadError{Index: i, Reason: "record has neither email nor company"}
	}

	if opts.KeepRecordStatus {
		if s := model.Status(strings.ToLower(idx.str("status"))); s.Valid() {
			l.Status = s
		}
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.Tags = model.DedupeTags(stringList(pick(idx, "tags", "labels", "keywords")))
	l.Notes = idx.str("notes")

	for j := range warnings {
		warnings[j] = fmt.Sprintf("record %d: %s", i, warnings[j])
	}
	return l, warnings, nil
}

func pick(idx keyIndex, keys ...string) any {
	v, _ := idx.lookup(keys...)
	return v
}

func adaptSplitName(idx keyIndex, l *model.Lead, _ *[]string) {
	l.FirstName = idx.str("firstName", "first")
	l.LastName = idx.str("lastName", "last", "surname")
	if l.FirstName == "" && l.LastName == "" {
		l.FirstName, l.LastName = splitName(idx.str("fullName", "name", "contactName"))
	}
}

func adaptContactName(idx keyIndex, l *model.Lead, _ *[]string) {
	if c, ok := idx.lookup("contact"); ok {
		if obj, isObj := c.(map[string]any); isObj {
			ci := indexKeys(obj)
			l.FirstName, l.LastName = splitName(ci.str("name", "fullName"))
			if l.FirstName == "" {
				l.FirstName, l.LastName = ci.str("firstName"), ci.str("lastName")
			}
			if l.Email == "" {
				l.Email = ci.str("email")
			}
			if l.Title == "" {
				l.Title = ci.str("title", "role", "position")
			}
			return
		}
	}
	l.FirstName, l.LastName = splitName(idx.str("contactName", "contact", "fullName", "name"))
}

func adaptCompany(idx keyIndex, l *model.Lead, _ *[]string) {
	l.Company = idx.str("company", "companyName", "organization", "organisation", "business")
	l.Website = idx.str("website", "companyWebsite", "url", "domain")
	l.CompanySize = idx.str("companySize", "employeeCount", "employees", "size", "headcount")
	l.Industry = idx.str("industry", "sector", "vertical")
}

func adaptContactDetails(idx keyIndex, l *model.Lead, _ *[]string) {
	if e := idx.str("email", "contactEmail", "businessEmail", "emailAddress"); e != "" {
		l.Email = e
	}
	if t := idx.str("title", "jobTitle", "position", "role"); t != "" {
		l.Title = t
	}
	l.Phone = idx.str("phone", "phoneNumber", "telephone", "mobile")
}

func adaptProject(idx keyIndex, l *model.Lead, w *[]string) {
	l.ProjectType = idx.str("projectType", "project", "serviceNeeded")
	l.Timeline = idx.str("timeline", "timeframe", "deadline")
	l.Requirements = idx.str("requirements", "projectRequirements", "needs", "description")

	raw, ok := idx.lookup("budget", "budgetRange")
	if !ok {
		lo, hasLo := idx.lookup("budgetMin", "minBudget")
		hi, hasHi := idx.lookup("budgetMax", "maxBudget")
		if !hasLo && !hasHi {
			return
		}
		obj := map[string]any{}
		if hasLo {
			obj["min"] = lo
		}
		if hasHi {
			obj["max"] = hi
		}
		raw = obj
	}
	b, warn := parseBudget(raw)
	if warn != "" {
		*w = append(*w, warn)
	}
	l.Budget = b
}

func adaptLinkedIn(idx keyIndex, l *model.Lead, _ *[]string) {
	raw, ok := idx.lookup("linkedIn", "linkedinUrl", "linkedinProfile")
	if !ok {
		return
	}
	if obj, isObj := raw.(map[string]any); isObj {
		li := indexKeys(obj)
		l.LinkedIn = li.str("personal", "profile", "contact", "url")
		l.Evidence.LinkedInCompany = li.str("company", "companyPage")
		return
	}
	l.LinkedIn = toString(raw)
	if c := idx.str("linkedInCompany", "companyLinkedIn"); c != "" {
		l.Evidence.LinkedInCompany = c
	}
}

func adaptEvidence(idx keyIndex, l *model.Lead, _ *[]string) {
	raw, _ := idx.lookup("evidence")
	obj, ok := raw.(map[string]any)
	if !ok {
		return
	}
	ev := indexKeys(obj)
	l.Evidence.ProjectSource = ev.str("projectSource", "source", "project")
	l.Evidence.CompanyNews = ev.str("companyNews", "news")
	l.Evidence.JobPostings = ev.str("jobPostings", "jobs")
	if c := ev.str("linkedInCompany", "linkedIn"); c != "" && l.Evidence.LinkedInCompany == "" {
		l.Evidence.LinkedInCompany = c
	}
	l.Evidence.URLs = dedupeStrings(stringList(pick(ev, "urls", "sources", "links")))
}

// adaptLegacyEvidence fills evidence from the labelled blob older prompts wrote
// into notes (or into evidence as a plain string).
func adaptLegacyEvidence(idx keyIndex, l *model.Lead, _ *[]string) {
	if !l.Evidence.IsZero() {
		return
	}
	var blob string
	if ev, ok := idx.lookup("evidence"); ok {
		if s, isStr := ev.(string); isStr {
			blob = s
			if !HasEvidenceLabels(s) {
				l.Evidence.ProjectSource = cleanValue(s)
				return
			}
		}
	}
	if blob == "" {
		if notes := idx.str("notes"); HasEvidenceLabels(notes) {
			blob = notes
		}
	}
	if blob == "" {
		return
	}
	le := ParseEvidenceBlob(blob)
	l.Evidence.ProjectSource = le.ProjectSource
	l.Evidence.CompanyNews = le.CompanyNews
	l.Evidence.JobPostings = le.JobPostings
	if l.Evidence.LinkedInCompany == "" {
		l.Evidence.LinkedInCompany = le.LinkedIn
	}
	if l.Website == "" {
		l.Website = le.Website
	}
	if le.LastVerified != "" && pick(idx, "verificationDate", "lastVerified", "verifiedAt") == nil {
		idx[canonicalKey("lastVerified")] = le.LastVerified
	}
}

func adaptVerification(idx keyIndex, l *model.Lead, w *[]string) {
	s := ""
	if raw, ok := idx.lookup("evidence"); ok {
		if obj, isObj := raw.(map[string]any); isObj {
			s = indexKeys(obj).str("verificationDate", "lastVerified", "verifiedAt")
		}
	}
	if s == "" {
		s = idx.str("verificationDate", "lastVerified", "verifiedAt")
	}
	if s == "" {
		return
	}
	t, ok := parseDate(s)
	if !ok {
		*w = append(*w, fmt.Sprintf("unparseable verification date %q ignored", s))
		return
	}
	l.VerificationDate = &t
}

func dedupeStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

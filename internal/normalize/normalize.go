// Package normalize converts heterogeneous provider lead payloads into
// canonical model.Lead records.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/leadforge-cli/internal/model"
)

// Options controls defaults applied to every normalized record.
type Options struct {
	UserID string
	// Source defaults to ai-generated.
	Source model.Source
	// Status defaults to new.
	Status model.Status
	// KeepRecordStatus honours a valid status column on the record itself
	// (imports of existing pipelines).
	KeepRecordStatus bool
	// Now stamps NormalizedAt. Defaults to time.Now.
	Now time.Time
}

func (o Options) withDefaults() Options {
	if o.Source == "" {
		o.Source = model.SourceAIGenerated
	}
	if o.Status == "" {
		o.Status = model.StatusNew
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	o.Now = o.Now.UTC()
	return o
}

// Result is the outcome of a normalization pass. Partial success is normal:
// invalid records are dropped and reported while the rest survive.
type Result struct {
	Leads    []model.Lead
	Dropped  int
	Errors   []error
	Warnings []string
}

func (r *Result) drop(err error) {
	r.Dropped++
	r.Errors = append(r.Errors, err)
}

// Normalize parses raw provider output into leads. raw may be JSON text
// ([]byte or string, optionally fenced or wrapped in prose) or an already
// decoded value. A payload without a lead list fails with
// *model.MalformedResponseError.
func Normalize(raw any, opts Options) (*Result, error) {
	records, err := extractRecords(raw)
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	res := &Result{Leads: make([]model.Lead, 0, len(records))}
	for i, item := range records {
		rec, ok := item.(map[string]any)
		if !ok {
			res.drop(&model.InvalidLeadError{Index: i, Reason: fmt.Sprintf("record is %T, not an object", item)})
			continue
		}
		lead, warnings, err := buildLead(i, rec, opts)
		res.Warnings = append(res.Warnings, warnings...)
		if err != nil {
			res.drop(err)
			continue
		}
		res.Leads = append(res.Leads, lead)
	}

	if res.Dropped > 0 || len(res.Warnings) > 0 {
		zap.L().Debug("normalize: records adjusted",
			zap.Int("kept", len(res.Leads)),
			zap.Int("dropped", res.Dropped),
			zap.Strings("warnings", res.Warnings),
		)
	}
	return res, nil
}

func extractRecords(raw any) ([]any, error) {
	switch v := raw.(type) {
	case []byte:
		return decodeText(string(v))
	case string:
		return decodeText(v)
	case []any:
		return v, nil
	case []map[string]any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, nil
	case map[string]any:
		return recordsFromValue(v, "")
	case nil:
		return nil, &model.MalformedResponseError{Reason: "empty response"}
	default:
		return nil, &model.MalformedResponseError{Reason: fmt.Sprintf("unsupported payload type %T", raw)}
	}
}

func decodeText(text string) ([]any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &model.MalformedResponseError{Raw: text, Reason: "empty response"}
	}
	body := ExtractJSON(text)
	if body == "" {
		return nil, &model.MalformedResponseError{Raw: text, Reason: "no JSON object or array found"}
	}
	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return nil, &model.MalformedResponseError{Raw: text, Reason: "invalid JSON", Err: err}
	}
	return recordsFromValue(v, text)
}

func recordsFromValue(v any, raw string) ([]any, error) {
	switch t := v.(type) {
	case []any:
		return t, nil
	case map[string]any:
		leads, ok := indexKeys(t).lookup("leads")
		if !ok {
			return nil, &model.MalformedResponseError{Raw: rawOf(raw, t), Reason: `missing "leads" array`}
		}
		arr, ok := leads.([]any)
		if !ok {
			return nil, &model.MalformedResponseError{Raw: rawOf(raw, t), Reason: fmt.Sprintf(`"leads" is %T, not an array`, leads)}
		}
		return arr, nil
	default:
		return nil, &model.MalformedResponseError{Raw: rawOf(raw, t), Reason: fmt.Sprintf("top level is %T, not an object or array", v)}
	}
}

func rawOf(raw string, v any) string {
	if raw != "" {
		return raw
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

var fencedBlock = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")

// ExtractJSON returns the JSON payload inside text: the contents of the first
// fenced code block when present, then the first value starting at a '{' or
// '[' that decodes as an object or an array of objects. Prose like "[3]" is
// skipped. When nothing decodes, the span from the first opener to its last
// closer is returned so the caller can report it. It returns "" when no
// opener exists.
func ExtractJSON(text string) string {
	s := strings.TrimSpace(text)
	if m := fencedBlock.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	for i := start; ; {
		if raw, ok := recordsAt(s[i:]); ok {
			return raw
		}
		next := strings.IndexAny(s[i+1:], "{[")
		if next < 0 {
			break
		}
		i += next + 1
	}

	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return s[start:]
	}
	return s[start : end+1]
}

// recordsAt decodes the JSON value at the head of s and accepts it when it is
// an object or an array whose elements are all objects.
func recordsAt(s string) (string, bool) {
	var raw json.RawMessage
	if err := json.NewDecoder(strings.NewReader(s)).Decode(&raw); err != nil {
		return "", false
	}
	if raw[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return "", false
		}
		for _, it := range items {
			if it = bytes.TrimSpace(it); len(it) == 0 || it[0] != '{' {
				return "", false
			}
		}
	}
	return string(raw), true
}

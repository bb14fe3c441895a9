package notion

import (
	"strings"
	"time"

	"github.com/jomei/notionapi"
)

// Flatten converts a page's properties into plain values keyed by property
// name. Titles and rich text become strings, numbers float64, multi-selects
// []string and dates an ISO date string. Empty and unsupported properties
// are omitted.
func Flatten(page notionapi.Page) map[string]any {
	out := make(map[string]any, len(page.Properties))
	for name, prop := range page.Properties {
		if v, ok := propertyValue(prop); ok {
			out[name] = v
		}
	}
	return out
}

func propertyValue(prop notionapi.Property) (any, bool) {
	switch p := prop.(type) {
	case *notionapi.TitleProperty:
		return nonEmpty(plainText(p.Title))
	case *notionapi.RichTextProperty:
		return nonEmpty(plainText(p.RichText))
	case *notionapi.EmailProperty:
		return nonEmpty(p.Email)
	case *notionapi.URLProperty:
		return nonEmpty(p.URL)
	case *notionapi.PhoneNumberProperty:
		return nonEmpty(p.PhoneNumber)
	case *notionapi.NumberProperty:
		return p.Number, true
	case *notionapi.SelectProperty:
		return nonEmpty(p.Select.Name)
	case *notionapi.StatusProperty:
		return nonEmpty(p.Status.Name)
	case *notionapi.MultiSelectProperty:
		names := make([]string, 0, len(p.MultiSelect))
		for _, o := range p.MultiSelect {
			if o.Name != "" {
				names = append(names, o.Name)
			}
		}
		return names, len(names) > 0
	case *notionapi.DateProperty:
		if p.Date == nil || p.Date.Start == nil {
			return nil, false
		}
		return time.Time(*p.Date.Start).UTC().Format("2006-01-02"), true
	default:
		return nil, false
	}
}

func plainText(rt []notionapi.RichText) string {
	var b strings.Builder
	for _, r := range rt {
		b.WriteString(r.PlainText)
		if r.PlainText == "" && r.Text != nil {
			b.WriteString(r.Text.Content)
		}
	}
	return strings.TrimSpace(b.String())
}

func nonEmpty(s string) (any, bool) {
	return s, s != ""
}

// Title builds a title property.
func Title(s string) notionapi.TitleProperty {
	return notionapi.TitleProperty{
		Type:  notionapi.PropertyTypeTitle,
		Title: []notionapi.RichText{{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}}},
	}
}

// Text builds a rich text property.
func Text(s string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{
		Type:     notionapi.PropertyTypeRichText,
		RichText: []notionapi.RichText{{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}}},
	}
}

// Select builds a select property.
func Select(name string) notionapi.SelectProperty {
	return notionapi.SelectProperty{Type: notionapi.PropertyTypeSelect, Select: notionapi.Option{Name: name}}
}

// Package campaign delivers outreach emails for campaigns and filters the
// delivery events that come back.
package campaign

import (
	"html"
	"strings"

	"github.com/sells-group/leadforge-cli/internal/model"
)

// From identifies the user sending a campaign.
type From struct {
	Name      string `mapstructure:"name"`
	Email     string `mapstructure:"email"`
	Role      string `mapstructure:"role"`
	Signature string `mapstructure:"signature"`
}

// Address renders the From header.
func (f From) Address() string {
	if f.Name == "" {
		return f.Email
	}
	return f.Name + " <" + f.Email + ">"
}

// Personalize fills the {{lead.*}} and {{user.*}} placeholders of an HTML
// template. Lead values are HTML-escaped; the signature is inserted as is.
// Unknown placeholders are left untouched.
func Personalize(template string, lead model.Lead, from From) string {
	r := strings.NewReplacer(
		"{{lead.name}}", html.EscapeString(lead.FullName()),
		"{{lead.first_name}}", html.EscapeString(lead.FirstName),
		"{{lead.company}}", html.EscapeString(lead.Company),
		"{{user.name}}", html.EscapeString(from.Name),
		"{{user.role}}", html.EscapeString(from.Role),
		"{{user.signature}}", from.Signature,
	)
	return r.Replace(template)
}

package campaign

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/leadforge-cli/internal/model"
)

func TestPersonalize(t *testing.T) {
	lead := model.Lead{FirstName: "Ada", LastName: "Lovelace", Company: "Acme & Sons"}
	from := From{Name: "Grace", Email: "grace@leadforge.io", Role: "Founder", Signature: "<b>G</b>"}

	got := Personalize("Hi {{lead.first_name}} ({{lead.name}}) at {{lead.company}}. {{user.name}}, {{user.role}} {{user.signature}} {{lead.unknown}}", lead, from)
	assert.Equal(t, "Hi Ada (Ada Lovelace) at Acme &amp; Sons. Grace, Founder <b>G</b> {{lead.unknown}}", got)
}

func TestPersonalize_MissingProfileFields(t *testing.T) {
	got := Personalize("{{user.role}}|{{user.signature}}|{{lead.company}}", model.Lead{}, From{})
	assert.Equal(t, "||", got)
}

func TestFromAddress(t *testing.T) {
	assert.Equal(t, "Grace <grace@x.io>", From{Name: "Grace", Email: "grace@x.io"}.Address())
	assert.Equal(t, "grace@x.io", From{Email: "grace@x.io"}.Address())
}

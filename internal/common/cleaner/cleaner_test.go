package cleaner

import (
	"testing"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
)

func TestCleanToText(t *testing.T) {
	c := NewStrictCleaner()

	assert.Equal(t, "Mercy Hospital & Clinics", c.CleanToText("<td><b>Mercy Hospital</b> &amp; Clinics</td>"))
	assert.Equal(t, "line one line two", c.CleanToText("line one<br/>line two"))
	assert.Equal(t, "", c.CleanToText("<script>alert(1)</script>"))
}

func TestStripMarkdown(t *testing.T) {
	c := NewStrictCleaner()

	assert.Equal(t, "Acme Health", c.StripMarkdown("**[Acme Health](https://example.com/a.pdf)**"))
	assert.Equal(t, "WARN Notices", c.StripMarkdown("## WARN Notices"))
}

func TestCleanToText_UsesPolicy(t *testing.T) {
	c := &Cleaner{policy: bluemonday.NewPolicy().AllowElements("b")}

	assert.Equal(t, "<b>Mercy</b> Hospital", c.CleanToText("<b>Mercy</b><i> Hospital</i>"))
}

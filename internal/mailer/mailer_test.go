package mailer

import (
	"strings"
	"testing"
)

func TestInterpolate(t *testing.T) {
	got := interpolate("Hi {name}, see you at {event}.", map[string]string{
		"name":  "Ada",
		"event": "Neon Fridays",
	})
	want := "Hi Ada, see you at Neon Fridays."
	if got != want {
		t.Errorf("interpolate = %q, want %q", got, want)
	}
}

// Every template must render fully from the vars its caller supplies, so a
// missing key never leaks a literal {placeholder} into a guest's inbox.
func TestTemplatesResolveCompletely(t *testing.T) {
	vars := map[string]map[string]string{
		"booking_requested": {
			"name":         "Ada",
			"event":        "Neon Fridays",
			"payment_line": "No deposit is required.",
		},
		"party_guest_removed": {
			"name":  "Grace",
			"event": "Neon Fridays",
		},
	}

	for slug, tpl := range templates {
		v, ok := vars[slug]
		if !ok {
			t.Errorf("no caller var set declared for template %q", slug)
			continue
		}

		for _, text := range []string{tpl.subject, tpl.body} {
			rendered := interpolate(text, v)
			if strings.ContainsAny(rendered, "{}") {
				t.Errorf("template %q left unresolved placeholders: %q", slug, rendered)
			}
		}
	}
}

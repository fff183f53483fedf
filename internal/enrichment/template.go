package enrichment

import "strings"

// RenderTemplate replaces each {{key}} in body with vars[key]. Placeholders
// without a matching key are left as written.
func RenderTemplate(body string, vars map[string]string) string {
	if len(vars) == 0 {
		return body
	}

	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(body)
}

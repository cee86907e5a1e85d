package catalog

import "strings"

// Filter returns backgrounds whose name or id contains every word of query,
// case-insensitively. An empty query returns everything.
func (c *Catalog) Filter(query string) []BackgroundDefinition {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return c.All()
	}
	var out []BackgroundDefinition
	for _, bg := range c.backgrounds {
		hay := strings.ToLower(bg.Name + " " + bg.ID)
		ok := true
		for _, w := range words {
			if !strings.Contains(hay, w) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, bg)
		}
	}
	return out
}

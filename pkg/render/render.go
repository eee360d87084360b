// Package render performs flat {{VAR}} placeholder substitution in template
// bodies. There are no conditionals, loops, or escaping rules: a placeholder
// is replaced verbatim when its key is present in the variable map, and left
// as literal {{VAR}} text when it is not, so missing variables stay visible
// in the generated output.
package render

import "regexp"

var placeholderRe = regexp.MustCompile(`\{\{([A-Za-z0-9_]+)\}\}`)

// Render substitutes every {{KEY}} occurrence in body with variables[KEY].
// Keys absent from variables are preserved untouched.
func Render(body string, variables map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(body, func(match string) string {
		key := placeholderRe.FindStringSubmatch(match)[1]
		if v, ok := variables[key]; ok {
			return v
		}
		return match
	})
}

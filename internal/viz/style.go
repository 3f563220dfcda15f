package viz

import (
	"fmt"
	"strings"
)

// styleRules are the stylesheet rules of a mount, each prefixed with the
// mount's attribute selector so nothing leaks into the host page.
var styleRules = []string{
	"{ font-family: ui-sans-serif, system-ui, sans-serif; }",
	".attention-line { transition: opacity 80ms linear; }",
	".attention-line.strong { stroke: #ffd166; }",
	".attention-line.weak { stroke-dasharray: 2 3; }",
	".token-hit { cursor: pointer; }",
	".token-hovered { font-weight: 700; fill: #ffd166; }",
	".token-selected { font-weight: 700; fill: #ffd166; text-decoration: underline; }",
	".stage-active { fill: #ffd166; font-weight: 700; }",
	".stage-inactive { opacity: 0.45; }",
}

// Stylesheet returns the scoped stylesheet for mountID.
func Stylesheet(mountID string) string {
	scope := fmt.Sprintf(`[data-mount="%s"]`, mountID)
	var b strings.Builder
	for _, rule := range styleRules {
		b.WriteString(scope)
		if !strings.HasPrefix(rule, "{") {
			b.WriteString(" ")
		}
		b.WriteString(rule)
		b.WriteString("\n")
	}
	return b.String()
}

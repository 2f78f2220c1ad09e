package render

import (
	"regexp"
	"strconv"
	"strings"
)

// Rule is a single whole-text substitution step.
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

// Apply runs the substitution over text.
func (r Rule) Apply(text string) string {
	return r.Pattern.ReplaceAllString(text, r.Replacement)
}

// Line-anchored patterns stop at \r as well as \n so that CRLF input keeps its
// carriage return outside the generated element.
var (
	// BlockRules turn whole lines into headings and one-item lists.
	// Longest heading prefix comes first so "###" never renders as h1.
	BlockRules = []Rule{
		{"heading3", regexp.MustCompile(`(?m)^### ([^\r\n]*)`), "<h3>${1}</h3>"},
		{"heading2", regexp.MustCompile(`(?m)^## ([^\r\n]*)`), "<h2>${1}</h2>"},
		{"heading1", regexp.MustCompile(`(?m)^# ([^\r\n]*)`), "<h1>${1}</h1>"},
		{"bullet-star", regexp.MustCompile(`(?m)^\* ([^\r\n]*)`), "<ul><li>${1}</li></ul>"},
		{"bullet-dash", regexp.MustCompile(`(?m)^- ([^\r\n]*)`), "<ul><li>${1}</li></ul>"},
		{"ordered", regexp.MustCompile(`(?m)^(\d+)\. ([^\r\n]*)`), "<ol><li>${2}</li></ol>"},
	}

	// InlineRules run after code fences are held out. Bold must precede the
	// single-asterisk italic rule.
	InlineRules = []Rule{
		{"bold", regexp.MustCompile(`\*\*([^\r\n]*?)\*\*`), "<strong>${1}</strong>"},
		{"italic-star", regexp.MustCompile(`\*([^\r\n]*?)\*`), "<em>${1}</em>"},
		{"italic-underscore", regexp.MustCompile(`_([^\r\n]*?)_`), "<em>${1}</em>"},
		{"link", regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`), `<a href="${2}">${1}</a>`},
		{"line-break", regexp.MustCompile(`\n`), "<br>"},
	}

	// CleanupRules repair the per-line list fragments produced by BlockRules.
	// Each rule is a single non-overlapping pass.
	CleanupRules = []Rule{
		{"merge-ul", regexp.MustCompile(`</ul><br><ul>`), ""},
		{"merge-ol", regexp.MustCompile(`</ol><br><ol>`), ""},
		{"collapse-br", regexp.MustCompile(`<br><br>`), "<br>"},
	}
)

// CodeFenceRule is the name reported by Steps for fenced code handling.
const CodeFenceRule = "code-fence"

var (
	codeFencePattern = regexp.MustCompile("(?s)```(.*?)```")
)

// Renderer converts the lightweight markup dialect into display markup.
// The zero value is not usable; call New.
type Renderer struct {
	block   []Rule
	inline  []Rule
	cleanup []Rule
}

// New returns a Renderer using the package rule lists.
func New() *Renderer {
	return &Renderer{
		block:   BlockRules,
		inline:  InlineRules,
		cleanup: CleanupRules,
	}
}

// Steps returns the rule names in the order Render applies them.
func (r *Renderer) Steps() []string {
	names := make([]string, 0, len(r.block)+len(r.inline)+len(r.cleanup)+1)
	for _, rule := range r.block {
		names = append(names, rule.Name)
	}
	names = append(names, CodeFenceRule)
	for _, rule := range r.inline {
		names = append(names, rule.Name)
	}
	for _, rule := range r.cleanup {
		names = append(names, rule.Name)
	}
	return names
}

// Render converts source to display markup. It never fails and performs no
// escaping of the input.
func (r *Renderer) Render(source string) string {
	if source == "" {
		return ""
	}

	result := applyAll(r.block, source)

	// Fenced bodies are swapped for placeholders so the inline and cleanup
	// rules cannot touch them, then restored verbatim. The marker is chosen
	// so it does not occur in the text; only inserted placeholders are
	// restored.
	marker := placeholderMarker(result)
	var restore []string
	result = codeFencePattern.ReplaceAllStringFunc(result, func(s string) string {
		body := codeFencePattern.FindStringSubmatch(s)[1]
		token := marker + strconv.Itoa(len(restore)/2) + marker
		restore = append(restore, token, "<pre><code>"+body+"</code></pre>")
		return token
	})

	result = applyAll(r.inline, result)
	result = applyAll(r.cleanup, result)

	if len(restore) == 0 {
		return result
	}
	return strings.NewReplacer(restore...).Replace(result)
}

// placeholderMarker returns a NUL-delimited marker absent from text.
func placeholderMarker(text string) string {
	marker := "\x00code\x00"
	for strings.Contains(text, marker) {
		marker += "\x00"
	}
	return marker
}

func applyAll(rules []Rule, text string) string {
	for _, rule := range rules {
		text = rule.Apply(text)
	}
	return text
}

var defaultRenderer = New()

// Render converts source with the default rule set.
func Render(source string) string {
	return defaultRenderer.Render(source)
}

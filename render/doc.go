// Package render converts the small markup dialect produced by the
// completion step into display markup.
//
// The conversion is an ordered list of whole-text substitutions:
//
//   - BlockRules: headings, bullet and numbered list lines (one list per line)
//   - code fences, held out of every later rule and restored verbatim
//   - InlineRules: bold, italic, links, line breaks
//   - CleanupRules: merge adjacent one-item lists, collapse doubled breaks
//
// Output is limited to h1, h2, h3, ul, li, ol, pre, code, strong, em, a and
// br. Input is not escaped; callers render the string as trusted markup.
//
// Example usage:
//
//	html := render.Render("# Title\n- a\n- b")
//	// <h1>Title</h1><br><ul><li>a</li><li>b</li></ul>
package render

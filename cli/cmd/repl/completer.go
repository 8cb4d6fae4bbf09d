package repl

import (
	"context"
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/interp/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{
	"ast", "clear", "edit", "help", "quit", "render", "tokens", "vars",
}

// isWordBoundary reports whether r delimits words for completion: the
// punctuation of the expression language, quotes and whitespace.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'(', ')', '[', ']',
		',', '=', '>',
		'"', '\'', '$', '{', '}':
		return true
	}

	return false
}

// wordBounds returns the word at the cursor and its byte boundaries within
// input. The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the member chain leading up to the word starting at
// wordStart. For "x, page.meta.ti" with the word "ti", the parent path is
// "page.meta". It is "" for top-level words and for chains that contain
// calls or brackets.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimRight(prefix, ".")

	end := len(prefix)
	pos := end

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.TrimSpace(prefix[pos:end])
}

// childCandidates returns the completions for members of parent and the
// value they belong to. The empty parent completes variables and constants.
// Anything else is evaluated as an expression; names that cannot follow a
// dot are dropped.
func childCandidates(ctx context.Context, env Env, parent string) ([]string, any) {
	if parent == "" {
		names := lang.KeysOf(env.Vars)
		names = append(names, slices.Collect(env.constants().Names())...)
		slices.Sort(names)

		return slices.Compact(names), env.Vars
	}

	x, err := lang.Compile(ctx, parent, env.Options...)
	if err != nil {
		return nil, nil
	}

	v, err := x.Evaluate(ctx, env.Vars, env.Options...)
	if err != nil {
		return nil, nil
	}

	return slices.DeleteFunc(lang.KeysOf(v), func(name string) bool {
		return !isIdentifier(name)
	}), v
}

func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case i > 0 && '0' <= r && r <= '9':
		default:
			return false
		}
	}

	return s != ""
}

// isCallable reports whether the named member of owner is invoked with
// call syntax.
func isCallable(owner any, name string) bool {
	if m, ok := owner.(lang.Members); ok {
		_, ok := m.Method(name)

		return ok
	}

	c, ok := lang.AsContainer(owner)
	if !ok {
		return false
	}

	v, ok := c.Lookup(lang.StringKey(name))
	if !ok {
		return false
	}

	_, ok = v.(lang.Func)

	return ok
}

// computeMatches ranks the candidates for the word at the cursor, best
// first. An empty top-level word has no matches so that the hint stays
// visible. An empty word after a dot matches every member.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	owner any,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	var candidates []string

	if m.mode == modeCtrl {
		// Only the command name is completed.
		if word == "" || strings.ContainsAny(input[:wordStart], " \t") {
			return nil, nil, wordStart, wordEnd
		}

		candidates = ctrlCommands
	} else {
		parent := parentPath(input, wordStart)
		candidates, owner = childCandidates(m.ctxFunc(), m.env, parent)

		if word == "" {
			if parent == "" || len(candidates) == 0 {
				return nil, nil, wordStart, wordEnd
			}

			matches = make(fuzzy.Matches, len(candidates))
			for i, c := range candidates {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, owner, wordStart, wordEnd
		}
	}

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), owner, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to
// fit width. The selected candidate is highlighted while tab-cycling.
func renderCandidateBar(
	matches fuzzy.Matches,
	owner any,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx,
			isCallable(owner, match.Str))

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if i > 0 && used+entryWidth+ellipsisWidth > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a candidate with its matched characters
// highlighted. Callable members are shown with a "()" suffix that is not
// part of the completion.
func renderCandidate(match fuzzy.Match, selected, callable bool) string {
	baseStyle := suggestionStyle
	highlightStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	if callable {
		b.WriteString(baseStyle.Render("()"))
	}

	return b.String()
}

// previewWidth is the widest value preview listed by the vars command.
const previewWidth = 48

// preview renders a one-line summary of v.
func preview(v any) string {
	if _, ok := v.(lang.Func); ok {
		return "<func>"
	}

	s := lang.Format(v)
	if m, ok := v.(lang.Members); ok {
		names := m.Names()
		s += " {" + strings.Join(names, ", ") + "}"
	}

	if utf8.RuneCountInString(s) > previewWidth {
		r := []rune(s)
		s = string(r[:previewWidth-3]) + "..."
	}

	return s
}

// sortedVars returns the variable names of vars in sorted order.
func sortedVars(vars lang.Vars) []string {
	return slices.Sorted(maps.Keys(vars))
}

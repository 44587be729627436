// Package parser extracts the identifier, title keywords, filetags, and
// inline id-references from org note content.
package parser

import (
	"regexp"
	"strings"

	"github.com/stallerud/ansuz/internal/idblock"
)

var (
	refRe      = regexp.MustCompile(`\[\[id:([^\]\[]+)\](?:\[([^\]]*)\])?\]`)
	keywordRe  = regexp.MustCompile(`(?i)^#\+([a-z_]+):\s*(.*)$`)
	filetagSep = regexp.MustCompile(`[:\s]+`)
)

// Result holds the output of parsing a note file.
type Result struct {
	ID    string // identifier from the block at offset 0, empty if unlinked
	Title string
	Tags  []string
	Body  string   // content after the identifier block and keyword header
	Refs  []string // deduplicated id-link targets
}

// Parse extracts the identifier block, keyword header, body, and
// id-references from raw note bytes.
func Parse(data []byte) (*Result, error) {
	text := string(data)

	id, _ := idblock.Extract(text)
	rest := idblock.Strip(text)

	keywords, body := splitKeywords(rest)

	return &Result{
		ID:    id,
		Title: keywords["title"],
		Tags:  parseFiletags(keywords["filetags"]),
		Body:  body,
		Refs:  extractRefs(body),
	}, nil
}

// splitKeywords consumes the contiguous run of #+keyword: lines at the
// top of the text and returns them (lower-cased keys) plus the remaining
// body. Blank lines inside the header run are tolerated.
func splitKeywords(text string) (map[string]string, string) {
	keywords := make(map[string]string)
	lines := strings.SplitAfter(text, "\n")
	i := 0
	for ; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\n")
		if strings.TrimSpace(line) == "" && i+1 < len(lines) && strings.HasPrefix(lines[i+1], "#+") {
			continue
		}
		m := keywordRe.FindStringSubmatch(line)
		if m == nil {
			break
		}
		keywords[strings.ToLower(m[1])] = strings.TrimSpace(m[2])
	}
	return keywords, strings.Join(lines[i:], "")
}

// parseFiletags splits an org filetags value (":a:b:" or space separated)
// into individual tags.
func parseFiletags(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, t := range filetagSep.Split(value, -1) {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// extractRefs returns deduplicated id-link targets from the body.
// Both [[id:X][desc]] and bare [[id:X]] forms count.
func extractRefs(body string) []string {
	matches := refRe.FindAllStringSubmatch(body, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		target := strings.TrimSpace(m[1])
		if target == "" {
			continue
		}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}
	return out
}

package extractor

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"github.com/robert-at-pretension-io/notifygen/internal/syntax"
)

var (
	// Pattern: [global] using [static] [alias =] <name>;
	usingPattern = regexp.MustCompile(`^\s*(global\s+)?using\s+(static\s+)?(?:(\w+)\s*=\s*)?([\w.:<>, ]+?)\s*;`)

	// Pattern: namespace / class / struct / record / enum / interface
	typeStartPattern = regexp.MustCompile(`^\s*(?:\[.*\]\s*)*(?:\w+\s+)*(namespace|class|struct|record|interface|enum)\b`)
)

// mayDeclareRecord is a cheap scan run before parsing. Files that never
// mention "struct <marker>" cannot contain a record.
func mayDeclareRecord(source []byte, marker string) bool {
	pattern := regexp.MustCompile(`\bstruct\s+` + regexp.QuoteMeta(marker) + `\b`)
	return pattern.Match(source)
}

// scanUsings collects the leading using directives of a file without
// parsing it. It stops at the first type or namespace declaration.
func scanUsings(source []byte) []syntax.Using {
	var usings []syntax.Using
	scanner := bufio.NewScanner(bytes.NewReader(source))
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if typeStartPattern.MatchString(text) {
			break
		}
		m := usingPattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		usings = append(usings, syntax.Using{
			Global: m[1] != "",
			Static: m[2] != "",
			Alias:  m[3],
			Name:   strings.ReplaceAll(m[4], " ", ""),
			Line:   line,
		})
	}
	return usings
}

package preprocess

import "strings"

// NormalizeLines collapses every whitespace run inside a line to a single space, trims
// the line, and drops lines that end up empty. The input slice is not modified.
func NormalizeLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		out = append(out, strings.Join(fields, " "))
	}
	return out
}

// Prepare runs the full preprocessing chain on raw source lines: the lines are joined,
// comments are stripped, and the result is split again and normalized.
func Prepare(lines []string) ([]string, error) {
	stripped, err := StripComments(strings.Join(lines, "\n"))
	if err != nil {
		return nil, err
	}
	return NormalizeLines(SplitLines(stripped)), nil
}

// SplitLines splits text on line breaks, accepting both \n and \r\n endings.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

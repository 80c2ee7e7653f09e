package keywords

import (
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DefaultPreset names the preset used when nothing else is configured.
const DefaultPreset = "java"

var javaReserved = []string{
	"abstract", "assert", "boolean", "break", "byte", "case", "catch", "char",
	"class", "const", "continue", "default", "do", "double", "else", "enum",
	"extends", "final", "finally", "float", "for", "goto", "if", "implements",
	"import", "instanceof", "int", "interface", "long", "native", "new", "null",
	"package", "private", "protected", "public", "return", "short", "static",
	"strictfp", "super", "switch", "synchronized", "this", "throw", "throws",
	"transient", "try", "void", "volatile", "while",
}

// Contextual keywords only reserved in some positions.
var javaSoft = []string{
	"exports", "module", NonSealed, "open", "opens", "permits",
	"provides", "record", "requires", "sealed", "to", "transitive",
	"uses", "var", "when", "with", "yield",
}

var javaCommon = []string{"String", "java", "javax"}

var cReserved = []string{
	"auto", "break", "case", "char", "const", "continue", "default", "do",
	"double", "else", "enum", "extern", "float", "for", "goto", "if",
	"inline", "int", "long", "register", "restrict", "return", "short", "signed",
	"sizeof", "static", "struct", "switch", "typedef", "union", "unsigned", "void",
	"volatile", "while", "_Alignas", "_Alignof", "_Atomic", "_Bool", "_Complex",
	"_Generic", "_Imaginary", "_Noreturn", "_Static_assert", "_Thread_local",
}

var cppReserved = []string{
	"namespace", "class", "struct", "enum", "union", "typedef", "using",
	"template", "typename", "public", "private", "protected", "static",
	"virtual", "inline", "const", "constexpr", "mutable", "extern", "volatile",
	"friend", "operator", "explicit", "override", "final", "noexcept", "throw",
	"try", "catch", "if", "else", "switch", "case", "default", "for", "while",
	"do", "break", "continue", "return", "goto", "sizeof", "alignof", "decltype",
	"auto", "void", "bool", "char", "short", "int", "long", "float", "double",
	"signed", "unsigned", "true", "false", "nullptr", "this", "new", "delete",
	"static_cast", "dynamic_cast", "const_cast", "reinterpret_cast", "std",
}

var presets = map[string]func() []string{
	"java":          Java,
	"java-reserved": func() []string { return concat(javaReserved) },
	"c":             func() []string { return concat(cReserved) },
	"cpp":           func() []string { return concat(cppReserved) },
}

// Java returns the default word list: reserved words, contextual keywords and the
// names every Java file mentions.
func Java() []string {
	return concat(javaReserved, javaSoft, javaCommon)
}

// PresetNames lists the known presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns a fresh copy of the named word list. Unknown names produce an error
// that suggests the closest known preset.
func Preset(name string) ([]string, error) {
	if name == "" {
		name = DefaultPreset
	}
	build, ok := presets[name]
	if !ok {
		if closest := findClosestMatch(name, PresetNames()); closest != "" {
			return nil, fmt.Errorf("unknown keyword preset %q (did you mean %q?)", name, closest)
		}
		return nil, fmt.Errorf("unknown keyword preset %q (available: %v)", name, PresetNames())
	}
	return build(), nil
}

func findClosestMatch(target string, candidates []string) string {
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

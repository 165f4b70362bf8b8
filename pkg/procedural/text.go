package procedural

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jwebster45206/lotus-events/pkg/dice"
)

// colleagueDescriptor is the one placeholder whose list depends on the player's tier.
const colleagueDescriptor = "colleague_descriptor"

// placeholderLists maps placeholders whose word list has a different name.
var placeholderLists = map[string]string{
	"excuse":            "excuse_library",
	"relationship_type": "relationship_types",
}

var placeholderPattern = regexp.MustCompile(`\{([a-z0-9_]+)\}`)

// AssembleDescription joins one opening, one conflict and one stake, then
// substitutes placeholders.
func AssembleDescription(f NarrativeFragments, vars VariableLibraries, tier int, src dice.Source) string {
	parts := make([]string, 0, 3)
	for _, list := range [][]string{f.Openings, f.Conflicts, f.Stakes} {
		if part, ok := dice.Pick(src, list); ok {
			parts = append(parts, part)
		}
	}
	return SubstituteVariables(strings.Join(parts, " "), vars, tier, src)
}

// AssembleChoiceText picks one of a choice's text fragments, unmodified.
func AssembleChoiceText(fragments []string, src dice.Source) string {
	text, _ := dice.Pick(src, fragments)
	return text
}

// SubstituteVariables replaces each {placeholder} with a value drawn from its
// word list. Every occurrence of a placeholder gets the same value. Lists are
// only drawn from when their placeholder is present, and placeholders with no
// usable list are left as written.
func SubstituteVariables(text string, vars VariableLibraries, tier int, src dice.Source) string {
	for _, name := range placeholders(text) {
		list := vars.listFor(name, tier)
		value, ok := dice.Pick(src, list)
		if !ok {
			continue
		}
		text = strings.ReplaceAll(text, "{"+name+"}", value)
	}
	return text
}

// placeholders returns the distinct placeholder names in order of first appearance.
func placeholders(text string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

func (v VariableLibraries) listFor(name string, tier int) []string {
	if name == colleagueDescriptor {
		if list := v.ColleagueDescriptors[strconv.Itoa(tier)]; len(list) > 0 {
			return list
		}
		return v.ColleagueDescriptors[DefaultDescriptorTier]
	}
	if alias, ok := placeholderLists[name]; ok {
		if list, ok := v.Lists[alias]; ok {
			return list
		}
	}
	return v.Lists[name]
}

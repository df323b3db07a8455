// Package rules loads the declarative anonymization rule set: a mapping from
// attribute to action, plus an optional "default" entry for attributes the
// file does not name.
//
// The on-disk format is the dwv writer-rules JSON object. YAML is accepted too,
// since it is a superset of JSON:
//
//	{
//	  "default":     {"action": "remove"},
//	  "PatientName": {"action": "replace", "value": "Anonymized"},
//	  "x0020000E":   {"action": "generate", "value": "site-salt"},
//	  "00080060":    {"action": "copy"}
//	}
package rules

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/backmassage/dcmtool/internal/dcmtag"
)

// Action is what happens to an attribute when the rule set is applied.
type Action string

const (
	ActionKeep     Action = "keep"     // Copy the attribute unchanged.
	ActionRemove   Action = "remove"   // Drop the attribute.
	ActionClear    Action = "clear"    // Keep the attribute with an empty value.
	ActionReplace  Action = "replace"  // Substitute Rule.Value.
	ActionGenerate Action = "generate" // Derive a replacement from the original value.
)

// DefaultKey names the catch-all entry of a rules file.
const DefaultKey = "default"

// Rule is one entry of a rule set. Value holds the replacement components for
// ActionReplace, or the salt (first component) for ActionGenerate.
type Rule struct {
	Action Action
	Value  []string
}

// Salt returns the generate salt, or "" when none was given.
func (r Rule) Salt() string {
	if len(r.Value) == 0 {
		return ""
	}
	return r.Value[0]
}

// RuleSet is read-only once loaded and may be shared by every work item.
type RuleSet struct {
	byTag      map[dcmtag.Tag]Rule
	def        Rule
	hasDefault bool
}

// New builds a RuleSet directly; def may be nil to fall back to keep.
func New(byTag map[dcmtag.Tag]Rule, def *Rule) *RuleSet {
	rs := &RuleSet{byTag: make(map[dcmtag.Tag]Rule, len(byTag)), def: Rule{Action: ActionKeep}}
	for t, r := range byTag {
		rs.byTag[t] = r
	}
	if def != nil {
		rs.def = *def
		rs.hasDefault = true
	}
	return rs
}

// Load reads and parses a rules file.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	rs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return rs, nil
}

type rawRule struct {
	Action string    `yaml:"action"`
	Value  yaml.Node `yaml:"value"`
}

// Parse decodes a JSON or YAML rules document.
func Parse(data []byte) (*RuleSet, error) {
	var raw map[string]rawRule
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	// Sorted keys so the first reported error does not depend on map order.
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	byTag := make(map[dcmtag.Tag]Rule, len(raw))
	var def *Rule
	for _, key := range keys {
		r, err := buildRule(raw[key])
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", key, err)
		}
		if strings.EqualFold(key, DefaultKey) {
			def = &r
			continue
		}
		t, err := dcmtag.Parse(key)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", key, err)
		}
		if t.IsMeta() {
			return nil, fmt.Errorf("rule %q: file-meta attributes cannot be ruled", key)
		}
		byTag[t] = r
	}
	return New(byTag, def), nil
}

func buildRule(raw rawRule) (Rule, error) {
	action, err := parseAction(raw.Action)
	if err != nil {
		return Rule{}, err
	}
	value, err := nodeStrings(&raw.Value)
	if err != nil {
		return Rule{}, err
	}
	if action == ActionReplace && value == nil {
		return Rule{}, fmt.Errorf("replace needs a value")
	}
	return Rule{Action: action, Value: value}, nil
}

func parseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "keep", "copy":
		return ActionKeep, nil
	case "remove":
		return ActionRemove, nil
	case "clear":
		return ActionClear, nil
	case "replace":
		return ActionReplace, nil
	case "generate":
		return ActionGenerate, nil
	case "":
		return "", fmt.Errorf("missing action")
	default:
		return "", fmt.Errorf("unknown action %q", s)
	}
}

// nodeStrings flattens a scalar or flat sequence value into its components.
// An absent or null value yields nil.
func nodeStrings(n *yaml.Node) ([]string, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil, nil
		}
		return []string{n.Value}, nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(n.Content))
		for _, c := range n.Content {
			if c.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("value list must hold scalars")
			}
			out = append(out, c.Value)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("value must be a scalar or a list")
	}
}

// RuleFor returns the rule governing t: its own entry, else the default entry,
// else keep. File-meta attributes are always kept.
func (rs *RuleSet) RuleFor(t dcmtag.Tag) Rule {
	if t.IsMeta() {
		return Rule{Action: ActionKeep}
	}
	if r, ok := rs.byTag[t]; ok {
		return r
	}
	return rs.def
}

// Len is the number of attribute-specific rules (the default is not counted).
func (rs *RuleSet) Len() int { return len(rs.byTag) }

// HasDefault reports whether the rules file carried a default entry.
func (rs *RuleSet) HasDefault() bool { return rs.hasDefault }

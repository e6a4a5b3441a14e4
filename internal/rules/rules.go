// Package rules is a declarative predicate: a combination fails (or is
// skipped) when it contains every pair named by a rule, and passes
// otherwise.
package rules

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"combitest/internal/catalog"
	"combitest/internal/domain"
	"combitest/internal/execution"
)

// Expectation names the outcome of a matching rule.
type Expectation string

const (
	ExpectFail Expectation = "fail"
	ExpectSkip Expectation = "skip"
)

// Rule matches combinations that contain all of When.
type Rule struct {
	Name   string                  `yaml:"name"`
	When   map[string]domain.Value `yaml:"when"`
	Expect Expectation             `yaml:"expect"`
}

// Matches reports whether c contains every pair of the rule.
func (r Rule) Matches(c domain.Combination) bool {
	for dim, v := range r.When {
		if !c.Has(dim, v) {
			return false
		}
	}
	return true
}

// Set evaluates rules in order; the first match decides.
type Set struct {
	rules []Rule
}

// NewSet validates rules against the catalog.
func NewSet(cat *catalog.Catalog, rules []Rule) (*Set, error) {
	rules = append([]Rule(nil), rules...)
	for i, r := range rules {
		if r.Name == "" {
			r.Name = fmt.Sprintf("rule %d", i+1)
			rules[i].Name = r.Name
		}
		if len(r.When) == 0 {
			return nil, fmt.Errorf("%s: empty when clause", r.Name)
		}
		switch r.Expect {
		case "":
			rules[i].Expect = ExpectFail
		case ExpectFail, ExpectSkip:
		default:
			return nil, fmt.Errorf("%s: unknown expectation %q", r.Name, r.Expect)
		}
		if cat == nil {
			continue
		}
		if !cat.Contains(domain.NewCombination(r.When)) {
			return nil, fmt.Errorf("%s: references a dimension or value missing from the catalog", r.Name)
		}
	}
	return &Set{rules: rules}, nil
}

// Decode reads the rules node of a catalog file.
func Decode(cat *catalog.Catalog, node *yaml.Node) (*Set, error) {
	var rules []Rule
	if node != nil && node.Kind != 0 {
		if err := node.Decode(&rules); err != nil {
			return nil, fmt.Errorf("decode rules: %w", err)
		}
	}
	return NewSet(cat, rules)
}

// Rules returns the rules in evaluation order.
func (s *Set) Rules() []Rule {
	return append([]Rule(nil), s.rules...)
}

// Match returns the first rule matching c.
func (s *Set) Match(c domain.Combination) (Rule, bool) {
	for _, r := range s.rules {
		if r.Matches(c) {
			return r, true
		}
	}
	return Rule{}, false
}

// Evaluate implements execution.Predicate.
func (s *Set) Evaluate(_ context.Context, c domain.Combination) (execution.Outcome, error) {
	r, ok := s.Match(c)
	if !ok {
		return execution.Pass, nil
	}
	if r.Expect == ExpectSkip {
		return execution.Skip, execution.Reason(r.Name)
	}
	return execution.Fail, execution.Reason(r.Name)
}

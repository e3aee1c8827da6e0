package executor

import (
	language "github.com/hanpama/gqlhello/internal/language"
	schema "github.com/hanpama/gqlhello/internal/schema"
)

// fieldGroup is every selection under one response key, in query order.
type fieldGroup struct {
	key    string
	fields []*language.Field
}

type fieldCollector struct {
	state   *executionState
	object  *schema.Type
	groups  []fieldGroup
	byKey   map[string]int
	visited map[string]bool
}

// collectFields merges a selection set for object into groups keyed by
// response name. Fragments are followed once each and kept only when
// their type condition names object.
func collectFields(state *executionState, object *schema.Type, set language.SelectionSet) []fieldGroup {
	c := &fieldCollector{
		state:   state,
		object:  object,
		byKey:   make(map[string]int),
		visited: make(map[string]bool),
	}
	c.walk(set)
	return c.groups
}

func (c *fieldCollector) walk(set language.SelectionSet) {
	for _, sel := range set {
		switch sel := sel.(type) {
		case *language.Field:
			if c.included(sel.Directives) {
				c.add(sel)
			}
		case *language.InlineFragment:
			if c.included(sel.Directives) && c.applies(sel.TypeCondition) {
				c.walk(sel.SelectionSet)
			}
		case *language.FragmentSpread:
			if !c.included(sel.Directives) || c.visited[sel.Name] {
				continue
			}
			c.visited[sel.Name] = true
			def := c.state.document.Fragments.ForName(sel.Name)
			if def != nil && c.applies(def.TypeCondition) && c.included(def.Directives) {
				c.walk(def.SelectionSet)
			}
		}
	}
}

func (c *fieldCollector) add(f *language.Field) {
	key := f.Alias
	if key == "" {
		key = f.Name
	}
	if i, ok := c.byKey[key]; ok {
		c.groups[i].fields = append(c.groups[i].fields, f)
		return
	}
	c.byKey[key] = len(c.groups)
	c.groups = append(c.groups, fieldGroup{key: key, fields: []*language.Field{f}})
}

// applies reports whether a type condition selects the collector's object.
// Only object types exist, so conditions compare by name.
func (c *fieldCollector) applies(condition string) bool {
	return condition == "" || condition == c.object.Name
}

// included evaluates @skip and @include. A non-boolean "if" is ignored.
func (c *fieldCollector) included(directives language.DirectiveList) bool {
	if skip, ok := c.directiveIf(directives, "skip"); ok && skip {
		return false
	}
	if include, ok := c.directiveIf(directives, "include"); ok && !include {
		return false
	}
	return true
}

func (c *fieldCollector) directiveIf(directives language.DirectiveList, name string) (value, ok bool) {
	d := directives.ForName(name)
	if d == nil {
		return false, false
	}
	arg := d.Arguments.ForName("if")
	if arg == nil {
		return false, false
	}
	value, ok = valueFromASTWithVars(arg.Value, c.state.variableValues).(bool)
	return value, ok
}

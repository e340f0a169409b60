package entity

import (
	"fmt"
	"strings"
)

// TechStack is the target source format of a generation run.
type TechStack string

const (
	StackHTML   TechStack = "html"
	StackReact  TechStack = "react"
	StackNextJS TechStack = "nextjs"
	StackVue    TechStack = "vue"
	StackSvelte TechStack = "svelte"
)

// Stacks lists every supported stack in declaration order.
var Stacks = []TechStack{StackHTML, StackReact, StackNextJS, StackVue, StackSvelte}

func ParseTechStack(s string) (TechStack, error) {
	st := TechStack(strings.ToLower(strings.TrimSpace(s)))
	if st == "next" {
		st = StackNextJS
	}
	if !st.Valid() {
		return "", fmt.Errorf("unknown tech stack %q", s)
	}
	return st, nil
}

func (s TechStack) Valid() bool {
	for _, known := range Stacks {
		if s == known {
			return true
		}
	}
	return false
}

// IsMarkup reports whether the stack is the single-file document format.
func (s TechStack) IsMarkup() bool { return s == StackHTML }

// UsesJSX reports whether the stack's source is a JSX component module.
func (s TechStack) UsesJSX() bool { return s == StackReact || s == StackNextJS }

// UsesTemplate reports whether the stack's source is a script block plus a markup block.
func (s TechStack) UsesTemplate() bool { return s == StackVue || s == StackSvelte }

func (s TechStack) String() string { return string(s) }

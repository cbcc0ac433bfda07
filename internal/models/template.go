package models

import "fmt"

// TemplateKind selects the one-pager analysis variant
type TemplateKind string

const (
	TemplateGrowth TemplateKind = "growth"
	TemplateValue  TemplateKind = "value"
	TemplateCore   TemplateKind = "core"
)

// ParseTemplateKind validates a template kind token
func ParseTemplateKind(s string) (TemplateKind, error) {
	switch TemplateKind(s) {
	case TemplateGrowth, TemplateValue, TemplateCore:
		return TemplateKind(s), nil
	}
	return "", fmt.Errorf("unknown template kind %q (expected growth, value or core)", s)
}

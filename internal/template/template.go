// Package template adapts a Handlebars-compatible renderer to centy's two
// fixed context schemas, backed by github.com/aymerick/raymond.
package template

import (
	"os"
	"path/filepath"

	"github.com/aymerick/raymond"

	"centy/internal/centyerr"
	"centy/internal/hashutil"
)

// Kind distinguishes an issue template from a doc template.
type Kind string

const (
	KindIssue Kind = "issue"
	KindDoc   Kind = "doc"
)

func dirFor(kind Kind) string {
	if kind == KindDoc {
		return "docs"
	}
	return "issues"
}

// LoadTemplate reads .centy/templates/<kind>s/<name>.md, failing with
// centyerr.TemplateNotFound if it is absent.
func LoadTemplate(projectPath string, kind Kind, name string) (string, error) {
	centyDir := hashutil.CentyDir(projectPath)
	path := filepath.Join(centyDir, "templates", dirFor(kind), name+".md")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", centyerr.TemplateNotFound
		}
		return "", err
	}
	return string(data), nil
}

// IssueContext is the fixed context schema for issue templates.
type IssueContext struct {
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Priority      int               `json:"priority"`
	PriorityLabel string            `json:"priorityLabel"`
	Status        string            `json:"status"`
	CreatedAt     string            `json:"createdAt"`
	CustomFields  map[string]string `json:"customFields"`
}

// DocContext is the fixed context schema for doc templates.
type DocContext struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Slug      string `json:"slug"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Render expands tmpl against ctx using Handlebars syntax: variable
// substitution, {{#each}}, and {{#if}}. ctx is typically an IssueContext
// or DocContext and is passed to raymond unchanged; {{@key}} resolves
// while iterating a map field such as CustomFields.
func Render(tmpl string, ctx interface{}) (string, error) {
	out, err := raymond.Render(tmpl, ctx)
	if err != nil {
		return "", centyerr.TemplateRenderError
	}
	return out, nil
}

// Package docstore implements doc CRUD over .centy/docs/<slug>.md files
// with YAML frontmatter.
package docstore

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"centy/internal/centyerr"
	"centy/internal/fsutil"
	"centy/internal/hashutil"
	"centy/internal/manifest"
)

// Doc is the external view of one doc.
type Doc struct {
	Slug      string
	Title     string
	Content   string
	CreatedAt string
	UpdatedAt string
}

// CreateOptions carries Create's inputs.
type CreateOptions struct {
	Title   string
	Slug    string // optional; derived from Title if empty
	Content string
}

// UpdateOptions carries Update's inputs. NewSlug, if set, renames the doc.
type UpdateOptions struct {
	Title   *string
	Content *string
	NewSlug *string
}

var slugSeparators = regexp.MustCompile(`[\s_-]+`)
var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)
var slugValid = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Slugify lowercases s, keeps [a-z0-9], treats space/underscore/hyphen as a
// separator, drops empty segments, and rejoins with "-".
func Slugify(s string) string {
	lower := strings.ToLower(s)
	parts := slugSeparators.Split(lower, -1)
	var kept []string
	for _, p := range parts {
		cleaned := slugInvalidChars.ReplaceAllString(p, "")
		if cleaned != "" {
			kept = append(kept, cleaned)
		}
	}
	return strings.Join(kept, "-")
}

// ValidateSlug reports whether s is non-empty, contains only [a-z0-9-],
// and has no leading/trailing/doubled hyphen.
func ValidateSlug(s string) bool {
	return s != "" && slugValid.MatchString(s)
}

func docsDir(projectPath string) string {
	return filepath.Join(hashutil.CentyDir(projectPath), "docs")
}

func docPath(projectPath, slug string) string {
	return filepath.Join(docsDir(projectPath), slug+".md")
}

func docRelPath(slug string) string {
	return "docs/" + slug + ".md"
}

// Create writes a new doc with frontmatter + heading + body.
func Create(projectPath string, opts CreateOptions) (*Doc, error) {
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		return nil, fmt.Errorf("title: %w", centyerr.ValidationError)
	}

	slug := opts.Slug
	if slug == "" {
		slug = Slugify(title)
	} else if !ValidateSlug(slug) {
		return nil, centyerr.InvalidSlug
	}

	centyDir := hashutil.CentyDir(projectPath)
	m, err := manifest.Load(centyDir)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, centyerr.NotInitialized
	}

	if _, err := os.Stat(docPath(projectPath, slug)); err == nil {
		return nil, centyerr.SlugAlreadyExists
	}

	now := hashutil.NowISO8601()
	doc := &Doc{Slug: slug, Title: title, Content: opts.Content, CreatedAt: now, UpdatedAt: now}

	if err := writeDoc(projectPath, doc, m); err != nil {
		return nil, err
	}
	if err := manifest.Save(centyDir, m); err != nil {
		return nil, err
	}
	return doc, nil
}

func writeDoc(projectPath string, doc *Doc, m *manifest.Manifest) error {
	if err := os.MkdirAll(docsDir(projectPath), 0755); err != nil {
		return err
	}
	rendered := render(doc)
	if err := os.WriteFile(docPath(projectPath, doc.Slug), []byte(rendered), 0644); err != nil {
		return err
	}
	manifest.Upsert(m, manifest.NewManagedFile(docRelPath(doc.Slug), manifest.TypeFile, []byte(rendered), ""))
	return nil
}

// render produces the on-disk form: frontmatter + "# title" + body.
func render(doc *Doc) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: \"" + escapeYAML(doc.Title) + "\"\n")
	b.WriteString("createdAt: \"" + escapeYAML(doc.CreatedAt) + "\"\n")
	b.WriteString("updatedAt: \"" + escapeYAML(doc.UpdatedAt) + "\"\n")
	b.WriteString("---\n\n")
	b.WriteString("# " + doc.Title + "\n")
	if doc.Content != "" {
		b.WriteString("\n" + doc.Content)
	}
	return b.String()
}

// escapeYAML escapes backslash first, then double-quote, so a literal
// backslash is never doubled a second time by the quote escape.
func escapeYAML(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

// fmt.Sprintf with %q would re-escape; render builds the quoted string by
// hand instead, so unescapeYAML below only needs to reverse our own rules.
func unescapeYAML(s string) string {
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s
}

// Read loads and parses a doc by slug.
func Read(projectPath, slug string) (*Doc, error) {
	data, err := os.ReadFile(docPath(projectPath, slug))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, centyerr.NotFound
		}
		return nil, err
	}
	return parse(slug, string(data))
}

// parse accepts both frontmattered docs (between the first two "---"
// lines) and plain docs (title from the first "# " heading), stripping a
// redundant title heading when present alongside frontmatter.
func parse(slug, content string) (*Doc, error) {
	doc := &Doc{Slug: slug}

	body := content
	if strings.HasPrefix(content, "---\n") {
		rest := content[4:]
		end := strings.Index(rest, "\n---\n")
		if end == -1 {
			return nil, fmt.Errorf("frontmatter: %w", centyerr.FormatError)
		}
		frontmatter := rest[:end]
		body = strings.TrimPrefix(rest[end+len("\n---\n"):], "\n")

		for _, line := range strings.Split(frontmatter, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			key, val, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			key = strings.TrimSpace(key)
			val = strings.TrimSpace(val)
			val = strings.Trim(val, `"`)
			val = unescapeYAML(val)
			switch key {
			case "title":
				doc.Title = val
			case "createdAt":
				doc.CreatedAt = val
			case "updatedAt":
				doc.UpdatedAt = val
			}
		}
	}

	lines := strings.SplitN(body, "\n", 2)
	heading := strings.TrimSpace(lines[0])
	remainder := ""
	if len(lines) > 1 {
		remainder = lines[1]
	}

	if strings.HasPrefix(heading, "# ") {
		headingTitle := strings.TrimPrefix(heading, "# ")
		if doc.Title == "" {
			doc.Title = headingTitle
		}
		// Strip the redundant heading regardless: body is content only.
		body = strings.TrimPrefix(remainder, "\n")
	}

	doc.Content = body
	return doc, nil
}

// List enumerates docs under .centy/docs/ by file name.
func List(projectPath string) ([]Doc, error) {
	entries, err := os.ReadDir(docsDir(projectPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var docs []Doc
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		slug := strings.TrimSuffix(e.Name(), ".md")
		doc, err := Read(projectPath, slug)
		if err != nil {
			continue
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

// Update merges opts into the existing doc. A non-nil NewSlug renames the
// file, failing if the target slug already exists.
func Update(projectPath, slug string, opts UpdateOptions) (*Doc, error) {
	lock, err := fsutil.Flock(docPath(projectPath, slug))
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	doc, err := Read(projectPath, slug)
	if err != nil {
		return nil, err
	}

	centyDir := hashutil.CentyDir(projectPath)
	m, err := manifest.Load(centyDir)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, centyerr.NotInitialized
	}

	if opts.Title != nil {
		doc.Title = *opts.Title
	}
	if opts.Content != nil {
		doc.Content = *opts.Content
	}
	doc.UpdatedAt = hashutil.NowISO8601()

	if opts.NewSlug != nil && *opts.NewSlug != doc.Slug {
		newSlug := *opts.NewSlug
		if !ValidateSlug(newSlug) {
			return nil, centyerr.InvalidSlug
		}
		if _, err := os.Stat(docPath(projectPath, newSlug)); err == nil {
			return nil, centyerr.SlugAlreadyExists
		}
		oldSlug := doc.Slug
		if err := os.Remove(docPath(projectPath, oldSlug)); err != nil {
			return nil, err
		}
		manifest.RemovePrefix(m, docRelPath(oldSlug))
		doc.Slug = newSlug
	}

	if err := writeDoc(projectPath, doc, m); err != nil {
		return nil, err
	}
	if err := manifest.Save(centyDir, m); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes a doc file and strips its manifest entry.
func Delete(projectPath, slug string) error {
	path := docPath(projectPath, slug)
	if _, err := os.Stat(path); err != nil {
		return centyerr.NotFound
	}
	if err := os.Remove(path); err != nil {
		return err
	}

	centyDir := hashutil.CentyDir(projectPath)
	m, err := manifest.Load(centyDir)
	if err != nil {
		return err
	}
	if m == nil {
		return nil
	}
	manifest.RemovePrefix(m, docRelPath(slug))
	return manifest.Save(centyDir, m)
}

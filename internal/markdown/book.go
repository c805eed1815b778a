package markdown

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// PageBreak separates pages in a book source file.
const PageBreak = "<!-- pagebreak -->"

var (
	ErrMissingTitle = errors.New("book has no title")
	ErrNoPages      = errors.New("book has no pages")
)

// BookMeta is the front matter of a book source file.
type BookMeta struct {
	Title           string   `yaml:"title"`
	Author          string   `yaml:"author"`
	AuthorBio       string   `yaml:"author_bio"`
	Genre           string   `yaml:"genre"`
	Description     string   `yaml:"description"`
	ISBN            string   `yaml:"isbn"`
	Publisher       string   `yaml:"publisher"`
	PublicationDate string   `yaml:"publication_date"`
	Language        string   `yaml:"language"`
	PriceCents      int      `yaml:"price_cents"`
	Featured        bool     `yaml:"featured"`
	Premium         bool     `yaml:"premium"`
	Tags            []string `yaml:"tags"`
}

// BookSource is a parsed book: its metadata and raw markdown pages in order.
type BookSource struct {
	Meta  BookMeta
	Pages []string
}

// ParseBook reads a book file: YAML front matter followed by markdown pages
// separated by PageBreak lines. Empty pages are skipped.
func (p *Parser) ParseBook(source []byte) (*BookSource, error) {
	var meta BookMeta
	if _, err := p.ParseWithFrontmatter(source, &meta); err != nil {
		return nil, fmt.Errorf("parse front matter: %w", err)
	}
	meta.Title = strings.TrimSpace(meta.Title)
	if meta.Title == "" {
		return nil, ErrMissingTitle
	}
	if meta.Language == "" {
		meta.Language = "en"
	}

	pages := splitPages(stripFrontmatter(source))
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	return &BookSource{Meta: meta, Pages: pages}, nil
}

// stripFrontmatter returns source without a leading "---" delimited block.
func stripFrontmatter(source []byte) []byte {
	trimmed := bytes.TrimPrefix(source, []byte("\ufeff"))
	if !bytes.HasPrefix(trimmed, []byte("---")) {
		return source
	}

	scanner := bufio.NewScanner(bytes.NewReader(trimmed))
	scanner.Buffer(make([]byte, 0, 64*1024), len(trimmed)+1)
	offset := 0
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		offset += len(line) + 1
		if first {
			first = false
			continue
		}
		if strings.TrimSpace(line) == "---" {
			if offset > len(trimmed) {
				return nil
			}
			return trimmed[offset:]
		}
	}
	return source
}

func splitPages(body []byte) []string {
	var pages []string
	var current strings.Builder

	flush := func() {
		if page := strings.TrimSpace(current.String()); page != "" {
			pages = append(pages, page)
		}
		current.Reset()
	}

	for _, line := range strings.Split(string(body), "\n") {
		if strings.TrimSpace(line) == PageBreak {
			flush()
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	flush()

	return pages
}

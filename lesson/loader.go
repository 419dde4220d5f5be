package lesson

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/ByteMirror/gitcoach/log"
)

//go:embed lessons/*.md
var builtinFS embed.FS

type lessonFrontmatter struct {
	ID      string `yaml:"id"`
	Title   string `yaml:"title"`
	Summary string `yaml:"summary"`
	Order   int    `yaml:"order"`
	Setup   Setup  `yaml:"setup"`
	Steps   []Step `yaml:"steps"`
}

// Parse reads a lesson .md file with YAML frontmatter. The ID falls back to
// the file name without extension.
func Parse(data []byte, source string) (Lesson, error) {
	const sep = "---"
	s := strings.ReplaceAll(string(data), "\r\n", "\n")

	if !strings.HasPrefix(s, sep) {
		return Lesson{}, fmt.Errorf("missing frontmatter")
	}
	rest := s[len(sep):]
	idx := strings.Index(rest, "\n"+sep)
	if idx < 0 {
		return Lesson{}, fmt.Errorf("unclosed frontmatter")
	}
	frontmatterRaw := rest[:idx]
	body := rest[idx+len("\n"+sep):]
	body = strings.TrimPrefix(body, "\n")

	var fm lessonFrontmatter
	if err := yaml.NewDecoder(bytes.NewBufferString(frontmatterRaw)).Decode(&fm); err != nil && !errors.Is(err, io.EOF) {
		return Lesson{}, fmt.Errorf("parse frontmatter: %w", err)
	}

	id := fm.ID
	if id == "" {
		id = strings.TrimSuffix(path.Base(filepath.ToSlash(source)), ".md")
	}
	title := fm.Title
	if title == "" {
		title = id
	}

	l := Lesson{
		ID:      id,
		Title:   title,
		Summary: fm.Summary,
		Order:   fm.Order,
		Body:    strings.TrimSpace(body),
		Setup:   fm.Setup,
		Steps:   fm.Steps,
		Source:  source,
	}
	if err := l.Validate(); err != nil {
		return Lesson{}, err
	}
	return l, nil
}

// Builtin returns the lessons compiled into the binary.
func Builtin() ([]Lesson, error) {
	return loadFS(builtinFS, "lessons", "builtin:")
}

// LoadDir loads every *.md lesson in dir. A missing dir yields no lessons.
// Malformed files are skipped with a warning.
func LoadDir(dir string) ([]Lesson, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	return loadFS(os.DirFS(dir), ".", dir+string(filepath.Separator))
}

func loadFS(fsys fs.FS, dir, sourcePrefix string) ([]Lesson, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read lessons dir: %w", err)
	}

	var lessons []Lesson
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			log.WarningLog.Printf("lessons: read %s: %v", e.Name(), err)
			continue
		}
		l, err := Parse(data, sourcePrefix+e.Name())
		if err != nil {
			log.WarningLog.Printf("lessons: skipping %s: %v", e.Name(), err)
			continue
		}
		lessons = append(lessons, l)
	}
	return lessons, nil
}

// Catalog is the set of available lessons keyed by ID. It is safe for
// concurrent use so the watcher can swap contents under a running UI.
type Catalog struct {
	mu      sync.RWMutex
	lessons map[string]Lesson
}

// NewCatalog merges lesson sets in order; a later lesson replaces an earlier
// one with the same ID.
func NewCatalog(sets ...[]Lesson) *Catalog {
	c := &Catalog{}
	c.replace(sets...)
	return c
}

func (c *Catalog) replace(sets ...[]Lesson) {
	lessons := map[string]Lesson{}
	for _, set := range sets {
		for _, l := range set {
			lessons[l.ID] = l
		}
	}
	c.mu.Lock()
	c.lessons = lessons
	c.mu.Unlock()
}

// LoadCatalog combines the built-in lessons with those in userDir.
func LoadCatalog(userDir string) (*Catalog, error) {
	c := &Catalog{}
	if err := c.Reload(userDir); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the built-in and user lessons.
func (c *Catalog) Reload(userDir string) error {
	builtin, err := Builtin()
	if err != nil {
		return fmt.Errorf("load builtin lessons: %w", err)
	}
	var user []Lesson
	if userDir != "" {
		user, err = LoadDir(userDir)
		if err != nil {
			return fmt.Errorf("load lessons from %s: %w", userDir, err)
		}
	}
	c.replace(builtin, user)
	return nil
}

// Get returns the lesson with id.
func (c *Catalog) Get(id string) (Lesson, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.lessons[id]
	if !ok {
		return Lesson{}, fmt.Errorf("%w: %s", ErrLessonNotFound, id)
	}
	return l, nil
}

// List returns all lessons sorted by Order, then ID.
func (c *Catalog) List() []Lesson {
	c.mu.RLock()
	list := lo.Values(c.lessons)
	c.mu.RUnlock()

	slices.SortFunc(list, func(a, b Lesson) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return strings.Compare(a.ID, b.ID)
	})
	return list
}

// Len returns the number of lessons.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lessons)
}

// IDs returns lesson IDs in List order.
func (c *Catalog) IDs() []string {
	return lo.Map(c.List(), func(l Lesson, _ int) string { return l.ID })
}

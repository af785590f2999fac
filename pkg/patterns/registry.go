package patterns

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/saranrapjs/quarterly-statements/pkg/filing"
	"github.com/saranrapjs/quarterly-statements/pkg/numeric"
)

var (
	ErrUnknownCompany = errors.New("unknown company")
	ErrNoDialect      = errors.New("no dialect covers the filing")
)

//go:embed defaults/*.yaml
var defaults embed.FS

// Registry indexes company configurations by upper-cased company id.
type Registry struct {
	companies map[string]*Company
}

// Defaults loads the configurations shipped with the package.
func Defaults() (*Registry, error) {
	sub, err := fs.Sub(defaults, "defaults")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// LoadDir loads every *.yaml or *.yml file in dir.
func LoadDir(dir string) (*Registry, error) {
	return Load(os.DirFS(dir))
}

// Load reads and validates every *.yaml or *.yml file at the root of fsys.
func Load(fsys fs.FS) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading pattern sets: %w", err)
	}
	r := &Registry{companies: map[string]*Company{}}
	for _, e := range entries {
		ext := path.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		b, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		c, err := Parse(b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		if err := r.Add(c); err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
	}
	return r, nil
}

// Parse decodes and validates one company configuration. Unknown fields are
// rejected so that a misspelled key cannot silently disable a rule.
func Parse(b []byte) (*Company, error) {
	c := &Company{Scale: numeric.Millions}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return nil, fmt.Errorf("decoding pattern set: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Add registers a validated company configuration.
func (r *Registry) Add(c *Company) error {
	id := strings.ToUpper(c.Company)
	if _, ok := r.companies[id]; ok {
		return fmt.Errorf("company %q configured twice", c.Company)
	}
	r.companies[id] = c
	return nil
}

// Company returns the configuration for a company id.
func (r *Registry) Company(id string) (*Company, error) {
	c, ok := r.companies[strings.ToUpper(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompany, id)
	}
	return c, nil
}

// Companies returns the configured company ids, sorted.
func (r *Registry) Companies() []string {
	ids := make([]string, 0, len(r.companies))
	for id := range r.companies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolve picks the dialect for a filing unit: the first declared dialect
// covering its fiscal year and document kind.
func (r *Registry) Resolve(u filing.Unit) (*Dialect, error) {
	c, err := r.Company(u.Company)
	if err != nil {
		return nil, err
	}
	for _, d := range c.Dialects {
		if d.Covers(u.FiscalYear, u.Kind) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoDialect, u)
}

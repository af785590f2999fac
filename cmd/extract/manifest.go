package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/saranrapjs/quarterly-statements/pkg/filing"
)

// Manifest lists the documents of one extraction run
type Manifest struct {
	Documents []Entry `yaml:"documents" validate:"required,min=1,dive"`
}

// Entry is one document on disk. Relative paths resolve against the
// manifest's directory.
type Entry struct {
	Company    string `yaml:"company" validate:"required"`
	FiscalYear int    `yaml:"fiscal_year" validate:"required,min=1900,max=2999"`
	Quarter    int    `yaml:"quarter" validate:"min=0,max=4"`
	Kind       string `yaml:"kind" validate:"required"`
	Path       string `yaml:"path" validate:"required"`

	kind filing.Kind
}

var validate = validator.New()

func loadManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if err := validate.Struct(&m); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range m.Documents {
		e := &m.Documents[i]
		if e.kind, err = filing.ParseKind(e.Kind); err != nil {
			return nil, fmt.Errorf("invalid manifest %s: document %d: %w", path, i, err)
		}
		if !filepath.IsAbs(e.Path) {
			e.Path = filepath.Join(dir, e.Path)
		}
	}
	return &m, nil
}

func (e Entry) Unit() filing.Unit {
	return filing.Unit{Company: e.Company, FiscalYear: e.FiscalYear, Quarter: e.Quarter, Kind: e.kind}
}

// Document reads the entry's bytes from disk.
func (e Entry) Document() (filing.Document, error) {
	b, err := os.ReadFile(e.Path)
	if err != nil {
		return filing.Document{}, fmt.Errorf("failed to read %s: %w", e.Path, err)
	}
	return filing.Document{Unit: e.Unit(), Source: e.Path, Bytes: b}, nil
}

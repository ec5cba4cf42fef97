package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"edadash/models"
	"edadash/utils"
)

var ErrMissingFile = errors.New("input file not found")

// Source hands out the raw bytes of input files.
type Source interface {
	Has(kind models.InputKind) bool
	Open(kind models.InputKind) (io.ReadCloser, error)
}

// DirSource serves inputs from fixed file names under Dir.
type DirSource struct {
	Dir string
}

func (d DirSource) Path(kind models.InputKind) string {
	return filepath.Join(d.Dir, kind.FileName())
}

func (d DirSource) Has(kind models.InputKind) bool {
	st, err := os.Stat(d.Path(kind))
	return err == nil && !st.IsDir()
}

func (d DirSource) Open(kind models.InputKind) (io.ReadCloser, error) {
	f, err := os.Open(d.Path(kind))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", d.Path(kind), ErrMissingFile)
	}
	return f, err
}

// DevModeAvailable reports whether all four required files exist under dir.
func DevModeAvailable(dir string) bool {
	src := DirSource{Dir: dir}
	for _, k := range models.RequiredKinds {
		if !src.Has(k) {
			return false
		}
	}
	return true
}

// Plan says where each input of one analysis run comes from.
type Plan struct {
	Mode    string
	Variant string
	Sources map[models.InputKind]Source
	Missing []models.InputKind
}

// Ready is true when nothing the variant needs is missing.
func (p Plan) Ready() bool {
	return len(p.Missing) == 0
}

// Resolve builds the plan for mode and variant.
//
// Dev mode takes the four required tables from devDir unconditionally; a
// missing file there fails at Load, not here. The submission comes from
// devDir when present, else from uploads. Normal mode takes every input from
// uploads and lists whatever is absent in Missing.
func Resolve(mode, variant, devDir string, uploads Source) Plan {
	p := Plan{Mode: mode, Variant: variant, Sources: make(map[models.InputKind]Source)}
	needed := append([]models.InputKind{}, models.RequiredKinds...)
	if variant == utils.VariantSubmission {
		needed = append(needed, models.KindSubmission)
	}

	dir := DirSource{Dir: devDir}
	for _, k := range needed {
		switch {
		case mode == utils.ModeDev && k != models.KindSubmission:
			p.Sources[k] = dir
		case mode == utils.ModeDev && dir.Has(k):
			p.Sources[k] = dir
		case uploads != nil && uploads.Has(k):
			p.Sources[k] = uploads
		default:
			p.Missing = append(p.Missing, k)
		}
	}
	return p
}

// Load reads and parses every planned input. It refuses to run on an
// incomplete plan.
func (p Plan) Load(encoding string) (models.Tables, error) {
	var t models.Tables
	if !p.Ready() {
		return t, fmt.Errorf("%w: %v", ErrMissingFile, p.Missing)
	}

	var err error
	if err = p.read(models.KindSalesHistory, func(r io.Reader) error {
		t.Sales, err = ReadSalesHistory(r, encoding)
		return err
	}); err != nil {
		return t, err
	}
	if err = p.read(models.KindItemCategories, func(r io.Reader) error {
		t.ItemCategories, err = ReadItemCategories(r, encoding)
		return err
	}); err != nil {
		return t, err
	}
	if err = p.read(models.KindCategoryNames, func(r io.Reader) error {
		t.CategoryNames, err = ReadCategoryNames(r, encoding)
		return err
	}); err != nil {
		return t, err
	}
	if err = p.read(models.KindTest, func(r io.Reader) error {
		t.Test, err = ReadTest(r, encoding)
		return err
	}); err != nil {
		return t, err
	}
	if _, ok := p.Sources[models.KindSubmission]; ok {
		if err = p.read(models.KindSubmission, func(r io.Reader) error {
			t.Submission, err = ReadSubmission(r, encoding)
			return err
		}); err != nil {
			return t, err
		}
	}
	return t, nil
}

func (p Plan) read(kind models.InputKind, parse func(io.Reader) error) error {
	src, ok := p.Sources[kind]
	if !ok {
		return fmt.Errorf("%s: %w", kind, ErrMissingFile)
	}
	rc, err := src.Open(kind)
	if err != nil {
		return err
	}
	defer rc.Close()
	return parse(rc)
}

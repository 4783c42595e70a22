// Package bandfile loads price bands from HCL, YAML or JSON files.
//
// HCL layout:
//
//	default {
//	  band {
//	    from       = 1
//	    to         = 200
//	    unit_price = "0.10"
//	  }
//	}
//
//	subject "fb908c44-7af1-4894-a0a5-860338468dfa" {
//	  band {
//	    from       = 1
//	    unit_price = "0.05"
//	  }
//	}
//
// YAML and JSON use the same shape: a "default" list of bands and a
// "subjects" map from subject id to a list of bands. An omitted or zero
// "to" marks the open-ended top band. Unit prices are decimal strings.
package bandfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"sms-cost/core/pricing"
	"sms-cost/core/types"
	apperrors "sms-cost/internal/errors"
)

// Format is a band file format
type Format string

const (
	FormatHCL  Format = "hcl"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from a file extension
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return FormatHCL, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", apperrors.Newf(apperrors.TypeInput, "unsupported band file extension: %s", path)
	}
}

type bandSpec struct {
	From      int64  `hcl:"from" json:"from" yaml:"from"`
	To        int64  `hcl:"to,optional" json:"to,omitempty" yaml:"to,omitempty"`
	UnitPrice string `hcl:"unit_price" json:"unit_price" yaml:"unit_price"`
}

type hclBandSet struct {
	Bands []bandSpec `hcl:"band,block"`
}

type hclSubject struct {
	ID    string     `hcl:"id,label"`
	Bands []bandSpec `hcl:"band,block"`
}

type hclDocument struct {
	Default  *hclBandSet  `hcl:"default,block"`
	Subjects []hclSubject `hcl:"subject,block"`
}

type document struct {
	Default  []bandSpec            `json:"default" yaml:"default"`
	Subjects map[string][]bandSpec `json:"subjects" yaml:"subjects"`
}

// Source serves price bands loaded from a file
type Source struct {
	path      string
	fallback  []types.PriceBand
	bySubject map[uuid.UUID][]types.PriceBand
}

// Load reads and validates a band file
func Load(path string) (*Source, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.TypeInput, err, "failed to read band file %s", path)
	}

	return Parse(src, path, format)
}

// Parse decodes band file content. filename is used in diagnostics.
func Parse(src []byte, filename string, format Format) (*Source, error) {
	var doc document

	switch format {
	case FormatHCL:
		d, err := decodeHCL(src, filename)
		if err != nil {
			return nil, err
		}
		doc = d
	case FormatYAML:
		if err := yaml.Unmarshal(src, &doc); err != nil {
			return nil, apperrors.Wrapf(apperrors.TypeInput, err, "failed to parse %s", filename)
		}
	case FormatJSON:
		if err := json.Unmarshal(src, &doc); err != nil {
			return nil, apperrors.Wrapf(apperrors.TypeInput, err, "failed to parse %s", filename)
		}
	default:
		return nil, apperrors.Newf(apperrors.TypeInput, "unsupported band file format: %s", format)
	}

	return build(filename, doc)
}

func decodeHCL(src []byte, filename string) (document, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return document{}, apperrors.Wrapf(apperrors.TypeInput, diagError(diags), "failed to parse %s", filename)
	}

	var raw hclDocument
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return document{}, apperrors.Wrapf(apperrors.TypeInput, diagError(diags), "failed to decode %s", filename)
	}

	doc := document{Subjects: make(map[string][]bandSpec, len(raw.Subjects))}
	if raw.Default != nil {
		// an empty default block still declares a (free) default set
		doc.Default = append([]bandSpec{}, raw.Default.Bands...)
	}
	for _, s := range raw.Subjects {
		if _, dup := doc.Subjects[s.ID]; dup {
			return document{}, apperrors.Newf(apperrors.TypeInput, "%s: subject %s declared twice", filename, s.ID)
		}
		doc.Subjects[s.ID] = s.Bands
	}
	return doc, nil
}

// diagError keeps only error diagnostics; warnings are not failures
func diagError(diags hcl.Diagnostics) error {
	var errs hcl.Diagnostics
	for _, d := range diags {
		if d.Severity == hcl.DiagError {
			errs = append(errs, d)
		}
	}
	return errs
}

func build(filename string, doc document) (*Source, error) {
	s := &Source{
		path:      filename,
		bySubject: make(map[uuid.UUID][]types.PriceBand, len(doc.Subjects)),
	}

	if doc.Default != nil {
		bands, err := convert(filename, "default", doc.Default)
		if err != nil {
			return nil, err
		}
		s.fallback = bands
	}

	for id, specs := range doc.Subjects {
		subject, err := types.ParseSubject(id)
		if err != nil {
			return nil, apperrors.Wrapf(apperrors.TypeInput, err, "%s", filename)
		}
		bands, err := convert(filename, id, specs)
		if err != nil {
			return nil, err
		}
		s.bySubject[subject] = bands
	}

	return s, nil
}

func convert(filename, scope string, specs []bandSpec) ([]types.PriceBand, error) {
	bands := make([]types.PriceBand, 0, len(specs))
	for i, spec := range specs {
		price, err := decimal.NewFromString(spec.UnitPrice)
		if err != nil {
			return nil, apperrors.Wrapf(apperrors.TypeInput, err,
				"%s: %s band %d has invalid unit_price %q", filename, scope, i+1, spec.UnitPrice)
		}
		bands = append(bands, types.PriceBand{
			QuantityFrom: spec.From,
			QuantityTo:   spec.To,
			UnitPrice:    price,
		})
	}

	if err := pricing.ValidateBands(bands); err != nil {
		return nil, apperrors.Wrapf(apperrors.TypeBands, err, "%s: %s bands", filename, scope)
	}
	return pricing.SortBands(bands), nil
}

// Path returns the file the source was loaded from
func (s *Source) Path() string {
	return s.path
}

// Default returns the default band set, nil if the file has none
func (s *Source) Default() []types.PriceBand {
	return clone(s.fallback)
}

// Subjects returns the number of subjects with their own band set
func (s *Source) Subjects() int {
	return len(s.bySubject)
}

// SubjectIDs returns the subjects with their own band set, in a stable order
func (s *Source) SubjectIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.bySubject))
	for id := range s.bySubject {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// BandsFor returns the subject's bands, the default set, or NOT_FOUND
func (s *Source) BandsFor(ctx context.Context, subject uuid.UUID) ([]types.PriceBand, error) {
	if bands, ok := s.bySubject[subject]; ok {
		return clone(bands), nil
	}
	if s.fallback != nil {
		return clone(s.fallback), nil
	}
	return nil, apperrors.NotFound("price bands", subject.String()).WithContext("file", s.path)
}

func clone(bands []types.PriceBand) []types.PriceBand {
	if bands == nil {
		return nil
	}
	out := make([]types.PriceBand, len(bands))
	copy(out, bands)
	return out
}

// String describes the source for logs
func (s *Source) String() string {
	return fmt.Sprintf("bandfile(%s, default=%t, subjects=%d)", s.path, s.fallback != nil, len(s.bySubject))
}

package citation

import (
	"context"
	"errors"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/itsmostafa/wingman/internal/document"
)

// Picker asks the user for citations.
type Picker interface {
	Pick(ctx context.Context) (string, error)
}

// Result describes a completed citation.
type Result struct {
	Citation string
	Keys     []string
	// Added holds the keys newly written to the bibliography.
	Added []string
	// ExportErr is set when the citation was inserted but its BibTeX could
	// not be fetched.
	ExportErr error
}

// Service ties the picker, the exporter and the bibliography together.
type Service struct {
	picker   Picker
	exporter Exporter
	library  *Library
	log      commonlog.Logger
}

// NewService creates a citation service. library may be nil, in which case
// no bibliography is maintained.
func NewService(picker Picker, exporter Exporter, library *Library) *Service {
	return &Service{
		picker:   picker,
		exporter: exporter,
		library:  library,
		log:      commonlog.GetLogger("wingman.citation"),
	}
}

// Insert writes citation over r.
func Insert(sink document.EditSink, r document.Range, citation string) error {
	if err := sink.Replace(r, citation); err != nil {
		return fmt.Errorf("failed to insert citation: %w", err)
	}
	return nil
}

// Cite picks citations, inserts them over r and appends any BibTeX entries
// the bibliography lacks. A nil result with a nil error means the picker was
// dismissed.
func (s *Service) Cite(ctx context.Context, sink document.EditSink, r document.Range) (*Result, error) {
	raw, err := s.picker.Pick(ctx)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		s.log.Debug("picker returned nothing")
		return nil, nil
	}

	res := &Result{Citation: Format(raw), Keys: Keys(raw)}
	if err := Insert(sink, r, res.Citation); err != nil {
		return nil, err
	}

	if s.library == nil || s.exporter == nil {
		return res, nil
	}

	missing, err := s.library.Missing(res.Keys)
	if err != nil {
		return res, err
	}
	if len(missing) == 0 {
		return res, nil
	}

	bib, err := s.exporter.Export(ctx, missing)
	if err != nil {
		s.log.Warningf("export of %v failed: %v", missing, err)
		res.ExportErr = err
		return res, nil
	}

	res.Added, err = s.library.Append(bib)
	if err != nil {
		return res, fmt.Errorf("failed to update bibliography: %w", err)
	}
	return res, nil
}

// IsUnavailable reports whether err means Zotero could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

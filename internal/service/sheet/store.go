// Package sheet loads the instructor roster from a published spreadsheet CSV
// export (or a local file) and serves substring searches over it. Column
// headers in the source sheet drift between revisions, so mapping is by
// header substring, not position.
package sheet

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/huhsame/instructor-scout-go/internal/domain"
	"github.com/huhsame/instructor-scout-go/internal/util"
	scouterrors "github.com/huhsame/instructor-scout-go/pkg/errors"
	"go.uber.org/zap"
)

const fetchTimeout = 15 * time.Second

// Store holds the roster in memory. Rows are deduplicated by name+email at
// load time; the first occurrence wins.
type Store struct {
	instructors []*domain.Instructor
	logger      *zap.Logger
}

// NewEmptyStore returns a store with no rows, used when no roster source is
// configured. Searches answer with nothing rather than an error.
func NewEmptyStore(logger *zap.Logger) *Store {
	return &Store{logger: logger}
}

// NewStoreFromURL downloads the CSV export and builds the store.
func NewStoreFromURL(ctx context.Context, csvURL string, logger *zap.Logger) (*Store, error) {
	client := &http.Client{Timeout: fetchTimeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, csvURL, nil)
	if err != nil {
		return nil, scouterrors.NewTransportError("failed to build roster request", csvURL, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, scouterrors.NewTransportError("roster download failed", csvURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, scouterrors.NewTransportError(
			fmt.Sprintf("roster download returned status %d", resp.StatusCode), csvURL, nil)
	}

	return newStore(resp.Body, logger)
}

// NewStoreFromFile reads a local CSV, mostly for development.
func NewStoreFromFile(path string, logger *zap.Logger) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, scouterrors.NewTransportError("failed to open roster file", path, err)
	}
	defer f.Close()
	return newStore(f, logger)
}

func newStore(r io.Reader, logger *zap.Logger) (*Store, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // sheets pad rows unevenly

	records, err := reader.ReadAll()
	if err != nil {
		return nil, scouterrors.NewStructureError("failed to parse roster csv", "roster")
	}
	if len(records) < 1 {
		return nil, scouterrors.NewContentError("roster csv is empty", "roster")
	}

	columns := mapColumns(records[0])
	if columns.name == -1 {
		return nil, scouterrors.NewStructureError("no name column in roster header", strings.Join(records[0], ","))
	}

	store := &Store{logger: logger}
	seen := make(map[string]struct{})
	for _, row := range records[1:] {
		instructor := columns.toInstructor(row, records[0])
		if instructor == nil {
			continue
		}
		dedupKey := instructor.Name + "|" + instructor.Email
		if _, ok := seen[dedupKey]; ok {
			continue
		}
		seen[dedupKey] = struct{}{}
		store.instructors = append(store.instructors, instructor)
	}

	logger.Info("Instructor roster loaded",
		zap.Int("rows", len(records)-1),
		zap.Int("instructors", len(store.instructors)),
	)
	return store, nil
}

// columnMap holds header indices; -1 means the column is absent.
type columnMap struct {
	name        int
	affiliation int
	role        int
	subject     int
	email       int
	primary     int
	secondary   int
}

func mapColumns(header []string) columnMap {
	cols := columnMap{name: -1, affiliation: -1, role: -1, subject: -1, email: -1, primary: -1, secondary: -1}

	for i, raw := range header {
		h := util.Normalize(raw)
		switch {
		case cols.name == -1 && strings.Contains(h, "강사") && strings.Contains(h, "이름"):
			cols.name = i
		case cols.name == -1 && h == "이름":
			cols.name = i
		case cols.affiliation == -1 && strings.Contains(h, "소속"):
			cols.affiliation = i
		case cols.role == -1 && (strings.Contains(h, "직업") || strings.Contains(h, "직함")):
			cols.role = i
		case cols.subject == -1 && strings.Contains(h, "강의") && strings.Contains(h, "과목"):
			cols.subject = i
		case cols.email == -1 && (strings.Contains(h, "e-mail") || strings.Contains(h, "email") || strings.Contains(h, "이메일")):
			cols.email = i
		case cols.primary == -1 && strings.Contains(h, "대분야"):
			cols.primary = i
		case cols.secondary == -1 && strings.Contains(h, "소분야"):
			cols.secondary = i
		}
	}
	return cols
}

func (c columnMap) toInstructor(row, header []string) *domain.Instructor {
	cell := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	name := cell(c.name)
	if name == "" {
		return nil
	}

	instructor := &domain.Instructor{
		Name:           name,
		Affiliation:    cell(c.affiliation),
		Role:           cell(c.role),
		Subject:        cell(c.subject),
		Email:          cell(c.email),
		PrimaryTopic:   cell(c.primary),
		SecondaryTopic: cell(c.secondary),
	}

	mapped := map[int]struct{}{
		c.name: {}, c.affiliation: {}, c.role: {}, c.subject: {},
		c.email: {}, c.primary: {}, c.secondary: {},
	}
	for i, raw := range header {
		if _, ok := mapped[i]; ok {
			continue
		}
		if value := cell(i); value != "" {
			if instructor.Extra == nil {
				instructor.Extra = make(map[string]string)
			}
			instructor.Extra[strings.TrimSpace(raw)] = value
		}
	}
	return instructor
}

// Search returns instructors whose scoped columns contain the query,
// case-insensitively, in roster order.
func (s *Store) Search(query string, scope domain.SearchScope) []*domain.Instructor {
	query = util.Normalize(query)
	if query == "" {
		return nil
	}

	var results []*domain.Instructor
	for _, instructor := range s.instructors {
		if matchesScope(instructor, query, scope) {
			results = append(results, instructor)
		}
	}
	return results
}

func (s *Store) Count() int {
	return len(s.instructors)
}

func matchesScope(i *domain.Instructor, query string, scope domain.SearchScope) bool {
	contains := func(value string) bool {
		return value != "" && strings.Contains(util.Normalize(value), query)
	}

	switch scope {
	case domain.ScopeName:
		return contains(i.Name)
	case domain.ScopeField:
		return contains(i.PrimaryTopic) || contains(i.SecondaryTopic)
	case domain.ScopeSubject:
		return contains(i.Subject)
	default:
		return contains(i.Name) || contains(i.PrimaryTopic) || contains(i.SecondaryTopic) ||
			contains(i.Subject) || contains(i.Affiliation) || contains(i.Role)
	}
}

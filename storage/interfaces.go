package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"classifieds-scraper/models"
)

// ErrUnsupportedFormat is returned for artifact paths with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported artifact format")

// TableWriter persists a table as a file artifact at dest.
type TableWriter interface {
	Write(t *models.Table, dest string) error
}

// TableStore persists a table into a database under the given table name,
// replacing any previous contents.
type TableStore interface {
	Store(ctx context.Context, name string, t *models.Table) error
	Load(ctx context.Context, name string) (*models.Table, error)
	Close() error
}

// WriterFor picks a TableWriter from the extension of dest.
func WriterFor(dest string) (TableWriter, error) {
	switch strings.ToLower(filepath.Ext(dest)) {
	case ".xlsx":
		return NewXLSXWriter(), nil
	case ".csv":
		return NewCSVWriter(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, dest)
}

// ExtWriter dispatches each Write to the writer matching the destination.
type ExtWriter struct{}

func (ExtWriter) Write(t *models.Table, dest string) error {
	w, err := WriterFor(dest)
	if err != nil {
		return err
	}
	return w.Write(t, dest)
}

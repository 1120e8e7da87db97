package board

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/roach88/threadboard/internal/comment"
)

// Export is the downloadable snapshot of the board.
type Export struct {
	ExportDate    string         `json:"exportDate"`
	TotalComments int            `json:"totalComments"`
	Comments      comment.Forest `json:"comments"`
}

// ExportFilename names the export file for the given day.
func ExportFilename(now time.Time) string {
	return "discussion-board-export-" + now.UTC().Format(time.DateOnly) + ".json"
}

// Export builds the snapshot as of now.
func (s *Service) Export(now time.Time) Export {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Export{
		ExportDate:    comment.FormatTimestamp(now),
		TotalComments: s.engine.CountAll(),
		Comments:      s.engine.Forest(),
	}
}

// WriteExport writes the snapshot as two-space indented JSON.
func (s *Service) WriteExport(w io.Writer, now time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.Export(now)); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	s.emit(KindExported, LevelInfo, "Comments exported successfully!")
	return nil
}

package faq

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/julianshen/rhobot/internal/store"
)

// Messages shown alongside dump and import results.
const (
	DumpMessage   = "Created dump of FAQ contents:"
	DropMessage   = "All FAQ entries for this server deleted"
	ImportMessage = "Successfully imported all FAQ entries"
)

// Format is a dump encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml"; empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownFormat, s)
}

// FormatForFile picks the format from a file extension, defaulting to JSON.
func FormatForFile(name string) Format {
	if f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(name), ".")); err == nil {
		return f
	}
	return FormatJSON
}

// Record is the portable form of an entry. Absent fields are null.
type Record struct {
	Title    string  `json:"title" yaml:"title"`
	Contents *string `json:"contents" yaml:"contents,omitempty"`
	Image    *string `json:"image" yaml:"image,omitempty"`
	Link     *string `json:"link" yaml:"link,omitempty"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Dump is an encoded export file.
type Dump struct {
	FileName string
	Data     []byte
}

// Export encodes every entry on a server.
func (s *Service) Export(ctx context.Context, serverID int64, format Format) (*Dump, error) {
	stamp := s.now().UTC().Format("2006-01-02T15:04:05Z")
	return s.dump(ctx, serverID, format, stamp)
}

// Drop exports every entry on a server and then deletes them all. The dump
// is returned so the caller can hand it to the user.
func (s *Service) Drop(ctx context.Context, serverID int64, format Format) (*Dump, error) {
	d, err := s.dump(ctx, serverID, format, fmt.Sprint(s.now().Unix()))
	if err != nil {
		return nil, err
	}
	if err := s.store.Clear(ctx, serverID); err != nil {
		return nil, dbError(err)
	}
	s.reindex(ctx)
	s.logger.Warn("faq entries dropped", zap.Int64("server", serverID))
	return d, nil
}

func (s *Service) dump(ctx context.Context, serverID int64, format Format, stamp string) (*Dump, error) {
	entries, err := s.store.Dump(ctx, serverID)
	if err != nil {
		return nil, dbError(err)
	}
	records := make([]Record, len(entries))
	for i, e := range entries {
		records[i] = Record{
			Title:    e.Title,
			Contents: optional(e.Contents),
			Image:    optional(e.Image),
			Link:     optional(e.Link),
		}
	}
	data, err := Encode(records, format)
	if err != nil {
		return nil, err
	}
	return &Dump{
		FileName: fmt.Sprintf("FAQ_dump_%d_%s.%s", serverID, stamp, format),
		Data:     data,
	}, nil
}

// Encode serializes records in the given format.
func Encode(records []Record, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("encode faq dump: %w", err)
		}
		return data, nil
	case FormatYAML:
		data, err := yaml.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("encode faq dump: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownFormat, format)
}

// Decode parses a dump in the given format.
func Decode(data []byte, format Format) ([]Record, error) {
	var records []Record
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &records)
	case FormatYAML:
		err = yaml.Unmarshal(data, &records)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode faq dump: %w", err)
	}
	return records, nil
}

// Import adds every record in data to a server and reports how many were
// written. Records replace existing entries with the same title. Titles are
// stored as given.
func (s *Service) Import(ctx context.Context, serverID int64, author string, data []byte, format Format) (int, error) {
	records, err := Decode(data, format)
	if err != nil {
		return 0, err
	}
	now := s.now()
	for i, r := range records {
		if strings.TrimSpace(r.Title) == "" {
			return i, fmt.Errorf("decode faq dump: record %d has no title", i)
		}
		err := s.store.Upsert(ctx, store.Entry{
			ServerID: serverID,
			Title:    r.Title,
			Contents: deref(r.Contents),
			Image:    deref(r.Image),
			Link:     deref(r.Link),
			EditTime: now,
			Author:   author,
		})
		if err != nil {
			return i, dbError(err)
		}
	}
	s.reindex(ctx)
	s.logger.Info("faq entries imported", zap.Int64("server", serverID), zap.Int("count", len(records)))
	return len(records), nil
}

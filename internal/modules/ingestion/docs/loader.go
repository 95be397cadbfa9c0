package docs

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/coursetree/internal/modules/ingestion/source"
	"github.com/yungbote/coursetree/internal/platform/logger"
)

var docExtensions = []string{".yaml", ".yml", ".json"}

type Loader struct {
	log *logger.Logger
}

func NewLoader(log *logger.Logger) *Loader {
	return &Loader{log: log.With("component", "DocumentLoader")}
}

// Load reads outline, metadata and every chapter document from src.
// Any missing required document or parse failure is fatal.
func (l *Loader) Load(ctx context.Context, src source.Source) (*Set, error) {
	names, err := src.List(ctx)
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	set := &Set{Location: src.Location()}

	set.OutlineFile = pick(present, "outline")
	if set.OutlineFile == "" {
		return nil, &MissingDocumentError{Name: "outline.yaml"}
	}
	if err := readInto(ctx, src, set.OutlineFile, &set.Outline); err != nil {
		return nil, err
	}

	set.MetadataFile = pick(present, "metadata")
	if set.MetadataFile == "" {
		return nil, &MissingDocumentError{Name: "metadata.yaml"}
	}
	if err := readInto(ctx, src, set.MetadataFile, &set.Metadata); err != nil {
		return nil, err
	}

	for _, name := range names {
		folder, ok := chapterFolder(name)
		if !ok {
			continue
		}
		cf := ChapterFile{File: name, Folder: folder, FolderNumber: folderNumber(folder)}
		if err := readInto(ctx, src, name, &cf.Doc); err != nil {
			return nil, err
		}
		set.Chapters = append(set.Chapters, cf)
	}
	sort.SliceStable(set.Chapters, func(i, j int) bool {
		if set.Chapters[i].FolderNumber != set.Chapters[j].FolderNumber {
			return set.Chapters[i].FolderNumber < set.Chapters[j].FolderNumber
		}
		return set.Chapters[i].File < set.Chapters[j].File
	})

	l.log.Info("document set loaded",
		"location", set.Location,
		"outline_chapters", len(set.Outline.Chapters),
		"chapter_documents", len(set.Chapters),
	)
	return set, nil
}

func pick(present map[string]bool, base string) string {
	for _, ext := range docExtensions {
		if present[base+ext] {
			return base + ext
		}
	}
	return ""
}

// chapterFolder matches chapters/<folder>/chapter.<ext>.
func chapterFolder(name string) (string, bool) {
	parts := strings.Split(name, "/")
	if len(parts) != 3 || parts[0] != "chapters" || parts[1] == "" {
		return "", false
	}
	ext := path.Ext(parts[2])
	if strings.TrimSuffix(parts[2], ext) != "chapter" {
		return "", false
	}
	for _, e := range docExtensions {
		if ext == e {
			return parts[1], true
		}
	}
	return "", false
}

// folderNumber is the leading decimal digits of folder, 0 when there are none.
func folderNumber(folder string) int {
	end := 0
	for end < len(folder) && folder[end] >= '0' && folder[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(folder[:end])
	if err != nil {
		return 0
	}
	return n
}

func readInto(ctx context.Context, src source.Source, name string, out any) error {
	raw, err := src.Read(ctx, name)
	if errors.Is(err, source.ErrNotExist) {
		return &MissingDocumentError{Name: name}
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	return Decode(name, raw, out)
}

// Decode parses YAML (or JSON) bytes into out, reporting failures as
// *MalformedDocumentError.
func Decode(file string, raw []byte, out any) error {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return malformed(file, err)
	}
	if len(root.Content) == 0 {
		return &MalformedDocumentError{File: file, Err: errors.New("empty document")}
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return &MalformedDocumentError{
			File:   file,
			Line:   doc.Line,
			Column: doc.Column,
			Err:    errors.New("top level must be a mapping"),
		}
	}
	if err := doc.Decode(out); err != nil {
		return malformed(file, err)
	}
	return nil
}

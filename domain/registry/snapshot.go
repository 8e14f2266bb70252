package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"site_uitest/domain/entities"
)

// SnapshotVersion is the newest snapshot layout this package reads and writes
const SnapshotVersion = 1

// Meta describes where a snapshot came from
type Meta struct {
	Site        string
	GeneratedAt time.Time
}

type snapshotDoc struct {
	Version     int         `yaml:"version" json:"version"`
	Site        string      `yaml:"site,omitempty" json:"site,omitempty"`
	GeneratedAt *time.Time  `yaml:"generated_at,omitempty" json:"generated_at,omitempty"`
	Entries     []*rawEntry `yaml:"entries" json:"entries"`
}

// rawEntry keeps kind as a string so unknown kinds are reported as schema
// problems instead of decode failures
type rawEntry struct {
	Name        string `yaml:"name" json:"name"`
	Locator     string `yaml:"locator" json:"locator"`
	Kind        string `yaml:"kind" json:"kind"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// errTrailingContent marks a snapshot holding more than one document
var errTrailingContent = errors.New("unexpected content after the first document")

// Load - reads a snapshot from path. The file may be YAML or JSON, either the
// versioned document or a bare list of entries. Every entry is validated
// before anything is returned; on any problem the result is a
// *entities.MalformedRegistryError and no registry.
func Load(path string) (*Registry, error) {
	reg, _, err := LoadWithMeta(path)
	return reg, err
}

// LoadWithMeta - Load, also returning the snapshot header
func LoadWithMeta(path string) (*Registry, Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("failed to read selector registry: %w", err)
	}
	return Parse(path, data)
}

// Parse - decodes snapshot bytes; name is used in errors and to pick the codec
func Parse(name string, data []byte) (*Registry, Meta, error) {
	malformed := func(err error, problems ...string) error {
		return &entities.MalformedRegistryError{Path: name, Problems: problems, Err: err}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, Meta{}, malformed(nil, "document is empty")
	}

	var (
		doc snapshotDoc
		err error
	)
	if isJSON(name) {
		doc, err = decodeJSON(data)
	} else {
		doc, err = decodeYAML(data)
	}
	if errors.Is(err, errTrailingContent) {
		return nil, Meta{}, malformed(nil, err.Error())
	}
	if err != nil {
		return nil, Meta{}, malformed(err)
	}

	var problems []string
	if doc.Version > SnapshotVersion {
		problems = append(problems, fmt.Sprintf("unsupported version %d (newest is %d)", doc.Version, SnapshotVersion))
	}

	reg := New()
	for i, raw := range doc.Entries {
		entry, entryProblems := checkEntry(i, raw)
		if len(entryProblems) > 0 {
			problems = append(problems, entryProblems...)
			continue
		}
		if err := reg.Add(entry); err != nil {
			var dup *entities.DuplicateNameError
			if errors.As(err, &dup) {
				problems = append(problems, fmt.Sprintf("entry %d: duplicate name %q", i, dup.Name))
				continue
			}
			problems = append(problems, fmt.Sprintf("entry %d: %v", i, err))
		}
	}
	if len(problems) > 0 {
		return nil, Meta{}, malformed(nil, problems...)
	}

	meta := Meta{Site: doc.Site}
	if doc.GeneratedAt != nil {
		meta.GeneratedAt = *doc.GeneratedAt
	}
	return reg, meta, nil
}

func checkEntry(i int, raw *rawEntry) (entities.SelectorEntry, []string) {
	if raw == nil {
		return entities.SelectorEntry{}, []string{fmt.Sprintf("entry %d: empty entry", i)}
	}
	var problems []string
	if raw.Name == "" {
		problems = append(problems, fmt.Sprintf("entry %d: missing name", i))
	}
	if raw.Locator == "" {
		problems = append(problems, fmt.Sprintf("entry %d: missing locator", i))
	}
	var kind entities.LocatorKind
	if raw.Kind == "" {
		problems = append(problems, fmt.Sprintf("entry %d: missing kind", i))
	} else {
		k, err := entities.ParseLocatorKind(raw.Kind)
		if err != nil {
			problems = append(problems, fmt.Sprintf("entry %d: %v", i, err))
		}
		kind = k
	}
	if len(problems) > 0 {
		return entities.SelectorEntry{}, problems
	}
	return entities.SelectorEntry{
		Name:        raw.Name,
		Locator:     raw.Locator,
		Kind:        kind,
		Description: raw.Description,
	}, nil
}

func decodeYAML(data []byte) (snapshotDoc, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return snapshotDoc{}, err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return snapshotDoc{}, errors.New("document is empty")
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc snapshotDoc
	switch root.Content[0].Kind {
	case yaml.SequenceNode:
		if err := dec.Decode(&doc.Entries); err != nil {
			return snapshotDoc{}, err
		}
	case yaml.MappingNode:
		if err := dec.Decode(&doc); err != nil {
			return snapshotDoc{}, err
		}
	default:
		return snapshotDoc{}, errors.New("expected a mapping or a list of entries")
	}

	var extra yaml.Node
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return doc, nil
	case err != nil:
		return snapshotDoc{}, err
	default:
		return snapshotDoc{}, errTrailingContent
	}
}

func decodeJSON(data []byte) (snapshotDoc, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc snapshotDoc
	switch bytes.TrimSpace(data)[0] {
	case '[':
		if err := dec.Decode(&doc.Entries); err != nil {
			return snapshotDoc{}, err
		}
	case '{':
		if err := dec.Decode(&doc); err != nil {
			return snapshotDoc{}, err
		}
	default:
		return snapshotDoc{}, errors.New("expected an object or a list of entries")
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return snapshotDoc{}, errTrailingContent
	}
	return doc, nil
}

// Save - writes the registry to path atomically. A .json path is written as
// JSON, anything else as YAML.
func (r *Registry) Save(path string, meta Meta) error {
	doc := snapshotDoc{
		Version: SnapshotVersion,
		Site:    meta.Site,
	}
	if !meta.GeneratedAt.IsZero() {
		t := meta.GeneratedAt.UTC()
		doc.GeneratedAt = &t
	}
	for _, e := range r.Entries() {
		doc.Entries = append(doc.Entries, &rawEntry{
			Name:        e.Name,
			Locator:     e.Locator,
			Kind:        string(e.Kind),
			Description: e.Description,
		})
	}

	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(doc, "", "  ")
		data = append(data, '\n')
	} else {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		err = enc.Encode(doc)
		if err == nil {
			err = enc.Close()
		}
		data = buf.Bytes()
	}
	if err != nil {
		return fmt.Errorf("failed to encode selector registry: %w", err)
	}
	return writeFileAtomic(path, data)
}

func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write selector registry: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync selector registry: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close selector registry: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to set registry permissions: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace selector registry: %w", err)
	}
	return nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

package sync

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/keeldata/keel/pkg/errors"
	"github.com/keeldata/keel/pkg/logging"
)

// File permissions for persisted documents.
const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// FileSyncer persists targets as YAML documents on local disk. It is the
// local-storage strategy: each target URL maps to one file under Dir, so a
// model and its collection round-trip without a server.
type FileSyncer struct {
	dir string
}

// NewFile creates a file syncer rooted at dir.
func NewFile(dir string) *FileSyncer {
	return &FileSyncer{dir: dir}
}

// Sync implements the Syncer interface against the local filesystem.
// Responses are returned as JSON regardless of the on-disk YAML encoding,
// so callers parse file and HTTP responses identically.
func (s *FileSyncer) Sync(ctx context.Context, method Method, target Target, opts *Options) (json.RawMessage, error) {
	if opts == nil {
		opts = &Options{}
	}

	targetURL, err := resolveURL(target, opts)
	if err != nil {
		return nil, err
	}

	path, err := s.path(targetURL)
	if err != nil {
		return nil, err
	}

	log := logging.FromContext(ctx)
	log.Debug().
		Str("method", string(method)).
		Str("path", path).
		Msg("file sync")

	switch method {
	case MethodRead:
		return s.read(path)

	case MethodCreate, MethodUpdate, MethodPatch:
		data := opts.Data
		if data == nil && target != nil {
			data = target.SyncData()
		}
		return s.write(path, data)

	case MethodDelete:
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.NewNotFoundError("document", targetURL)
			}
			return nil, errors.WrapIO("delete", path, err)
		}
		return nil, nil

	default:
		return nil, errors.NewSyncError(string(method), targetURL, 0, errors.ErrInvalidInput)
	}
}

// read loads a YAML document and re-encodes it as JSON.
func (s *FileSyncer) read(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("document", path)
		}
		return nil, errors.WrapIO("read", path, err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	return payload, nil
}

// write stores data as a YAML document and echoes it back as JSON.
func (s *FileSyncer) write(path string, data any) (json.RawMessage, error) {
	doc, err := yaml.Marshal(data)
	if err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return nil, errors.WrapIO("create", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, doc, filePermissions); err != nil {
		return nil, errors.WrapIO("write", path, err)
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	return payload, nil
}

// path maps a target URL to a file under the syncer's directory.
func (s *FileSyncer) path(targetURL string) (string, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return "", errors.NewSyncError("resolve", targetURL, 0, err)
	}

	name := strings.Trim(u.Path, "/")
	if name == "" {
		name = u.Host
	}
	if name == "" {
		return "", errors.ErrNoURL
	}

	// Flatten path separators so nested endpoints stay in one directory.
	name = strings.ReplaceAll(name, "/", "__")
	return filepath.Join(s.dir, name+".yaml"), nil
}

package board

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Snapshot file names inside a snapshot directory.
const (
	ListsFile   = "lists.json"
	DetailsFile = "details.json"
	CurrentFile = "current.json"
)

// FileSource serves lists and card details from a snapshot directory written by mockgen.
type FileSource struct {
	dir     string
	lists   []ListMeta
	details map[string]CardDetail
}

// LoadFileSource reads lists.json and details.json from dir.
func LoadFileSource(dir string) (*FileSource, error) {
	fs := &FileSource{dir: dir, details: make(map[string]CardDetail)}

	if err := readJSON(filepath.Join(dir, ListsFile), &fs.lists); err != nil {
		return nil, err
	}

	var details []CardDetail
	if err := readJSON(filepath.Join(dir, DetailsFile), &details); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	for _, d := range details {
		fs.details[d.ID] = d
	}
	return fs, nil
}

func (fs *FileSource) FetchLists(ctx context.Context) ([]ListMeta, error) {
	return fs.lists, ctx.Err()
}

func (fs *FileSource) FetchDetails(ctx context.Context, ids []string, cols ColumnSet) ([]CardDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]CardDetail, 0, len(ids))
	for _, id := range ids {
		d, ok := fs.details[id]
		if !ok {
			continue
		}
		if cols == ColumnsBase {
			d.CreatedListID = ""
			d.CreatedListAlias = ""
		}
		out = append(out, d)
	}
	return out, nil
}

func (fs *FileSource) FetchCurrent(ctx context.Context) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(fs.dir, CurrentFile))
	if os.IsNotExist(err) {
		return json.RawMessage(`{}`), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read current views: %w", err)
	}
	return json.RawMessage(data), nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

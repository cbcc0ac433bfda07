package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteJSON exports a composed document to dir as an indented JSON artifact
// and returns the written path. The filename embeds symbol, template and
// generation time so repeated builds never overwrite each other.
func WriteJSON(dir string, doc *Document) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("ensure output dir: %w", err)
	}

	filename := fmt.Sprintf("%s_%s_one_pager_%s.json",
		strings.ToUpper(doc.Symbol),
		doc.Template,
		doc.GeneratedAt.UTC().Format("20060102-150405"))
	path := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write file %s: %w", path, err)
	}
	return path, nil
}

package orchestrator

import (
	"encoding/json"
	"os"
	"path/filepath"
)

func mkAnalysisDir(outputsRoot, id string) (string, error) {
	dir := filepath.Join(outputsRoot, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// persist writes r to <outputsRoot>/<id>/report.json.
func persist(outputsRoot string, r *Report) (string, error) {
	dir, err := mkAnalysisDir(outputsRoot, r.AnalysisID)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "report.json")
	if err := writeJSON(path, r); err != nil {
		return "", err
	}
	return path, nil
}

func writeTranscript(path, text string) error {
	return os.WriteFile(path, []byte(text), 0o644)
}

package testutils

import (
	"os"
	"path/filepath"
	"testing"
)

// TempDir creates a temporary directory for testing
func TempDir(t *testing.T, prefix string) string {
	dir, err := os.MkdirTemp("", prefix)
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	// Clean up when test finishes
	t.Cleanup(func() {
		os.RemoveAll(dir)
	})

	return dir
}

// TempFile creates a temporary file with content for testing
func TempFile(t *testing.T, dir, pattern, content string) string {
	if dir == "" {
		dir = TempDir(t, "test-files")
	}

	file, err := os.CreateTemp(dir, pattern)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	if content != "" {
		if _, err := file.WriteString(content); err != nil {
			file.Close()
			t.Fatalf("Failed to write to temp file: %v", err)
		}
	}

	filename := file.Name()
	file.Close()

	t.Cleanup(func() {
		os.Remove(filename)
	})

	return filename
}

// CreateTestCSVFile creates a small dataset file with one normal and one critical row
func CreateTestCSVFile(t *testing.T, dir string) string {
	csvContent := `timestamp,location,vibration_x,vibration_y,vibration_z,strain,stress_mpa,tilt,health_score,prediction_window,defect_type,traffic_load,scenario
2025-07-17T20:42:34Z,Domlur Flyover,0.0312,0.1207,0.0875,48.5,1.46,-0.12,98,None (Safe),None,2140,normal
2025-07-17T20:44:04Z,KR Puram Suspension Bridge,0.5123,0.4411,0.6702,742.18,25.98,3.41,52,45-60 days,Early-stage Rebar Corrosion,6120,critical`

	return TempFile(t, dir, "bridge-*.csv", csvContent)
}

// FileExists checks if a file exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

// CreateTestFile creates a file with specific content at the given path
func CreateTestFile(t *testing.T, filePath, content string) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", filePath, err)
	}

	t.Cleanup(func() {
		os.Remove(filePath)
	})
}

// ReadTestFile reads the content of a file
func ReadTestFile(t *testing.T, filePath string) string {
	content, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", filePath, err)
	}
	return string(content)
}

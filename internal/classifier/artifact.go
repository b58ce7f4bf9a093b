package classifier

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/example/bridgetwin/internal/telemetry"
)

// MagicHeader prefixes every serialized forest.
var MagicHeader = []byte("BRIDGEFOREST1")

var (
	// ErrArtifactMissing is returned when no artifact exists at the path.
	ErrArtifactMissing = errors.New("classifier artifact not found")
	// ErrArtifactCorrupt is returned when the artifact cannot be decoded.
	ErrArtifactCorrupt = errors.New("classifier artifact corrupt")
)

// Save writes the forest as a zstd-compressed JSON document, replacing path.
func (f *Forest) Save(path string) error {
	raw, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode forest: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return err
	}
	defer enc.Close()

	buf := make([]byte, 0, len(MagicHeader)+len(raw)/4)
	buf = append(buf, MagicHeader...)
	buf = enc.EncodeAll(raw, buf)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return os.Rename(tmp, path)
}

// Load reads a forest written by Save.
func Load(path string) (*Forest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s: %w", ErrArtifactMissing, path, err)
		}
		return nil, err
	}
	return Decode(data)
}

// Decode parses an in-memory artifact.
func Decode(data []byte) (*Forest, error) {
	if !bytes.HasPrefix(data, MagicHeader) {
		return nil, fmt.Errorf("%w: bad header", ErrArtifactCorrupt)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(data[len(MagicHeader):], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArtifactCorrupt, err)
	}

	var f Forest
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArtifactCorrupt, err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArtifactCorrupt, err)
	}
	return &f, nil
}

func (f *Forest) validate() error {
	if f.NumFeatures != len(telemetry.FeatureNames) {
		return fmt.Errorf("num_features %d, expected %d", f.NumFeatures, len(telemetry.FeatureNames))
	}
	if len(f.FeatureNames) > 0 && !slices.Equal(f.FeatureNames, telemetry.FeatureNames) {
		return fmt.Errorf("feature names %v, expected %v", f.FeatureNames, telemetry.FeatureNames)
	}
	if len(f.Trees) == 0 {
		return errors.New("no trees")
	}
	for ti, t := range f.Trees {
		if len(t.Nodes) == 0 {
			return fmt.Errorf("tree %d is empty", ti)
		}
		for ni, n := range t.Nodes {
			if n.Left < 0 {
				continue
			}
			// children are appended after their parent
			if n.Left <= ni || n.Right <= ni || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
				return fmt.Errorf("tree %d node %d has invalid children", ti, ni)
			}
			if n.Feature < 0 || n.Feature >= f.NumFeatures {
				return fmt.Errorf("tree %d node %d splits on feature %d", ti, ni, n.Feature)
			}
		}
	}
	return nil
}

// Handle is an optional classifier capability: either a loaded model or absent.
type Handle struct {
	model Model
	err   error
}

// NewHandle wraps an already loaded model.
func NewHandle(m Model) *Handle {
	return &Handle{model: m}
}

// AbsentHandle returns a handle with no model.
func AbsentHandle() *Handle {
	return &Handle{}
}

// LoadHandle loads the artifact at path once. A missing or corrupt artifact
// yields an absent handle and is logged, never returned as an error.
func LoadHandle(path string, logger *zap.Logger) *Handle {
	forest, err := Load(path)
	if err != nil {
		if errors.Is(err, ErrArtifactMissing) {
			logger.Info("classifier artifact not present", zap.String("path", path))
		} else {
			logger.Warn("classifier artifact unusable", zap.String("path", path), zap.Error(err))
		}
		return &Handle{err: err}
	}
	logger.Info("classifier artifact loaded",
		zap.String("path", path),
		zap.Int("trees", len(forest.Trees)),
	)
	return &Handle{model: forest}
}

// Model returns the classifier and whether it is available.
func (h *Handle) Model() (Model, bool) {
	if h == nil || h.model == nil {
		return nil, false
	}
	return h.model, true
}

// Err reports why the handle is absent, if it came from LoadHandle.
func (h *Handle) Err() error {
	if h == nil {
		return nil
	}
	return h.err
}

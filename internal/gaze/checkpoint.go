package gaze

import (
	"errors"
	"fmt"
	"maps"

	"gopkg.in/yaml.v3"

	"github.com/gaze-ml/gazenet/internal/serialization"
	"github.com/gaze-ml/gazenet/internal/tensor"
)

// ModelType is the model_type recorded in gazenet checkpoints.
const ModelType = "gazenet"

// metaConfig is the metadata key holding the YAML-encoded Config.
const metaConfig = "config"

// ErrNotGazeCheckpoint is returned when a checkpoint holds another model type.
var ErrNotGazeCheckpoint = errors.New("not a gazenet checkpoint")

// Save writes the model's state dict and configuration to path in .gaze format.
// meta is stored alongside; the "config" key is reserved.
func (m *Model[B]) Save(path string, meta map[string]string) (err error) {
	cfgYAML, err := yaml.Marshal(m.Config())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	metadata := maps.Clone(meta)
	if metadata == nil {
		metadata = make(map[string]string)
	}
	metadata[metaConfig] = string(cfgYAML)

	w, err := serialization.NewWriter(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return w.WriteStateDict(m.StateDict(), ModelType, metadata)
}

// checkpoint is implemented by serialization.Reader and serialization.MmapReader.
type checkpoint interface {
	Header() serialization.Header
	ReadStateDict() (map[string]*tensor.RawTensor, error)
}

// Load rebuilds a model from a checkpoint written by Save.
func Load[B tensor.Backend](path string, backend B) (*Model[B], error) {
	r, err := serialization.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint: %w", err)
	}
	defer r.Close()
	return fromCheckpoint(r, backend)
}

// LoadMmap is Load through a memory-mapped reader.
func LoadMmap[B tensor.Backend](path string, backend B) (*Model[B], error) {
	r, err := serialization.NewMmapReader(path)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint: %w", err)
	}
	defer r.Close()
	return fromCheckpoint(r, backend)
}

func fromCheckpoint[B tensor.Backend](ckpt checkpoint, backend B) (*Model[B], error) {
	header := ckpt.Header()
	if header.ModelType != ModelType {
		return nil, fmt.Errorf("%w: model type %q", ErrNotGazeCheckpoint, header.ModelType)
	}

	cfg := DefaultConfig()
	if raw, ok := header.Metadata[metaConfig]; ok {
		if err := yaml.Unmarshal([]byte(raw), &cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}

	m, err := New(cfg, backend)
	if err != nil {
		return nil, err
	}
	stateDict, err := ckpt.ReadStateDict()
	if err != nil {
		return nil, err
	}
	if err := m.LoadStateDict(stateDict); err != nil {
		return nil, err
	}
	return m, nil
}

// Package lineage appends an audit trail of every run step to a JSONL
// file. Each record captures the step name, its parameters with a short
// deterministic hash, and the input and output artifacts, so a panel on
// disk can be traced back to the exact configuration that produced it.
package lineage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// paramsHashLen is the length of the hex-encoded parameter digest.
const paramsHashLen = 12

// Record is one line of the lineage log.
type Record struct {
	Timestamp  string         `json:"ts"`
	RunID      string         `json:"run_id"`
	Step       string         `json:"step"`
	Params     map[string]any `json:"params,omitempty"`
	ParamsHash string         `json:"params_hash,omitempty"`
	Inputs     []string       `json:"inputs,omitempty"`
	Outputs    []string       `json:"outputs,omitempty"`
}

// Recorder appends lineage records for one run. It is safe for
// concurrent use by the per-symbol workers.
type Recorder struct {
	mu    sync.Mutex
	file  *os.File
	runID string
	now   func() time.Time
}

// NewRecorder opens (or creates) the JSONL file at path for appending
// and assigns the run a fresh identifier.
func NewRecorder(path string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lineage directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lineage log %s: %w", path, err)
	}
	return &Recorder{
		file:  file,
		runID: uuid.New().String(),
		now:   time.Now,
	}, nil
}

// RunID returns the identifier shared by every record of this run.
func (r *Recorder) RunID() string {
	return r.runID
}

// Record appends one step record. Params are hashed so two runs can be
// compared for configuration drift without diffing the full parameter
// set.
func (r *Recorder) Record(step string, params map[string]any, inputs, outputs []string) error {
	rec := Record{
		Timestamp:  r.now().UTC().Format(time.RFC3339),
		RunID:      r.runID,
		Step:       step,
		Params:     params,
		ParamsHash: HashParams(params),
		Inputs:     inputs,
		Outputs:    outputs,
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal lineage record: %w", err)
	}
	line = append(line, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return fmt.Errorf("lineage recorder is closed")
	}
	if _, err := r.file.Write(line); err != nil {
		return fmt.Errorf("failed to append lineage record: %w", err)
	}
	return nil
}

// Close flushes and closes the log file. Further Record calls fail.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// HashParams returns a short deterministic digest of the parameter set.
// JSON marshaling sorts map keys, so equal parameter sets always hash
// equal regardless of insertion order.
func HashParams(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}
	data, err := json.Marshal(params)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:paramsHashLen]
}

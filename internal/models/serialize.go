package models

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// SnapshotVersion is bumped whenever the layout of Snapshot changes.
const SnapshotVersion = 1

const (
	kindLeaf  = "leaf"
	kindSplit = "split"
)

// Snapshot is the serializable form of a fitted booster. Importing it performs no
// recomputation, so predictions are bit-identical to the exporting model.
type Snapshot struct {
	Version         int            `json:"version"`
	Params          Params         `json:"params"`
	BaseScore       float64        `json:"base_score"`
	FeatureCount    int            `json:"feature_count"`
	FeatureNames    []string       `json:"feature_names,omitempty"`
	ImportanceGain  []float64      `json:"importance_gain"`
	ImportanceCount []int          `json:"importance_count"`
	Trees           []TreeSnapshot `json:"trees"`
}

type TreeSnapshot struct {
	Weight float64       `json:"weight"`
	Root   *NodeSnapshot `json:"root"`
}

// NodeSnapshot is a tagged node: Kind "leaf" uses Weight, Kind "split" uses Feature,
// Threshold, Left and Right.
type NodeSnapshot struct {
	Kind      string        `json:"kind"`
	Weight    float64       `json:"weight,omitempty"`
	Feature   int           `json:"feature,omitempty"`
	Threshold float64       `json:"threshold,omitempty"`
	Left      *NodeSnapshot `json:"left,omitempty"`
	Right     *NodeSnapshot `json:"right,omitempty"`
}

func (gb *GradientBoosting) Export() *Snapshot {
	s := &Snapshot{
		Version:         SnapshotVersion,
		Params:          gb.Params,
		BaseScore:       gb.baseScore,
		FeatureCount:    gb.nFeatures,
		FeatureNames:    append([]string(nil), gb.featureNames...),
		ImportanceGain:  append([]float64(nil), gb.importanceGain...),
		ImportanceCount: append([]int(nil), gb.importanceCount...),
		Trees:           make([]TreeSnapshot, len(gb.trees)),
	}
	for i, t := range gb.trees {
		s.Trees[i] = TreeSnapshot{Weight: t.Weight, Root: exportNode(t.Root)}
	}
	return s
}

func exportNode(n Node) *NodeSnapshot {
	switch nd := n.(type) {
	case *Leaf:
		return &NodeSnapshot{Kind: kindLeaf, Weight: nd.Weight}
	case *Split:
		return &NodeSnapshot{
			Kind:      kindSplit,
			Feature:   nd.Feature,
			Threshold: nd.Threshold,
			Left:      exportNode(nd.Left),
			Right:     exportNode(nd.Right),
		}
	}
	return nil
}

// Import rebuilds a booster from s.
func Import(s *Snapshot) (*GradientBoosting, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil snapshot", ErrSnapshot)
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d (want %d)", ErrSnapshot, s.Version, SnapshotVersion)
	}
	task, err := ParseTask(string(s.Params.Task))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshot, err)
	}
	if len(s.ImportanceGain) != s.FeatureCount || len(s.ImportanceCount) != s.FeatureCount {
		return nil, fmt.Errorf("%w: importance vectors (%d, %d) do not match feature count %d",
			ErrSnapshot, len(s.ImportanceGain), len(s.ImportanceCount), s.FeatureCount)
	}
	if len(s.FeatureNames) != 0 && len(s.FeatureNames) != s.FeatureCount {
		return nil, fmt.Errorf("%w: %d feature names for %d features", ErrSnapshot, len(s.FeatureNames), s.FeatureCount)
	}

	gb := NewGradientBoosting()
	gb.Params = s.Params
	gb.Params.Task = task
	gb.baseScore = s.BaseScore
	gb.nFeatures = s.FeatureCount
	if len(s.FeatureNames) > 0 {
		gb.featureNames = append([]string(nil), s.FeatureNames...)
	}
	gb.importanceGain = append(make([]float64, 0, s.FeatureCount), s.ImportanceGain...)
	gb.importanceCount = append(make([]int, 0, s.FeatureCount), s.ImportanceCount...)
	gb.trees = make([]*Tree, len(s.Trees))
	for i, ts := range s.Trees {
		root, err := importNode(ts.Root)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		gb.trees[i] = &Tree{Root: root, Weight: ts.Weight}
	}
	return gb, nil
}

func importNode(ns *NodeSnapshot) (Node, error) {
	if ns == nil {
		return nil, fmt.Errorf("%w: missing node", ErrSnapshot)
	}
	switch ns.Kind {
	case kindLeaf:
		return &Leaf{Weight: ns.Weight}, nil
	case kindSplit:
		if ns.Left == nil || ns.Right == nil {
			return nil, fmt.Errorf("%w: split on feature %d lacks a child", ErrSnapshot, ns.Feature)
		}
		if ns.Feature < 0 {
			return nil, fmt.Errorf("%w: negative split feature %d", ErrSnapshot, ns.Feature)
		}
		left, err := importNode(ns.Left)
		if err != nil {
			return nil, err
		}
		right, err := importNode(ns.Right)
		if err != nil {
			return nil, err
		}
		return &Split{Feature: ns.Feature, Threshold: ns.Threshold, Left: left, Right: right}, nil
	}
	return nil, fmt.Errorf("%w: unknown node kind %q", ErrSnapshot, ns.Kind)
}

func (gb *GradientBoosting) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(gb.Export()); err != nil {
		return fmt.Errorf("encoding model as JSON: %w", err)
	}
	return nil
}

func ReadJSON(r io.Reader) (*GradientBoosting, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: decoding JSON: %v", ErrSnapshot, err)
	}
	return Import(&s)
}

func (gb *GradientBoosting) WriteGob(w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(gb.Export()); err != nil {
		return fmt.Errorf("encoding model as gob: %w", err)
	}
	return nil
}

func ReadGob(r io.Reader) (*GradientBoosting, error) {
	var s Snapshot
	if err := gob.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: decoding gob: %v", ErrSnapshot, err)
	}
	return Import(&s)
}

// SaveFile writes the model as gob when path ends in .gob and as JSON otherwise.
func (gb *GradientBoosting) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if isGob(path) {
		err = gb.WriteGob(f)
	} else {
		err = gb.WriteJSON(f)
	}
	if err != nil {
		return err
	}
	return f.Close()
}

// LoadFile reads a model written by SaveFile and attaches logger to it.
func LoadFile(path string, logger *zap.Logger) (*GradientBoosting, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var gb *GradientBoosting
	if isGob(path) {
		gb, err = ReadGob(f)
	} else {
		gb, err = ReadJSON(f)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	gb.SetLogger(logger)
	return gb, nil
}

func isGob(path string) bool { return strings.EqualFold(filepath.Ext(path), ".gob") }

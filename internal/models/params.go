package models

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/multierr"
)

const DefaultSeed uint64 = 42

// Params are the hyperparameters of a booster. The zero value is not usable; start from
// DefaultParams.
type Params struct {
	LearningRate    float64 `json:"learning_rate" yaml:"learning_rate" toml:"learning_rate" validate:"gt=0"`
	MaxDepth        int     `json:"max_depth" yaml:"max_depth" toml:"max_depth" validate:"gte=0"`
	MinChildWeight  float64 `json:"min_child_weight" yaml:"min_child_weight" toml:"min_child_weight" validate:"gte=0"`
	NumRounds       int     `json:"num_rounds" yaml:"num_rounds" toml:"num_rounds" validate:"gte=1"`
	Task            Task    `json:"task" yaml:"task" toml:"task" validate:"oneof=classification regression"`
	Lambda          float64 `json:"lambda" yaml:"lambda" toml:"lambda" validate:"gte=0"`
	Gamma           float64 `json:"gamma" yaml:"gamma" toml:"gamma" validate:"gte=0"`
	Subsample       float64 `json:"subsample" yaml:"subsample" toml:"subsample" validate:"gt=0,lte=1"`
	ColsampleByTree float64 `json:"colsample_bytree" yaml:"colsample_bytree" toml:"colsample_bytree" validate:"gt=0,lte=1"`
	Seed            uint64  `json:"seed" yaml:"seed" toml:"seed"`
	Workers         int     `json:"workers" yaml:"workers" toml:"workers" validate:"gte=0"`
}

func DefaultParams() Params {
	return Params{
		LearningRate:    0.3,
		MaxDepth:        4,
		MinChildWeight:  1,
		NumRounds:       100,
		Task:            Classification,
		Lambda:          1,
		Gamma:           0,
		Subsample:       1,
		ColsampleByTree: 1,
		Seed:            DefaultSeed,
		Workers:         1,
	}
}

var paramsValidate = validator.New()

// Validate reports every invalid field at once, wrapped in ErrConfig.
func (p Params) Validate() error {
	err := paramsValidate.Struct(p)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	var errs error
	for _, fe := range verrs {
		errs = multierr.Append(errs, fmt.Errorf("%s=%v fails %s%s", fe.Field(), fe.Value(), fe.Tag(), param(fe.Param())))
	}
	return fmt.Errorf("%w: %v", ErrConfig, errs)
}

func param(p string) string {
	if p == "" {
		return ""
	}
	return "=" + p
}

func (p Params) String() string {
	return fmt.Sprintf("%s %d rounds/%d depth/%.3f lr/%.3f lambda/%.3f gamma/%.3f mcw/%.2f ss/%.2f cs",
		p.Task, p.NumRounds, p.MaxDepth, p.LearningRate, p.Lambda, p.Gamma, p.MinChildWeight, p.Subsample, p.ColsampleByTree)
}

// LoadParamsFile reads params from a .yaml/.yml, .toml or .json file on top of
// DefaultParams and validates the result.
func LoadParamsFile(path string) (Params, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("reading params file %s: %w", path, err)
	}
	p := DefaultParams()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &p)
	case ".toml":
		err = toml.Unmarshal(raw, &p)
	case ".json":
		err = json.Unmarshal(raw, &p)
	default:
		return Params{}, fmt.Errorf("%w: unsupported params file extension %q", ErrConfig, ext)
	}
	if err != nil {
		return Params{}, fmt.Errorf("%w: parsing %s: %v", ErrConfig, path, err)
	}
	if p.Task, err = ParseTask(string(p.Task)); err != nil {
		return Params{}, err
	}
	return p, p.Validate()
}

package mixture

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/mixgo/codec"
	"github.com/hupe1980/mixgo/distributions"
	"github.com/hupe1980/mixgo/model"
)

// ProductModel holds the hyperparameters of a product mixture: the
// clustering prior and one feature model per column, grouped by kind.
type ProductModel struct {
	Clustering distributions.PitmanYor                  `json:"clustering" yaml:"clustering"`
	BB         []distributions.BetaBernoulli            `json:"bb,omitempty" yaml:"bb,omitempty" validate:"dive"`
	DD         []distributions.DirichletDiscrete        `json:"dd,omitempty" yaml:"dd,omitempty" validate:"dive"`
	DPD        []distributions.DirichletProcessDiscrete `json:"dpd,omitempty" yaml:"dpd,omitempty" validate:"dive"`
	GP         []distributions.GammaPoisson             `json:"gp,omitempty" yaml:"gp,omitempty" validate:"dive"`
	NICH       []distributions.NormalInverseChiSq       `json:"nich,omitempty" yaml:"nich,omitempty" validate:"dive"`

	// Order overrides the kind order, e.g. ["bb", "gp", "dd", "dpd", "nich"].
	Order []string `json:"order,omitempty" yaml:"order,omitempty" validate:"omitempty,len=5,dive,oneof=bb dd dpd gp nich"`
}

// Format is the encoding of a model definition file.
type Format uint8

const (
	FormatJSON Format = iota
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// FormatOf picks the format from a file name extension, ignoring a
// compression suffix. Anything that is not .yaml or .yml is JSON.
func FormatOf(name string) Format {
	name = strings.ToLower(name)
	for _, ext := range []string{".lz4", ".zst", ".zstd"} {
		name = strings.TrimSuffix(name, ext)
	}
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadModel decodes and validates a model definition. c decodes JSON; nil
// selects codec.Default.
func LoadModel(r io.Reader, format Format, c codec.Codec) (*ProductModel, error) {
	var m ProductModel
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("%w: decode yaml: %v", ErrInvalidModel, err)
		}
	default:
		if c == nil {
			c = codec.Default
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		if err := c.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidModel, c.Name(), err)
		}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks struct constraints and every model's hyperparameters.
func (m *ProductModel) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if err := m.Clustering.Validate(); err != nil {
		return fmt.Errorf("%w: clustering: %v", ErrInvalidModel, err)
	}
	if err := validateModels(model.BetaBernoulli, m.BB); err != nil {
		return err
	}
	if err := validateModels(model.DirichletDiscrete, m.DD); err != nil {
		return err
	}
	if err := validateModels(model.DirichletProcessDiscrete, m.DPD); err != nil {
		return err
	}
	if err := validateModels(model.GammaPoisson, m.GP); err != nil {
		return err
	}
	if err := validateModels(model.NormalInverseChiSq, m.NICH); err != nil {
		return err
	}
	if _, err := m.Schema(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	return nil
}

func validateModels[M interface{ Validate() error }](k model.Kind, models []M) error {
	for i, fm := range models {
		if err := fm.Validate(); err != nil {
			return fmt.Errorf("%w: %s[%d]: %v", ErrInvalidModel, k, i, err)
		}
	}
	return nil
}

// Schema returns the column layout described by the model.
func (m *ProductModel) Schema() (model.Schema, error) {
	s, err := model.NewSchema(map[model.Kind]int{
		model.BetaBernoulli:            len(m.BB),
		model.DirichletDiscrete:        len(m.DD),
		model.DirichletProcessDiscrete: len(m.DPD),
		model.GammaPoisson:             len(m.GP),
		model.NormalInverseChiSq:       len(m.NICH),
	})
	if err != nil || len(m.Order) == 0 {
		return s, err
	}
	order := make([]model.Kind, len(m.Order))
	for i, name := range m.Order {
		k, err := model.ParseKind(name)
		if err != nil {
			return model.Schema{}, err
		}
		order[i] = k
	}
	return s.WithOrder(order)
}

package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"slices"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"gopkg.in/yaml.v3"

	"github.com/vocdoni/shielded-notes/crypto/ecc/curves"
	"github.com/vocdoni/shielded-notes/log"
	"github.com/vocdoni/shielded-notes/types"
)

// Params holds the deployment parameters shared by every component. It is
// created once and passed explicitly, never mutated after validation.
type Params struct {
	// CurveType selects the BabyJubJub implementation (see curves package).
	CurveType string `yaml:"curveType"`
	// TreeDepth is the fixed depth of the commitment accumulator.
	TreeDepth int `yaml:"treeDepth"`
	// AmountBits bounds the bit length of every note amount.
	AmountBits int `yaml:"amountBits"`
	// NoteSize is the number of field elements of a note.
	NoteSize int `yaml:"noteSize"`
	// CommitmentVersion selects the commitment input layout.
	CommitmentVersion int `yaml:"commitmentVersion"`
	// DefaultTokenType is used by Mint when no token type is given.
	DefaultTokenType uint64 `yaml:"defaultTokenType"`
	// Workers is the number of transfers verified concurrently by the
	// batch processor.
	Workers int `yaml:"workers"`
	// LogLevel and LogOutput configure the package logger.
	LogLevel  string `yaml:"logLevel"`
	LogOutput string `yaml:"logOutput"`
}

// Default returns the parameters of the reference deployment.
func Default() *Params {
	return &Params{
		CurveType:         curves.CurveTypeBabyJubJub,
		TreeDepth:         types.CommitmentTreeLevels,
		AmountBits:        types.AmountBits,
		NoteSize:          types.NoteSize,
		CommitmentVersion: types.CommitmentVersion,
		DefaultTokenType:  types.DefaultTokenType,
		Workers:           4,
		LogLevel:          log.LogLevelInfo,
		LogOutput:         "stderr",
	}
}

// Load reads a YAML file on top of the default parameters. Keys missing in
// the file keep their default value.
func Load(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML encoded parameters on top of the defaults and
// validates the result.
func Parse(data []byte) (*Params, error) {
	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("cannot decode config: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Marshal encodes the parameters as YAML.
func (p *Params) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}

// Modulus returns a copy of the scalar field modulus all values live in.
func (p *Params) Modulus() *big.Int {
	return fr.Modulus()
}

// Validate checks the parameters are consistent.
func (p *Params) Validate() error {
	if p == nil {
		return errors.New("nil params")
	}
	if !slices.Contains(curves.Curves(), p.CurveType) {
		return fmt.Errorf("unsupported curve type %q, expected one of %v", p.CurveType, curves.Curves())
	}
	if p.TreeDepth < 1 || p.TreeDepth > 64 {
		return fmt.Errorf("invalid tree depth %d", p.TreeDepth)
	}
	// amounts must be summable without wrapping around the modulus
	if p.AmountBits < 1 || p.AmountBits > fr.Bits-8 {
		return fmt.Errorf("invalid amount bits %d", p.AmountBits)
	}
	if p.NoteSize != types.NoteSize {
		return fmt.Errorf("unsupported note size %d", p.NoteSize)
	}
	if p.CommitmentVersion != types.CommitmentVersion {
		return fmt.Errorf("unsupported commitment version %d", p.CommitmentVersion)
	}
	if p.Workers < 1 {
		return fmt.Errorf("invalid number of workers %d", p.Workers)
	}
	switch p.LogLevel {
	case log.LogLevelDebug, log.LogLevelInfo, log.LogLevelWarn, log.LogLevelError:
	default:
		return fmt.Errorf("invalid log level %q", p.LogLevel)
	}
	return nil
}

// InitLogger initializes the package logger with the configured level and
// output.
func (p *Params) InitLogger() {
	log.Init(p.LogLevel, p.LogOutput, nil)
}

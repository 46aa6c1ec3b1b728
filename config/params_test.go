package config

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/shielded-notes/crypto/ecc/curves"
	"github.com/vocdoni/shielded-notes/log"
)

func TestDefault(t *testing.T) {
	c := qt.New(t)
	p := Default()
	c.Assert(p.Validate(), qt.IsNil)
	c.Assert(p.TreeDepth, qt.Equals, 16)
	c.Assert(p.AmountBits, qt.Equals, 64)
	c.Assert(p.NoteSize, qt.Equals, 15)
	c.Assert(p.Modulus().String(), qt.Equals,
		"21888242871839275222246405745257275088548364400416034343698204186575808495617")
}

func TestParamsKeys(t *testing.T) {
	c := qt.New(t)
	data, err := Default().Marshal()
	c.Assert(err, qt.IsNil)
	for _, key := range []string{"curveType", "treeDepth", "amountBits", "workers"} {
		c.Assert(string(data), qt.Contains, key+":")
	}
	// the hash input limit is a protocol constant
	c.Assert(string(data), qt.Not(qt.Contains), "maxHashInputs")
}

func TestParseKeepsDefaults(t *testing.T) {
	c := qt.New(t)
	p, err := Parse([]byte("treeDepth: 20\ncurveType: bjj_gnark\n"))
	c.Assert(err, qt.IsNil)
	c.Assert(p.TreeDepth, qt.Equals, 20)
	c.Assert(p.CurveType, qt.Equals, curves.CurveTypeBabyJubJubGnark)
	c.Assert(p.AmountBits, qt.Equals, Default().AmountBits)
	c.Assert(p.Workers, qt.Equals, Default().Workers)
}

func TestParseInvalid(t *testing.T) {
	c := qt.New(t)
	for _, doc := range []string{
		"treeDepth: 0",
		"amountBits: 250",
		"curveType: ed25519",
		"commitmentVersion: 2",
		"noteSize: 16",
		"workers: 0",
		"logLevel: trace",
		"treeDepth: [",
	} {
		_, err := Parse([]byte(doc))
		c.Assert(err, qt.Not(qt.IsNil), qt.Commentf("document %q", doc))
	}
}

func TestParseUnsupportedCurve(t *testing.T) {
	c := qt.New(t)
	_, err := Parse([]byte("curveType: ed25519"))
	c.Assert(err, qt.ErrorMatches, `unsupported curve type "ed25519", expected one of \[bjj_iden3 bjj_gnark\]`)
}

func TestLoad(t *testing.T) {
	c := qt.New(t)
	p := Default()
	p.Workers = 8
	data, err := p.Marshal()
	c.Assert(err, qt.IsNil)

	path := filepath.Join(t.TempDir(), "params.yml")
	c.Assert(os.WriteFile(path, data, 0o600), qt.IsNil)
	loaded, err := Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(loaded, qt.DeepEquals, p)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestInitLogger(t *testing.T) {
	c := qt.New(t)
	t.Cleanup(func() { log.Init(log.LogLevelError, "stderr", nil) })

	p := Default()
	p.LogLevel = log.LogLevelWarn
	p.InitLogger()
	c.Assert(log.Level(), qt.Equals, log.LogLevelWarn)

	p.LogOutput = filepath.Join(t.TempDir(), "notes.log")
	p.LogLevel = log.LogLevelDebug
	p.InitLogger()
	log.Debugw("file output", "ok", true)
	data, err := os.ReadFile(p.LogOutput)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Contains, "file output")
}

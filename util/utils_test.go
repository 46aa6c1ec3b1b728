package util

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestTrimHex(t *testing.T) {
	c := qt.New(t)
	c.Assert(TrimHex("0xabc"), qt.Equals, "abc")
	c.Assert(TrimHex("0Xabc"), qt.Equals, "abc")
	c.Assert(TrimHex("abc"), qt.Equals, "abc")
	c.Assert(TrimHex("0"), qt.Equals, "0")
}

package sourcemap

import (
	"testing"

	"github.com/routec/routec/internal/logger"
	"github.com/routec/routec/internal/test"
)

func TestVLQRoundTrip(t *testing.T) {
	values := []int{0, 1, -1, 15, 16, -16, 511, 512, 123456789, -123456789}
	for _, value := range values {
		encoded := encodeVLQ(nil, value)
		decoded, next := DecodeVLQ(encoded, 0)
		test.AssertEqual(t, decoded, value)
		test.AssertEqual(t, next, len(encoded))
	}
}

func TestLineOffsetTables(t *testing.T) {
	tables := GenerateLineOffsetTables("ab\ncd\r\nef", 0)
	test.AssertEqual(t, len(tables), 3)
	test.AssertEqual(t, tables[0].byteOffsetToStartOfLine, int32(0))
	test.AssertEqual(t, tables[1].byteOffsetToStartOfLine, int32(3))
	test.AssertEqual(t, tables[2].byteOffsetToStartOfLine, int32(7))

	// A trailing newline still produces an entry for the final empty line
	tables = GenerateLineOffsetTables("ab\n", 0)
	test.AssertEqual(t, len(tables), 2)
	test.AssertEqual(t, tables[1].byteOffsetToStartOfLine, int32(3))
}

func TestChunkBuilder(t *testing.T) {
	contents := "first\nsecond\n"
	tables := GenerateLineOffsetTables(contents, 0)
	b := MakeChunkBuilder(tables)

	output := []byte("first\nsecond\n")
	b.AddSourceMapping(logger.Loc{Start: 0}, output[:0])
	b.AddSourceMapping(logger.Loc{Start: 6}, output[:6])
	chunk := b.GenerateChunk(output)

	// One mapping per line, separated by the line marker
	test.AssertEqual(t, string(chunk.Buffer), "AAAA;AACA;")
}

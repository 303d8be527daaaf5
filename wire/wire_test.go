package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatusResults(t *testing.T) {
	for _, tc := range []struct {
		name  string
		input string
		want  Status
	}{
		{"data_nil_length", "A0\n", Status{Code: CodeData, Length: 0}},
		{"data_with_length", "A101\n", Status{Code: CodeData, Length: 101}},
		{"ok_none", "C\n", Status{Code: CodeNoData}},
		{"key_not_found", "D\n", Status{Code: CodeKeyNotFound}},
		{"key_not_unique", "E\n", Status{Code: CodeKeyNotUnique}},
		{"invalid", "F foo\n", Status{Code: CodeInvalid, Message: "foo"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			consumed, status, err := ParseStatus([]byte(tc.input))
			require.NoError(t, err)
			// The full preamble is consumed, exactly.
			assert.Equal(t, len(tc.input), consumed)
			assert.Equal(t, tc.want, status)
		})
	}
}

func TestParseStatusIncomplete(t *testing.T) {
	for _, input := range []string{
		"", "C", "D", "E", "A", "A1", "F", "F foo",
	} {
		t.Run("input_"+input, func(t *testing.T) {
			_, _, err := ParseStatus([]byte(input))
			assert.ErrorIs(t, err, ErrIncomplete)
		})
	}
}

func TestParseStatusMalformed(t *testing.T) {
	for _, input := range []string{
		"\n", "Z", "A\n", "Afoo", "C1", "F\n", "Fmsg", "F \xc0\n",
	} {
		t.Run("input_"+input, func(t *testing.T) {
			_, _, err := ParseStatus([]byte(input))
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestParseStatusConsumesOnlyPreamble(t *testing.T) {
	consumed, status, err := ParseStatus([]byte("A5\npayload"))
	require.NoError(t, err)
	assert.Equal(t, 3, consumed)
	assert.Equal(t, 5, status.Length)
	assert.True(t, status.OK())
}

func TestEndOfResponse(t *testing.T) {
	consumed, err := EndOfResponse([]byte("\nC\nA5\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, consumed)

	for _, prefix := range []string{"", "\n", "\nC"} {
		_, err := EndOfResponse([]byte(prefix))
		assert.ErrorIs(t, err, ErrIncomplete, "prefix %q", prefix)
	}

	_, err = EndOfResponse([]byte("AS65000 "))
	assert.ErrorIs(t, err, ErrParse)
}

func TestWord(t *testing.T) {
	consumed, word, err := Word([]byte("AS65000 AS65001\nC\n"))
	require.NoError(t, err)
	assert.Equal(t, []byte("AS65000"), word)
	assert.Equal(t, 8, consumed, "trailing space is consumed")

	consumed, word, err = Word([]byte("AS65001\nC\n"))
	require.NoError(t, err)
	assert.Equal(t, []byte("AS65001"), word)
	assert.Equal(t, 7, consumed, "terminating newline is left in place")
}

func TestWordIncomplete(t *testing.T) {
	for _, input := range []string{"", "AS65000", "AS65000   "} {
		_, _, err := Word([]byte(input))
		assert.ErrorIs(t, err, ErrIncomplete, "input %q", input)
	}
}

func TestWordAtTerminator(t *testing.T) {
	_, _, err := Word([]byte("\nC\n"))
	assert.ErrorIs(t, err, ErrParse)
	_, _, err = Word([]byte(" x\n"))
	assert.ErrorIs(t, err, ErrParse)
}

func TestParagraphBlankLineDelimited(t *testing.T) {
	input := []byte("route: 192.0.2.0/24\norigin: AS65000\n\nroute: 198.51.100.0/24\nC\n")

	consumed, para, err := Paragraph(input)
	require.NoError(t, err)
	assert.Equal(t, []byte("route: 192.0.2.0/24\norigin: AS65000"), para)

	// The second newline of the delimiter is left behind and tolerated by
	// the next call.
	rest := input[consumed:]
	require.Equal(t, byte('\n'), rest[0])

	consumed, para, err = Paragraph(rest)
	require.NoError(t, err)
	assert.Equal(t, []byte("route: 198.51.100.0/24"), para)
	_, err = EndOfResponse(rest[consumed:])
	require.NoError(t, err)
}

func TestParagraphUpToEOR(t *testing.T) {
	consumed, para, err := Paragraph([]byte("mntner: MNT-EXAMPLE\nsource: RADB\nC\n"))
	require.NoError(t, err)
	assert.Equal(t, []byte("mntner: MNT-EXAMPLE\nsource: RADB"), para)
	assert.Equal(t, len("mntner: MNT-EXAMPLE\nsource: RADB"), consumed)
}

func TestParagraphIncomplete(t *testing.T) {
	for _, input := range []string{"", "\n", "mntner: MNT-EXAMPLE\nsourc"} {
		_, _, err := Paragraph([]byte(input))
		assert.ErrorIs(t, err, ErrIncomplete, "input %q", input)
	}
}

func TestAll(t *testing.T) {
	consumed, data, err := All([]byte("IRRd -- version 4.4.2\nC\n"))
	require.NoError(t, err)
	assert.Equal(t, []byte("IRRd -- version 4.4.2"), data)
	assert.Equal(t, 21, consumed)

	_, _, err = All([]byte("IRRd -- version"))
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestNoop(t *testing.T) {
	consumed, data, err := Noop([]byte("anything"))
	require.NoError(t, err)
	assert.Zero(t, consumed)
	assert.Empty(t, data)
}

func TestParsersDoNotPanicOnArbitraryPrefixes(t *testing.T) {
	inputs := [][]byte{
		nil, {0}, []byte("\n\n\n"), []byte("A99999999999999999999\n"),
		[]byte("F \xff\xfe\n"), []byte("C\nC\nC\n"), []byte("   "),
	}
	for _, input := range inputs {
		for i := 0; i <= len(input); i++ {
			prefix := input[:i]
			assert.NotPanics(t, func() {
				_, _, _ = ParseStatus(prefix)
				_, _ = EndOfResponse(prefix)
				_, _, _ = Word(prefix)
				_, _, _ = Paragraph(prefix)
				_, _, _ = All(prefix)
				_, _, _ = Noop(prefix)
			})
		}
	}
}

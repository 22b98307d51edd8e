package command

import (
	"strings"
	"testing"

	"github.com/cuemby/kvsd/pkg/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexerNextClassifiesEachCommand(t *testing.T) {
	input := strings.Join([]string{
		"WRITE [(a,1)(b,2)]",
		"READ [a,b,c]",
		"DELETE [a,c]",
		"SHOW",
		"WAIT 100",
		"BACKUP",
		"HELP",
		"",
		"NONSENSE",
	}, "\n")

	lex := NewLexer(strings.NewReader(input))

	want := []Kind{
		KindWrite, KindRead, KindDelete, KindShow, KindWait,
		KindBackup, KindHelp, KindEmpty, KindInvalid, KindEOC,
	}
	for i, k := range want {
		cmd, err := lex.Next()
		require.NoError(t, err, "command %d", i)
		assert.Equal(t, k, cmd.Kind, "command %d (%s)", i, k)
	}
}

func TestParseWrite(t *testing.T) {
	pairs, err := ParseWrite("[(a,1)(b,2)]")
	require.NoError(t, err)
	assert.Equal(t, []kvstore.Pair{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}}, pairs)
}

func TestParseWriteRejectsEmptyList(t *testing.T) {
	_, err := ParseWrite("[]")
	assert.ErrorIs(t, err, ErrParse)
}

func TestParseWriteRejectsMalformedPair(t *testing.T) {
	tests := []string{
		"[(a,1)",     // unterminated bracket
		"[a,1)]",     // missing opening paren
		"[(a)]",      // no comma
		"not brackets",
	}
	for _, tt := range tests {
		_, err := ParseWrite(tt)
		assert.ErrorIs(t, err, ErrParse, tt)
	}
}

func TestParseKeyList(t *testing.T) {
	keys, err := ParseKeyList("[a,b,c]")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestParseKeyListRejectsEmpty(t *testing.T) {
	_, err := ParseKeyList("[]")
	assert.ErrorIs(t, err, ErrParse)
}

func TestParseWait(t *testing.T) {
	delay, err := ParseWait("250")
	require.NoError(t, err)
	assert.Equal(t, uint(250), delay)
}

func TestParseWaitZeroIsValid(t *testing.T) {
	delay, err := ParseWait("0")
	require.NoError(t, err)
	assert.Equal(t, uint(0), delay)
}

func TestParseWaitRejectsNonNumeric(t *testing.T) {
	_, err := ParseWait("soon")
	assert.ErrorIs(t, err, ErrParse)
}

func TestParseWaitRejectsMissingOperand(t *testing.T) {
	_, err := ParseWait("")
	assert.ErrorIs(t, err, ErrParse)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "WRITE", KindWrite.String())
	assert.Equal(t, "EOC", KindEOC.String())
}

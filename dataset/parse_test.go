package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDelimited(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		opts     []Option
		expected [][]float64
	}{
		{
			name:     "Comma",
			input:    "1,2,3\n4.5,-6,7e2\n",
			expected: [][]float64{{1, 2, 3}, {4.5, -6, 700}},
		},
		{
			name:     "BlankLinesAndComments",
			input:    "# x,y\n\n1,2\n\n# mid\n3,4",
			expected: [][]float64{{1, 2}, {3, 4}},
		},
		{
			name:     "SpacesAndTrailingDelimiter",
			input:    "1, 2, 3,\n4 ,5 ,6\r\n",
			expected: [][]float64{{1, 2, 3}, {4, 5, 6}},
		},
		{
			name:     "Header",
			input:    "x,y\n1,2\n",
			opts:     []Option{WithHeader()},
			expected: [][]float64{{1, 2}},
		},
		{
			name:     "Tab",
			input:    "1\t2\n3\t4\n",
			opts:     []Option{WithDelimiter('\t')},
			expected: [][]float64{{1, 2}, {3, 4}},
		},
		{
			name:     "RaggedRowsKept",
			input:    "1,2\n3\n",
			expected: [][]float64{{1, 2}, {3}},
		},
		{
			name:     "Empty",
			input:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ParseDelimited(strings.NewReader(tt.input), tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rows)
		})
	}
}

func TestParseDelimited_Errors(t *testing.T) {
	_, err := ParseDelimited(strings.NewReader("1,2\n3,abc\n"))
	require.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), `"abc"`)

	_, err = ParseDelimited(strings.NewReader("1,\"2\n"))
	assert.ErrorIs(t, err, ErrParse)
}

func TestParseDelimited_CommentsDisabled(t *testing.T) {
	_, err := ParseDelimited(strings.NewReader("#1,2\n"), WithComment(0))
	assert.ErrorIs(t, err, ErrParse)
}

func TestFormatRow(t *testing.T) {
	assert.Equal(t, "1,2.5,-3", FormatRow([]float64{1, 2.5, -3}, ','))
	assert.Equal(t, "0.1 1e+21", FormatRow([]float64{0.1, 1e21}, ' '))
	assert.Equal(t, "", FormatRow(nil, ','))

	row := []float64{0.1, 1.0 / 3, 12345.678}
	parsed, err := ParseDelimited(strings.NewReader(FormatRow(row, ',')))
	require.NoError(t, err)
	assert.Equal(t, [][]float64{row}, parsed)
}

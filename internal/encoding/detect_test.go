package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/famvest/internal/encoding"
)

func TestNewUTF8Reader(t *testing.T) {
	tests := []struct {
		name        string
		input       []byte
		want        string
		wantCharset encoding.Charset
	}{
		{
			name:        "PlainUTF8",
			input:       []byte(`{"users":[{"name":"Self","avatar":"👤"}]}`),
			want:        `{"users":[{"name":"Self","avatar":"👤"}]}`,
			wantCharset: encoding.UTF8,
		},
		{
			name:        "UTF8BOMStripped",
			input:       append([]byte{0xEF, 0xBB, 0xBF}, `{"name":"Café"}`...),
			want:        `{"name":"Café"}`,
			wantCharset: encoding.UTF8,
		},
		{
			name:        "UTF16LE",
			input:       []byte{0xFF, 0xFE, '{', 0, '}', 0},
			want:        `{}`,
			wantCharset: encoding.UTF16LE,
		},
		{
			name:        "UTF16BE",
			input:       []byte{0xFE, 0xFF, 0, '[', 0, ']'},
			want:        `[]`,
			wantCharset: encoding.UTF16BE,
		},
		{
			// "Café Coffee Day" saved by a Windows editor: é = 0xE9.
			// chardet may report any latin-1 family charset here.
			name:  "Windows1252",
			input: []byte{'{', '"', 'n', '"', ':', '"', 'C', 'a', 'f', 0xE9, ' ', 'C', 'o', 'f', 'f', 'e', 'e', ' ', 'D', 'a', 'y', '"', '}'},
			want:  `{"n":"Café Coffee Day"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, charset, err := encoding.NewUTF8Reader(bytes.NewReader(tt.input))
			require.NoError(t, err)

			got, err := io.ReadAll(r)
			require.NoError(t, err)

			assert.Equal(t, tt.want, string(got))

			if tt.wantCharset != "" {
				assert.Equal(t, tt.wantCharset, charset)
			}
		})
	}
}

func TestNewUTF8Reader_LargeInput(t *testing.T) {
	input := bytes.Repeat([]byte(`{"id":"x"},`), 2000)

	r, charset, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	assert.Equal(t, encoding.UTF8, charset)
	assert.Len(t, got, len(input))
}

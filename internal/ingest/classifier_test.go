package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		declaredType string
		size         int64
		want         Kind
		wantErr      error
	}{
		{name: "pdf", declaredType: "application/pdf", size: 1024, want: KindPDF},
		{name: "png", declaredType: "image/png", size: 1024, want: KindImage},
		{name: "jpeg with params", declaredType: "image/jpeg; charset=binary", size: 1024, want: KindImage},
		{name: "plain text rejected", declaredType: "text/plain", size: 1024, wantErr: ErrUnsupportedType},
		{name: "powerpoint rejected", declaredType: "application/vnd.ms-powerpoint", size: 1024, wantErr: ErrUnsupportedType},
		{name: "pdf with suffix rejected", declaredType: "application/pdf+xml", size: 1024, wantErr: ErrUnsupportedType},
		{name: "at size bound", declaredType: "application/pdf", size: MaxFileSize, want: KindPDF},
		{name: "oversize pdf", declaredType: "application/pdf", size: 60 * 1024 * 1024, wantErr: ErrOversizeFile},
		{name: "oversize beats unsupported", declaredType: "text/plain", size: 60 * 1024 * 1024, wantErr: ErrOversizeFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.declaredType, tt.size, nil)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifySniffsWhenTypeMissing(t *testing.T) {
	kind, err := Classify("", 4, []byte("%PDF-1.4\n"))
	require.NoError(t, err)
	assert.Equal(t, KindPDF, kind)

	pngHeader := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	kind, err = Classify("", int64(len(pngHeader)), pngHeader)
	require.NoError(t, err)
	assert.Equal(t, KindImage, kind)

	_, err = Classify("", 5, []byte("hello"))
	require.ErrorIs(t, err, ErrUnsupportedType)
}

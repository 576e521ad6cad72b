package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommentText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr error
	}{
		{name: "empty", wantErr: ErrCommentTextRequired},
		{name: "whitespace only", text: " \n\t", wantErr: ErrCommentTextRequired},
		{name: "trims", text: "  nice post  ", want: "nice post"},
		{name: "at the cap", text: strings.Repeat("b", MAX_COMMENT_TEXT_LEN), want: strings.Repeat("b", MAX_COMMENT_TEXT_LEN)},
		{name: "over the cap", text: strings.Repeat("b", MAX_COMMENT_TEXT_LEN+1), wantErr: ErrCommentTextTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateCommentText(tt.text)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsDomain(t *testing.T) {
	assert.True(t, IsDomain(ErrPostNotFound))
	assert.True(t, IsDomain(ErrNotCommentAuthor))
	assert.True(t, IsDomain(ErrTextOrImageRequired))
	assert.False(t, IsDomain(ErrInternal))
	assert.False(t, IsDomain(assert.AnError))
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_KindMatching(t *testing.T) {
	err := fmt.Errorf("loading: %w", &Error{Kind: NotFound, Subject: "backup.json"})

	assert.True(t, errors.Is(err, &Error{Kind: NotFound}))
	assert.False(t, errors.Is(err, &Error{Kind: ParseError}))
	assert.Equal(t, NotFound, KindOf(err))
	assert.Equal(t, ErrorKind(0), KindOf(errors.New("plain")))
}

func TestError_Messages(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		err  *Error
		want string
	}{
		{&Error{Kind: NotFound, Subject: "in.json"}, "input file 'in.json' not found"},
		{&Error{Kind: ParseError, Subject: "in.json", Err: cause}, "invalid JSON file in.json: boom"},
		{&Error{Kind: MissingData, Subject: "in.json"}, "no 'marks' data found in in.json"},
		{&Error{Kind: ImageWriteFailed, Subject: "a_b.jpg", Err: cause}, "saving image a_b.jpg: boom"},
		{&Error{Kind: TimestampInvalid, Subject: "2024", Err: cause}, `invalid timestamp key "2024": boom`},
		{&Error{Kind: NoteInvalid, Subject: "2024", Err: cause}, "invalid note 2024: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}

	assert.ErrorIs(t, &Error{Kind: ParseError, Err: cause}, cause)
}

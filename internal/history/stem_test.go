// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStem(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "BM_Foo", want: "BM_Foo"},
		{name: "BM_Conv/8/3", want: "BM_Conv~2F8~2F3"},
		{name: "BM_a b", want: "BM_a~20b"},
		{name: "BM_x~y", want: "BM_x~7Ey"},
		{name: "BM_v1.2-rc", want: "BM_v1.2-rc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Stem(tt.name)
			assert.Equal(t, tt.want, got)

			back, err := NameFromStem(got)
			require.NoError(t, err)
			assert.Equal(t, tt.name, back)
		})
	}
}

func TestNameFromStem_Invalid(t *testing.T) {
	tests := []struct {
		name string
		stem string
		msg  string
	}{
		{name: "dangling tilde", stem: "BM_~", msg: "truncated escape"},
		{name: "short escape", stem: "BM_~2", msg: "truncated escape"},
		{name: "bad hex", stem: "BM_~ZZ", msg: "invalid escape"},
		{name: "lowercase hex", stem: "BM_a~2fb", msg: "non-canonical stem"},
		{name: "escaped plain byte", stem: "BM_~41", msg: "non-canonical stem"},
		{name: "raw unsafe byte", stem: "BM_a b", msg: "non-canonical stem"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NameFromStem(tt.stem)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

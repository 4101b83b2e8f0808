package handler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexibleInt_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   int
		wantOK bool
	}{
		{name: "数値", input: `50`, want: 50, wantOK: true},
		{name: "数値文字列", input: `"50"`, want: 50, wantOK: true},
		{name: "ゼロ", input: `0`, want: 0, wantOK: true},
		{name: "負の数値", input: `-3`, want: -3, wantOK: true},
		{name: "負の数値文字列", input: `"-3"`, want: -3, wantOK: true},
		{name: "数値でない文字列", input: `"abc"`, wantOK: false},
		{name: "小数", input: `1.5`, wantOK: false},
		{name: "空文字列", input: `""`, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexibleInt
			// 解釈できない値でもバインド自体は成功する
			require.NoError(t, json.Unmarshal([]byte(tt.input), &f))

			n, ok := f.Value()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, n)
			}
		})
	}
}

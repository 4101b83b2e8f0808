package handler

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FlexibleInt は数値または数値文字列のどちらでも受け付けるJSON整数
// "50" のような文字列入力を50として扱う
// 解釈できない値はバインドエラーにせず、Valueのokで区別する
type FlexibleInt struct {
	value int
	valid bool
}

// UnmarshalJSON はjson.Unmarshalerを実装する
// 整数として解釈できない値でもエラーを返さない
func (f *FlexibleInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if n, err := strconv.Atoi(s); err == nil {
		f.value = n
		f.valid = true
	}
	return nil
}

// Value は解釈した整数と、整数として解釈できたかを返す
func (f FlexibleInt) Value() (int, bool) {
	return f.value, f.valid
}

var _ json.Unmarshaler = (*FlexibleInt)(nil)

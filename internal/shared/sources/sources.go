// Package sources はインデックスのデータソース識別子を定義します。
package sources

import (
	"errors"
	"fmt"
)

// TwelveData はTwelve Data APIを起点とするデータソースです。
const TwelveData = "twelvedata"

// ErrInvalidSource は認識されないソース識別子に対して返されます。
var ErrInvalidSource = errors.New("invalid source")

// valid は認識されるソースの集合です。
var valid = map[string]struct{}{
	TwelveData: {},
}

// Validate はソース識別子が認識されるものか検証します。
func Validate(source string) error {
	if _, ok := valid[source]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidSource, source)
	}
	return nil
}

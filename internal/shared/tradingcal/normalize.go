package tradingcal

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDateFormat は日付指定の形式が解釈できない場合に返されます。
var ErrInvalidDateFormat = errors.New("invalid date format")

// ParseDate は単一の日付文字列（"2006-01-02" または "20060102"）をパースします。
func ParseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "20060102"} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
}

// Normalize は多様な日付指定を昇順・重複なしの日付列へ正規化します。
//
// 受け付ける形式:
//   - nil:                フィルタなし（nilを返す）
//   - int:                YYYYMMDD形式の単一日付
//   - string:             単一日付、または "start:end" 形式の両端含む範囲
//   - time.Time:          単一日付
//   - []time.Time / []string: 日付の集合
//
// 範囲指定の場合、結果は取引カレンダー上の有効な取引日のみに制限されます。
// 上記以外の形式は ErrInvalidDateFormat を返します。
func Normalize(spec any) ([]time.Time, error) {
	switch v := spec.(type) {
	case nil:
		return nil, nil

	case int:
		return Normalize(strconv.Itoa(v))

	case string:
		if start, end, ok := strings.Cut(v, ":"); ok {
			startDate, err := ParseDate(start)
			if err != nil {
				return nil, err
			}
			endDate, err := ParseDate(end)
			if err != nil {
				return nil, err
			}
			if startDate.After(endDate) {
				return nil, fmt.Errorf("%w: range start %s after end %s", ErrInvalidDateFormat, start, end)
			}
			return ValidDays(startDate, endDate), nil
		}
		d, err := ParseDate(v)
		if err != nil {
			return nil, err
		}
		return []time.Time{d}, nil

	case time.Time:
		return []time.Time{DateOf(v)}, nil

	case []time.Time:
		return sortDedup(v), nil

	case []string:
		ds := make([]time.Time, 0, len(v))
		for _, s := range v {
			d, err := ParseDate(s)
			if err != nil {
				return nil, err
			}
			ds = append(ds, d)
		}
		return sortDedup(ds), nil

	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidDateFormat, spec)
	}
}

// sortDedup は日付へ切り捨てた上で昇順に整列し、重複を除きます。
func sortDedup(ts []time.Time) []time.Time {
	ds := make([]time.Time, 0, len(ts))
	for _, t := range ts {
		ds = append(ds, DateOf(t))
	}
	sort.Slice(ds, func(i, j int) bool { return ds[i].Before(ds[j]) })
	out := ds[:0]
	for i, d := range ds {
		if i == 0 || !d.Equal(out[len(out)-1]) {
			out = append(out, d)
		}
	}
	return out
}

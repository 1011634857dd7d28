// Package tradingcal はNYSEの取引カレンダーと日付正規化を提供します。
package tradingcal

import "time"

// NY はNYSEの現地タイムゾーンです。
var NY = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// DateOf は時刻を切り捨て、UTC深夜0時の日付として返します。
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsTradingDay は指定日がNYSEの取引日かどうかを返します。
// 週末と祝日（振替含む）は取引日ではありません。
// 臨時休場（サーキットブレーカーや服喪日など）はモデル化していません。
func IsTradingDay(d time.Time) bool {
	d = DateOf(d)
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !isHoliday(d)
}

// NextTradingDay は指定日より後の最初の取引日を返します。
func NextTradingDay(d time.Time) time.Time {
	d = DateOf(d).AddDate(0, 0, 1)
	for !IsTradingDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// ValidDays は区間 [start, end]（両端含む）の取引日を昇順で返します。
func ValidDays(start, end time.Time) []time.Time {
	start, end = DateOf(start), DateOf(end)
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsTradingDay(d) {
			days = append(days, d)
		}
	}
	return days
}

// isHoliday はNYSEの祝日規則を判定します。
func isHoliday(d time.Time) bool {
	y := d.Year()
	for _, h := range holidays(y) {
		if h.Equal(d) {
			return true
		}
	}
	return false
}

// holidays は指定年のNYSE休場日（振替適用後）を返します。
func holidays(year int) []time.Time {
	hs := []time.Time{
		observed(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)),
		nthWeekday(year, time.January, time.Monday, 3),  // Martin Luther King Jr. Day
		nthWeekday(year, time.February, time.Monday, 3), // Washington's Birthday
		goodFriday(year),
		lastWeekday(year, time.May, time.Monday), // Memorial Day
		observed(time.Date(year, time.July, 4, 0, 0, 0, 0, time.UTC)),
		nthWeekday(year, time.September, time.Monday, 1),   // Labor Day
		nthWeekday(year, time.November, time.Thursday, 4),  // Thanksgiving
		observed(time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC)),
	}
	if year >= 2022 { // Juneteenth
		hs = append(hs, observed(time.Date(year, time.June, 19, 0, 0, 0, 0, time.UTC)))
	}
	return hs
}

// observed は土曜を前日の金曜、日曜を翌日の月曜に振り替えます。
// 元日が土曜の場合、NYSEは振替観測を行いません。
func observed(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		if d.Month() == time.January && d.Day() == 1 {
			return d // 週末のままなので休場日としては無効
		}
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	}
	return d
}

// nthWeekday は指定月のn番目の指定曜日を返します。
func nthWeekday(year int, month time.Month, wd time.Weekday, n int) time.Time {
	d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(wd) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset+(n-1)*7)
}

// lastWeekday は指定月の最後の指定曜日を返します。
func lastWeekday(year int, month time.Month, wd time.Weekday) time.Time {
	d := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	offset := (int(d.Weekday()) - int(wd) + 7) % 7
	return d.AddDate(0, 0, -offset)
}

// goodFriday は復活祭（グレゴリオ暦の匿名アルゴリズム）の2日前を返します。
func goodFriday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	easter := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return easter.AddDate(0, 0, -2)
}

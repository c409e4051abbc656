package service

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var viPrinter = message.NewPrinter(language.Vietnamese)

// vnZone is Vietnam time; month labels follow the donors' calendar.
var vnZone = time.FixedZone("ICT", 7*60*60)

// FormatVND groups digits the vi-VN way and appends the dong sign: 2450000 -> "2.450.000đ".
func FormatVND(amount int64) string {
	return viPrinter.Sprintf("%d", amount) + "đ"
}

// TimeAgo renders the Vietnamese relative time used by the donation feed.
func TimeAgo(created, now time.Time) string {
	mins := int64(now.Sub(created) / time.Minute)
	switch {
	case mins < 1:
		return "Vừa xong"
	case mins < 60:
		return fmt.Sprintf("%d phút trước", mins)
	case mins < 24*60:
		return fmt.Sprintf("%d giờ trước", mins/60)
	default:
		return fmt.Sprintf("%d ngày trước", mins/(24*60))
	}
}

// MonthLabel is the expenses table key for t, e.g. "Tháng 2/2026".
func MonthLabel(t time.Time) string {
	t = t.In(vnZone)
	return fmt.Sprintf("Tháng %d/%d", int(t.Month()), t.Year())
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

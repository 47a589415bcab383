package humanize

import "testing"

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 байт"},
		{-5, "0 байт"},
		{1, "1 байт"},
		{1023, "1023 байт"},
		{1024, "1 КБ"},
		{1536, "1.5 КБ"},
		{1100, "1.07 КБ"},
		{1152, "1.13 КБ"},
		{1664, "1.63 КБ"},
		{1179648, "1.13 МБ"},
		{2688, "2.63 КБ"},
		{1048575, "1024 КБ"},
		{1048576, "1 МБ"},
		{5 * 1024 * 1024, "5 МБ"},
		{10 * 1024 * 1024, "10 МБ"},
		{1024 * 1024 * 1024, "1024 МБ"},
		{3 * 1024 * 1024 * 1024, "3072 МБ"},
	}

	for _, tt := range tests {
		if got := FormatSize(tt.bytes); got != tt.expected {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.bytes, got, tt.expected)
		}
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{0, "0 сек"},
		{-3, "0 сек"},
		{0.4, "0 сек"},
		{0.5, "1 сек"},
		{45, "45 сек"},
		{59.4, "59 сек"},
		{60, "1 мин 0 сек"},
		{125, "2 мин 5 сек"},
		{125.6, "2 мин 6 сек"},
		{3600, "60 мин 0 сек"},
	}

	for _, tt := range tests {
		if got := FormatTime(tt.seconds); got != tt.expected {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.seconds, got, tt.expected)
		}
	}
}

func TestTrimDecimals(t *testing.T) {
	tests := map[string]string{
		"1.50":   "1.5",
		"2.00":   "2",
		"100.00": "100",
		"0.05":   "0.05",
		"12":     "12",
	}
	for in, want := range tests {
		if got := trimDecimals(in); got != want {
			t.Errorf("trimDecimals(%q) = %q, want %q", in, got, want)
		}
	}
}

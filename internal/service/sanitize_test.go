package service

import "testing"

func TestStripEmoji(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"식당 개선 요청 🙏", "식당 개선 요청 "},
		{"👍👍👍", ""},
		{"한글과 漢字는 그대로", "한글과 漢字는 그대로"},
		{"flag 🇰🇷 test", "flag  test"},
		{"keycap 1️⃣", "keycap 1"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := stripEmoji(tc.in); got != tc.want {
			t.Errorf("stripEmoji(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

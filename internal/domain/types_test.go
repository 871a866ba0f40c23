package domain

import "testing"

func TestSaveExcluded(t *testing.T) {
	cases := []struct {
		status   string
		excluded bool
	}{
		{"auto-draft", true},
		{"inherit", true},
		{"draft", true},
		{"trash", true},
		{"publish", false},
		{"future", false},
		{"pending", false},
		{"private", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := SaveExcluded(Status(tc.status)); got != tc.excluded {
			t.Fatalf("SaveExcluded(%q) = %v, expected %v", tc.status, got, tc.excluded)
		}
	}
}

package util

import "testing"

func TestHumanReadableSize(t *testing.T) {
	tests := []struct {
		name  string
		input int64
		want  string
	}{
		{"zero bytes", 0, "0 B"},
		{"plain bytes", 500, "500 B"},
		{"bytes at KB boundary", 1023, "1023 B"},
		{"exactly 1 KB", 1024, "1.0 KB"},
		{"fractional KB", 1536, "1.5 KB"},
		{"KB at MB boundary", 1048575, "1024.0 KB"},
		{"exactly 1 MB", 1048576, "1.0 MB"},
		{"fractional MB", 2621440, "2.5 MB"},
		{"exactly 1 GB", 1073741824, "1.0 GB"},
		{"fractional GB", 1610612736, "1.5 GB"},
		{"exactly 1 TB", 1099511627776, "1.0 TB"},
		{"TB is the cap", 1099511627776000, "1000.0 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HumanReadableSize(tt.input); got != tt.want {
				t.Errorf("HumanReadableSize(%d) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

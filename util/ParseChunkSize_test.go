package util

import "testing"

func TestParseChunkSize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "bare bytes", input: "512", want: 512},
		{name: "kilobytes", input: "4KB", want: 4 * 1024},
		{name: "megabytes", input: "1MB", want: 1024 * 1024},
		{name: "gigabytes", input: "2GB", want: 2 * 1024 * 1024 * 1024},
		{name: "lowercase", input: "8kb", want: 8 * 1024},
		{name: "with spaces", input: " 16 KB ", want: 16 * 1024},
		{name: "explicit bytes", input: "100B", want: 100},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "abc", wantErr: true},
		{name: "negative", input: "-4KB", wantErr: true},
		{name: "zero", input: "0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseChunkSize(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseChunkSize(%q) expected error, got %d", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseChunkSize(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseChunkSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

package horosafe

import (
	"errors"
	"strings"
	"testing"
)

func TestCheckURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://ita-schengen.idata.com.tr/tr", false},
		{"http://localhost:8080/hook", false},
		{"ftp://evil.com/data", true},
		{"javascript:alert(1)", true},
		{"https:///no-host", true},
		{"://broken", true},
	}
	for _, tt := range tests {
		err := CheckURL(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("CheckURL(%q) error=%v, wantErr=%v", tt.url, err, tt.wantErr)
		}
	}
}

func TestCheckURL_SchemeSentinel(t *testing.T) {
	if err := CheckURL("file:///etc/passwd"); !errors.Is(err, ErrUnsafeScheme) {
		t.Fatalf("expected ErrUnsafeScheme, got %v", err)
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"ankara-general", false},
		{"antalya_education.v2", false},
		{"İzmir-genel", false},
		{"ankara genel", false},
		{"", true},
		{"bad\nkey", true},
		{"tab\tkey", true},
		{"\xff", true},
		{strings.Repeat("a", 257), true},
	}
	for _, tt := range tests {
		err := ValidateKey(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateKey(%q) error=%v, wantErr=%v", tt.in, err, tt.wantErr)
		}
	}
}

func TestLimitedReadAll(t *testing.T) {
	data, err := LimitedReadAll(strings.NewReader("hello"), 5)
	if err != nil || string(data) != "hello" {
		t.Fatalf("LimitedReadAll at limit: %q, %v", data, err)
	}
	if _, err := LimitedReadAll(strings.NewReader("hello!"), 5); err == nil {
		t.Fatal("expected error when body exceeds limit")
	}
}

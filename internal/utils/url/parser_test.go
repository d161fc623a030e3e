package urlutil

import (
	"net/url"
	"testing"
)

func TestValidate(t *testing.T) {
	valid := []string{
		"http://example.com",
		"https://example.com/path",
		" https://example.com/padded ",
	}
	for _, u := range valid {
		if err := ValidateURL(u); err != nil {
			t.Fatalf("expected valid, got error: %v", err)
		}
	}

	invalid := []string{"ftp://example.com", "//example.com", "http:///", "", "not a url"}
	for _, u := range invalid {
		if err := ValidateURL(u); err == nil {
			t.Fatalf("expected invalid for %s", u)
		}
	}
}

func TestResolveURL(t *testing.T) {
	base, _ := url.Parse("https://shop.test/catalog/item?id=1")

	tests := []struct {
		href string
		want string
		ok   bool
	}{
		{"https://cdn.test/a.jpg", "https://cdn.test/a.jpg", true},
		{"/img/a.jpg", "https://shop.test/img/a.jpg", true},
		{"../img/a.jpg", "https://shop.test/img/a.jpg", true},
		{"b.jpg", "https://shop.test/catalog/b.jpg", true},
		{"//cdn.test/c.jpg", "https://cdn.test/c.jpg", true},
		{"data:image/png;base64,AAAA", "", false},
		{"javascript:void(0)", "", false},
		{"", "", false},
		{"%zz", "", false},
	}

	for _, tt := range tests {
		got, ok := ResolveURL(base, tt.href)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ResolveURL(%q) = %q, %v; want %q, %v", tt.href, got, ok, tt.want, tt.ok)
		}
	}

	if _, ok := ResolveURL(nil, "/relative.jpg"); ok {
		t.Error("expected relative href without base to fail")
	}
}

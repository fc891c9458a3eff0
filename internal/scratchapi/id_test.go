package scratchapi

import "testing"

func TestExtractProjectID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"123", "123"},
		{" 99 ", "99"},
		{"https://scratch.mit.edu/projects/1259204833/", "1259204833"},
		{"https://scratch.mit.edu/projects/1259204833/editor", "1259204833"},
		{"scratch.mit.edu/projects/42", "42"},
	}
	for _, c := range cases {
		got, err := ExtractProjectID(c.in)
		if err != nil {
			t.Fatalf("ExtractProjectID(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ExtractProjectID(%q)=%q want %q", c.in, got, c.want)
		}
	}

	for _, in := range []string{"", "12a3", "https://example.com/projects/1", "not a url"} {
		if got, err := ExtractProjectID(in); err == nil {
			t.Fatalf("ExtractProjectID(%q)=%q want error", in, got)
		}
	}
}

package filename

import (
	"slices"
	"testing"
)

func TestDetect(t *testing.T) {
	d, err := NewRegexpDetector(DefaultExtensions)
	if err != nil {
		t.Fatalf("new detector: %v", err)
	}

	cases := []struct {
		name string
		in   string
		want []string
	}{
		{name: "no file", in: "What is the capital of France?", want: nil},
		{name: "one file", in: "Describe cat.jpg please", want: []string{"cat.jpg"}},
		{name: "many files in order", in: "compare a.png with b.mp4 and c.webm", want: []string{"a.png", "b.mp4", "c.webm"}},
		{name: "trailing punctuation", in: "what happens in clip.mov?", want: []string{"clip.mov"}},
		{name: "quoted", in: `look at "photo.png", then answer`, want: []string{"photo.png"}},
		{name: "path rejected", in: "open dir/cat.jpg or C:\\x\\y.png", want: nil},
		{name: "case sensitive", in: "see CAT.JPG", want: nil},
		{name: "unknown extension", in: "read notes.txt", want: nil},
		{name: "bare extension", in: "a .jpg file", want: nil},
		{name: "empty", in: "   ", want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := d.Detect(tc.in)
			if !slices.Equal(got, tc.want) {
				t.Fatalf("Detect(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNewRegexpDetectorCustomExtensions(t *testing.T) {
	d, err := NewRegexpDetector([]string{".gif", " heic "})
	if err != nil {
		t.Fatalf("new detector: %v", err)
	}
	got := d.Detect("x.gif y.heic z.jpg")
	if !slices.Equal(got, []string{"x.gif", "y.heic"}) {
		t.Fatalf("unexpected matches: %q", got)
	}
}

func TestNewRegexpDetectorErrors(t *testing.T) {
	if _, err := NewRegexpDetector(nil); err == nil {
		t.Fatal("expected error for empty extension list")
	}
	if _, err := NewRegexpDetector([]string{"jpg", " "}); err == nil {
		t.Fatal("expected error for blank extension")
	}
}

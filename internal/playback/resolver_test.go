package playback

import "testing"

func TestExtractFileID(t *testing.T) {
	cases := []struct {
		link string
		want string
	}{
		{"https://drive.google.com/file/d/ABC123/view", "ABC123"},
		{"https://drive.google.com/uc?export=download&id=XYZ-9_a", "XYZ-9_a"},
		{"https://drive.google.com/open?id=XYZ", "XYZ"},
		{"  plainid_1  ", "plainid_1"},
		{"plainid_1", "plainid_1"},
		{"not a link at all", ""},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := ExtractFileID(c.link); got != c.want {
			t.Errorf("ExtractFileID(%q) = %q, want %q", c.link, got, c.want)
		}
	}
}

func TestSizeMB(t *testing.T) {
	if got := SizeMB(make([]byte, 2*1024*1024)); got != 2.0 {
		t.Fatalf("SizeMB = %v, want 2.0", got)
	}
}

package mediaurl

import "testing"

func TestResolve(t *testing.T) {
	const base = "https://api.example.com/api/v1"

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"empty", "", ""},
		{"absolute", "https://cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
		{"root relative", "/media/profile_images/a.jpg", "https://api.example.com/media/profile_images/a.jpg"},
		{"storage name", "profile_images/a.jpg", "https://api.example.com/media/profile_images/a.jpg"},
		{"traversal", "../../etc/passwd", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(base, tt.ref); got != tt.want {
				t.Fatalf("Resolve(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestResolveWithoutBase(t *testing.T) {
	if got := Resolve("", "a.jpg"); got != "/media/a.jpg" {
		t.Fatalf("Resolve() = %q, want /media/a.jpg", got)
	}
}

func TestPathRejectsBarePrefix(t *testing.T) {
	if _, ok := Path("/media/"); ok {
		t.Fatal("Path(/media/) ok = true")
	}
}

package util

import "testing"

func TestSanitizeFileNameRejectsTraversal(t *testing.T) {
	if _, err := SanitizeFileName("../../etc/passwd"); err == nil {
		t.Fatalf("expected traversal rejection")
	}
}

func TestSanitizeFileNameReplacesSeparators(t *testing.T) {
	got, err := SanitizeFileName("a/b\\c d.pdf")
	if err != nil {
		t.Fatalf("SanitizeFileName: %v", err)
	}
	if got != "a_b_c_d.pdf" {
		t.Fatalf("got %q", got)
	}
}

func TestValidObjectKey(t *testing.T) {
	valid := []string{"documents/u1/invoice-1.pdf", "a_b/c.d", "x"}
	for _, key := range valid {
		if !ValidObjectKey(key) {
			t.Fatalf("expected %q to be valid", key)
		}
	}
	invalid := []string{"", "has space", "emojié", "semi;colon", "per%cent"}
	for _, key := range invalid {
		if ValidObjectKey(key) {
			t.Fatalf("expected %q to be invalid", key)
		}
	}
}

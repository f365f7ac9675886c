package validation

import "testing"

func TestContainsHTML(t *testing.T) {
	if !ContainsHTML("hello <b>world</b>") {
		t.Fatal("tag should be detected")
	}
	if !ContainsHTML("<div class=\"x\">") {
		t.Fatal("attribute tag should be detected")
	}
	if ContainsHTML("1 < 2 and 3 > 2") {
		t.Fatal("bare comparisons are not HTML")
	}
}

func TestContainsURL(t *testing.T) {
	if !ContainsURL("see https://example.com") {
		t.Fatal("https URL should be detected")
	}
	if !ContainsURL("visit www.example.com today") {
		t.Fatal("www URL should be detected")
	}
	if ContainsURL("no links here") {
		t.Fatal("plain text misdetected")
	}
}

func TestLooksLikeDMS(t *testing.T) {
	for _, raw := range []string{`40°26'46"N`, "40 26 46.302", "40d 26m 46s"} {
		if !LooksLikeDMS(raw) {
			t.Fatalf("%q should look like DMS", raw)
		}
	}
	for _, raw := range []string{"", "40.446", "-79.982"} {
		if LooksLikeDMS(raw) {
			t.Fatalf("%q should not look like DMS", raw)
		}
	}
}

func TestCheckURL(t *testing.T) {
	if _, ok := CheckURL("https://example.com/path"); !ok {
		t.Fatal("valid https URL rejected")
	}
	if kind, ok := CheckURL("www.example.com"); ok || kind != KindMissingScheme {
		t.Fatalf("scheme-less URL: kind=%s ok=%v", kind, ok)
	}
	if kind, ok := CheckURL("ftp://example.com"); ok || kind != KindInvalidURL {
		t.Fatalf("ftp URL: kind=%s ok=%v", kind, ok)
	}
	if kind, ok := CheckURL("https://"); ok || kind != KindInvalidURL {
		t.Fatalf("hostless URL: kind=%s ok=%v", kind, ok)
	}
}

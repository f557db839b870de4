package source

import "testing"

func TestLocationMatchesBySegment(t *testing.T) {
	loc := NewLocation("./src/domain/")
	if loc.Path != "src/domain" || loc.Pattern {
		t.Fatalf("unexpected location: %+v", loc)
	}
	cases := map[string]bool{
		"src/domain":               true,
		"src/domain/service.ts":    true,
		"src/domain/sub/x.ts":      true,
		"src/domainx/service.ts":   false,
		"src/infrastructure/db.ts": false,
		"./src/domain/../domain/a": true,
		"src\\domain\\windows.ts":  true,
	}
	for file, want := range cases {
		if got := loc.Matches(file); got != want {
			t.Fatalf("Matches(%q) = %v, want %v", file, got, want)
		}
	}
}

func TestLocationPattern(t *testing.T) {
	loc := NewLocation("src/*/domain")
	if !loc.Pattern {
		t.Fatalf("expected pattern location")
	}
	if !loc.Matches("src/billing/domain/invoice.ts") {
		t.Fatalf("pattern should match nested file")
	}
	if loc.Matches("src/billing/app/invoice.ts") {
		t.Fatalf("pattern should not match sibling dir")
	}
	if got := loc.Base(); got != "src" {
		t.Fatalf("Base() = %q, want src", got)
	}

	deep := NewLocation("src/**/*.port.ts")
	if !deep.Matches("src/a/b/user.port.ts") {
		t.Fatalf("doublestar pattern should match deep file")
	}
}

func TestLocationRootMatchesEverything(t *testing.T) {
	var root Location
	if !root.IsRoot() || !root.Matches("any/file.ts") {
		t.Fatalf("zero location must match every file")
	}
	if NewLocation(".") != root {
		t.Fatalf("\".\" must normalise to the root location")
	}
}

func TestLocationJoin(t *testing.T) {
	base := NewLocation("src")
	if got := base.Join("domain/entities"); got.Path != "src/domain/entities" {
		t.Fatalf("Join = %q", got.Path)
	}
	if got := base.Join("/lib"); got.Path != "lib" {
		t.Fatalf("rooted Join = %q", got.Path)
	}
}

func TestLocationOverlaps(t *testing.T) {
	a := NewLocation("src/domain")
	b := NewLocation("src/domain/entities")
	c := NewLocation("src/infrastructure")
	if !a.Overlaps(b) || !b.Overlaps(a) {
		t.Fatalf("nested paths must overlap")
	}
	if a.Overlaps(c) {
		t.Fatalf("siblings must not overlap")
	}
	p := NewLocation("src/domain/**/*.ts")
	if !p.Overlaps(a) {
		t.Fatalf("pattern inside a dir must overlap it")
	}
	if p.Overlaps(c) {
		t.Fatalf("pattern must not overlap unrelated dir")
	}
}

func TestLocationRel(t *testing.T) {
	loc := NewLocation("src/domain")
	rel, ok := loc.Rel("src/domain/user/entity.ts")
	if !ok || rel != "user/entity.ts" {
		t.Fatalf("Rel = %q, %v", rel, ok)
	}
	if _, ok := loc.Rel("src/app/x.ts"); ok {
		t.Fatalf("Rel outside location must fail")
	}
}

func TestCleanPathNormalizesNFD(t *testing.T) {
	nfd := "src/cafe\u0301"
	nfc := "src/caf\u00e9"
	if CleanPath(nfd) != nfc {
		t.Fatalf("CleanPath did not normalise to NFC")
	}
	if !NewLocation(nfc).Matches(nfd + "/menu.ts") {
		t.Fatalf("NFD file path must match NFC location")
	}
}

package model

import (
	"testing"
)

func TestContainerOf_RoundTrip(t *testing.T) {
	t.Parallel()

	if got := ContainerOf(nil); got != Ungrouped {
		t.Fatalf("nil group: expected %q, got %q", Ungrouped, got)
	}
	empty := ""
	if got := ContainerOf(&empty); got != Ungrouped {
		t.Fatalf("empty group: expected %q, got %q", Ungrouped, got)
	}
	if GroupIDFor(Ungrouped) != nil {
		t.Fatalf("expected nil group id for ungrouped")
	}
	gid := GroupIDFor("grp-1")
	if gid == nil || *gid != "grp-1" {
		t.Fatalf("unexpected group id: %v", gid)
	}
	if got := ContainerOf(gid); got != "grp-1" {
		t.Fatalf("expected grp-1, got %q", got)
	}
}

func TestTemplateValidate(t *testing.T) {
	t.Parallel()

	reserved := string(Ungrouped)
	blank := " "
	cases := []struct {
		name string
		tpl  Template
		ok   bool
	}{
		{name: "minimal", tpl: Template{ID: "tpl-1"}, ok: true},
		{name: "missing id", tpl: Template{}},
		{name: "reserved group", tpl: Template{ID: "tpl-1", GroupID: &reserved}},
		{name: "blank group", tpl: Template{ID: "tpl-1", GroupID: &blank}},
		{name: "negative position", tpl: Template{ID: "tpl-1", Position: -1}},
		{name: "duplicate locale", tpl: Template{ID: "tpl-1", Bodies: []LocalizedBody{{Locale: "en", Body: "a"}, {Locale: "EN", Body: "b"}}}},
		{name: "two locales", tpl: Template{ID: "tpl-1", Bodies: []LocalizedBody{{Locale: "en", Body: "a"}, {Locale: "es", Body: "b"}}}, ok: true},
	}
	for _, tc := range cases {
		err := tc.tpl.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestGroupValidate(t *testing.T) {
	t.Parallel()

	if err := (Group{ID: "grp-1", Name: "Billing"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (Group{ID: string(Ungrouped)}).Validate(); err == nil {
		t.Fatalf("expected reserved id error")
	}
	if err := (Group{ID: string(GroupList)}).Validate(); err == nil {
		t.Fatalf("expected reserved id error")
	}
}

func TestBodyFor(t *testing.T) {
	t.Parallel()

	tpl := Template{
		ID: "tpl-1",
		Bodies: []LocalizedBody{
			{Locale: "en", Body: "Hello {name}"},
			{Locale: "es", Body: "Hola {name}"},
		},
	}
	if got := tpl.BodyFor(""); got != "Hello {name}" {
		t.Fatalf("default: got %q", got)
	}
	if got := tpl.BodyFor("es-MX"); got != "Hola {name}" {
		t.Fatalf("es-MX: got %q", got)
	}
	if got := tpl.BodyFor("not a locale!"); got != "Hello {name}" {
		t.Fatalf("invalid locale: got %q", got)
	}
	if got := (Template{}).BodyFor("en"); got != "" {
		t.Fatalf("empty bodies: got %q", got)
	}
}

func TestPositionUpdates(t *testing.T) {
	t.Parallel()

	got := PositionUpdates([]string{"a", "b", "c"})
	if len(got) != 3 {
		t.Fatalf("expected 3 updates, got %d", len(got))
	}
	for i, u := range got {
		if u.OrderIndex != i {
			t.Fatalf("update %d: expected index %d, got %d", i, i, u.OrderIndex)
		}
	}
	if got[1].ID != "b" {
		t.Fatalf("expected b at 1, got %q", got[1].ID)
	}
}

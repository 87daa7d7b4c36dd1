package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/wippyai/gdbind/class"
)

func TestLoadRegistry(t *testing.T) {
	tests := []struct {
		name    string
		apiFile string
		class   string
		wantErr bool
	}{
		{"builtin", "", "Node2D", false},
		{"api file", "../../class/testdata/api.json", "Node2D", false},
		{"missing file", "testdata/nope.json", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := loadRegistry(tt.apiFile)
			if (err != nil) != tt.wantErr {
				t.Fatalf("loadRegistry error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if _, ok := reg.Lookup(tt.class); !ok {
				t.Fatalf("%s not registered", tt.class)
			}
		})
	}
}

func TestPrintTree(t *testing.T) {
	reg, err := loadRegistry("")
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	printTree(&b, reg, class.RootObject, 0)

	out := b.String()
	for _, want := range []string{
		"Object [dynamic",
		"  RefCounted [refcounted",
		"    Resource [refcounted",
		"  Node [manual",
		"    Node2D [manual",
		"singleton",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("tree missing %q:\n%s", want, out)
		}
	}
}

func TestPrintClass(t *testing.T) {
	reg, err := loadRegistry("")
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	if err := printClass(&b, reg, "Node2D"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "Node < Object") {
		t.Fatalf("missing inheritance chain:\n%s", b.String())
	}
	if err := printClass(&b, reg, "Nope"); err == nil {
		t.Fatal("expected error for unknown class")
	}
}

func TestRunDemo(t *testing.T) {
	t.Cleanup(class.ResetDefault)
	var b bytes.Buffer
	if err := runDemo(&b); err != nil {
		t.Fatalf("runDemo: %v\n%s", err, b.String())
	}
	out := b.String()
	for _, want := range []string{
		"Counter received notification 1000",
		"is not a Node",
		"[destroyed] Resource",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("demo output missing %q:\n%s", want, out)
		}
	}
}

func TestInteractiveFilter(t *testing.T) {
	reg, err := loadRegistry("")
	if err != nil {
		t.Fatal(err)
	}
	m := newInteractiveModel(reg, "")
	total := len(m.visible)

	m.filter.SetValue("node")
	m.applyFilter()
	if len(m.visible) != 2 || len(m.visible) >= total {
		t.Fatalf("visible = %d of %d", len(m.visible), total)
	}
	m.filter.SetValue("zzz")
	m.applyFilter()
	if len(m.visible) != 0 || m.selected != 0 {
		t.Fatalf("visible = %d, selected = %d", len(m.visible), m.selected)
	}
}

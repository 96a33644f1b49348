package views

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadTemplates_success(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates() = %v; want nil", err)
	}
	if indexTmpl == nil {
		t.Fatal("LoadTemplates() left indexTmpl nil")
	}
}

func TestLoadTemplates_failure_sub(t *testing.T) {
	// An invalid dir name makes fs.Sub fail.
	if err := loadTemplatesFromFS(fstest.MapFS{}, "../templates"); err == nil {
		t.Fatal("loadTemplatesFromFS(emptyFS, \"../templates\") = nil; want error")
	}
}

func TestLoadTemplates_failure_noFiles(t *testing.T) {
	// Empty FS: ParseFS finds nothing matching *.html.
	if err := loadTemplatesFromFS(fstest.MapFS{}, "templates"); err == nil {
		t.Fatal("loadTemplatesFromFS(emptyFS, \"templates\") = nil; want error")
	}
}

func TestLoadTemplates_failure_parse(t *testing.T) {
	badFS := fstest.MapFS{
		"templates/index.html": {Data: []byte("{{ .")},
	}
	if err := loadTemplatesFromFS(badFS, "templates"); err == nil {
		t.Fatal("loadTemplatesFromFS(badFS, \"templates\") = nil; want error")
	}
}

func TestRenderIndex_notLoaded(t *testing.T) {
	saved := indexTmpl
	indexTmpl = nil
	t.Cleanup(func() { indexTmpl = saved })

	var buf bytes.Buffer
	err := RenderIndex(&buf, IndexData{})
	if err == nil {
		t.Fatal("RenderIndex() = nil; want error when templates not loaded")
	}
	if !strings.Contains(err.Error(), "LoadTemplates") {
		t.Errorf("error = %q; want hint about LoadTemplates", err)
	}
}

func TestRenderIndex(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates() = %v", err)
	}

	var buf bytes.Buffer
	err := RenderIndex(&buf, IndexData{Routes: []Route{
		{Path: "/api/v1.0/stations", Description: "Station list"},
		{Path: "/api/v1.0/{start}", Description: "From <start>"},
	}})
	if err != nil {
		t.Fatalf("RenderIndex() = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"<code>/api/v1.0/stations</code> Station list",
		"<code>/api/v1.0/{start}</code>",
		"From &lt;start&gt;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

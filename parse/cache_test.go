package parse

import "testing"

func TestCache(t *testing.T) {
	var cache = NewCache()
	var file, err = cache.Parse("<p>{{a}}</p>", "/app/a.html", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if cache.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", cache.Len())
	}

	again, err := cache.Parse("<p>{{a}}</p>", "/app/a.html", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if again != file {
		t.Errorf("expected cached template to be served")
	}

	changed, err := cache.Parse("<p>{{b}}</p>", "/app/a.html", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if changed == file {
		t.Errorf("expected changed text to be parsed again")
	}
	if got, ok := cache.Get("/app/a.html", "<p>{{b}}</p>"); !ok || got != changed {
		t.Errorf("expected Get to serve the latest parse")
	}
	if _, ok := cache.Get("/app/a.html", "<p>{{a}}</p>"); ok {
		t.Errorf("expected stale text to miss")
	}

	cache.Invalidate("/app/../app/a.html")
	if _, ok := cache.Get("/app/a.html", "<p>{{b}}</p>"); ok {
		t.Errorf("expected invalidated entry to miss")
	}
}

func TestCacheOptions(t *testing.T) {
	var cache = NewCache()
	var text = "<p> a </p>"
	var collapsed, _ = cache.Parse(text, "/a.html", Options{})
	var preserved, _ = cache.Parse(text, "/a.html", Options{PreserveWhitespaces: true})
	if collapsed == preserved {
		t.Errorf("expected options to be part of the cache entry")
	}
	if _, ok := cache.Get("/a.html", text); ok {
		t.Errorf("expected Get with default options to miss a preserved entry")
	}
}

func TestCacheFailuresAndClear(t *testing.T) {
	var cache = NewCache()
	if _, err := cache.Parse("<div", "/bad.html", Options{}); err == nil {
		t.Errorf("expected parse error")
	}
	if cache.Len() != 0 {
		t.Errorf("expected failed parse not to be cached")
	}

	var file, _ = Parse("<b></b>", "/b.html")
	cache.Put("/b.html", "<b></b>", file)
	cache.Put("/c.html", "<c></c>", file)
	if cache.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", cache.Len())
	}
	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("expected empty cache after Clear, got %d", cache.Len())
	}
}

package cache

import (
	"path/filepath"
	"testing"
)

func TestCache_PutGet(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	key := Key([]byte("val main = () => 0"), "0.1.0")

	if _, ok, err := c.Get(key); err != nil {
		t.Fatalf("Get: %v", err)
	} else if ok {
		t.Fatal("expected a miss before any Put")
	}

	if err := c.Put(key, "int main() { return 0; }"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	value, ok, err := c.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit after Put")
	}
	if value != "int main() { return 0; }" {
		t.Errorf("value = %q", value)
	}

	if err := c.Put(key, "int main() { return 1; }"); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	value, _, _ = c.Get(key)
	if value != "int main() { return 1; }" {
		t.Errorf("after overwrite value = %q", value)
	}
}

func TestKey_DiffersOnVersion(t *testing.T) {
	src := []byte("val main = () => 0")
	if Key(src, "0.1.0") == Key(src, "0.2.0") {
		t.Fatal("expected keys to differ across compiler versions")
	}
}

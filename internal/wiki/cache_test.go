package wiki

import "testing"

func TestResultCachePutGet(t *testing.T) {
	t.Parallel()

	c := NewResultCache(3)
	results := []Result{{Header: "Setup", URL: "https://docs.example.com/setup"}}

	c.Put("alice", results)
	got, ok := c.Get("alice")
	if !ok || len(got) != 1 || got[0].Header != "Setup" {
		t.Errorf("Get = (%+v, %v)", got, ok)
	}

	if _, ok := c.Get("bob"); ok {
		t.Error("Get for unknown user reported a hit")
	}
}

func TestResultCacheAt(t *testing.T) {
	t.Parallel()

	c := NewResultCache(3)
	c.Put("alice", []Result{{Header: "first"}, {Header: "second"}})

	if r, ok := c.At("alice", 2); !ok || r.Header != "second" {
		t.Errorf("At(2) = (%+v, %v)", r, ok)
	}
	for _, n := range []int{0, -1, 3} {
		if _, ok := c.At("alice", n); ok {
			t.Errorf("At(%d) reported a hit", n)
		}
	}
	if _, ok := c.At("bob", 1); ok {
		t.Error("At for unknown user reported a hit")
	}
}

func TestResultCacheEvictsOldestUser(t *testing.T) {
	t.Parallel()

	c := NewResultCache(3)
	for _, user := range []string{"a", "b", "c"} {
		c.Put(user, []Result{{Header: user}})
	}

	// Reading and re-storing never refreshes the eviction position.
	c.Get("a")
	c.Put("a", []Result{{Header: "a2"}})

	c.Put("d", nil)
	if _, ok := c.Get("a"); ok {
		t.Error("oldest user survived eviction")
	}
	for _, user := range []string{"b", "c", "d"} {
		if _, ok := c.Get(user); !ok {
			t.Errorf("user %q evicted unexpectedly", user)
		}
	}
}

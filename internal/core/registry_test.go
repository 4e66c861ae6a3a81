package core

import "testing"

type simpleModule struct{ id ModuleID }

func (m *simpleModule) ModuleInfo() ModuleInfo {
	id := m.id
	return ModuleInfo{
		ID:  id,
		New: func() Module { return &simpleModule{id: id} },
	}
}

func TestRegisterModule_Duplicate(t *testing.T) {
	t.Cleanup(resetRegistry)

	RegisterModule(&simpleModule{id: "test.dup"})

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	RegisterModule(&simpleModule{id: "test.dup"})
}

func TestRegisterModule_EmptyID(t *testing.T) {
	t.Cleanup(resetRegistry)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on empty module ID")
		}
	}()
	RegisterModule(&simpleModule{id: ""})
}

func TestGetModules_Sorted(t *testing.T) {
	t.Cleanup(resetRegistry)

	RegisterModule(&simpleModule{id: "zeta.mod"})
	RegisterModule(&simpleModule{id: "alpha.mod"})
	RegisterModule(&simpleModule{id: "mid.mod"})

	mods := GetModules()
	if len(mods) != 3 {
		t.Fatalf("len = %d, want 3", len(mods))
	}
	want := []ModuleID{"alpha.mod", "mid.mod", "zeta.mod"}
	for i, w := range want {
		if mods[i].ID != w {
			t.Errorf("mods[%d].ID = %q, want %q", i, mods[i].ID, w)
		}
	}
}

func TestGetModulesByNamespace(t *testing.T) {
	t.Cleanup(resetRegistry)

	RegisterModule(&simpleModule{id: "channel.wschat"})
	RegisterModule(&simpleModule{id: "channel.mock"})
	RegisterModule(&simpleModule{id: "report.sqlite"})

	chans := GetModulesByNamespace("channel")
	if len(chans) != 2 {
		t.Fatalf("len = %d, want 2", len(chans))
	}
	if chans[0].ID != "channel.mock" || chans[1].ID != "channel.wschat" {
		t.Errorf("unexpected ordering: %v, %v", chans[0].ID, chans[1].ID)
	}
}

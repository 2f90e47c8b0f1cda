package ops

import (
	"testing"

	"github.com/spf13/cobra"
)

func newTestRegistry() *Registry {
	return &Registry{
		commands:   make(map[string]*CommandRegistration),
		groupIndex: make(map[CommandGroup][]*CommandRegistration),
	}
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := newTestRegistry()
	cmd := &cobra.Command{Use: "generate"}

	if err := r.Register("generate", GroupPipeline, cmd, "Generate a hook entry"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	reg, ok := r.GetCommand("generate")
	if !ok {
		t.Fatal("registered command not found")
	}
	if reg.Group != GroupPipeline || reg.Command != cmd {
		t.Errorf("registration mismatch: %+v", reg)
	}

	if _, ok := r.GetCommand("missing"); ok {
		t.Error("GetCommand returned ok for unregistered name")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := newTestRegistry()
	cmd := &cobra.Command{Use: "merge"}

	if err := r.Register("merge", GroupPipeline, cmd, ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register("merge", GroupWorkflow, cmd, ""); err == nil {
		t.Error("duplicate registration should fail")
	}
}

func TestRegistryGroups(t *testing.T) {
	r := newTestRegistry()
	r.Register("generate", GroupPipeline, &cobra.Command{Use: "generate"}, "")
	r.Register("merge", GroupPipeline, &cobra.Command{Use: "merge"}, "")
	r.Register("version", GroupSupport, &cobra.Command{Use: "version"}, "")

	pipeline := r.GetCommandsByGroup(GroupPipeline)
	if len(pipeline) != 2 {
		t.Errorf("pipeline group has %d commands, expected 2", len(pipeline))
	}

	groups := r.ListGroups()
	if groups[GroupPipeline] != 2 || groups[GroupSupport] != 1 {
		t.Errorf("ListGroups = %v", groups)
	}

	all := r.GetAllCommands()
	if len(all) != 3 {
		t.Errorf("GetAllCommands returned %d, expected 3", len(all))
	}
}

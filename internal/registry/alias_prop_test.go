package registry

import (
	"testing"

	"pgregory.net/rapid"
)

// Whatever sequence of alias registrations is attempted, the alias table
// must stay acyclic: canonicalization of any name terminates within the
// table size.
func TestRegisterAlias_NeverCreatesCycle(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		names := []string{"a", "b", "c", "d", "e"}
		reg := New()

		ops := rapid.SliceOfN(rapid.SampledFrom(names), 0, 20).Draw(t, "targets")
		for i, target := range ops {
			alias := rapid.SampledFrom(names).Draw(t, "alias")
			_ = reg.RegisterAlias(target, alias)
			_ = i
		}

		for _, name := range names {
			current := name
			for step := 0; ; step++ {
				if step > len(names)+1 {
					t.Fatalf("alias chain from %q does not terminate", name)
				}
				target, ok := reg.aliases[current]
				if !ok {
					break
				}
				current = target
			}
		}
	})
}

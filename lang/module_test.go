package lang

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
)

func TestModules(t *testing.T) {
	if got := Modules(); !slices.Equal(got, []string{"game", "io"}) {
		t.Errorf("unexpected modules %v", got)
	}
}

func TestImport_Forms(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"namespace", "import io\nio.write_text(\"f\", \"y\")\nsay io.read_text(\"f\")"},
		{"named", "from io import write_text, read_text\nwrite_text(\"f\", \"y\")\nsay read_text(\"f\")"},
		{"all", "from io import *\nwrite_text(\"f\", \"y\")\nsay read_text(\"f\")"},
		{"import twice", "import io\nimport io\nio.write_text(\"f\", \"y\")\nsay io.read_text(\"f\")"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runSource(t, tt.input, "")
			if err != nil {
				t.Fatalf("run error: %v", err)
			}

			if out != "y\n" {
				t.Errorf("unexpected output %q", out)
			}
		})
	}
}

func TestImport_NamespaceOnly(t *testing.T) {
	_, _, err := runSource(t, "import io\nsay read_text(\"f\")", "")
	if !errors.Is(err, ErrUndefinedFunction) {
		t.Errorf("want %v, got %v", ErrUndefinedFunction, err)
	}
}

func TestIO_Files(t *testing.T) {
	src := `import io
io.write_text("notes/a.txt", "one\ntwo")
say io.read_text("notes/a.txt")
say io.read_lines("notes/a.txt")
io.append_text("notes/a.txt", "\nthree")
say len(io.read_lines("notes/a.txt"))
say io.file_exists("notes/a.txt")
say io.list_files("notes")
say io.delete_file("notes/a.txt")
say io.delete_file("notes/a.txt")
say io.file_exists("notes/a.txt")`

	out, _, err := runSource(t, src, "")
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	want := "one\ntwo\n['one', 'two']\n3\nTrue\n['a.txt']\nTrue\nFalse\nFalse\n"
	if out != want {
		t.Errorf("output mismatch:\nwant: %q\ngot:  %q", want, out)
	}
}

func TestIO_WriteLines(t *testing.T) {
	fs := memfs.New()

	src := "import io\nio.create_directory(\"out\")\nio.write_lines(\"out/l.txt\", [\"a\", 1])"
	if _, _, err := runSource(t, src, "", WithFilesystem(fs)); err != nil {
		t.Fatalf("run error: %v", err)
	}

	data, err := util.ReadFile(fs, "out/l.txt")
	if err != nil {
		t.Fatalf("read error: %v", err)
	}

	if string(data) != "a\n1\n" {
		t.Errorf("unexpected file content %q", data)
	}
}

func TestIO_Errors(t *testing.T) {
	_, _, err := runSource(t, "import io\nsay io.read_text(\"missing.txt\")", "")
	if !errors.Is(err, ErrBuiltin) {
		t.Fatalf("want %v, got %v", ErrBuiltin, err)
	}

	if !strings.Contains(err.Error(), "Error in io.read_text") {
		t.Errorf("unexpected message %q", err.Error())
	}

	var e *Error
	if errors.As(err, &e) && e.Pos().Line != 2 {
		t.Errorf("want line 2, got %s", e.Pos())
	}
}

func TestGame_Inventory(t *testing.T) {
	src := `import game
game.add_item("sword")
game.add_item("potion")
game.add_item("potion")
say game.has_item("sword")
say game.item_count()
game.show_inventory()
game.remove_item("potion")
say game.item_count()
say game.remove_item("shield")
game.clear_inventory()
say game.item_count()`

	out, in, err := runSource(t, src, "")
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	for _, want := range []string{
		"✓ Added 'sword' to inventory",
		"True\n3\n",
		"INVENTORY",
		"  • sword\n",
		"  • potion (x2)\n",
		"Total items: 3",
		"✓ Removed 'potion' from inventory",
		"✗ 'shield' not found in inventory",
		"✓ Inventory cleared",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output:\n%s", want, out)
		}
	}

	if !strings.HasSuffix(out, "0\n") {
		t.Errorf("unexpected output tail %q", out)
	}

	if len(in.Inventory()) != 0 {
		t.Errorf("expected empty inventory, got %v", in.Inventory())
	}
}

func TestGame_EmptyInventory(t *testing.T) {
	out, _, err := runSource(t, "from game import show_inventory\nshow_inventory()", "")
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	if !strings.Contains(out, "(Empty)") || !strings.Contains(out, "Total items: 0") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestGame_Wait(t *testing.T) {
	var slept []time.Duration

	sleep := func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)

		return nil
	}

	out, _, err := runSource(t,
		"from game import wait\nsay wait(0.5)\nsay wait(\"2\")\nsay wait(\"soon\")\nsay wait(0)",
		"", WithSleep(sleep))
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	want := []time.Duration{500 * time.Millisecond, 2 * time.Second}
	if !slices.Equal(slept, want) {
		t.Errorf("want sleeps %v, got %v", want, slept)
	}

	if !strings.Contains(out, "✗ Error: wait() requires a number, got soon") {
		t.Errorf("missing wait error in %q", out)
	}

	if !strings.HasPrefix(out, "True\nTrue\n") || !strings.HasSuffix(out, "False\nFalse\n") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestGame_WaitCanceled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	prog := mustParse(t, "from game import wait\nwait(10)")

	in := New(WithStdout(&bytes.Buffer{}), WithFilesystem(memfs.New()))
	if err := in.Run(ctx, prog); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("want %v, got %v", context.DeadlineExceeded, err)
	}
}

func saveProgram(t *testing.T, fs billy.Filesystem) {
	t.Helper()

	src := `from game import *
set name to "Ada"
set hp to 10
set ratio to 0.5
set bag to [1, "two", [3.0]]
set flag to true
set nothing to null
set huge to float("inf")
add_item("lamp")
save_game("slot1")`

	out, _, err := runSource(t, src, "", WithFilesystem(fs))
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	if !strings.Contains(out, "💾 Game saved to: saves/slot1.save") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	fs := memfs.New()
	saveProgram(t, fs)

	first, err := util.ReadFile(fs, "saves/slot1.save")
	if err != nil {
		t.Fatalf("read error: %v", err)
	}

	for _, want := range []string{
		`"hp": 10`,
		`"ratio": 0.5`,
		`"nothing": null`,
		`3.0`,
		`"lamp"`,
	} {
		if !strings.Contains(string(first), want) {
			t.Errorf("missing %s in save:\n%s", want, first)
		}
	}

	if strings.Contains(string(first), "huge") {
		t.Errorf("non-finite float was saved:\n%s", first)
	}

	src := `from game import *
say load_game("slot1")
say name
say hp + 1
say ratio
say bag
say has_item("lamp")
save_game("slot2")`

	out, in, err := runSource(t, src, "", WithFilesystem(fs))
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	want := "✓ Game loaded from: saves/slot1.save\nTrue\nAda\n11\n0.5\n[1, 'two', [3.0]]\nTrue\n"
	if !strings.HasPrefix(out, want) {
		t.Errorf("output mismatch:\nwant prefix: %q\ngot:         %q", want, out)
	}

	if v, _ := in.Lookup("flag"); !Equal(v, Bool(true)) {
		t.Errorf("want flag True, got %s", Repr(v))
	}

	second, err := util.ReadFile(fs, "saves/slot2.save")
	if err != nil {
		t.Fatalf("read error: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("resave differs:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestSave_Missing(t *testing.T) {
	src := `from game import *
say has_save("none")
say load_game("none")
say delete_save("none")`

	out, _, err := runSource(t, src, "")
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	want := "False\n❌ Save file not found: saves/none.save\nFalse\n" +
		"❌ Save file not found: saves/none.save\nFalse\n"
	if out != want {
		t.Errorf("output mismatch:\nwant: %q\ngot:  %q", want, out)
	}
}

func TestSave_Delete(t *testing.T) {
	fs := memfs.New()
	saveProgram(t, fs)

	src := "from game import *\nsay has_save(\"slot1.save\")\nsay delete_save(\"slot1\")\nsay has_save(\"slot1\")"

	out, _, err := runSource(t, src, "", WithFilesystem(fs))
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	want := "True\n✓ Deleted save file: saves/slot1.save\nTrue\nFalse\n"
	if out != want {
		t.Errorf("output mismatch:\nwant: %q\ngot:  %q", want, out)
	}
}

func TestSave_Dir(t *testing.T) {
	fs := memfs.New()

	_, in, err := runSource(t, "set x to 1", "", WithFilesystem(fs), WithSaveDir("slots"))
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	p, err := in.SaveGame("a")
	if err != nil || p != "slots/a.save" {
		t.Fatalf("unexpected save %q, %v", p, err)
	}

	if _, err := in.LoadGame("a"); err != nil {
		t.Errorf("load error: %v", err)
	}
}

func TestModuleFunctions(t *testing.T) {
	got := ModuleFunctions("game")
	if !slices.IsSorted(got) || !slices.Contains(got, "save_game") || !slices.Contains(got, "wait") {
		t.Errorf("unexpected game functions %v", got)
	}

	if ModuleFunctions("nope") != nil {
		t.Error("unknown module must have no functions")
	}
}

func TestLookupBuiltin(t *testing.T) {
	tests := []struct {
		name  string
		found bool
		arity string
	}{
		{"len", true, "1"},
		{"range", true, "1-3"},
		{"min", true, "1+"},
		{"io.read_text", true, "1"},
		{"game.show_inventory", true, "0"},
		{"read_text", false, ""},
		{"io.nope", false, ""},
		{"nope.len", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ok := LookupBuiltin(tt.name)
			if ok != tt.found {
				t.Fatalf("found = %v, want %v", ok, tt.found)
			}

			if ok && b.Arity() != tt.arity {
				t.Errorf("arity %q, want %q", b.Arity(), tt.arity)
			}
		})
	}

	if !slices.Contains(Builtins(), "clamp") || slices.Contains(Builtins(), "wait") {
		t.Errorf("unexpected built-ins %v", Builtins())
	}
}

package lang

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
)

// gameFuncs returns the functions of the game module: timing, inventory,
// and save files.
func gameFuncs() map[string]*Builtin {
	return builtinTable(
		&Builtin{Name: "wait", MinArgs: 1, MaxArgs: 1, Fn: gameWait},
		&Builtin{Name: "add_item", MinArgs: 1, MaxArgs: 1, Fn: gameAddItem},
		&Builtin{Name: "remove_item", MinArgs: 1, MaxArgs: 1, Fn: gameRemoveItem},
		&Builtin{Name: "has_item", MinArgs: 1, MaxArgs: 1, Fn: gameHasItem},
		&Builtin{Name: "show_inventory", MinArgs: 0, MaxArgs: 0, Fn: gameShowInventory},
		&Builtin{Name: "clear_inventory", MinArgs: 0, MaxArgs: 0, Fn: gameClearInventory},
		&Builtin{Name: "item_count", MinArgs: 0, MaxArgs: 0, Fn: gameItemCount},
		&Builtin{Name: "save_game", MinArgs: 1, MaxArgs: 1, Fn: gameSave},
		&Builtin{Name: "load_game", MinArgs: 1, MaxArgs: 1, Fn: gameLoad},
		&Builtin{Name: "has_save", MinArgs: 1, MaxArgs: 1, Fn: gameHasSave},
		&Builtin{Name: "delete_save", MinArgs: 1, MaxArgs: 1, Fn: gameDeleteSave},
	)
}

// gameWait blocks for the given number of seconds and reports whether it
// waited at all.
func gameWait(ctx context.Context, in *Interpreter, args []Value) (Value, error) {
	secs := args[0]
	if s, ok := secs.(Str); ok {
		f, err := builtinFloat(ctx, in, []Value{s})
		if err == nil {
			secs = f
		}
	}

	if !isNumber(secs) {
		in.println(paint(in.palette.fail,
			"✗ Error: wait() requires a number, got "+Display(args[0])))

		return Bool(false), nil
	}

	d := toFloat(secs)
	if !(d > 0) {
		return Bool(false), nil
	}

	if err := in.sleep(ctx, time.Duration(d*float64(time.Second))); err != nil {
		return nil, err
	}

	return Bool(true), nil
}

func gameAddItem(_ context.Context, in *Interpreter, args []Value) (Value, error) {
	item := Display(args[0])
	in.inventory = append(in.inventory, item)
	in.println(paint(in.palette.success, fmt.Sprintf("✓ Added '%s' to inventory", item)))

	return Bool(true), nil
}

func gameRemoveItem(_ context.Context, in *Interpreter, args []Value) (Value, error) {
	item := Display(args[0])

	i := slices.Index(in.inventory, item)
	if i < 0 {
		in.println(paint(in.palette.fail, fmt.Sprintf("✗ '%s' not found in inventory", item)))

		return Bool(false), nil
	}

	in.inventory = slices.Delete(in.inventory, i, i+1)
	in.println(paint(in.palette.success, fmt.Sprintf("✓ Removed '%s' from inventory", item)))

	return Bool(true), nil
}

func gameHasItem(_ context.Context, in *Interpreter, args []Value) (Value, error) {
	return Bool(slices.Contains(in.inventory, Display(args[0]))), nil
}

// gameShowInventory prints each distinct item once, in order of first
// appearance, with a count for duplicates.
func gameShowInventory(_ context.Context, in *Interpreter, _ []Value) (Value, error) {
	rule := strings.Repeat("=", 40)

	var b strings.Builder

	b.WriteString("\n" + rule + "\n          INVENTORY\n" + rule + "\n")

	if len(in.inventory) == 0 {
		b.WriteString("  (Empty)\n")
	}

	counts := map[string]int{}
	for _, item := range in.inventory {
		counts[item]++
	}

	for _, item := range in.inventory {
		switch n := counts[item]; {
		case n == 0:
			continue
		case n > 1:
			fmt.Fprintf(&b, "  • %s (x%d)\n", item, n)
		default:
			fmt.Fprintf(&b, "  • %s\n", item)
		}

		counts[item] = 0
	}

	fmt.Fprintf(&b, "%s\nTotal items: %d\n%s\n", rule, len(in.inventory), rule)

	in.println(b.String())

	return Nil, nil
}

func gameClearInventory(_ context.Context, in *Interpreter, _ []Value) (Value, error) {
	in.inventory = in.inventory[:0]
	in.println(paint(in.palette.success, "✓ Inventory cleared"))

	return Bool(true), nil
}

func gameItemCount(_ context.Context, in *Interpreter, _ []Value) (Value, error) {
	return NewInt(int64(len(in.inventory))), nil
}

func gameSave(_ context.Context, in *Interpreter, args []Value) (Value, error) {
	p, err := in.SaveGame(Display(args[0]))
	if err != nil {
		in.println(paint(in.palette.fail, "❌ Error saving game: "+err.Error()))

		return Bool(false), nil
	}

	in.println(paint(in.palette.success, "💾 Game saved to: "+p))

	return Bool(true), nil
}

func gameLoad(_ context.Context, in *Interpreter, args []Value) (Value, error) {
	p := in.savePath(Display(args[0]))

	if !in.saveExists(p) {
		in.println(paint(in.palette.fail, "❌ Save file not found: "+p))

		return Bool(false), nil
	}

	if _, err := in.LoadGame(Display(args[0])); err != nil {
		in.println(paint(in.palette.fail, "❌ Error loading game: "+err.Error()))

		return Bool(false), nil
	}

	in.println(paint(in.palette.success, "✓ Game loaded from: "+p))

	return Bool(true), nil
}

func gameHasSave(_ context.Context, in *Interpreter, args []Value) (Value, error) {
	return Bool(in.saveExists(in.savePath(Display(args[0])))), nil
}

func gameDeleteSave(_ context.Context, in *Interpreter, args []Value) (Value, error) {
	p := in.savePath(Display(args[0]))

	if !in.saveExists(p) {
		in.println(paint(in.palette.fail, "❌ Save file not found: "+p))

		return Bool(false), nil
	}

	if err := in.fs.Remove(p); err != nil {
		in.println(paint(in.palette.fail, "❌ Error deleting save: "+err.Error()))

		return Bool(false), nil
	}

	in.println(paint(in.palette.success, "✓ Deleted save file: "+p))

	return Bool(true), nil
}

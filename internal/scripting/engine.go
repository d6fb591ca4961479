package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// ErrEffectNotFound is returned when an item or ability names a script that
// no loaded file defines.
var ErrEffectNotFound = errors.New("scripting: effect not found")

// Target is the snapshot of a combatant handed to an effect script. Scripts
// read it; they cannot write back.
type Target struct {
	ID    string
	Name  string
	HP    int
	MaxHP int
	SP    int
	MaxSP int
	EP    int
	MaxEP int
}

// Effect is what a script returns: pool deltas applied to the target plus a
// narration line. Zero-value fields are allowed; a purely narrative effect
// is legal.
type Effect struct {
	HPDelta   int
	SPDelta   int
	EPDelta   int
	Narrative string
}

// Engine owns one sandboxed LState holding every loaded effect script.
//
// Engine is safe for concurrent RunEffect after LoadDir completes. The
// LState is single-threaded; a mutex serializes invocations.
type Engine struct {
	mu        sync.Mutex
	state     *lua.LState
	instLimit int
	logger    *zap.Logger
}

// NewEngine creates an Engine with an empty VM.
//
// Precondition: logger must be non-nil.
func NewEngine(instLimit int, logger *zap.Logger) *Engine {
	return &Engine{
		state:     newSandboxedState(),
		instLimit: instLimit,
		logger:    logger,
	}
}

// LoadDir executes every *.lua file in dir in lexicographic order. Each
// file defines one or more global effect functions; the function name is
// what item and ability records reference as their effect script.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns error on read or Lua load failure; already-loaded
// globals survive a failed load of a later file.
func (e *Engine) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}

	var luaFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(luaFiles)

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, path := range luaFiles {
		cancel := armLimit(e.state, e.instLimit)
		err := e.state.DoFile(path)
		cancel()
		if err != nil {
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}
	e.logger.Info("effect scripts loaded",
		zap.String("dir", dir),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// Close shuts down the VM.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Close()
}

// RunEffect calls the named global effect function with caster and target
// snapshots and decodes its returned effect table.
//
// The script receives two tables with fields id, name, hp, maxHp, sp,
// maxSp, ep, maxEp, and must return a table with any of hp, sp, ep
// (integer deltas) and narrative (string). A Lua runtime error or budget
// exhaustion is returned to the caller; it is not applied half-way because
// scripts only compute deltas.
//
// Precondition: name must be non-empty.
func (e *Engine) RunEffect(name string, caster, target Target) (Effect, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	fn := e.state.GetGlobal(name)
	if fn == lua.LNil {
		return Effect{}, fmt.Errorf("%w: %q", ErrEffectNotFound, name)
	}

	cancel := armLimit(e.state, e.instLimit)
	defer cancel()

	err := e.state.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, targetTable(e.state, caster), targetTable(e.state, target))
	if err != nil {
		e.logger.Warn("effect script failed",
			zap.String("effect", name),
			zap.Error(err),
		)
		return Effect{}, fmt.Errorf("scripting: running %q: %w", name, err)
	}

	ret := e.state.Get(-1)
	e.state.Pop(1)

	table, ok := ret.(*lua.LTable)
	if !ok {
		return Effect{}, fmt.Errorf("scripting: effect %q returned %s, want table", name, ret.Type())
	}
	return Effect{
		HPDelta:   intField(table, "hp"),
		SPDelta:   intField(table, "sp"),
		EPDelta:   intField(table, "ep"),
		Narrative: stringField(table, "narrative"),
	}, nil
}

// targetTable converts a Target snapshot into a Lua table.
func targetTable(L *lua.LState, t Target) *lua.LTable {
	table := L.NewTable()
	L.SetField(table, "id", lua.LString(t.ID))
	L.SetField(table, "name", lua.LString(t.Name))
	L.SetField(table, "hp", lua.LNumber(t.HP))
	L.SetField(table, "maxHp", lua.LNumber(t.MaxHP))
	L.SetField(table, "sp", lua.LNumber(t.SP))
	L.SetField(table, "maxSp", lua.LNumber(t.MaxSP))
	L.SetField(table, "ep", lua.LNumber(t.EP))
	L.SetField(table, "maxEp", lua.LNumber(t.MaxEP))
	return table
}

func intField(t *lua.LTable, key string) int {
	if n, ok := t.RawGetString(key).(lua.LNumber); ok {
		return int(n)
	}
	return 0
}

func stringField(t *lua.LTable, key string) string {
	if s, ok := t.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

package script

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/ncounterspecialist/twick-sub001/internal/engine"
	"github.com/ncounterspecialist/twick-sub001/internal/engine/timeline"
	"github.com/ncounterspecialist/twick-sub001/internal/engine/wire"
)

// ModuleName is the global and require name of the editor module.
const ModuleName = "tl"

// module binds the tl functions to one editor for one run.
type module struct {
	ctx    context.Context
	editor *engine.Editor
	logger *slog.Logger

	// raised is the last Go error turned into a Lua error.
	raised error
}

func (m *module) funcs() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"add_track":      m.addTrack,
		"remove_track":   m.removeTrack,
		"rename_track":   m.renameTrack,
		"tracks":         m.tracks,
		"track":          m.track,
		"add_element":    m.addElement,
		"remove_element": m.removeElement,
		"update_element": m.updateElement,
		"move_element":   m.moveElement,
		"split":          m.split,
		"clone":          m.clone,
		"element":        m.element,
		"undo":           m.undo,
		"redo":           m.redo,
		"can_undo":       m.canUndo,
		"can_redo":       m.canRedo,
		"version":        m.version,
		"document":       m.document,
		"log":            m.log,
	}
}

// raise records err and raises it as a Lua error. It does not return.
func (m *module) raise(L *lua.LState, err error) int {
	m.raised = err
	L.RaiseError("%s", err.Error())
	return 0
}

func (m *module) addTrack(L *lua.LState) int {
	t, err := m.editor.AddTrack(m.ctx, L.OptString(1, ""))
	if err != nil {
		return m.raise(L, err)
	}
	L.Push(lua.LString(t.ID()))
	return 1
}

func (m *module) removeTrack(L *lua.LState) int {
	ok, err := m.editor.RemoveTrack(m.ctx, L.CheckString(1))
	if err != nil {
		return m.raise(L, err)
	}
	L.Push(lua.LBool(ok))
	return 1
}

func (m *module) renameTrack(L *lua.LState) int {
	ok, err := m.editor.RenameTrack(m.ctx, L.CheckString(1), L.CheckString(2))
	if err != nil {
		return m.raise(L, err)
	}
	L.Push(lua.LBool(ok))
	return 1
}

func (m *module) tracks(L *lua.LState) int {
	out := L.NewTable()
	for i, t := range m.editor.Tracks() {
		row := L.NewTable()
		row.RawSetString("id", lua.LString(t.ID()))
		row.RawSetString("name", lua.LString(t.Name()))
		row.RawSetString("type", lua.LString(t.Type()))
		row.RawSetString("count", lua.LNumber(t.Len()))
		out.RawSetInt(i+1, row)
	}
	L.Push(out)
	return 1
}

func (m *module) track(L *lua.LState) int {
	t, ok := m.editor.Track(L.CheckString(1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	w, err := wire.EncodeTrack(t)
	if err != nil {
		return m.raise(L, err)
	}
	v, err := jsonToLua(L, w)
	if err != nil {
		return m.raise(L, err)
	}
	L.Push(v)
	return 1
}

func (m *module) addElement(L *lua.LState) int {
	el, err := elementFromTable(L.CheckTable(2))
	if err != nil {
		return m.raise(L, err)
	}
	added, err := m.editor.AddElement(m.ctx, L.CheckString(1), el)
	if err != nil {
		return m.raise(L, err)
	}
	L.Push(lua.LString(added.ID()))
	return 1
}

func (m *module) removeElement(L *lua.LState) int {
	ok, err := m.editor.RemoveElement(m.ctx, L.CheckString(1), L.CheckString(2))
	if err != nil {
		return m.raise(L, err)
	}
	L.Push(lua.LBool(ok))
	return 1
}

func (m *module) updateElement(L *lua.LState) int {
	el, err := elementFromTable(L.CheckTable(2))
	if err != nil {
		return m.raise(L, err)
	}
	ok, err := m.editor.UpdateElement(m.ctx, L.CheckString(1), el)
	if err != nil {
		return m.raise(L, err)
	}
	L.Push(lua.LBool(ok))
	return 1
}

func (m *module) moveElement(L *lua.LState) int {
	ok, err := m.editor.MoveElement(m.ctx, L.CheckString(1), L.CheckString(2), float64(L.CheckNumber(3)))
	if err != nil {
		return m.raise(L, err)
	}
	L.Push(lua.LBool(ok))
	return 1
}

// split returns the ids of both halves, or nil when the element cannot be
// split at that time.
func (m *module) split(L *lua.LState) int {
	res, err := m.editor.SplitElement(m.ctx, L.CheckString(1), L.CheckString(2), float64(L.CheckNumber(3)))
	if err != nil {
		return m.raise(L, err)
	}
	if !res.Success {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(res.First.ID()))
	L.Push(lua.LString(res.Second.ID()))
	return 2
}

func (m *module) clone(L *lua.LState) int {
	el, ok := m.editor.CloneElement(L.CheckString(1), L.OptBool(2, true))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	v, err := elementToTable(L, el)
	if err != nil {
		return m.raise(L, err)
	}
	L.Push(v)
	return 1
}

func (m *module) element(L *lua.LState) int {
	el, trackID, ok := m.editor.Element(L.CheckString(1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	v, err := elementToTable(L, el)
	if err != nil {
		return m.raise(L, err)
	}
	L.Push(v)
	L.Push(lua.LString(trackID))
	return 2
}

func (m *module) undo(L *lua.LState) int {
	ok, err := m.editor.Undo(m.ctx)
	if err != nil {
		return m.raise(L, err)
	}
	L.Push(lua.LBool(ok))
	return 1
}

func (m *module) redo(L *lua.LState) int {
	ok, err := m.editor.Redo(m.ctx)
	if err != nil {
		return m.raise(L, err)
	}
	L.Push(lua.LBool(ok))
	return 1
}

func (m *module) canUndo(L *lua.LState) int {
	L.Push(lua.LBool(m.editor.CanUndo()))
	return 1
}

func (m *module) canRedo(L *lua.LState) int {
	L.Push(lua.LBool(m.editor.CanRedo()))
	return 1
}

func (m *module) version(L *lua.LState) int {
	L.Push(lua.LNumber(m.editor.Version()))
	return 1
}

func (m *module) document(L *lua.LState) int {
	data, err := m.editor.MarshalDocument()
	if err != nil {
		return m.raise(L, err)
	}
	L.Push(lua.LString(data))
	return 1
}

func (m *module) log(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	m.logger.Info(strings.Join(parts, " "))
	return 0
}

// elementFromTable decodes a wire-shaped table into an element.
func elementFromTable(t *lua.LTable) (timeline.Element, error) {
	data, err := json.Marshal(toGo(t))
	if err != nil {
		return nil, fmt.Errorf("encode element table: %w", err)
	}
	var w wire.Element
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, &timeline.Error{Code: timeline.CodeInvalidProps, Op: "decode element table", Err: err}
	}
	return wire.DecodeElement(w)
}

func elementToTable(L *lua.LState, el timeline.Element) (lua.LValue, error) {
	w, err := wire.EncodeElement(el)
	if err != nil {
		return lua.LNil, err
	}
	return jsonToLua(L, w)
}

func jsonToLua(L *lua.LState, v any) (lua.LValue, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return lua.LNil, err
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return lua.LNil, err
	}
	return toLua(L, decoded), nil
}

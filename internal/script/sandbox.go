package script

import lua "github.com/yuin/gopher-lua"

const allowedKey = "__allowed_modules"

// installSandbox removes loaders that reach the file system and replaces
// require with a version limited to preloaded and whitelisted modules.
func installSandbox(L *lua.LState) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}

	if pkg, ok := L.GetGlobal("package").(*lua.LTable); ok {
		L.SetField(pkg, "path", lua.LString(""))
		L.SetField(pkg, "cpath", lua.LString(""))
	}

	allowed := L.NewTable()
	for _, name := range []string{"string", "table", "math"} {
		allowed.RawSetString(name, lua.LTrue)
	}
	L.SetField(L.Get(lua.RegistryIndex), allowedKey, allowed)

	original := L.GetGlobal("require")
	L.SetGlobal("require", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		list, _ := L.GetField(L.Get(lua.RegistryIndex), allowedKey).(*lua.LTable)
		if list == nil || list.RawGetString(name) != lua.LTrue {
			L.RaiseError("%s: %q", ErrModuleNotAllowed, name)
			return 0
		}
		L.Push(original)
		L.Push(lua.LString(name))
		L.Call(1, 1)
		return 1
	}))
}

func allowModule(L *lua.LState, name string) {
	if list, ok := L.GetField(L.Get(lua.RegistryIndex), allowedKey).(*lua.LTable); ok {
		list.RawSetString(name, lua.LTrue)
	}
}

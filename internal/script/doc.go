// Package script runs sandboxed Lua edit scripts against an Editor.
//
// A script sees the safe subset of the Lua standard library (base, table,
// string, math) plus the tl module, which exposes the editor operations:
//
//	local t = tl.add_track("main")
//	local v = tl.add_element(t, {type = "video", s = 0, e = 5,
//	    props = {src = "clip.mp4", mediaStartOffset = 2}})
//	local a, b = tl.split(t, v, 2)
//	tl.log("split into " .. a .. " and " .. b)
//
// Elements cross the boundary as tables in the wire shape: id, type, s, e,
// name, props, animation, textEffect and frameEffects. Editor errors are
// raised as Lua errors, so a script can catch them with pcall. A Run is a
// single undo step and is rolled back when the script fails.
package script

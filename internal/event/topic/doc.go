// Package topic provides hierarchical topic names and wildcard matching for
// the event bus.
//
// Topics use dot-notation:
//
//	timeline.document.changed
//	timeline.element.added
//	timeline.history.undo
//
// Two wildcards are supported in subscription patterns:
//
//   - "*" matches exactly one segment
//   - "**" matches zero or more segments
//
// Examples:
//
//	timeline.element.*    matches timeline.element.added, timeline.element.split
//	timeline.**           matches every timeline topic
//	*.document.changed    matches timeline.document.changed
//	**                    matches everything
package topic

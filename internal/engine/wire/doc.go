// Package wire converts timeline documents to and from their JSON wire
// form, the shape consumed by renderers and by history persistence:
//
//	Document := { tracks: Track[], version: integer }
//	Track    := { id, name, type, elements: Element[] }
//	Element  := { id, type, s, e, name?, trackId?, props?, animation?,
//	              textEffect?, frameEffects? }
//
// Encoding walks elements with a timeline.Visitor. Decoding picks a blank
// variant from the type tag and fills its property bag through a second
// visitor, so missing props keep the variant's constructor defaults.
// Decoded tracks are rebuilt through timeline.RestoreTrack and therefore hold
// only validated elements.
package wire

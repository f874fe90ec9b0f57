// Package editor implements the document edit workflow. A Session loads a
// persisted document into an editable form, stages an optional replacement
// file, previews the document code, and submits the edit: validation, then
// upload of the new file, best-effort removal of the old one with a version
// bump, then the metadata update.
//
// Sessions move Closed -> Loaded -> Editing -> Submitting and end Closed
// on success or back in Editing on failure. A Manager keys open sessions by
// id and closes abandoned ones.
package editor
